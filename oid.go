// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"strconv"
	"strings"

	"codello.dev/berval/internal/vlq"
)

// maxArc is the largest supported arc of an OBJECT IDENTIFIER. Arcs are
// limited to 63 bits.
const maxArc = 1<<63 - 1

// An ObjectIdentifier represents an ASN.1 OBJECT IDENTIFIER. The semantics of
// an object identifier are specified in [Rec. ITU-T X.660]. An
// ObjectIdentifier is immutable.
//
// An ObjectIdentifier created by [NewObjectIdentifier] computes its encoding
// on demand. An ObjectIdentifier obtained by decoding keeps its content octets
// and encodes to exactly these octets.
//
// See also section 32 of Rec. ITU-T X.680.
//
// [Rec. ITU-T X.660]: https://www.itu.int/rec/T-REC-X.660
type ObjectIdentifier struct {
	arcs []uint64
	raw  []byte // content octets if decoded
}

var (
	errShortOID       = errors.New("OBJECT IDENTIFIER needs at least two arcs")
	errFirstArc       = errors.New("first arc of OBJECT IDENTIFIER must be 0, 1 or 2")
	errSecondArc      = errors.New("second arc of OBJECT IDENTIFIER must be less than 40")
	errArcTooLarge    = errors.New("OBJECT IDENTIFIER arc too large")
	errEmptyOID       = errors.New("zero length OBJECT IDENTIFIER")
	errTruncatedOID   = errors.New("truncated OBJECT IDENTIFIER arc")
	errNonMinimalOID  = errors.New("OBJECT IDENTIFIER arc is not minimally encoded")
	errInvalidOIDText = errors.New("invalid OBJECT IDENTIFIER notation")
)

// NewObjectIdentifier returns an ObjectIdentifier with the given arcs. The
// arcs are validated: there must be at least two arcs, the first arc must be
// 0, 1 or 2, the second arc must be less than 40 if the first arc is not 2,
// and no arc may exceed 63 bits.
func NewObjectIdentifier(arcs ...uint64) (ObjectIdentifier, error) {
	if err := validateArcs(arcs); err != nil {
		return ObjectIdentifier{}, err
	}
	return ObjectIdentifier{arcs: slices.Clone(arcs)}, nil
}

// MustObjectIdentifier is like [NewObjectIdentifier] but panics if the arcs
// are invalid. It is intended for package level variables.
func MustObjectIdentifier(arcs ...uint64) ObjectIdentifier {
	oid, err := NewObjectIdentifier(arcs...)
	if err != nil {
		panic("berval: " + err.Error())
	}
	return oid
}

// ParseObjectIdentifier parses the dot notation of an object identifier such
// as "1.2.840.113549".
func ParseObjectIdentifier(s string) (ObjectIdentifier, error) {
	var arcs []uint64
	for part := range strings.SplitSeq(s, ".") {
		n, err := strconv.ParseUint(part, 10, 63)
		if err != nil {
			return ObjectIdentifier{}, errInvalidOIDText
		}
		arcs = append(arcs, n)
	}
	return NewObjectIdentifier(arcs...)
}

func validateArcs(arcs []uint64) error {
	switch {
	case len(arcs) < 2:
		return errShortOID
	case arcs[0] > 2:
		return errFirstArc
	case arcs[0] < 2 && arcs[1] >= 40:
		return errSecondArc
	case arcs[1] > maxArc-80:
		return errArcTooLarge
	}
	for _, a := range arcs[2:] {
		if a > maxArc {
			return errArcTooLarge
		}
	}
	return nil
}

// SubBranch returns a new ObjectIdentifier consisting of the arcs of oid
// followed by arcs. It panics if one of the arcs exceeds 63 bits.
func (oid ObjectIdentifier) SubBranch(arcs ...uint64) ObjectIdentifier {
	for _, a := range arcs {
		if a > maxArc {
			panic("berval: " + errArcTooLarge.Error())
		}
	}
	return ObjectIdentifier{arcs: slices.Concat(oid.arcs, arcs)}
}

// Arcs returns a copy of the arcs of oid.
func (oid ObjectIdentifier) Arcs() []uint64 {
	return slices.Clone(oid.arcs)
}

// Equal reports whether oid and other represent the same identifier.
func (oid ObjectIdentifier) Equal(other ObjectIdentifier) bool {
	return slices.Equal(oid.arcs, other.arcs)
}

// HasPrefix reports whether oid lies in the branch identified by prefix.
func (oid ObjectIdentifier) HasPrefix(prefix ObjectIdentifier) bool {
	return len(oid.arcs) >= len(prefix.arcs) && slices.Equal(oid.arcs[:len(prefix.arcs)], prefix.arcs)
}

// String returns the dot-separated notation of oid.
func (oid ObjectIdentifier) String() string {
	var s strings.Builder
	s.Grow(32)

	buf := make([]byte, 0, 20)
	for i, v := range oid.arcs {
		if i > 0 {
			s.WriteByte('.')
		}
		s.Write(strconv.AppendUint(buf, v, 10))
	}
	return s.String()
}

func (oid ObjectIdentifier) Tag() Tag { return Universal(TagOID) }

func (oid ObjectIdentifier) Encode(w io.Writer) error { return writeValue(w, oid, oid.Tag()) }

func (oid ObjectIdentifier) EncodeTagged(tag Tag, w io.Writer) error {
	return writeValue(w, oid, tag)
}

func (oid ObjectIdentifier) appendTo(dst []byte, tag Tag) ([]byte, error) {
	if oid.raw != nil {
		return appendTLV(dst, tag, Primitive, oid.raw), nil
	}
	if err := validateArcs(oid.arcs); err != nil {
		return nil, &EncodeError{oid, err}
	}
	content := vlq.Append(nil, oid.arcs[0]*40+oid.arcs[1])
	for _, a := range oid.arcs[2:] {
		content = vlq.Append(content, a)
	}
	return appendTLV(dst, tag, Primitive, content), nil
}

// ObjectIdentifierTemplate decodes an [ObjectIdentifier].
type ObjectIdentifierTemplate struct{}

func (ObjectIdentifierTemplate) Match(tag Tag) bool { return tag == Universal(TagOID) }

func (t ObjectIdentifierTemplate) Decode(r *Reader) (Value, error) {
	return t.DecodeTagged(Universal(TagOID), r)
}

func (ObjectIdentifierTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	h, b, err := r.readPrimitive(tag)
	if err != nil {
		return nil, err
	}
	oid, err := parseOID(b)
	if err != nil {
		return nil, invalid(h.offset, err)
	}
	return oid, nil
}

// parseOID parses the content octets of an OBJECT IDENTIFIER.
func parseOID(b []byte) (ObjectIdentifier, error) {
	if len(b) == 0 {
		return ObjectIdentifier{}, errEmptyOID
	}
	r := bytes.NewReader(b)
	// In the worst case every arc after the first two is a single byte long.
	arcs := make([]uint64, 2, len(b)+1)

	// The first subidentifier is 40*arc0 + arc1. arc0 can take the values 0,
	// 1 and 2 only. When arc0 is 0 or 1, arc1 is less than 40.
	v, err := readArc(r)
	if err != nil {
		return ObjectIdentifier{}, err
	}
	switch {
	case v < 40:
		arcs[0], arcs[1] = 0, v
	case v < 80:
		arcs[0], arcs[1] = 1, v-40
	default:
		arcs[0], arcs[1] = 2, v-80
	}
	for r.Len() > 0 {
		if v, err = readArc(r); err != nil {
			return ObjectIdentifier{}, err
		}
		arcs = append(arcs, v)
	}
	return ObjectIdentifier{arcs: arcs, raw: b}, nil
}

func readArc(r io.ByteReader) (uint64, error) {
	v, err := vlq.Read(r, 63)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return 0, errTruncatedOID
	case errors.Is(err, vlq.ErrOverflow):
		return 0, errArcTooLarge
	case errors.Is(err, vlq.ErrNotMinimal):
		return 0, errNonMinimalOID
	}
	return 0, err
}
