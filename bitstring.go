// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"errors"
	"io"
	"math/bits"
	"strings"
)

// BitString implements the ASN.1 BIT STRING type. The bits are packed into
// Bytes, most significant bit first. PadCount is the number of unused bits in
// the last byte and must be 0 if Bytes is empty.
//
// If TrimTrailingZeros is set, trailing zero bits are removed during encoding.
// This is the encoding required by DER for bit strings that represent a set of
// named flags. Otherwise the bits are encoded exactly as given, which is what
// binary payloads such as public keys need.
//
// See also section 22 of Rec. ITU-T X.680.
type BitString struct {
	Bytes             []byte
	PadCount          int
	TrimTrailingZeros bool
}

// BitStringFromFlags returns a BitString where bit i is set iff flags[i] is
// true. Trailing zero bits are trimmed when the value is encoded.
func BitStringFromFlags(flags []bool) BitString {
	s := BitString{
		Bytes:             make([]byte, (len(flags)+7)/8),
		PadCount:          (8 - len(flags)%8) % 8,
		TrimTrailingZeros: true,
	}
	for i, f := range flags {
		if f {
			s.Bytes[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return s
}

// IsValid reports whether PadCount is consistent with Bytes.
func (s BitString) IsValid() bool {
	return s.PadCount >= 0 && s.PadCount <= 7 && (len(s.Bytes) > 0 || s.PadCount == 0)
}

// Len returns the number of bits in s.
func (s BitString) Len() int {
	return len(s.Bytes)*8 - s.PadCount
}

// At returns the bit at the given index. Indexes beyond the end of s are
// reported as 0.
func (s BitString) At(i int) int {
	if i < 0 || i >= s.Len() {
		return 0
	}
	return int(s.Bytes[i/8]>>(7-uint(i%8))) & 1
}

// String formats s into a readable binary representation. Bits are grouped
// into bytes, the last group may have fewer than 8 characters.
func (s BitString) String() string {
	var sb strings.Builder
	sb.Grow(s.Len() + len(s.Bytes))
	for i := range s.Len() {
		if i > 0 && i%8 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('0' + byte(s.At(i)))
	}
	return sb.String()
}

// trimmed returns the bytes and pad count used for the encoding of s.
func (s BitString) trimmed() ([]byte, int) {
	if !s.TrimTrailingZeros {
		return s.Bytes, s.PadCount
	}
	n := len(s.Bytes)
	for n > 0 && s.Bytes[n-1] == 0 {
		n--
	}
	if n == 0 {
		return nil, 0
	}
	pad := bits.TrailingZeros8(s.Bytes[n-1])
	if n == len(s.Bytes) && s.PadCount > pad {
		pad = s.PadCount
	}
	return s.Bytes[:n], pad
}

func (s BitString) Tag() Tag { return Universal(TagBitString) }

func (s BitString) Encode(w io.Writer) error { return writeValue(w, s, s.Tag()) }

func (s BitString) EncodeTagged(tag Tag, w io.Writer) error { return writeValue(w, s, tag) }

func (s BitString) appendTo(dst []byte, tag Tag) ([]byte, error) {
	if !s.IsValid() {
		return nil, &EncodeError{s, errors.New("invalid pad count")}
	}
	b, pad := s.trimmed()
	dst = appendHeader(dst, tag, Primitive, len(b)+1)
	dst = append(dst, byte(pad))
	return append(dst, b...), nil
}

// BitStringTemplate decodes a [BitString]. Both the primitive and the
// constructed encoding are accepted. In the constructed encoding only the last
// chunk may have a non-zero pad count.
type BitStringTemplate struct{}

func (BitStringTemplate) Match(tag Tag) bool { return tag == Universal(TagBitString) }

func (t BitStringTemplate) Decode(r *Reader) (Value, error) {
	return t.DecodeTagged(Universal(TagBitString), r)
}

var (
	errEmptyBitString = errors.New("zero length BIT STRING")
	errBitStringPad   = errors.New("invalid pad count in BIT STRING")
	errChunkPad       = errors.New("non-zero pad count before last chunk of BIT STRING")
)

func (BitStringTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	h, chunks, err := r.readString(tag, Universal(TagBitString))
	if err != nil {
		return nil, err
	}
	var s BitString
	for i, c := range chunks {
		if len(c) == 0 {
			return nil, invalid(h.offset, errEmptyBitString)
		}
		pad := int(c[0])
		if pad > 7 || pad > 0 && len(c) == 1 {
			return nil, invalid(h.offset, errBitStringPad)
		}
		if pad != 0 && i != len(chunks)-1 {
			return nil, invalid(h.offset, errChunkPad)
		}
		s.Bytes = append(s.Bytes, c[1:]...)
		s.PadCount = pad
	}
	if s.Bytes == nil {
		s.Bytes = []byte{}
	}
	return s, nil
}
