// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package berval implements a template driven decoder for ASN.1 data encoded
// with the Basic Encoding Rules (BER) and an encoder producing the
// Distinguished Encoding Rules (DER) as defined in [Rec. ITU-T X.690].
//
// # Values
//
// Decoded data is represented as a tree of [Value]s. The set of Value types is
// closed: [Boolean], [Integer], [Enumerated], [Null], [OctetString],
// [BitString], [ObjectIdentifier], [CharacterString], [UTCTime],
// [GeneralizedTime], [Any], [*Explicit], [*Sequence] and [*Set]. Callers
// inspect a decoded tree with a type switch. Every Value can be encoded under
// its natural tag via Encode or under an implicit tag via EncodeTagged.
//
// # Templates
//
// A [Template] describes the structure expected in the input. Primitive
// templates such as [IntegerTemplate] are stateless values. SEQUENCE and SET
// templates are assembled by a [SequenceBuilder] or [SetBuilder] and are
// immutable once built, so a single template can be shared by any number of
// concurrent decodes:
//
//	tmpl := berval.NewSequenceBuilder().
//		Add(berval.IntegerTemplate{}, berval.Optional()).
//		Add(berval.BooleanTemplate{}).
//		Build()
//	v, err := berval.Unmarshal(data, tmpl)
//
// Elements whose type is only known later can be captured with [AnyTemplate]
// and decoded once their meaning is known via [Any.DecodeWith].
//
// # Errors
//
// All decoding failures caused by the input are reported as an
// [*InvalidBERError]. Its trace identifies the path through nested containers
// to the failing element, and the wrapped error can be examined with
// [errors.Is] and [errors.As]. Errors returned by the underlying [io.Reader]
// are passed through unchanged.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
package berval

import (
	"bytes"
	"io"
)

// Value is an ASN.1 value that can be encoded. The set of implementations is
// closed and listed in the package documentation.
type Value interface {
	// Tag returns the natural tag of the value.
	Tag() Tag
	// Encode writes the DER encoding of the value to w.
	Encode(w io.Writer) error
	// EncodeTagged writes the DER encoding of the value to w, using tag
	// instead of the natural tag of the value.
	EncodeTagged(tag Tag, w io.Writer) error

	appendTo(dst []byte, tag Tag) ([]byte, error)
}

// Template decodes a [Value] of a particular type.
type Template interface {
	// Match reports whether a data value with the given tag can be decoded by
	// the template without an implicit tag.
	Match(tag Tag) bool
	// Decode reads a value with its natural tag from r.
	Decode(r *Reader) (Value, error)
	// DecodeTagged reads a value from r that has been implicitly tagged with
	// the given tag.
	DecodeTagged(tag Tag, r *Reader) (Value, error)
}

// writeValue writes the encoding of v under tag to w.
func writeValue(w io.Writer, v Value, tag Tag) error {
	b, err := v.appendTo(nil, tag)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// appendTLV appends a header and the content octets to dst.
func appendTLV(dst []byte, tag Tag, form Form, content []byte) []byte {
	dst = appendHeader(dst, tag, form, len(content))
	return append(dst, content...)
}

// Marshal returns the DER encoding of v.
func Marshal(v Value) ([]byte, error) {
	return v.appendTo(nil, v.Tag())
}

// MarshalTagged returns the DER encoding of v using tag as an implicit tag.
func MarshalTagged(tag Tag, v Value) ([]byte, error) {
	return v.appendTo(nil, tag)
}

// Unmarshal decodes b as a single value using t. It is an error if b contains
// additional data after the value.
func Unmarshal(b []byte, t Template) (Value, error) {
	r := NewReader(bytes.NewReader(b))
	v, err := t.Decode(r)
	if err != nil {
		return nil, err
	}
	return v, checkEOF(r)
}

// UnmarshalTagged works like [Unmarshal] but expects the value to be
// implicitly tagged with tag.
func UnmarshalTagged(b []byte, tag Tag, t Template) (Value, error) {
	r := NewReader(bytes.NewReader(b))
	v, err := t.DecodeTagged(tag, r)
	if err != nil {
		return nil, err
	}
	return v, checkEOF(r)
}

// Decode reads a single value from r using t. Unlike [Unmarshal], data
// following the value is left unread.
func Decode(r io.Reader, t Template) (Value, error) {
	return t.Decode(NewReader(r))
}

// checkEOF returns an error if r has unread data.
func checkEOF(r *Reader) error {
	off := r.Offset()
	if _, err := r.ReadByte(); err == nil {
		return invalidf(off, "%w after data value encoding", ErrTrailingData)
	}
	return nil
}

// Equal reports whether a and b have the same DER encoding. Values that cannot
// be encoded are never equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	ab, err := Marshal(a)
	if err != nil {
		return false
	}
	bb, err := Marshal(b)
	return err == nil && bytes.Equal(ab, bb)
}
