// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"bytes"
	"io"
)

// CharacterString represents a value of one of the ASN.1 character string
// types. The string type is determined by its [Charset]. The text is stored as
// a Go string and converted by the charset when the value is encoded.
type CharacterString struct {
	charset *Charset
	s       string
}

// NewCharacterString returns a string value of the type identified by c.
// Whether s can be represented by c is checked during encoding.
func NewCharacterString(c *Charset, s string) CharacterString {
	return CharacterString{c, s}
}

// PrintableString returns a PrintableString value.
func PrintableString(s string) CharacterString { return CharacterString{PrintableCharset, s} }

// TeletexString returns a TeletexString value. The string is encoded as
// Latin-1.
func TeletexString(s string) CharacterString { return CharacterString{TeletexCharset, s} }

// UTF8String returns a UTF8String value.
func UTF8String(s string) CharacterString { return CharacterString{UTF8Charset, s} }

// BMPString returns a BMPString value.
func BMPString(s string) CharacterString { return CharacterString{BMPCharset, s} }

// UniversalString returns a UniversalString value.
func UniversalString(s string) CharacterString { return CharacterString{UniversalCharset, s} }

// IA5String returns an IA5String value.
func IA5String(s string) CharacterString { return CharacterString{IA5Charset, s} }

// VisibleString returns a VisibleString value.
func VisibleString(s string) CharacterString { return CharacterString{VisibleCharset, s} }

// NumericString returns a NumericString value.
func NumericString(s string) CharacterString { return CharacterString{NumericCharset, s} }

// Charset returns the charset of s.
func (s CharacterString) Charset() *Charset { return s.charset }

// String returns the text of s.
func (s CharacterString) String() string { return s.s }

func (s CharacterString) Tag() Tag { return s.charset.Tag() }

func (s CharacterString) Encode(w io.Writer) error { return writeValue(w, s, s.Tag()) }

func (s CharacterString) EncodeTagged(tag Tag, w io.Writer) error { return writeValue(w, s, tag) }

func (s CharacterString) appendTo(dst []byte, tag Tag) ([]byte, error) {
	b, err := s.charset.encode(s.s)
	if err != nil {
		return nil, &EncodeError{s, err}
	}
	return appendTLV(dst, tag, Primitive, b), nil
}

// StringTemplate decodes a [CharacterString] of the type identified by
// Charset. Both the primitive and the constructed encoding are accepted.
type StringTemplate struct {
	Charset *Charset
}

func (t StringTemplate) Match(tag Tag) bool { return tag == t.Charset.Tag() }

func (t StringTemplate) Decode(r *Reader) (Value, error) {
	return t.DecodeTagged(t.Charset.Tag(), r)
}

func (t StringTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	h, chunks, err := r.readString(tag, t.Charset.Tag())
	if err != nil {
		return nil, err
	}
	var b []byte
	if len(chunks) == 1 {
		b = chunks[0]
	} else {
		b = bytes.Join(chunks, nil)
	}
	s, err := t.Charset.decode(b)
	if err != nil {
		return nil, invalid(h.offset, err)
	}
	return CharacterString{t.Charset, s}, nil
}
