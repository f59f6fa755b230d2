// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"bytes"
	"errors"
	"io"
	"math/big"
)

//region [UNIVERSAL 1] BOOLEAN

// Boolean represents the ASN.1 BOOLEAN type.
type Boolean bool

func (b Boolean) Tag() Tag { return Universal(TagBoolean) }

func (b Boolean) Encode(w io.Writer) error { return writeValue(w, b, b.Tag()) }

func (b Boolean) EncodeTagged(tag Tag, w io.Writer) error { return writeValue(w, b, tag) }

func (b Boolean) appendTo(dst []byte, tag Tag) ([]byte, error) {
	c := byte(0x00)
	if b {
		c = 0xff
	}
	return appendTLV(dst, tag, Primitive, []byte{c}), nil
}

// BooleanTemplate decodes a [Boolean]. Any non-zero content octet decodes as
// true.
type BooleanTemplate struct{}

func (BooleanTemplate) Match(tag Tag) bool { return tag == Universal(TagBoolean) }

func (t BooleanTemplate) Decode(r *Reader) (Value, error) {
	return t.DecodeTagged(Universal(TagBoolean), r)
}

func (BooleanTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	h, b, err := r.readPrimitive(tag)
	if err != nil {
		return nil, err
	}
	if len(b) != 1 {
		return nil, invalid(h.offset, errors.New("BOOLEAN content must be a single octet"))
	}
	return Boolean(b[0] != 0), nil
}

//endregion

//region [UNIVERSAL 2] INTEGER

// Integer represents the ASN.1 INTEGER type with arbitrary precision. The zero
// value represents 0.
type Integer struct {
	n *big.Int
}

// NewInteger returns an Integer with the value i.
func NewInteger(i int64) Integer {
	return Integer{big.NewInt(i)}
}

// NewBigInteger returns an Integer with the value of i. The value is copied.
func NewBigInteger(i *big.Int) Integer {
	return Integer{new(big.Int).Set(i)}
}

// Big returns the value of i as a new [big.Int].
func (i Integer) Big() *big.Int {
	if i.n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i.n)
}

// Int64 returns the value of i and reports whether it fits into an int64.
func (i Integer) Int64() (int64, bool) {
	if i.n == nil {
		return 0, true
	}
	return i.n.Int64(), i.n.IsInt64()
}

// Equal reports whether i and other represent the same number.
func (i Integer) Equal(other Integer) bool {
	return i.Big().Cmp(other.Big()) == 0
}

func (i Integer) String() string { return i.Big().String() }

func (i Integer) Tag() Tag { return Universal(TagInteger) }

func (i Integer) Encode(w io.Writer) error { return writeValue(w, i, i.Tag()) }

func (i Integer) EncodeTagged(tag Tag, w io.Writer) error { return writeValue(w, i, tag) }

func (i Integer) appendTo(dst []byte, tag Tag) ([]byte, error) {
	return appendTLV(dst, tag, Primitive, intBytes(i.n)), nil
}

// IntegerTemplate decodes an [Integer].
type IntegerTemplate struct{}

func (IntegerTemplate) Match(tag Tag) bool { return tag == Universal(TagInteger) }

func (t IntegerTemplate) Decode(r *Reader) (Value, error) {
	return t.DecodeTagged(Universal(TagInteger), r)
}

func (IntegerTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	n, err := readInt(tag, r)
	if err != nil {
		return nil, err
	}
	return Integer{n}, nil
}

// readInt reads the content of an INTEGER or ENUMERATED with the given tag.
func readInt(tag Tag, r *Reader) (*big.Int, error) {
	h, b, err := r.readPrimitive(tag)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, invalid(h.offset, ErrEmptyInteger)
	}
	return parseInt(b), nil
}

// intBytes returns the minimal two's complement big-endian encoding of n. A nil
// n is treated as 0.
func intBytes(n *big.Int) []byte {
	if n == nil || n.Sign() == 0 {
		return []byte{0x00}
	}
	if n.Sign() > 0 {
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			// A positive number must not have its sign bit set.
			b = append([]byte{0x00}, b...)
		}
		return b
	}
	// Two's complement of a negative number is the complement of -n-1.
	m := new(big.Int).Neg(n)
	m.Sub(m, bigOne)
	b := m.Bytes()
	for i := range b {
		b[i] ^= 0xff
	}
	if len(b) == 0 || b[0]&0x80 == 0 {
		b = append([]byte{0xff}, b...)
	}
	return b
}

// parseInt interprets b as a two's complement big-endian integer. b must not be
// empty.
func parseInt(b []byte) *big.Int {
	ret := new(big.Int).SetBytes(b)
	if b[0]&0x80 == 0 {
		return ret
	}
	// Negative number: subtract 2^(8*len(b)).
	ret.Sub(ret, new(big.Int).Lsh(bigOne, uint(len(b))*8))
	return ret
}

var bigOne = big.NewInt(1)

//endregion

//region [UNIVERSAL 5] NULL

// Null represents the ASN.1 NULL type.
type Null struct{}

func (Null) Tag() Tag { return Universal(TagNull) }

func (n Null) Encode(w io.Writer) error { return writeValue(w, n, n.Tag()) }

func (n Null) EncodeTagged(tag Tag, w io.Writer) error { return writeValue(w, n, tag) }

func (Null) appendTo(dst []byte, tag Tag) ([]byte, error) {
	return appendTLV(dst, tag, Primitive, nil), nil
}

func (Null) String() string { return "NULL" }

// NullTemplate decodes a [Null].
type NullTemplate struct{}

func (NullTemplate) Match(tag Tag) bool { return tag == Universal(TagNull) }

func (t NullTemplate) Decode(r *Reader) (Value, error) {
	return t.DecodeTagged(Universal(TagNull), r)
}

func (NullTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	h, b, err := r.readPrimitive(tag)
	if err != nil {
		return nil, err
	}
	if len(b) != 0 {
		return nil, invalid(h.offset, errors.New("NULL with non-empty content"))
	}
	return Null{}, nil
}

//endregion

//region [UNIVERSAL 10] ENUMERATED

// Enumerated represents the ASN.1 ENUMERATED type. It shares the
// representation and encoding of [Integer] but uses a different tag.
type Enumerated struct {
	n *big.Int
}

// NewEnumerated returns an Enumerated with the value i.
func NewEnumerated(i int64) Enumerated {
	return Enumerated{big.NewInt(i)}
}

// Int64 returns the value of e and reports whether it fits into an int64.
func (e Enumerated) Int64() (int64, bool) {
	return Integer(e).Int64()
}

// Big returns the value of e as a new [big.Int].
func (e Enumerated) Big() *big.Int {
	return Integer(e).Big()
}

func (e Enumerated) String() string { return Integer(e).String() }

func (e Enumerated) Tag() Tag { return Universal(TagEnumerated) }

func (e Enumerated) Encode(w io.Writer) error { return writeValue(w, e, e.Tag()) }

func (e Enumerated) EncodeTagged(tag Tag, w io.Writer) error { return writeValue(w, e, tag) }

func (e Enumerated) appendTo(dst []byte, tag Tag) ([]byte, error) {
	return appendTLV(dst, tag, Primitive, intBytes(e.n)), nil
}

// EnumeratedTemplate decodes an [Enumerated].
type EnumeratedTemplate struct{}

func (EnumeratedTemplate) Match(tag Tag) bool { return tag == Universal(TagEnumerated) }

func (t EnumeratedTemplate) Decode(r *Reader) (Value, error) {
	return t.DecodeTagged(Universal(TagEnumerated), r)
}

func (EnumeratedTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	n, err := readInt(tag, r)
	if err != nil {
		return nil, err
	}
	return Enumerated{n}, nil
}

//endregion

//region [UNIVERSAL 4] OCTET STRING

// OctetString represents the ASN.1 OCTET STRING type.
type OctetString []byte

func (s OctetString) Tag() Tag { return Universal(TagOctetString) }

func (s OctetString) Encode(w io.Writer) error { return writeValue(w, s, s.Tag()) }

func (s OctetString) EncodeTagged(tag Tag, w io.Writer) error { return writeValue(w, s, tag) }

func (s OctetString) appendTo(dst []byte, tag Tag) ([]byte, error) {
	return appendTLV(dst, tag, Primitive, s), nil
}

// OctetStringTemplate decodes an [OctetString]. Both the primitive and the
// constructed encoding are accepted.
//
// If Wrap is set, the decoded octets are passed to Wrap and its result is
// returned instead of an OctetString. This allows a context that carries its
// payload in an OCTET STRING to produce a more specific value from the same
// bytes.
type OctetStringTemplate struct {
	Wrap func(b []byte) (Value, error)
}

func (OctetStringTemplate) Match(tag Tag) bool { return tag == Universal(TagOctetString) }

func (t OctetStringTemplate) Decode(r *Reader) (Value, error) {
	return t.DecodeTagged(Universal(TagOctetString), r)
}

func (t OctetStringTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	h, chunks, err := r.readString(tag, Universal(TagOctetString))
	if err != nil {
		return nil, err
	}
	b := bytes.Join(chunks, nil)
	if b == nil {
		b = []byte{}
	}
	if t.Wrap == nil {
		return OctetString(b), nil
	}
	v, err := t.Wrap(b)
	if err != nil {
		return nil, r.wrapErr(h.offset, err)
	}
	return v, nil
}

//endregion
