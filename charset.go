// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"
	"unicode/utf8"
	"unsafe"
)

// A Charset converts between the content octets of an ASN.1 character string
// type and Go strings. The charsets of the string types supported by this
// package are provided as package level variables.
type Charset struct {
	name   string
	tag    uint64
	decode func(b []byte) (string, error)
	encode func(s string) ([]byte, error)
}

// Name returns the ASN.1 name of the string type.
func (c *Charset) Name() string { return c.name }

// Tag returns the universal tag of the string type.
func (c *Charset) Tag() Tag { return Universal(c.tag) }

// Charsets of the supported character string types.
var (
	PrintableCharset = &Charset{"PrintableString", TagPrintableString, decodePrintable, encodePrintable}
	TeletexCharset   = &Charset{"TeletexString", TagTeletexString, decodeLatin1, encodeLatin1}
	UTF8Charset      = &Charset{"UTF8String", TagUTF8String, decodeUTF8, encodeUTF8}
	BMPCharset       = &Charset{"BMPString", TagBMPString, decodeBMP, encodeBMP}
	UniversalCharset = &Charset{"UniversalString", TagUniversalString, decodeUCS4, encodeUCS4}
	IA5Charset       = &Charset{"IA5String", TagIA5String, asciiDecoder(isIA5), asciiEncoder(isIA5)}
	VisibleCharset   = &Charset{"VisibleString", TagVisibleString, asciiDecoder(isVisible), asciiEncoder(isVisible)}
	NumericCharset   = &Charset{"NumericString", TagNumericString, asciiDecoder(isNumeric), asciiEncoder(isNumeric)}
)

var (
	errNotPrintable   = errors.New("invalid character in PrintableString")
	errNotLatin1      = errors.New("character not representable in TeletexString")
	errInvalidUTF8    = errors.New("invalid UTF-8")
	errOddBMPLength   = errors.New("BMPString length is not a multiple of 2")
	errUCS4Length     = errors.New("UniversalString length is not a multiple of 4")
	errInvalidCharset = errors.New("invalid character for string type")
)

// bytesString returns b as a string without copying. b must not be modified
// afterward.
func bytesString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// decodePrintable drops invalid bytes instead of failing. Certificates in the
// wild frequently contain such strings.
func decodePrintable(b []byte) (string, error) {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if isPrintable(c) {
			out = append(out, c)
		}
	}
	return string(out), nil
}

func encodePrintable(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if !isPrintable(s[i]) {
			return nil, errNotPrintable
		}
	}
	return []byte(s), nil
}

// isPrintable reports whether the given b is in the ASN.1 PrintableString set.
func isPrintable(b byte) bool {
	return 'a' <= b && b <= 'z' ||
		'A' <= b && b <= 'Z' ||
		'0' <= b && b <= '9' ||
		'\'' <= b && b <= ')' ||
		'+' <= b && b <= '/' ||
		b == ' ' ||
		b == ':' ||
		b == '=' ||
		b == '?'
}

// isIA5 reports whether b is an ASCII character.
func isIA5(b byte) bool { return b < utf8.RuneSelf }

// isVisible reports whether b is a visible ASCII character or space.
func isVisible(b byte) bool { return ' ' <= b && b < 0x7f }

// isNumeric reports whether b can appear in an ASN.1 NumericString.
func isNumeric(b byte) bool { return '0' <= b && b <= '9' || b == ' ' }

func asciiDecoder(valid func(byte) bool) func([]byte) (string, error) {
	return func(b []byte) (string, error) {
		for _, c := range b {
			if !valid(c) {
				return "", errInvalidCharset
			}
		}
		return bytesString(b), nil
	}
}

func asciiEncoder(valid func(byte) bool) func(string) ([]byte, error) {
	return func(s string) ([]byte, error) {
		for i := 0; i < len(s); i++ {
			if !valid(s[i]) {
				return nil, errInvalidCharset
			}
		}
		return []byte(s), nil
	}
}

// decodeLatin1 maps every byte to the code point of the same value.
func decodeLatin1(b []byte) (string, error) {
	rs := make([]rune, len(b))
	for i, c := range b {
		rs[i] = rune(c)
	}
	return string(rs), nil
}

func encodeLatin1(s string) ([]byte, error) {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xff {
			return nil, errNotLatin1
		}
		b = append(b, byte(r))
	}
	return b, nil
}

func decodeUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errInvalidUTF8
	}
	return bytesString(b), nil
}

func encodeUTF8(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, errInvalidUTF8
	}
	return []byte(s), nil
}

// decodeBMP decodes big-endian UTF-16. Surrogate pairs are combined, unpaired
// surrogates decode to U+FFFD.
func decodeBMP(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", errOddBMPLength
	}
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = binary.BigEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(u)), nil
}

func encodeBMP(s string) ([]byte, error) {
	u := utf16.Encode([]rune(s))
	b := make([]byte, 2*len(u))
	for i, c := range u {
		binary.BigEndian.PutUint16(b[2*i:], c)
	}
	return b, nil
}

// decodeUCS4 decodes big-endian UCS-4. Values that are not valid code points
// decode to U+FFFD.
func decodeUCS4(b []byte) (string, error) {
	if len(b)%4 != 0 {
		return "", errUCS4Length
	}
	rs := make([]rune, len(b)/4)
	for i := range rs {
		c := binary.BigEndian.Uint32(b[4*i:])
		if c > utf8.MaxRune || 0xd800 <= c && c < 0xe000 {
			rs[i] = utf8.RuneError
		} else {
			rs[i] = rune(c)
		}
	}
	return string(rs), nil
}

// encodeUCS4 encodes s as big-endian UCS-4. Invalid UTF-8 in s is encoded as
// U+FFFD.
func encodeUCS4(s string) ([]byte, error) {
	b := make([]byte, 0, 4*utf8.RuneCountInString(s))
	for _, r := range s {
		b = binary.BigEndian.AppendUint32(b, uint32(r))
	}
	return b, nil
}
