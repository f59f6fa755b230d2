// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"strconv"
	"strings"
)

// Tag constitutes an ASN.1 tag, consisting of its class and number. Two tags
// are equal iff their class and number are equal, so Tag values can be
// compared with ==. For details, see Section 8 of Rec. ITU-T X.680.
type Tag struct {
	Class  Class
	Number uint64
}

// Class holds the class part of an ASN.1 tag. The class acts as a namespace for
// the tag number. A Class value is an unsigned 2-bit integer.
//
//go:generate stringer -type=Class -trimprefix=Class
type Class uint8

// Predefined [Class] constants. These are all the possible values that can be
// encoded in the identifier octet.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// IsValid reports whether c is a valid Class value.
func (c Class) IsValid() bool {
	return c <= ClassPrivate
}

// Form indicates whether a data value encoding uses the primitive or the
// constructed encoding.
//
//go:generate stringer -type=Form
type Form uint8

const (
	Primitive Form = iota
	Constructed
)

// Universal returns the tag with the given number in the UNIVERSAL class.
func Universal(n uint64) Tag { return Tag{ClassUniversal, n} }

// Application returns the tag with the given number in the APPLICATION class.
func Application(n uint64) Tag { return Tag{ClassApplication, n} }

// ContextSpecific returns the tag with the given number in the context-specific
// class.
func ContextSpecific(n uint64) Tag { return Tag{ClassContextSpecific, n} }

// Private returns the tag with the given number in the PRIVATE class.
func Private(n uint64) Tag { return Tag{ClassPrivate, n} }

// String returns a string representation t in a format similar to the one used
// in ASN.1 notation. The tag number is enclosed by square brackets and prefixed
// with the class used. To avoid ambiguity the UNIVERSAL word is used for
// universal tags, although this is not valid ASN.1 syntax.
func (t Tag) String() string {
	if t.Class == ClassContextSpecific {
		return "[" + strconv.FormatUint(t.Number, 10) + "]"
	}
	return "[" + strings.ToUpper(t.Class.String()) + " " + strconv.FormatUint(t.Number, 10) + "]"
}

// TagEOC is the tag of the end-of-contents marker that terminates an
// indefinite-length encoding.
var TagEOC = Tag{ClassUniversal, 0}

// These are the ASN.1 tag numbers in the [ClassUniversal] namespace that are
// relevant to this package. These assignments are defined in Rec. ITU-T X.680,
// Section 8, Table 1.
const (
	TagBoolean         uint64 = 1
	TagInteger         uint64 = 2
	TagBitString       uint64 = 3
	TagOctetString     uint64 = 4
	TagNull            uint64 = 5
	TagOID             uint64 = 6
	TagEnumerated      uint64 = 10
	TagUTF8String      uint64 = 12
	TagSequence        uint64 = 16
	TagSet             uint64 = 17
	TagNumericString   uint64 = 18
	TagPrintableString uint64 = 19
	TagTeletexString   uint64 = 20
	TagIA5String       uint64 = 22
	TagUTCTime         uint64 = 23
	TagGeneralizedTime uint64 = 24
	TagVisibleString   uint64 = 26
	TagUniversalString uint64 = 28
	TagBMPString       uint64 = 30
)

// universalNames maps universal tag numbers to the ASN.1 type names used in
// error traces and dumps.
var universalNames = [...]string{
	0:                  "EOC",
	TagBoolean:         "BOOLEAN",
	TagInteger:         "INTEGER",
	TagBitString:       "BIT STRING",
	TagOctetString:     "OCTET STRING",
	TagNull:            "NULL",
	TagOID:             "OBJECT IDENTIFIER",
	TagEnumerated:      "ENUMERATED",
	TagUTF8String:      "UTF8String",
	TagSequence:        "SEQUENCE",
	TagSet:             "SET",
	TagNumericString:   "NumericString",
	TagPrintableString: "PrintableString",
	TagTeletexString:   "TeletexString",
	TagIA5String:       "IA5String",
	TagUTCTime:         "UTCTime",
	TagGeneralizedTime: "GeneralizedTime",
	TagVisibleString:   "VisibleString",
	TagUniversalString: "UniversalString",
	TagBMPString:       "BMPString",
}

// TypeName returns the ASN.1 type name of a universal tag such as
// "OCTET STRING". For other tags or unknown universal tags the result of
// t.String() is returned.
func (t Tag) TypeName() string {
	if t.Class == ClassUniversal && t.Number < uint64(len(universalNames)) && universalNames[t.Number] != "" {
		return universalNames[t.Number]
	}
	return t.String()
}
