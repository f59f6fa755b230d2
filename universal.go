// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

// universalTemplates maps universal tag numbers to the templates decoding
// them. SEQUENCE and SET contents are captured as [Any] values.
var universalTemplates = [...]Template{
	TagBoolean:         BooleanTemplate{},
	TagInteger:         IntegerTemplate{},
	TagBitString:       BitStringTemplate{},
	TagOctetString:     OctetStringTemplate{},
	TagNull:            NullTemplate{},
	TagOID:             ObjectIdentifierTemplate{},
	TagEnumerated:      EnumeratedTemplate{},
	TagUTF8String:      StringTemplate{UTF8Charset},
	TagSequence:        SequenceOf(AnyTemplate{}),
	TagSet:             SetOf(AnyTemplate{}),
	TagNumericString:   StringTemplate{NumericCharset},
	TagPrintableString: StringTemplate{PrintableCharset},
	TagTeletexString:   StringTemplate{TeletexCharset},
	TagIA5String:       StringTemplate{IA5Charset},
	TagUTCTime:         UTCTimeTemplate{},
	TagGeneralizedTime: GeneralizedTimeTemplate{},
	TagVisibleString:   StringTemplate{VisibleCharset},
	TagUniversalString: StringTemplate{UniversalCharset},
	TagBMPString:       StringTemplate{BMPCharset},
}

// UniversalTemplate returns the template for values with the given universal
// tag. ok is false if tag is not a universal tag supported by this package.
func UniversalTemplate(tag Tag) (t Template, ok bool) {
	if tag.Class != ClassUniversal || tag.Number >= uint64(len(universalTemplates)) {
		return nil, false
	}
	t = universalTemplates[tag.Number]
	return t, t != nil
}
