// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"testing"

	"codello.dev/berval/internal/vlq"
)

func TestTag_String(t *testing.T) {
	tests := map[Tag]string{
		Universal(TagSequence): "[UNIVERSAL 16]",
		Application(17):        "[APPLICATION 17]",
		ContextSpecific(8):     "[8]",
		Private(1 << 40):       "[PRIVATE 1099511627776]",
	}
	for tag, want := range tests {
		t.Run(want, func(t *testing.T) {
			if got := tag.String(); got != want {
				t.Errorf("String() = %q, want %q", got, want)
			}
		})
	}
}

func TestTag_TypeName(t *testing.T) {
	tests := map[Tag]string{
		Universal(TagOctetString): "OCTET STRING",
		Universal(TagBMPString):   "BMPString",
		Universal(29):             "[UNIVERSAL 29]",
		Universal(1000):           "[UNIVERSAL 1000]",
		ContextSpecific(0):        "[0]",
	}
	for tag, want := range tests {
		t.Run(want, func(t *testing.T) {
			if got := tag.TypeName(); got != want {
				t.Errorf("TypeName() = %q, want %q", got, want)
			}
		})
	}
}

func TestHeader_Encode(t *testing.T) {
	tests := map[string]struct {
		Header
		want []byte
	}{
		"EndOfContents": {NewHeader(TagEOC, Primitive, 0), []byte{0x00, 0x00}},
		"UTF8String":    {NewHeader(Universal(TagUTF8String), Primitive, 5), []byte{0x0C, 0x05}},
		"LongTag":       {NewHeader(ContextSpecific(173), Constructed, 8), []byte{0xBF, 0x81, 0x2D, 0x08}},
		"Sequence":      {NewHeader(Universal(TagSequence), Constructed, 60), []byte{0x30, 60}},
		"LongSequence":  {NewHeader(Universal(TagSequence), Constructed, 746), []byte{0x30, 0x80 | 0x02, 0x02, 0xEA}},
		"Length128":     {NewHeader(Universal(TagOctetString), Primitive, 128), []byte{0x04, 0x81, 0x80}},
		"Tag31":         {NewHeader(Application(31), Primitive, 0), []byte{0x5F, 0x1F, 0x00}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.Header.Size(); got != len(tt.want) {
				t.Errorf("Size() = %v, want %v", got, len(tt.want))
			}
			var buf bytes.Buffer
			if err := tt.Header.Encode(&buf); err != nil {
				t.Errorf("Encode() error = %v, want nil", err)
			}
			if got := buf.Bytes(); !slices.Equal(tt.want, got) {
				t.Errorf("Encode() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestNewHeader_negativeLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("NewHeader() did not panic")
		}
	}()
	NewHeader(Universal(TagSequence), Constructed, LengthIndefinite)
}

func TestDecodeHeader(t *testing.T) {
	tests := map[string]struct {
		data       []byte
		extraBytes int
		tag        Tag
		form       Form
		length     int
		wantErr    error
	}{
		"EndOfContents":      {[]byte{0x00, 0x00}, 0, TagEOC, Primitive, 0, nil},
		"UTF8String":         {[]byte{0x0C, 0x05, 0x00}, 1, Universal(TagUTF8String), Primitive, 5, nil},
		"LongTag":            {[]byte{0xBF, 0x81, 0x2D, 0x08, 0x00, 0x00}, 2, ContextSpecific(173), Constructed, 8, nil},
		"Sequence":           {[]byte{0x30, 60}, 0, Universal(TagSequence), Constructed, 60, nil},
		"LongSequence":       {[]byte{0x30, 0x80 | 0x02, 0x02, 0xEA}, 0, Universal(TagSequence), Constructed, 746, nil},
		"IndefiniteSequence": {[]byte{0x30, 0x80}, 0, Universal(TagSequence), Constructed, LengthIndefinite, nil},
		"NonMinimalLength":   {[]byte{0x04, 0x81, 0x05}, 0, Universal(TagOctetString), Primitive, 5, nil},

		"EOF":                  {nil, 0, Tag{}, 0, 0, io.EOF},
		"ErrNoLength":          {[]byte{0x30}, 0, Tag{}, 0, 0, io.ErrUnexpectedEOF},
		"ErrShortTag":          {[]byte{0xBF, 0x81}, 0, Tag{}, 0, 0, io.ErrUnexpectedEOF},
		"ErrShortLength":       {[]byte{0x30, 0x80 | 0x02, 0x02}, 0, Tag{}, 0, 0, io.ErrUnexpectedEOF},
		"ErrReservedLength":    {[]byte{0x30, 0xFF}, 0, Tag{}, 0, 0, ErrInvalidLength},
		"ErrIndefinitePrim":    {[]byte{0x04, 0x80}, 0, Tag{}, 0, 0, ErrInvalidLength},
		"ErrLengthOverflow":    {[]byte{0x04, 0x89, 1, 0, 0, 0, 0, 0, 0, 0, 0}, 0, Tag{}, 0, 0, ErrInvalidLength},
		"ErrNonMinimalTag":     {[]byte{0x1F, 0x80, 0x01, 0x00}, 0, Tag{}, 0, 0, vlq.ErrNotMinimal},
		"ErrTagNumberTooLarge": {[]byte{0x1F, 0x81, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x00}, 0, Tag{}, 0, 0, errTagNumberTooLong},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := bytes.NewReader(tt.data)
			got, err := decodeHeader(r)
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil) != (err == nil) {
				t.Fatalf("decodeHeader() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.Tag() != tt.tag || got.Form() != tt.form || got.Length() != tt.length {
				t.Errorf("decodeHeader() = %v %v %d, want %v %v %d", got.Tag(), got.Form(), got.Length(), tt.tag, tt.form, tt.length)
			}
			if r.Len() != tt.extraBytes {
				t.Errorf("decodeHeader() did not consume the right amount of data. %d bytes left, want %d", r.Len(), tt.extraBytes)
			}
			if enc := got.Bytes(); !bytes.Equal(enc, tt.data[:len(tt.data)-tt.extraBytes]) {
				t.Errorf("Bytes() = % X, want the decoded octets % X", enc, tt.data[:len(tt.data)-tt.extraBytes])
			}
		})
	}
}

func TestHeader_Validate(t *testing.T) {
	h := NewHeader(Universal(TagBoolean), Primitive, 1)
	if err := h.Validate(Universal(TagBoolean)); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	err := h.ValidateForm(Universal(TagBoolean), Constructed)
	var mismatch *TagMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("ValidateForm() error = %v, want a *TagMismatchError", err)
	}
	if !mismatch.CheckForm || mismatch.FoundForm != Primitive {
		t.Errorf("ValidateForm() error = %#v", mismatch)
	}
	if !errors.Is(h.Validate(Universal(TagInteger)), ErrTagMismatch) {
		t.Errorf("Validate() error does not match ErrTagMismatch")
	}
}

func TestHeader_IsEOC(t *testing.T) {
	tests := map[string]struct {
		data []byte
		want bool
	}{
		"EndOfContents":     {[]byte{0x00, 0x00}, true},
		"LongFormLength":    {[]byte{0x00, 0x81, 0x00}, false},
		"Constructed":       {[]byte{0x20, 0x00}, false},
		"ContextSpecific0":  {[]byte{0x80, 0x00}, false},
		"NonEmptyUniversal": {[]byte{0x00, 0x01}, false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, err := decodeHeader(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("decodeHeader() error = %v", err)
			}
			if got := h.IsEOC(); got != tt.want {
				t.Errorf("IsEOC() = %v, want %v", got, tt.want)
			}
		})
	}
	if !NewHeader(TagEOC, Primitive, 0).IsEOC() {
		t.Errorf("IsEOC() = false for a header created by NewHeader")
	}
}
