// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"bytes"
	"errors"
	"io"
	"math"
	"math/big"
	"reflect"
	"testing"
)

// testCase represents an encoding or decoding test case. For encoding cases
// marshaling val should result in data. For decoding cases decoding data with
// the template under test should result in a value with the same type and DER
// encoding as val.
type testCase struct {
	val     Value
	data    []byte
	wantErr error
}

// testCodec runs the tests specified as arguments. Common tests are tested for
// both marshaling and unmarshalling. The marshal and unmarshal tests are only
// run for the respective direction.
func testCodec(t *testing.T, tmpl Template, common, marshal, unmarshal map[string]testCase) {
	t.Helper()
	t.Run("Marshal", func(t *testing.T) {
		testMarshal(t, common)
		testMarshal(t, marshal)
	})
	t.Run("Unmarshal", func(t *testing.T) {
		testUnmarshal(t, tmpl, common)
		testUnmarshal(t, tmpl, unmarshal)
	})
}

// matchErr reports whether err matches want. Error types with structure are
// matched by type, sentinel errors by identity.
func matchErr(err, want error) bool {
	switch want.(type) {
	case *EncodeError, *InvalidBERError, *TagMismatchError, *MissingElementError:
		target := reflect.New(reflect.TypeOf(want))
		//goland:noinspection GoErrorsAs
		return errors.As(err, target.Interface())
	}
	return errors.Is(err, want)
}

func testMarshal(t *testing.T, tests map[string]testCase) {
	t.Helper()
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Marshal(tc.val)
			if tc.wantErr != nil {
				if !matchErr(err, tc.wantErr) {
					t.Errorf("Marshal() error = %v, wantErr = %v", err, tc.wantErr)
				}
				return
			} else if err != nil {
				t.Fatalf("Marshal() error = %v, wantErr = nil", err)
			}
			if !bytes.Equal(got, tc.data) {
				t.Errorf("Marshal() = % X, want % X", got, tc.data)
			}
			var buf bytes.Buffer
			if err = tc.val.Encode(&buf); err != nil || !bytes.Equal(buf.Bytes(), got) {
				t.Errorf("Encode() = % X, %v, want % X", buf.Bytes(), err, got)
			}
		})
	}
}

func testUnmarshal(t *testing.T, tmpl Template, tests map[string]testCase) {
	t.Helper()
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Unmarshal(tc.data, tmpl)
			if tc.wantErr != nil {
				if !matchErr(err, tc.wantErr) {
					t.Errorf("Unmarshal() error = %v, wantErr = %v", err, tc.wantErr)
				}
				var invalid *InvalidBERError
				if !errors.As(err, &invalid) {
					t.Errorf("Unmarshal() error = %v, want *InvalidBERError", err)
				}
				return
			} else if err != nil {
				t.Fatalf("Unmarshal() error = %v, wantErr = nil", err)
			}
			if reflect.TypeOf(got) != reflect.TypeOf(tc.val) {
				t.Fatalf("Unmarshal() = %T, want %T", got, tc.val)
			}
			if !Equal(got, tc.val) {
				t.Errorf("Unmarshal() = %v, want %v", got, tc.val)
			}
		})
	}
}

//region [UNIVERSAL 1] BOOLEAN

func TestBooleanCodec(t *testing.T) {
	testCodec(t, BooleanTemplate{}, map[string]testCase{
		"True":  {val: Boolean(true), data: []byte{0x01, 0x01, 0xff}},
		"False": {val: Boolean(false), data: []byte{0x01, 0x01, 0x00}},
	}, nil, map[string]testCase{
		"AnyTrue":     {data: []byte{0x01, 0x01, 0xfa}, val: Boolean(true)},
		"Empty":       {data: []byte{0x01, 0x00}, wantErr: &InvalidBERError{}},
		"TooLong":     {data: []byte{0x01, 0x02, 0xff, 0x00}, wantErr: &InvalidBERError{}},
		"Constructed": {data: []byte{0x21, 0x00}, wantErr: ErrTagMismatch},
		"Integer":     {data: []byte{0x02, 0x01, 0x01}, wantErr: &TagMismatchError{}},
	})
}

//endregion

//region [UNIVERSAL 2] INTEGER

func TestIntegerCodec(t *testing.T) {
	big64, _ := new(big.Int).SetString("18446744073709551616", 10) // 2^64
	testCodec(t, IntegerTemplate{}, map[string]testCase{
		"Zero":          {val: NewInteger(0), data: []byte{0x02, 0x01, 0x00}},
		"One":           {val: NewInteger(1), data: []byte{0x02, 0x01, 0x01}},
		"MinusOne":      {val: NewInteger(-1), data: []byte{0x02, 0x01, 0xFF}},
		"127":           {val: NewInteger(127), data: []byte{0x02, 0x01, 0x7F}},
		"128":           {val: NewInteger(128), data: []byte{0x02, 0x02, 0x00, 0x80}},
		"256":           {val: NewInteger(256), data: []byte{0x02, 0x02, 0x01, 0x00}},
		"-128":          {val: NewInteger(-128), data: []byte{0x02, 0x01, 0x80}},
		"-129":          {val: NewInteger(-129), data: []byte{0x02, 0x02, 0xFF, 0x7F}},
		"LargeNegative": {val: NewInteger(-258), data: []byte{0x02, 0x02, 0xFE, 0xFE}},
		"MinInt64":      {val: NewInteger(math.MinInt64), data: []byte{0x02, 0x08, 0x80, 0, 0, 0, 0, 0, 0, 0}},
		"Big":           {val: NewBigInteger(big64), data: []byte{0x02, 0x09, 0x01, 0, 0, 0, 0, 0, 0, 0, 0}},
	}, nil, map[string]testCase{
		"NonMinimal":   {data: []byte{0x02, 0x02, 0x00, 0x05}, val: NewInteger(5)},
		"Empty":        {data: []byte{0x02, 0x00}, wantErr: ErrEmptyInteger},
		"Truncated":    {data: []byte{0x02, 0x02, 0x01}, wantErr: io.ErrUnexpectedEOF},
		"Boolean":      {data: []byte{0x01, 0x01, 0xFF}, wantErr: ErrTagMismatch},
		"TrailingData": {data: []byte{0x02, 0x01, 0x05, 0x00}, wantErr: ErrTrailingData},
		"NoData":       {data: nil, wantErr: io.EOF},
	})
}

func TestInteger_Int64(t *testing.T) {
	tests := map[string]struct {
		val    Integer
		want   int64
		wantOk bool
	}{
		"Zero":     {Integer{}, 0, true},
		"MaxInt64": {NewInteger(math.MaxInt64), math.MaxInt64, true},
		"TooLarge": {NewBigInteger(new(big.Int).Lsh(big.NewInt(1), 63)), 0, false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := tt.val.Int64()
			if ok != tt.wantOk || ok && got != tt.want {
				t.Errorf("Int64() = %d, %v, want %d, %v", got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestNewBigInteger_copies(t *testing.T) {
	n := big.NewInt(5)
	i := NewBigInteger(n)
	n.SetInt64(6)
	if got := i.String(); got != "5" {
		t.Errorf("NewBigInteger() shares its argument, String() = %s", got)
	}
}

//endregion

//region [UNIVERSAL 5] NULL

func TestNullCodec(t *testing.T) {
	testCodec(t, NullTemplate{}, map[string]testCase{
		"Null": {val: Null{}, data: []byte{0x05, 0x00}},
	}, nil, map[string]testCase{
		"NonEmpty": {data: []byte{0x05, 0x01, 0x00}, wantErr: &InvalidBERError{}},
	})
}

//endregion

//region [UNIVERSAL 10] ENUMERATED

func TestEnumeratedCodec(t *testing.T) {
	testCodec(t, EnumeratedTemplate{}, map[string]testCase{
		"Three":    {val: NewEnumerated(3), data: []byte{0x0A, 0x01, 0x03}},
		"Negative": {val: NewEnumerated(-2), data: []byte{0x0A, 0x01, 0xFE}},
	}, nil, map[string]testCase{
		"Integer": {data: []byte{0x02, 0x01, 0x03}, wantErr: ErrTagMismatch},
		"Empty":   {data: []byte{0x0A, 0x00}, wantErr: ErrEmptyInteger},
	})
}

//endregion

//region [UNIVERSAL 4] OCTET STRING

func TestOctetStringCodec(t *testing.T) {
	testCodec(t, OctetStringTemplate{}, map[string]testCase{
		"Empty": {val: OctetString{}, data: []byte{0x04, 0x00}},
		"Bytes": {val: OctetString{0x00, 0xFF, 0xCC}, data: []byte{0x04, 0x03, 0x00, 0xFF, 0xCC}},
	}, nil, map[string]testCase{
		"Constructed": {data: []byte{0x24, 0x08,
			0x04, 0x02, 0x00, 0xFF,
			0x04, 0x02, 0xCC, 0xDD}, val: OctetString{0x00, 0xFF, 0xCC, 0xDD}},
		"Indefinite": {data: []byte{0x24, 0x80,
			0x04, 0x01, 0xAA,
			0x04, 0x01, 0xBB,
			0x00, 0x00}, val: OctetString{0xAA, 0xBB}},
		"Nested": {data: []byte{0x24, 0x80,
			0x24, 0x03, 0x04, 0x01, 0xAA,
			0x04, 0x00,
			0x00, 0x00}, val: OctetString{0xAA}},
		"WrongChunk":      {data: []byte{0x24, 0x03, 0x02, 0x01, 0x00}, wantErr: ErrTagMismatch},
		"ChunkOverrun":    {data: []byte{0x24, 0x03, 0x04, 0x02, 0xAA, 0xBB}, wantErr: ErrOverrun},
		"MissingEOC":      {data: []byte{0x24, 0x80, 0x04, 0x01, 0xAA}, wantErr: io.ErrUnexpectedEOF},
		"NonCanonicalEOC": {data: []byte{0x24, 0x80, 0x04, 0x01, 0xAA, 0x00, 0x81, 0x00}, wantErr: ErrTagMismatch},
	})
}

func TestOctetStringTemplate_Wrap(t *testing.T) {
	errWrap := errors.New("not an integer")
	tmpl := OctetStringTemplate{Wrap: func(b []byte) (Value, error) {
		v, err := Unmarshal(b, IntegerTemplate{})
		if err != nil {
			return nil, errWrap
		}
		return v, nil
	}}

	v, err := Unmarshal([]byte{0x04, 0x03, 0x02, 0x01, 0x2A}, tmpl)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if i, ok := v.(Integer); !ok || !i.Equal(NewInteger(42)) {
		t.Errorf("Unmarshal() = %v, want INTEGER 42", v)
	}

	_, err = Unmarshal([]byte{0x04, 0x01, 0x00}, tmpl)
	var invalid *InvalidBERError
	if !errors.As(err, &invalid) || !errors.Is(err, errWrap) {
		t.Errorf("Unmarshal() error = %v, want *InvalidBERError wrapping %v", err, errWrap)
	}
}

//endregion

//region [UNIVERSAL 3] BIT STRING

func TestBitStringCodec(t *testing.T) {
	testCodec(t, BitStringTemplate{}, map[string]testCase{
		"Empty":    {val: BitString{Bytes: []byte{}}, data: []byte{0x03, 0x01, 0x00}},
		"FullByte": {val: BitString{Bytes: []byte{0xF1}}, data: []byte{0x03, 0x02, 0x00, 0xF1}},
		"Pad7":     {val: BitString{Bytes: []byte{0xF1, 0x80}, PadCount: 7}, data: []byte{0x03, 0x03, 0x07, 0xF1, 0x80}},
	}, map[string]testCase{
		"Flags":          {val: BitStringFromFlags([]bool{true, false, true}), data: []byte{0x03, 0x02, 0x05, 0xA0}},
		"TrimBytes":      {val: BitStringFromFlags([]bool{true, false, false, false, false, false, false, false, false}), data: []byte{0x03, 0x02, 0x07, 0x80}},
		"NoFlags":        {val: BitStringFromFlags([]bool{false, false}), data: []byte{0x03, 0x01, 0x00}},
		"Preserved":      {val: BitString{Bytes: []byte{0x80, 0x00}}, data: []byte{0x03, 0x03, 0x00, 0x80, 0x00}},
		"InvalidPad":     {val: BitString{Bytes: []byte{0x80}, PadCount: 8}, wantErr: &EncodeError{}},
		"PadWithoutData": {val: BitString{PadCount: 1}, wantErr: &EncodeError{}},
	}, map[string]testCase{
		"Constructed": {data: []byte{0x23, 0x08,
			0x03, 0x02, 0x00, 0xF1,
			0x03, 0x02, 0x07, 0x80}, val: BitString{Bytes: []byte{0xF1, 0x80}, PadCount: 7}},
		"EmptyContent": {data: []byte{0x03, 0x00}, wantErr: &InvalidBERError{}},
		"PadTooLarge":  {data: []byte{0x03, 0x02, 0x08, 0x00}, wantErr: &InvalidBERError{}},
		"PadNoData":    {data: []byte{0x03, 0x01, 0x03}, wantErr: &InvalidBERError{}},
		"EarlyPad": {data: []byte{0x23, 0x08,
			0x03, 0x02, 0x04, 0xF0,
			0x03, 0x02, 0x00, 0x80}, wantErr: &InvalidBERError{}},
	})
}

func TestBitString_At(t *testing.T) {
	s := BitString{Bytes: []byte{0xA5, 0x80}, PadCount: 7}
	if s.Len() != 9 {
		t.Errorf("Len() = %d, want 9", s.Len())
	}
	want := []int{1, 0, 1, 0, 0, 1, 0, 1, 1, 0}
	for i, w := range want {
		if got := s.At(i); got != w {
			t.Errorf("At(%d) = %d, want %d", i, got, w)
		}
	}
	if got := s.String(); got != "10100101 1" {
		t.Errorf("String() = %q, want %q", got, "10100101 1")
	}
}

//endregion
