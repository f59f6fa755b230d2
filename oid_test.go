// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"bytes"
	"slices"
	"testing"

	"gopkg.in/stretchr/testify.v1/assert"
)

func TestObjectIdentifierCodec(t *testing.T) {
	testCodec(t, ObjectIdentifierTemplate{}, map[string]testCase{
		"RSA":       {val: OIDRSADSI, data: []byte{0x06, 0x06, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D}},
		"SingleArc": {val: MustObjectIdentifier(1, 2, 3), data: []byte{0x06, 0x02, 0x2A, 0x03}},
		"JointISO":  {val: MustObjectIdentifier(2, 999, 3), data: []byte{0x06, 0x03, 0x88, 0x37, 0x03}},
		"ZeroArcs":  {val: MustObjectIdentifier(0, 0), data: []byte{0x06, 0x01, 0x00}},
	}, nil, map[string]testCase{
		"Empty":      {data: []byte{0x06, 0x00}, wantErr: &InvalidBERError{}},
		"Truncated":  {data: []byte{0x06, 0x02, 0x2A, 0x86}, wantErr: &InvalidBERError{}},
		"NonMinimal": {data: []byte{0x06, 0x03, 0x2A, 0x80, 0x01}, wantErr: &InvalidBERError{}},
		"TooLarge": {data: []byte{0x06, 0x0B, 0x2A,
			0x81, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x00}, wantErr: &InvalidBERError{}},
	})
}

func TestParseObjectIdentifier(t *testing.T) {
	tests := map[string]struct {
		s       string
		want    []uint64
		wantErr bool
	}{
		"Valid":       {"1.2.840.113549", []uint64{1, 2, 840, 113549}, false},
		"JointISO":    {"2.100.3", []uint64{2, 100, 3}, false},
		"Empty":       {"", nil, true},
		"OneArc":      {"1", nil, true},
		"FirstArc":    {"3.1", nil, true},
		"SecondArc":   {"1.40", nil, true},
		"NotANumber":  {"1.2.x", nil, true},
		"Negative":    {"1.2.-3", nil, true},
		"TrailingDot": {"1.2.", nil, true},
		"ArcTooLarge": {"1.2.9223372036854775808", nil, true},
		"MaxArc":      {"1.2.9223372036854775807", []uint64{1, 2, 1<<63 - 1}, false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseObjectIdentifier(tt.s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseObjectIdentifier() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !slices.Equal(got.Arcs(), tt.want) {
				t.Errorf("ParseObjectIdentifier() = %v, want %v", got, tt.want)
			}
			if err == nil && got.String() != tt.s {
				t.Errorf("String() = %q, want %q", got.String(), tt.s)
			}
		})
	}
}

func TestObjectIdentifier_SubBranch(t *testing.T) {
	base := MustObjectIdentifier(1, 2, 840)
	a := base.SubBranch(113549)
	b := base.SubBranch(10045)
	assert.Equal(t, "1.2.840.113549", a.String())
	assert.Equal(t, "1.2.840.10045", b.String())
	assert.Equal(t, "1.2.840", base.String())
	assert.True(t, a.HasPrefix(base))
	assert.False(t, base.HasPrefix(a))
	assert.True(t, OIDSHA256WithRSA.HasPrefix(OIDPKCS1))
}

func TestObjectIdentifier_rawPreserved(t *testing.T) {
	// Decoding keeps the content octets, so the value re-encodes identically.
	data := []byte{0x06, 0x03, 0x55, 0x04, 0x03}
	v, err := Unmarshal(data, ObjectIdentifierTemplate{})
	if !assert.NoError(t, err) {
		return
	}
	oid := v.(ObjectIdentifier)
	assert.True(t, oid.Equal(OIDCommonName))
	enc, err := Marshal(oid)
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(data, enc))
}
