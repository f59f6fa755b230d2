// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"errors"
	"io"
	"time"
)

//region [UNIVERSAL 23] UTCTime

// UTCTime represents the corresponding ASN.1 type. It is always encoded as
// YYMMDDhhmmssZ in UTC. Two-digit years below 70 are interpreted as 20xx,
// so only years from 1970 to 2069 can be encoded.
//
// See also section 47 of Rec. ITU-T X.680.
type UTCTime time.Time

// Time returns t as a [time.Time].
func (t UTCTime) Time() time.Time { return time.Time(t) }

// IsValid reports whether the year of t is between 1970 and 2069.
func (t UTCTime) IsValid() bool {
	year := time.Time(t).UTC().Year()
	return year >= 1970 && year < 2070
}

// String returns the DER representation of t.
func (t UTCTime) String() string {
	tt := time.Time(t).UTC()
	b := make([]byte, 0, 13)
	b = appendN(b, tt.Year()%100, 2)
	b = appendN(b, int(tt.Month()), 2)
	b = appendN(b, tt.Day(), 2)
	b = appendN(b, tt.Hour(), 2)
	b = appendN(b, tt.Minute(), 2)
	b = appendN(b, tt.Second(), 2)
	return string(append(b, 'Z'))
}

func (t UTCTime) Tag() Tag { return Universal(TagUTCTime) }

func (t UTCTime) Encode(w io.Writer) error { return writeValue(w, t, t.Tag()) }

func (t UTCTime) EncodeTagged(tag Tag, w io.Writer) error { return writeValue(w, t, tag) }

func (t UTCTime) appendTo(dst []byte, tag Tag) ([]byte, error) {
	if !t.IsValid() {
		return nil, &EncodeError{t, errors.New("year out of range for UTCTime")}
	}
	return appendTLV(dst, tag, Primitive, []byte(t.String())), nil
}

// UTCTimeTemplate decodes a [UTCTime]. The accepted format is
// YYMMDDhhmm[ss] followed by Z or a +hhmm or -hhmm offset.
type UTCTimeTemplate struct{}

func (UTCTimeTemplate) Match(tag Tag) bool { return tag == Universal(TagUTCTime) }

func (t UTCTimeTemplate) Decode(r *Reader) (Value, error) {
	return t.DecodeTagged(Universal(TagUTCTime), r)
}

func (UTCTimeTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	h, chunks, err := r.readString(tag, Universal(TagUTCTime))
	if err != nil {
		return nil, err
	}
	tt, err := parseUTCTime(joinChunks(chunks))
	if err != nil {
		return nil, invalid(h.offset, err)
	}
	return UTCTime(tt), nil
}

var (
	errInvalidUTCTime         = errors.New("invalid UTCTime")
	errInvalidGeneralizedTime = errors.New("invalid GeneralizedTime")
)

func parseUTCTime(s string) (time.Time, error) {
	p := timeParser{s: s}
	year := p.field(2, 0, 99)
	if year < 70 {
		year += 2000
	} else {
		year += 1900
	}
	month, day, hour, minute := p.field(2, 1, 12), p.field(2, 1, 31), p.field(2, 0, 23), p.field(2, 0, 59)
	second := 0
	if p.digitsFollow() {
		second = p.field(2, 0, 59)
	}
	loc := p.zone(true)
	if !p.done() {
		return time.Time{}, errInvalidUTCTime
	}
	ret := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	if ret.Day() != day {
		return time.Time{}, errInvalidUTCTime
	}
	return ret, nil
}

//endregion

//region [UNIVERSAL 24] GeneralizedTime

// GeneralizedTime represents the corresponding ASN.1 type. It is always
// encoded as YYYYMMDDhhmmssZ in UTC, fractional seconds are not encoded. Only
// years from 0 to 9999 can be encoded.
//
// See also section 46 of Rec. ITU-T X.680.
type GeneralizedTime time.Time

// Time returns t as a [time.Time].
func (t GeneralizedTime) Time() time.Time { return time.Time(t) }

// IsValid reports if the year of t is between 0 and 9999.
func (t GeneralizedTime) IsValid() bool {
	year := time.Time(t).UTC().Year()
	return year >= 0 && year <= 9999
}

// String returns the DER representation of t.
func (t GeneralizedTime) String() string {
	tt := time.Time(t).UTC()
	b := make([]byte, 0, 15)
	b = appendN(b, tt.Year(), 4)
	b = appendN(b, int(tt.Month()), 2)
	b = appendN(b, tt.Day(), 2)
	b = appendN(b, tt.Hour(), 2)
	b = appendN(b, tt.Minute(), 2)
	b = appendN(b, tt.Second(), 2)
	return string(append(b, 'Z'))
}

func (t GeneralizedTime) Tag() Tag { return Universal(TagGeneralizedTime) }

func (t GeneralizedTime) Encode(w io.Writer) error { return writeValue(w, t, t.Tag()) }

func (t GeneralizedTime) EncodeTagged(tag Tag, w io.Writer) error { return writeValue(w, t, tag) }

func (t GeneralizedTime) appendTo(dst []byte, tag Tag) ([]byte, error) {
	if !t.IsValid() {
		return nil, &EncodeError{t, errors.New("year out of range for GeneralizedTime")}
	}
	return appendTLV(dst, tag, Primitive, []byte(t.String())), nil
}

// GeneralizedTimeTemplate decodes a [GeneralizedTime]. The accepted format is
// YYYYMMDDhhmm[ss[.f]] optionally followed by Z or a +hhmm or -hhmm offset.
// The fraction may be separated by a period or a comma. Times without a zone
// are interpreted in the local time zone.
type GeneralizedTimeTemplate struct{}

func (GeneralizedTimeTemplate) Match(tag Tag) bool { return tag == Universal(TagGeneralizedTime) }

func (t GeneralizedTimeTemplate) Decode(r *Reader) (Value, error) {
	return t.DecodeTagged(Universal(TagGeneralizedTime), r)
}

func (GeneralizedTimeTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	h, chunks, err := r.readString(tag, Universal(TagGeneralizedTime))
	if err != nil {
		return nil, err
	}
	tt, err := parseGeneralizedTime(joinChunks(chunks))
	if err != nil {
		return nil, invalid(h.offset, err)
	}
	return GeneralizedTime(tt), nil
}

func parseGeneralizedTime(s string) (time.Time, error) {
	p := timeParser{s: s}
	year := p.field(4, 0, 9999)
	month, day, hour, minute := p.field(2, 1, 12), p.field(2, 1, 31), p.field(2, 0, 23), p.field(2, 0, 59)
	second, nanos := 0, 0
	if p.digitsFollow() {
		second = p.field(2, 0, 59)
		nanos = p.fraction()
	}
	loc := p.zone(false)
	if !p.done() {
		return time.Time{}, errInvalidGeneralizedTime
	}
	ret := time.Date(year, time.Month(month), day, hour, minute, second, nanos, loc)
	if ret.Day() != day {
		return time.Time{}, errInvalidGeneralizedTime
	}
	return ret, nil
}

//endregion

// joinChunks concatenates the chunks of a string encoding.
func joinChunks(chunks [][]byte) string {
	if len(chunks) == 1 {
		return bytesString(chunks[0])
	}
	var n int
	for _, c := range chunks {
		n += len(c)
	}
	b := make([]byte, 0, n)
	for _, c := range chunks {
		b = append(b, c...)
	}
	return bytesString(b)
}

// timeParser parses the fields of a time string from left to right. After the
// first error all further fields are reported as 0 and done returns false.
type timeParser struct {
	s   string
	bad bool
}

// field parses an n digit number that must be between lo and hi.
func (p *timeParser) field(n, lo, hi int) int {
	v := atoiN(p.s, n)
	if p.bad || v < lo || v > hi {
		p.bad = true
		return 0
	}
	p.s = p.s[n:]
	return v
}

// digitsFollow reports whether the next two characters are digits.
func (p *timeParser) digitsFollow() bool {
	return !p.bad && atoiN(p.s, 2) >= 0
}

// fraction parses optional fractional seconds.
func (p *timeParser) fraction() int {
	if p.bad || len(p.s) == 0 || p.s[0] != '.' && p.s[0] != ',' {
		return 0
	}
	i, nanos, unit := 1, 0, int(time.Second)
	for ; i < len(p.s) && '0' <= p.s[i] && p.s[i] <= '9'; i++ {
		unit /= 10
		nanos += int(p.s[i]-'0') * unit
	}
	if i == 1 {
		p.bad = true
		return 0
	}
	p.s = p.s[i:]
	return nanos
}

// zone parses a zone designator. If the zone is not required and missing, the
// local time zone is returned.
func (p *timeParser) zone(required bool) *time.Location {
	if p.bad {
		return time.UTC
	}
	if len(p.s) == 0 {
		p.bad = required
		return time.Local
	}
	switch p.s[0] {
	case 'Z':
		p.s = p.s[1:]
		return time.UTC
	case '+', '-':
		sign := 44 - int(p.s[0]) // '+' is 43, '-' is 45
		p.s = p.s[1:]
		hour, minute := p.field(2, 0, 23), p.field(2, 0, 59)
		return time.FixedZone("", sign*(hour*3600+minute*60))
	}
	p.bad = true
	return time.UTC
}

// done reports whether the whole string was parsed without errors.
func (p *timeParser) done() bool {
	return !p.bad && len(p.s) == 0
}

// atoiN parses the first n characters of s as a decimal number. It returns -1
// if s is too short or contains a non-digit.
func atoiN(s string, n int) (i int) {
	if len(s) < n {
		return -1
	}
	for j := range n {
		if s[j] < '0' || '9' < s[j] {
			return -1
		}
		i = i*10 + int(s[j]-'0')
	}
	return i
}

// appendN appends the decimal representation of i zero padded or truncated to
// exactly n digits.
func appendN(b []byte, i, n int) []byte {
	if i < 0 {
		i = -i
	}
	for j := n - 1; j >= 0; j-- {
		b = append(b, 0)
	}
	for j := len(b) - 1; j >= len(b)-n; j-- {
		b[j] = '0' + byte(i%10)
		i /= 10
	}
	return b
}
