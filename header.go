// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"slices"

	"codello.dev/berval/internal/vlq"
)

// LengthIndefinite is the content length of a [Header] that uses the
// constructed indefinite-length format. The content of such an encoding is
// terminated by an end-of-contents marker.
const LengthIndefinite = -1

// Header represents the identifier and length octets of an encoded data value.
//
// A Header is either constructed in memory via [NewHeader] or decoded from a
// stream. A decoded Header keeps the exact octets that were read and
// reproduces them verbatim when encoded again, since BER permits several
// encodings of the same tag and length. Only decoded headers can have the
// length [LengthIndefinite].
type Header struct {
	tag    Tag
	form   Form
	length int
	raw    []byte // octets as read, nil for headers created via NewHeader
	offset int64  // offset in the stream where the header was read
}

// NewHeader creates a header for a data value with the given tag, form and
// content length. The encoding of the header is computed on demand and always
// uses the minimal form. NewHeader panics if length is negative.
func NewHeader(tag Tag, form Form, length int) Header {
	if length < 0 {
		panic("berval: negative content length")
	}
	return Header{tag: tag, form: form, length: length}
}

// Tag returns the tag of h.
func (h Header) Tag() Tag { return h.tag }

// Form returns whether h introduces a primitive or constructed encoding.
func (h Header) Form() Form { return h.form }

// Length returns the number of content octets following h, or
// [LengthIndefinite].
func (h Header) Length() int { return h.length }

// Offset returns the offset at which a decoded header was read. It is 0 for
// headers created via [NewHeader].
func (h Header) Offset() int64 { return h.offset }

// IsEOC reports whether h is an end-of-contents marker. The marker consists of
// exactly two zero octets, a header with a long-form length is not a marker.
func (h Header) IsEOC() bool {
	return h.tag == TagEOC && h.form == Primitive && h.length == 0 && h.Size() == 2
}

// Size returns the number of octets in the encoding of h.
func (h Header) Size() int {
	if h.raw != nil {
		return len(h.raw)
	}
	l := 1
	if h.tag.Number >= 31 {
		l += vlq.Size(h.tag.Number)
	}
	l++
	if h.length > 127 {
		l += (bits.Len(uint(h.length)) + 7) / 8
	}
	return l
}

// Bytes returns the encoding of h. For decoded headers these are the octets
// that were read.
func (h Header) Bytes() []byte {
	if h.raw != nil {
		return slices.Clone(h.raw)
	}
	return h.AppendTo(nil)
}

// AppendTo appends the encoding of h to dst and returns the extended slice.
func (h Header) AppendTo(dst []byte) []byte {
	if h.raw != nil {
		return append(dst, h.raw...)
	}
	return appendHeader(dst, h.tag, h.form, h.length)
}

// Encode writes the encoding of h to w.
func (h Header) Encode(w io.Writer) error {
	_, err := w.Write(h.AppendTo(make([]byte, 0, h.Size())))
	return err
}

// Validate returns an error if the tag of h is not the expected tag. The error
// is an [*InvalidBERError] wrapping a [*TagMismatchError].
func (h Header) Validate(tag Tag) error {
	if h.tag == tag {
		return nil
	}
	return invalid(h.offset, &TagMismatchError{Expected: tag, Found: h.tag, ExpectedForm: h.form, FoundForm: h.form})
}

// ValidateForm works like [Header.Validate] but also checks that h uses the
// given form.
func (h Header) ValidateForm(tag Tag, form Form) error {
	if h.tag == tag && h.form == form {
		return nil
	}
	return invalid(h.offset, &TagMismatchError{Expected: tag, Found: h.tag, ExpectedForm: form, FoundForm: h.form, CheckForm: true})
}

// appendHeader appends the minimal encoding of a header to dst.
func appendHeader(dst []byte, tag Tag, form Form, length int) []byte {
	b := byte(tag.Class&0b11) << 6
	if form == Constructed {
		b |= 0x20
	}
	if tag.Number < 31 {
		dst = append(dst, b|byte(tag.Number))
	} else {
		dst = append(dst, b|0x1f)
		dst = vlq.Append(dst, tag.Number)
	}

	switch {
	case length == LengthIndefinite:
		dst = append(dst, 0x80)
	case length < 128:
		dst = append(dst, byte(length))
	default:
		n := (bits.Len(uint(length)) + 7) / 8
		dst = append(dst, 0x80|byte(n))
		for i := n - 1; i >= 0; i-- {
			dst = append(dst, byte(length>>(uint(i)*8)))
		}
	}
	return dst
}

// recorder keeps a copy of every byte read from r.
type recorder struct {
	r   io.ByteReader
	raw []byte
}

func (r *recorder) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err == nil {
		r.raw = append(r.raw, b)
	}
	return b, err
}

var (
	errReservedLength   = fmt.Errorf("%w: reserved length octet 0xFF", ErrInvalidLength)
	errLengthTooLarge   = fmt.Errorf("%w: length too large", ErrInvalidLength)
	errIndefinitePrim   = fmt.Errorf("%w: indefinite length on primitive encoding", ErrInvalidLength)
	errTagNumberTooLong = errors.New("tag number too large")
)

// decodeHeader reads the identifier and length octets of a data value encoding
// from r. If the encoding is valid, decodeHeader does not read any bytes past
// the header.
//
// If r returns io.EOF on the first read, the returned error will be io.EOF as
// well. An io.EOF after the first byte is reported as io.ErrUnexpectedEOF.
// Errors that indicate invalid data wrap [ErrInvalidLength] or are one of the
// errors of the vlq package. Other errors from r are returned unchanged.
func decodeHeader(r io.ByteReader) (h Header, err error) {
	rec := &recorder{r: r}
	h, err = decodeHeaderFrom(rec)
	h.raw = rec.raw
	return h, err
}

func decodeHeaderFrom(r io.ByteReader) (h Header, err error) {
	b, err := r.ReadByte()
	if err != nil {
		return h, err
	}
	h.tag = Tag{Class: Class(b >> 6), Number: uint64(b & 0x1f)}
	if b&0x20 != 0 {
		h.form = Constructed
	}

	// If the bottom five bits are set, then the tag number is base 128
	// encoded afterward
	if b&0x1f == 0x1f {
		h.tag.Number, err = vlq.Read(r, 63)
		if err == io.EOF {
			return h, io.ErrUnexpectedEOF
		} else if errors.Is(err, vlq.ErrOverflow) {
			return h, errTagNumberTooLong
		} else if err != nil {
			return h, err
		}
	}

	if b, err = r.ReadByte(); err != nil {
		return h, noEOF(err)
	}
	switch {
	case b&0x80 == 0:
		// The length is encoded in the bottom 7 bits.
		h.length = int(b)
	case b == 0x80:
		if h.form == Primitive {
			return h, errIndefinitePrim
		}
		h.length = LengthIndefinite
	case b == 0xff:
		return h, errReservedLength
	default:
		// Bottom 7 bits give the number of length bytes to follow.
		numBytes := int(b & 0x7f)
		for range numBytes {
			if b, err = r.ReadByte(); err != nil {
				return h, noEOF(err)
			}
			if h.length > math.MaxInt>>8 {
				return h, errLengthTooLarge
			}
			h.length = h.length<<8 | int(b)
		}
	}
	return h, nil
}

// noEOF converts io.EOF into io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
