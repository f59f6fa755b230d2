// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vlq implements the base-128 [Variable-length quantity] encoding used
// by BER for long-form tag numbers and OBJECT IDENTIFIER arcs. A VLQ stores
// seven bits per byte, most significant group first, and uses the eighth bit
// to mark that more bytes follow.
//
// [Variable-length quantity]: https://en.wikipedia.org/wiki/Variable-length_quantity
package vlq

import (
	"errors"
	"io"
	"math/bits"
)

var (
	// ErrNotMinimal indicates that a VLQ started with a 0x80 byte.
	ErrNotMinimal = errors.New("base 128 integer is not minimally encoded")
	// ErrOverflow indicates that a VLQ needs more bits than permitted.
	ErrOverflow = errors.New("base 128 integer too large")
)

// Read parses a minimally encoded VLQ from r. The value may use at most
// maxBits significant bits, maxBits must not exceed 64.
//
// Read will only read bytes belonging to the encoded VLQ. If r returns io.EOF
// on the first read, the returned error will be io.EOF as well. An io.EOF in
// the middle of a VLQ is reported as io.ErrUnexpectedEOF.
func Read(r io.ByteReader, maxBits int) (ret uint64, err error) {
	b, err := r.ReadByte()
	if err != nil {
		// io.EOF stays io.EOF
		return 0, err
	}
	if b == 0x80 {
		return 0, ErrNotMinimal
	}

	ret = uint64(b & 0x7f)
	numBits := bits.Len8(b & 0x7f)
	for b&0x80 != 0 {
		if b, err = r.ReadByte(); err != nil {
			break
		}
		ret <<= 7
		ret |= uint64(b & 0x7f)
		numBits += 7
		if numBits > maxBits {
			return 0, ErrOverflow
		}
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return ret, err
}

// Size returns the number of bytes needed to encode n as a VLQ.
func Size(n uint64) int {
	if n == 0 {
		return 1
	}
	return (bits.Len64(n) + 6) / 7
}

// Append appends the VLQ encoding of n to dst and returns the extended slice.
func Append(dst []byte, n uint64) []byte {
	for j := Size(n) - 1; j >= 0; j-- {
		b := byte(n>>(uint(j)*7)) & 0x7f
		if j > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}

// Write encodes n as a VLQ into w. Any error returned by w is returned by this
// function.
func Write(w io.ByteWriter, n uint64) (int, error) {
	var buf [10]byte
	bs := Append(buf[:0], n)
	for i, b := range bs {
		if err := w.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(bs), nil
}
