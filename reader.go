// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"bytes"
	"errors"
	"io"
)

// MaxLookahead is the maximum number of bytes a [Reader] buffers in order to
// peek at the next header. Headers that do not fit cannot be peeked at.
const MaxLookahead = 32

// DefaultMaxDepth is the default limit for the nesting depth of constructed
// encodings a [Reader] accepts.
const DefaultMaxDepth = 128

// largeContent is the content length above which content octets are read
// incrementally instead of being allocated upfront.
const largeContent = 64 << 10

// Reader reads BER-encoded data from an underlying [io.Reader]. It adds a
// bounded lookahead for peeking at the next header, keeps track of the number
// of bytes consumed and limits the nesting depth of constructed encodings.
//
// A Reader never reads more bytes from the underlying reader than are needed
// by the values decoded from it. It does not close the underlying reader. A
// Reader is meant to be used by a single decoding goroutine.
type Reader struct {
	src io.Reader
	br  io.ByteReader // src if it implements io.ByteReader

	buf        [MaxLookahead]byte // bytes peeked but not consumed
	start, end int

	offset   int64
	depth    int
	maxDepth int

	ioErr error // last error of src other than io.EOF
}

// NewReader returns a new [Reader] reading from r. If r is already a *Reader it
// is returned unchanged.
func NewReader(r io.Reader) *Reader {
	if rr, ok := r.(*Reader); ok {
		return rr
	}
	br, _ := r.(io.ByteReader)
	return &Reader{src: r, br: br, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth changes the maximum nesting depth of constructed encodings. A
// value of 0 or less restores [DefaultMaxDepth].
func (r *Reader) SetMaxDepth(n int) {
	if n <= 0 {
		n = DefaultMaxDepth
	}
	r.maxDepth = n
}

// Offset returns the number of bytes consumed from r. Bytes that have only
// been peeked at are not counted.
func (r *Reader) Offset() int64 {
	return r.offset
}

// fill reads a single byte from the underlying reader.
func (r *Reader) fill() (b byte, err error) {
	if r.br != nil {
		b, err = r.br.ReadByte()
	} else {
		var p [1]byte
		_, err = io.ReadFull(r.src, p[:])
		b = p[0]
	}
	if err != nil && err != io.EOF {
		r.ioErr = err
	}
	return b, err
}

// ReadByte reads and consumes a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.start < r.end {
		b := r.buf[r.start]
		r.start++
		r.offset++
		return b, nil
	}
	b, err := r.fill()
	if err == nil {
		r.offset++
	}
	return b, err
}

// Read reads up to len(p) bytes into p.
func (r *Reader) Read(p []byte) (n int, err error) {
	if r.start < r.end {
		n = copy(p, r.buf[r.start:r.end])
		r.start += n
		r.offset += int64(n)
		return n, nil
	}
	n, err = r.src.Read(p)
	r.offset += int64(n)
	if err != nil && err != io.EOF {
		r.ioErr = err
	}
	return n, err
}

// ReadHeader reads and consumes the next header. If no bytes are left at the
// top level the returned error wraps io.EOF. Inside of a constructed encoding
// the end of the input is reported as io.ErrUnexpectedEOF.
func (r *Reader) ReadHeader() (Header, error) {
	off := r.offset
	h, err := decodeHeader(r)
	h.offset = off
	if err != nil {
		return h, r.wrapHeaderErr(off, err)
	}
	return h, nil
}

// PeekHeader returns the next header without consuming it. Peeking fails if the
// header is longer than [MaxLookahead] bytes.
func (r *Reader) PeekHeader() (Header, error) {
	if r.start > 0 {
		copy(r.buf[:], r.buf[r.start:r.end])
		r.end -= r.start
		r.start = 0
	}
	h, err := decodeHeader(&peeker{r: r})
	h.offset = r.offset
	if err != nil {
		return h, r.wrapHeaderErr(r.offset, err)
	}
	return h, nil
}

// peeker reads bytes into the lookahead buffer of r without consuming them.
type peeker struct {
	r *Reader
	i int
}

func (p *peeker) ReadByte() (byte, error) {
	r := p.r
	if r.start+p.i < r.end {
		b := r.buf[r.start+p.i]
		p.i++
		return b, nil
	}
	if r.end == len(r.buf) {
		return 0, ErrLookaheadExhausted
	}
	b, err := r.fill()
	if err != nil {
		return 0, err
	}
	r.buf[r.end] = b
	r.end++
	p.i++
	return b, nil
}

func (r *Reader) wrapHeaderErr(off int64, err error) error {
	if err == io.EOF && r.depth > 0 {
		err = io.ErrUnexpectedEOF
	}
	return r.wrapErr(off, err)
}

// wrapErr converts err into an *InvalidBERError at the given offset, unless it
// already is one or it is an error of the underlying reader.
func (r *Reader) wrapErr(off int64, err error) error {
	if err == nil {
		return nil
	}
	if r.ioErr != nil && errors.Is(err, r.ioErr) {
		return err
	}
	var e *InvalidBERError
	if errors.As(err, &e) {
		return err
	}
	return invalid(off, err)
}

// enter increments the nesting depth. The caller must call leave if enter
// returns nil.
func (r *Reader) enter(off int64) error {
	if r.depth >= r.maxDepth {
		return invalid(off, ErrTooDeep)
	}
	r.depth++
	return nil
}

func (r *Reader) leave() {
	r.depth--
}

// readContent reads exactly n content octets.
func (r *Reader) readContent(n int) ([]byte, error) {
	off := r.offset
	if n <= largeContent {
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, r.wrapErr(off, noEOF(err))
		}
		return buf, nil
	}
	var buf bytes.Buffer
	buf.Grow(largeContent)
	if _, err := io.CopyN(&buf, r, int64(n)); err != nil {
		return nil, r.wrapErr(off, noEOF(err))
	}
	return buf.Bytes(), nil
}

// readPrimitive reads a primitive data value encoding with the given tag and
// returns its header and content octets.
func (r *Reader) readPrimitive(tag Tag) (Header, []byte, error) {
	h, err := r.ReadHeader()
	if err != nil {
		return h, nil, err
	}
	if err = h.ValidateForm(tag, Primitive); err != nil {
		return h, nil, err
	}
	b, err := r.readContent(h.length)
	return h, b, err
}

// readString reads a data value encoding with the given tag that may use the
// primitive or the constructed encoding. The content octets of all primitive
// chunks are returned in order. Chunks of a constructed encoding must use the
// natural tag of the string type.
func (r *Reader) readString(tag, natural Tag) (Header, [][]byte, error) {
	h, err := r.ReadHeader()
	if err != nil {
		return h, nil, err
	}
	if err = h.Validate(tag); err != nil {
		return h, nil, err
	}
	if h.form == Primitive {
		b, err := r.readContent(h.length)
		return h, [][]byte{b}, err
	}
	chunks, err := r.readChunks(h, natural, nil)
	return h, chunks, err
}

// readChunks appends the primitive chunks of the constructed string encoding
// introduced by h to chunks.
func (r *Reader) readChunks(h Header, natural Tag, chunks [][]byte) ([][]byte, error) {
	if err := r.enter(h.offset); err != nil {
		return chunks, err
	}
	defer r.leave()

	start := r.offset
	for {
		consumed := r.offset - start
		if h.length != LengthIndefinite && consumed == int64(h.length) {
			return chunks, nil
		}
		ch, err := r.ReadHeader()
		if err != nil {
			return chunks, err
		}
		if h.length == LengthIndefinite && ch.IsEOC() {
			return chunks, nil
		}
		if ch.tag != natural {
			return chunks, invalid(ch.offset, &TagMismatchError{Expected: natural, Found: ch.tag})
		}
		if ch.form == Primitive {
			if h.length != LengthIndefinite && r.offset-start+int64(ch.length) > int64(h.length) {
				return chunks, invalid(ch.offset, ErrOverrun)
			}
			b, err := r.readContent(ch.length)
			if err != nil {
				return chunks, err
			}
			chunks = append(chunks, b)
		} else if chunks, err = r.readChunks(ch, natural, chunks); err != nil {
			return chunks, err
		}
		if h.length != LengthIndefinite && r.offset-start > int64(h.length) {
			return chunks, invalid(ch.offset, ErrOverrun)
		}
	}
}

// peekChild peeks at the next element inside the constructed encoding
// introduced by h, which started at offset start. ok is false if there are no
// more elements. For indefinite-length encodings the end-of-contents marker is
// not consumed.
func (r *Reader) peekChild(h Header, start int64) (next Header, ok bool, err error) {
	var remaining int64
	if h.length != LengthIndefinite {
		remaining = int64(h.length) - (r.offset - start)
		if remaining <= 0 {
			return next, false, nil
		}
	}
	if next, err = r.PeekHeader(); err != nil {
		return next, false, err
	}
	if h.length == LengthIndefinite {
		return next, !next.IsEOC(), nil
	}
	size := int64(next.Size())
	if next.length != LengthIndefinite {
		size += int64(next.length)
	}
	if size > remaining {
		return next, false, invalid(next.offset, ErrOverrun)
	}
	return next, true, nil
}

// finish checks that the constructed encoding introduced by h, which started
// at offset start, has been consumed entirely. For indefinite-length
// encodings the end-of-contents marker is read.
func (r *Reader) finish(h Header, start int64) error {
	if h.length != LengthIndefinite {
		consumed := r.offset - start
		switch {
		case consumed > int64(h.length):
			return invalid(h.offset, ErrOverrun)
		case consumed < int64(h.length):
			return invalidf(r.offset, "%w: %s is %d bytes longer than expected", ErrTrailingData, h.tag.TypeName(), int64(h.length)-consumed)
		}
		return nil
	}
	eoc, err := r.PeekHeader()
	if err != nil {
		return err
	}
	if !eoc.IsEOC() {
		if eoc.tag == TagEOC {
			return invalidf(eoc.offset, "%w: non-canonical end-of-contents % X", ErrMissingEOC, eoc.Bytes())
		}
		return invalidf(eoc.offset, "%w: found %s", ErrMissingEOC, eoc.tag)
	}
	_, err = r.ReadHeader()
	return err
}
