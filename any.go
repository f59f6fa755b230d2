// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"bytes"
	"errors"
	"io"
	"slices"
)

// Any holds the complete encoding of a data value whose type is not
// interpreted. Use [Any.DecodeWith] to decode the value once its type is known.
//
// An Any encodes to exactly the bytes it was decoded from, including
// indefinite-length encodings. It cannot be encoded under a different tag.
type Any struct {
	header Header
	raw    []byte // header and content octets
}

// NewAny parses the encoding of a single data value in b without interpreting
// it.
func NewAny(b []byte) (Any, error) {
	v, err := Unmarshal(b, AnyTemplate{})
	if err != nil {
		return Any{}, err
	}
	return v.(Any), nil
}

// AnyOf returns an Any holding the DER encoding of v.
func AnyOf(v Value) (Any, error) {
	b, err := Marshal(v)
	if err != nil {
		return Any{}, err
	}
	return NewAny(b)
}

// Header returns the header of the captured encoding.
func (a Any) Header() Header { return a.header }

// Bytes returns the complete captured encoding.
func (a Any) Bytes() []byte { return slices.Clone(a.raw) }

// Content returns the content octets of the captured encoding. For
// indefinite-length encodings the trailing end-of-contents marker is not
// included.
func (a Any) Content() []byte {
	c := a.raw[a.header.Size():]
	if a.header.Length() == LengthIndefinite {
		c = c[:len(c)-2]
	}
	return slices.Clone(c)
}

// DecodeWith decodes the captured encoding using t.
func (a Any) DecodeWith(t Template) (Value, error) {
	return Unmarshal(a.raw, t)
}

// Decode decodes the captured encoding if it has a universal tag known to
// this package. Otherwise a is returned unchanged.
func (a Any) Decode() (Value, error) {
	t, ok := UniversalTemplate(a.Tag())
	if !ok {
		return a, nil
	}
	return a.DecodeWith(t)
}

// Children returns the data values contained in a constructed encoding. It
// returns an error if a uses the primitive encoding.
func (a Any) Children() ([]Any, error) {
	if a.header.Form() != Constructed {
		return nil, errors.New("berval: children of primitive encoding")
	}
	r := NewReader(bytes.NewReader(a.raw[a.header.Size():]))
	start := r.Offset()
	var ret []Any
	for {
		_, ok, err := r.peekChild(a.header, start)
		if err != nil {
			return ret, err
		}
		if !ok {
			return ret, nil
		}
		v, err := AnyTemplate{}.Decode(r)
		if err != nil {
			return ret, err
		}
		ret = append(ret, v.(Any))
	}
}

func (a Any) Tag() Tag { return a.header.Tag() }

func (a Any) Encode(w io.Writer) error { return writeValue(w, a, a.Tag()) }

// EncodeTagged writes the captured encoding to w. It panics if tag is not the
// tag of a.
func (a Any) EncodeTagged(tag Tag, w io.Writer) error { return writeValue(w, a, tag) }

func (a Any) appendTo(dst []byte, tag Tag) ([]byte, error) {
	if tag != a.Tag() {
		panic("berval: ANY cannot be encoded with implicit tag " + tag.String())
	}
	return append(dst, a.raw...), nil
}

// AnyTemplate captures the next data value regardless of its tag.
type AnyTemplate struct{}

// Match reports true for all tags except the end-of-contents tag.
func (AnyTemplate) Match(tag Tag) bool { return tag != TagEOC }

func (t AnyTemplate) Decode(r *Reader) (Value, error) {
	return t.decode(r, nil)
}

// DecodeTagged captures the next data value. The value must have the given
// tag.
func (t AnyTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	return t.decode(r, &tag)
}

var errUnexpectedEOC = errors.New("unexpected end-of-contents")

func (t AnyTemplate) decode(r *Reader, tag *Tag) (Value, error) {
	h, err := r.ReadHeader()
	if err != nil {
		return nil, err
	}
	if tag != nil {
		if err = h.Validate(*tag); err != nil {
			return nil, err
		}
	} else if h.tag == TagEOC {
		return nil, invalid(h.offset, errUnexpectedEOC)
	}
	raw := h.AppendTo(nil)
	if h.length != LengthIndefinite {
		c, err := r.readContent(h.length)
		if err != nil {
			return nil, err
		}
		return Any{h, append(raw, c...)}, nil
	}

	if err = r.enter(h.offset); err != nil {
		return nil, err
	}
	defer r.leave()
	start := r.Offset()
	for i := 0; ; i++ {
		_, ok, err := r.peekChild(h, start)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		v, err := t.Decode(r)
		if err != nil {
			return nil, withFrame(err, h.tag.TypeName(), i)
		}
		raw = append(raw, v.(Any).raw...)
	}
	if err = r.finish(h, start); err != nil {
		return nil, err
	}
	return Any{h, append(raw, 0x00, 0x00)}, nil
}
