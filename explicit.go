// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import "io"

// Explicit wraps a value in an additional constructed encoding with a
// different tag. The natural tag of the wrapped value is retained inside.
type Explicit struct {
	tag     Tag
	content Value
	inner   Tag // tag of content, differs from content.Tag() if implicitly tagged
}

// NewExplicit returns v explicitly tagged with tag.
func NewExplicit(tag Tag, v Value) *Explicit {
	e := &Explicit{tag: tag, content: v}
	if v != nil {
		e.inner = v.Tag()
	}
	return e
}

// Content returns the wrapped value.
func (e *Explicit) Content() Value { return e.content }

func (e *Explicit) Tag() Tag { return e.tag }

func (e *Explicit) Encode(w io.Writer) error { return writeValue(w, e, e.tag) }

func (e *Explicit) EncodeTagged(tag Tag, w io.Writer) error { return writeValue(w, e, tag) }

func (e *Explicit) appendTo(dst []byte, tag Tag) ([]byte, error) {
	c, err := e.content.appendTo(nil, e.inner)
	if err != nil {
		return nil, err
	}
	return appendTLV(dst, tag, Constructed, c), nil
}

// ExplicitTemplate decodes an [*Explicit] with the given Tag. The wrapped value
// is decoded by Content.
type ExplicitTemplate struct {
	Tag     Tag
	Content Template
}

func (t ExplicitTemplate) Match(tag Tag) bool { return tag == t.Tag }

func (t ExplicitTemplate) Decode(r *Reader) (Value, error) {
	return t.DecodeTagged(t.Tag, r)
}

// DecodeTagged decodes an explicitly tagged value where the outer tag is tag
// instead of t.Tag.
func (t ExplicitTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	h, err := r.ReadHeader()
	if err != nil {
		return nil, err
	}
	if err = h.ValidateForm(tag, Constructed); err != nil {
		return nil, err
	}
	if err = r.enter(h.offset); err != nil {
		return nil, err
	}
	defer r.leave()

	frame := "EXPLICIT " + tag.String()
	start := r.Offset()
	next, ok, err := r.peekChild(h, start)
	if err != nil {
		return nil, withFrame(err, frame, 0)
	}
	if !ok {
		return nil, withFrame(invalid(r.Offset(), &MissingElementError{0}), frame, 0)
	}
	v, err := t.Content.Decode(r)
	if err != nil {
		return nil, withFrame(err, frame, 0)
	}
	if err = r.finish(h, start); err != nil {
		return nil, withFrame(err, frame, -1)
	}
	return &Explicit{tag, v, next.tag}, nil
}
