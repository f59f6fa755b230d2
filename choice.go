// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import "slices"

// ChoiceTemplate decodes an ASN.1 CHOICE. The alternative used is the first
// one that matches the tag of the next data value. The decoded value is the
// value produced by that alternative.
//
// Alternatives that need an implicit tag can be expressed with [TaggedTemplate].
type ChoiceTemplate struct {
	alternatives []Template
}

// NewChoice returns a template choosing between the given alternatives.
func NewChoice(alternatives ...Template) *ChoiceTemplate {
	return &ChoiceTemplate{slices.Clone(alternatives)}
}

func (t *ChoiceTemplate) Match(tag Tag) bool {
	return t.alternative(tag) != nil
}

func (t *ChoiceTemplate) alternative(tag Tag) Template {
	for _, alt := range t.alternatives {
		if alt.Match(tag) {
			return alt
		}
	}
	return nil
}

func (t *ChoiceTemplate) Decode(r *Reader) (Value, error) {
	h, err := r.PeekHeader()
	if err != nil {
		return nil, err
	}
	alt := t.alternative(h.tag)
	if alt == nil {
		return nil, invalidf(h.offset, "%w: no alternative of CHOICE matches %s", ErrTagMismatch, h.tag)
	}
	return alt.Decode(r)
}

// DecodeTagged is equivalent to Decode. A CHOICE cannot be implicitly tagged,
// the tag of the chosen alternative must be tag.
func (t *ChoiceTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	h, err := r.PeekHeader()
	if err != nil {
		return nil, err
	}
	if err = h.Validate(tag); err != nil {
		return nil, err
	}
	return t.Decode(r)
}

// TaggedTemplate decodes values of Template that carry the implicit tag Tag.
// It allows implicitly tagged alternatives in a [ChoiceTemplate].
//
// The decoded value has its natural type. When it is decoded as part of a
// [*Sequence], [*Set] or [*Explicit] the container keeps Tag so that the value
// is encoded with it again.
type TaggedTemplate struct {
	Tag      Tag
	Template Template
}

func (t TaggedTemplate) Match(tag Tag) bool { return tag == t.Tag }

func (t TaggedTemplate) Decode(r *Reader) (Value, error) {
	return t.Template.DecodeTagged(t.Tag, r)
}

func (t TaggedTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
	return t.Template.DecodeTagged(tag, r)
}
