// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"slices"

	"codello.dev/berval/internal/params"
)

// elementSpec describes one element of a SEQUENCE or SET template.
type elementSpec struct {
	template   Template
	implicit   Tag
	tagged     bool
	optional   bool
	repeatable bool
	discard    bool
	def        Value
}

// match reports whether the element accepts a data value with the given tag.
func (e *elementSpec) match(tag Tag) bool {
	if e.tagged {
		return tag == e.implicit
	}
	return e.template.Match(tag)
}

func (e *elementSpec) decode(r *Reader) (Value, error) {
	if e.tagged {
		return e.template.DecodeTagged(e.implicit, r)
	}
	return e.template.Decode(r)
}

// element returns v as an element of the output of a container template. tag
// is the tag v was decoded with. If it differs from the natural tag of v, as
// for values decoded by a [TaggedTemplate], it is kept as the implicit tag.
func (e *elementSpec) element(v Value, tag Tag) Element {
	if !e.tagged && v != nil && v.Tag() != tag {
		return Element{Value: v, Implicit: tag, Tagged: true}
	}
	return Element{Value: v, Implicit: e.implicit, Tagged: e.tagged}
}

// placeholder returns the element inserted for an absent optional or default
// element.
func (e *elementSpec) placeholder() Element {
	return Element{Value: e.def, Implicit: e.implicit, Tagged: e.tagged}
}

// An ElementOption modifies an element added to a [SequenceBuilder] or
// [SetBuilder].
type ElementOption func(*elementSpec)

// Optional marks an element as OPTIONAL. An absent optional element of a
// SEQUENCE is represented by a nil value in the decoded [Sequence].
func Optional() ElementOption {
	return func(e *elementSpec) { e.optional = true }
}

// Default marks an element as having a DEFAULT value. If the element is
// absent, v is inserted into the decoded output.
func Default(v Value) ElementOption {
	return func(e *elementSpec) { e.def = v }
}

// Repeatable allows an element to occur any number of times, including zero.
func Repeatable() ElementOption {
	return func(e *elementSpec) { e.repeatable = true }
}

// Implicit specifies that the element is implicitly tagged with tag.
func Implicit(tag Tag) ElementOption {
	return func(e *elementSpec) { e.implicit, e.tagged = tag, true }
}

// Discard causes the element to be decoded and validated but omitted from
// the decoded output.
func Discard() ElementOption {
	return func(e *elementSpec) { e.discard = true }
}

// builder collects element specifications.
type builder struct {
	elems []elementSpec
}

func (b *builder) add(t Template, opts []ElementOption) {
	e := elementSpec{template: t}
	for _, opt := range opts {
		opt(&e)
	}
	n := 0
	for _, set := range []bool{e.optional, e.repeatable, e.def != nil} {
		if set {
			n++
		}
	}
	if n > 1 {
		panic("berval: element can only be one of optional, repeatable or default")
	}
	if e.tagged {
		switch t.(type) {
		case AnyTemplate, *ChoiceTemplate:
			panic("berval: ANY and CHOICE elements cannot be implicitly tagged")
		}
	}
	b.elems = append(b.elems, e)
}

func (b *builder) addWithParams(t Template, str string) {
	p, err := params.Parse(str)
	if err != nil {
		panic("berval: " + err.Error())
	}
	var opts []ElementOption
	if p.HasTag {
		tag := Tag{Class(p.Class), p.Number}
		if p.Explicit {
			t = ExplicitTemplate{Tag: tag, Content: t}
		} else {
			opts = append(opts, Implicit(tag))
		}
	}
	if p.Optional {
		opts = append(opts, Optional())
	}
	if p.Repeatable {
		opts = append(opts, Repeatable())
	}
	if p.Discard {
		opts = append(opts, Discard())
	}
	b.add(t, opts)
}

//region SEQUENCE

// SequenceBuilder assembles a [SequenceTemplate]. The elements are expected in
// the order in which they are added.
type SequenceBuilder struct {
	builder
}

// NewSequenceBuilder returns an empty SequenceBuilder.
func NewSequenceBuilder() *SequenceBuilder {
	return &SequenceBuilder{}
}

// Add appends an element decoded by t. At most one of [Optional], [Default]
// and [Repeatable] may be given, otherwise Add panics.
func (b *SequenceBuilder) Add(t Template, opts ...ElementOption) *SequenceBuilder {
	b.add(t, opts)
	return b
}

// AddWithParams appends an element decoded by t with parameters in textual
// form, for example "optional,tag:3" or "tag:0,explicit". The recognized
// parameters are optional, repeatable, discard, explicit, tag:N, application,
// private and universal. Tags are context-specific unless another class is
// given. AddWithParams panics if str is malformed.
func (b *SequenceBuilder) AddWithParams(t Template, str string) *SequenceBuilder {
	b.addWithParams(t, str)
	return b
}

// Build returns the template. The builder may be reused afterward without
// affecting the returned template.
func (b *SequenceBuilder) Build() *SequenceTemplate {
	return &SequenceTemplate{slices.Clone(b.elems)}
}

// SequenceTemplate decodes a [*Sequence]. A SequenceTemplate is immutable and
// can be used concurrently.
type SequenceTemplate struct {
	elems []elementSpec
}

// SequenceOf returns a template for a SEQUENCE OF values decoded by t.
func SequenceOf(t Template) *SequenceTemplate {
	return NewSequenceBuilder().Add(t, Repeatable()).Build()
}

func (t *SequenceTemplate) Match(tag Tag) bool { return tag == Universal(TagSequence) }

func (t *SequenceTemplate) Decode(r *Reader) (Value, error) {
	return t.DecodeTagged(Universal(TagSequence), r)
}

// DecodeTagged decodes the elements of a SEQUENCE in template order.
//
// If the next data value does not match the current template element, an
// optional element produces a nil placeholder, an element with a default
// produces the default value and a repeatable element ends. Any other element
// is reported as missing.
func (t *SequenceTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
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

	const frame = "SEQUENCE"
	out := new(Sequence)
	start := r.Offset()
	for i := range t.elems {
		e := &t.elems[i]
		for {
			next, ok, err := r.peekChild(h, start)
			if err != nil {
				return nil, withFrame(err, frame, i)
			}
			if !ok || !e.match(next.tag) {
				switch {
				case e.repeatable:
				case e.optional, e.def != nil:
					if !e.discard {
						out.elems = append(out.elems, e.placeholder())
					}
				default:
					return nil, withFrame(invalid(r.Offset(), &MissingElementError{i}), frame, i)
				}
				break
			}
			v, err := e.decode(r)
			if err != nil {
				return nil, withFrame(err, frame, i)
			}
			if !e.discard {
				out.elems = append(out.elems, e.element(v, next.tag))
			}
			if !e.repeatable {
				break
			}
		}
	}
	if err = r.finish(h, start); err != nil {
		return nil, withFrame(err, frame, -1)
	}
	return out, nil
}

//endregion

//region SET

// SetBuilder assembles a [SetTemplate]. The elements of a SET may appear in
// any order.
type SetBuilder struct {
	builder
}

// NewSetBuilder returns an empty SetBuilder.
func NewSetBuilder() *SetBuilder {
	return &SetBuilder{}
}

// Add appends an element decoded by t. At most one of [Optional], [Default]
// and [Repeatable] may be given, otherwise Add panics.
func (b *SetBuilder) Add(t Template, opts ...ElementOption) *SetBuilder {
	b.add(t, opts)
	return b
}

// AddWithParams works like [SequenceBuilder.AddWithParams].
func (b *SetBuilder) AddWithParams(t Template, str string) *SetBuilder {
	b.addWithParams(t, str)
	return b
}

// Build returns the template. The builder may be reused afterward without
// affecting the returned template.
func (b *SetBuilder) Build() *SetTemplate {
	return &SetTemplate{slices.Clone(b.elems)}
}

// SetTemplate decodes a [*Set]. A SetTemplate is immutable and can be used
// concurrently.
type SetTemplate struct {
	elems []elementSpec
}

// SetOf returns a template for a SET OF values decoded by t.
func SetOf(t Template) *SetTemplate {
	return NewSetBuilder().Add(t, Repeatable()).Build()
}

func (t *SetTemplate) Match(tag Tag) bool { return tag == Universal(TagSet) }

func (t *SetTemplate) Decode(r *Reader) (Value, error) {
	return t.DecodeTagged(Universal(TagSet), r)
}

// DecodeTagged decodes the elements of a SET in any order. Each data value is
// decoded by the first template element that matches its tag. The decoded
// elements appear in input order, followed by the defaults of absent elements.
// Absent optional elements do not appear in the output.
func (t *SetTemplate) DecodeTagged(tag Tag, r *Reader) (Value, error) {
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

	const frame = "SET"
	out := new(Set)
	seen := make([]bool, len(t.elems))
	start := r.Offset()
	for i := 0; ; i++ {
		next, ok, err := r.peekChild(h, start)
		if err != nil {
			return nil, withFrame(err, frame, i)
		}
		if !ok {
			break
		}
		j := slices.IndexFunc(t.elems, func(e elementSpec) bool { return e.match(next.tag) })
		if j < 0 {
			return nil, withFrame(invalidf(next.offset, "%w %s", ErrUnexpectedElement, next.tag), frame, i)
		}
		e := &t.elems[j]
		if seen[j] && !e.repeatable {
			return nil, withFrame(invalidf(next.offset, "%w %s", ErrDuplicateElement, next.tag), frame, i)
		}
		seen[j] = true
		v, err := e.decode(r)
		if err != nil {
			return nil, withFrame(err, frame, i)
		}
		if !e.discard {
			out.elems = append(out.elems, e.element(v, next.tag))
		}
	}
	for j := range t.elems {
		e := &t.elems[j]
		switch {
		case seen[j], e.optional, e.repeatable:
		case e.def != nil:
			if !e.discard {
				out.elems = append(out.elems, e.placeholder())
			}
		default:
			return nil, withFrame(invalid(r.Offset(), &MissingElementError{j}), frame, -1)
		}
	}
	if err = r.finish(h, start); err != nil {
		return nil, withFrame(err, frame, -1)
	}
	return out, nil
}

//endregion
