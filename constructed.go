// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"bytes"
	"io"
	"slices"
)

// Element is a member of a [Sequence] or [Set]. A nil Value marks an absent
// OPTIONAL element. It keeps its position but is never encoded. If Tagged is
// true, the value is encoded with the implicit tag Implicit.
type Element struct {
	Value    Value
	Implicit Tag
	Tagged   bool
}

// tag returns the tag the element is encoded with.
func (e Element) tag() Tag {
	if e.Tagged {
		return e.Implicit
	}
	return e.Value.Tag()
}

func (e Element) appendTo(dst []byte) ([]byte, error) {
	return e.Value.appendTo(dst, e.tag())
}

// elements implements the element list shared by [Sequence] and [Set].
type elements struct {
	elems []Element
}

// Len returns the number of elements, including absent ones.
func (s *elements) Len() int { return len(s.elems) }

// At returns the value of the i-th element. The result is nil for absent
// elements.
func (s *elements) At(i int) Value { return s.elems[i].Value }

// Element returns the i-th element.
func (s *elements) Element(i int) Element { return s.elems[i] }

// Elements returns a copy of all elements.
func (s *elements) Elements() []Element { return slices.Clone(s.elems) }

func (s *elements) add(v Value) {
	s.elems = append(s.elems, Element{Value: v})
}

func (s *elements) addTagged(tag Tag, v Value) {
	s.elems = append(s.elems, Element{Value: v, Implicit: tag, Tagged: true})
}

// encodings returns the encodings of all present elements in order.
func (s *elements) encodings() ([][]byte, error) {
	encs := make([][]byte, 0, len(s.elems))
	for _, e := range s.elems {
		if e.Value == nil {
			continue
		}
		b, err := e.appendTo(nil)
		if err != nil {
			return nil, err
		}
		encs = append(encs, b)
	}
	return encs, nil
}

//region [UNIVERSAL 16] SEQUENCE

// Sequence represents an ASN.1 SEQUENCE or SEQUENCE OF. Elements are encoded
// in the order in which they were added.
type Sequence struct {
	elements
}

// NewSequence returns a Sequence containing the given values.
func NewSequence(values ...Value) *Sequence {
	s := new(Sequence)
	for _, v := range values {
		s.add(v)
	}
	return s
}

// Add appends v to s. A nil v is an absent element.
func (s *Sequence) Add(v Value) *Sequence {
	s.add(v)
	return s
}

// AddTagged appends v to s. The value will be encoded with the implicit tag.
func (s *Sequence) AddTagged(tag Tag, v Value) *Sequence {
	s.addTagged(tag, v)
	return s
}

func (s *Sequence) Tag() Tag { return Universal(TagSequence) }

func (s *Sequence) Encode(w io.Writer) error { return writeValue(w, s, s.Tag()) }

func (s *Sequence) EncodeTagged(tag Tag, w io.Writer) error { return writeValue(w, s, tag) }

func (s *Sequence) appendTo(dst []byte, tag Tag) ([]byte, error) {
	encs, err := s.encodings()
	if err != nil {
		return nil, err
	}
	return appendTLV(dst, tag, Constructed, bytes.Join(encs, nil)), nil
}

//endregion

//region [UNIVERSAL 17] SET

// Set represents an ASN.1 SET or SET OF. Elements are kept in the order in
// which they were added, but are reordered as required by DER when encoded.
type Set struct {
	elements
}

// NewSet returns a Set containing the given values.
func NewSet(values ...Value) *Set {
	s := new(Set)
	for _, v := range values {
		s.add(v)
	}
	return s
}

// Add appends v to s. A nil v is an absent element.
func (s *Set) Add(v Value) *Set {
	s.add(v)
	return s
}

// AddTagged appends v to s. The value will be encoded with the implicit tag.
func (s *Set) AddTagged(tag Tag, v Value) *Set {
	s.addTagged(tag, v)
	return s
}

func (s *Set) Tag() Tag { return Universal(TagSet) }

// Encode writes the DER encoding of s to w.
//
// If s has fewer than two elements or its first two elements have the same
// tag, s is treated as a SET OF and the elements are ordered by their
// encodings. Otherwise, the elements are ordered by their tags.
func (s *Set) Encode(w io.Writer) error { return writeValue(w, s, s.Tag()) }

func (s *Set) EncodeTagged(tag Tag, w io.Writer) error { return writeValue(w, s, tag) }

// EncodeBER writes the elements of s in the order in which they were added.
// The result is a valid BER encoding but not necessarily a DER encoding.
func (s *Set) EncodeBER(w io.Writer) error {
	encs, err := s.encodings()
	if err != nil {
		return err
	}
	_, err = w.Write(appendTLV(nil, s.Tag(), Constructed, bytes.Join(encs, nil)))
	return err
}

func (s *Set) appendTo(dst []byte, tag Tag) ([]byte, error) {
	present := make([]Element, 0, len(s.elems))
	for _, e := range s.elems {
		if e.Value != nil {
			present = append(present, e)
		}
	}
	encs := make([][]byte, len(present))
	for i, e := range present {
		b, err := e.appendTo(nil)
		if err != nil {
			return nil, err
		}
		encs[i] = b
	}

	if len(present) < 2 || present[0].tag() == present[1].tag() {
		slices.SortFunc(encs, bytes.Compare)
	} else {
		idx := make([]int, len(present))
		for i := range idx {
			idx[i] = i
		}
		slices.SortStableFunc(idx, func(a, b int) int {
			return compareTags(present[a].tag(), present[b].tag())
		})
		sorted := make([][]byte, len(encs))
		for i, j := range idx {
			sorted[i] = encs[j]
		}
		encs = sorted
	}
	return appendTLV(dst, tag, Constructed, bytes.Join(encs, nil)), nil
}

// compareTags orders tags by class, then by number.
func compareTags(a, b Tag) int {
	switch {
	case a.Class != b.Class:
		return int(a.Class) - int(b.Class)
	case a.Number < b.Number:
		return -1
	case a.Number > b.Number:
		return 1
	}
	return 0
}

//endregion
