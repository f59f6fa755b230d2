// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Sentinel errors wrapped by [InvalidBERError]. Use [errors.Is] to test for
// them.
var (
	ErrTagMismatch        = errors.New("tag mismatch")
	ErrMissingElement     = errors.New("missing element")
	ErrDuplicateElement   = errors.New("duplicate element")
	ErrUnexpectedElement  = errors.New("unexpected element")
	ErrTrailingData       = errors.New("trailing data")
	ErrOverrun            = errors.New("element exceeds enclosing length")
	ErrMissingEOC         = errors.New("missing end-of-contents")
	ErrTooDeep            = errors.New("nesting too deep")
	ErrInvalidLength      = errors.New("invalid length")
	ErrLookaheadExhausted = errors.New("header exceeds lookahead")
	ErrEmptyInteger       = errors.New("zero length INTEGER")
)

// Frame identifies one level of nesting in the trace of an [InvalidBERError].
type Frame struct {
	Container string // name of the container type, e.g. "SEQUENCE" or "EXPLICIT [0]"
	Index     int    // index of the element within the container, or -1
}

// String formats f as "SEQUENCE(item #3)".
func (f Frame) String() string {
	if f.Index < 0 {
		return f.Container
	}
	return f.Container + "(item #" + strconv.Itoa(f.Index) + ")"
}

// InvalidBERError is the error returned by all decoding operations when the
// input is not a valid encoding of the expected structure. Errors produced by
// the underlying [io.Reader] are not wrapped and are returned unchanged.
//
// The Trace lists the containers from the outermost structure down to the
// element that failed. Offset is the byte offset of the failing element
// relative to the start of the decode.
type InvalidBERError struct {
	Trace  []Frame
	Offset int64
	Err    error
}

func (e *InvalidBERError) Error() string {
	var s strings.Builder
	s.WriteString("berval: invalid encoding at offset ")
	s.WriteString(strconv.FormatInt(e.Offset, 10))
	for _, f := range e.Trace {
		s.WriteString(": ")
		s.WriteString(f.String())
	}
	if e.Err != nil {
		s.WriteString(": ")
		s.WriteString(e.Err.Error())
	}
	return s.String()
}

func (e *InvalidBERError) Unwrap() error {
	return e.Err
}

// invalid returns an *InvalidBERError at the given offset wrapping err.
func invalid(offset int64, err error) *InvalidBERError {
	return &InvalidBERError{Offset: offset, Err: err}
}

// invalidf is like invalid but formats the wrapped error.
func invalidf(offset int64, format string, args ...any) *InvalidBERError {
	return invalid(offset, fmt.Errorf(format, args...))
}

// withFrame prepends a frame to the trace of err if err is an
// *InvalidBERError. Other errors are returned unchanged.
func withFrame(err error, container string, index int) error {
	var e *InvalidBERError
	if !errors.As(err, &e) {
		return err
	}
	return &InvalidBERError{
		Trace:  slices.Insert(slices.Clone(e.Trace), 0, Frame{container, index}),
		Offset: e.Offset,
		Err:    e.Err,
	}
}

// TagMismatchError describes an element whose identifier did not match what a
// template expected. It matches [ErrTagMismatch] via [errors.Is].
type TagMismatchError struct {
	Expected, Found         Tag
	ExpectedForm, FoundForm Form
	CheckForm               bool // whether the form was part of the expectation
}

func (e *TagMismatchError) Error() string {
	var s strings.Builder
	s.WriteString("tag mismatch: expected ")
	s.WriteString(e.Expected.String())
	if e.CheckForm {
		s.WriteByte(' ')
		s.WriteString(strings.ToLower(e.ExpectedForm.String()))
	}
	s.WriteString(", found ")
	s.WriteString(e.Found.String())
	if e.CheckForm {
		s.WriteByte(' ')
		s.WriteString(strings.ToLower(e.FoundForm.String()))
	}
	return s.String()
}

func (e *TagMismatchError) Is(target error) bool {
	return target == ErrTagMismatch
}

// MissingElementError reports a mandatory template element that was absent
// from the input. It matches [ErrMissingElement] via [errors.Is].
type MissingElementError struct {
	Index int // index of the element in the template
}

func (e *MissingElementError) Error() string {
	return "missing item #" + strconv.Itoa(e.Index)
}

func (e *MissingElementError) Is(target error) bool {
	return target == ErrMissingElement
}

// An EncodeError is returned when a [Value] cannot be encoded because it does
// not satisfy the constraints of its type.
type EncodeError struct {
	Value Value
	Err   error
}

func (e *EncodeError) Error() string {
	var s strings.Builder
	s.WriteString("berval: cannot encode ")
	if e.Value == nil {
		s.WriteString("nil")
	} else {
		s.WriteString(reflect.TypeOf(e.Value).String())
	}
	if e.Err != nil {
		s.WriteString(": ")
		s.WriteString(e.Err.Error())
	}
	return s.String()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
