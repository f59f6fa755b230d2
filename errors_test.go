// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

import (
	"errors"
	"io"
	"testing"
)

func TestFrame_String(t *testing.T) {
	tests := map[string]struct {
		f    Frame
		want string
	}{
		"Item":     {Frame{"SEQUENCE", 3}, "SEQUENCE(item #3)"},
		"NoItem":   {Frame{"SET", -1}, "SET"},
		"Explicit": {Frame{"EXPLICIT [0]", 0}, "EXPLICIT [0](item #0)"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.f.String(); got != tt.want {
				t.Errorf("Frame.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInvalidBERError_Error(t *testing.T) {
	tests := map[string]struct {
		err  *InvalidBERError
		want string
	}{
		"Plain":   {&InvalidBERError{Offset: 4, Err: ErrTrailingData}, "berval: invalid encoding at offset 4: trailing data"},
		"NoCause": {&InvalidBERError{Offset: 0}, "berval: invalid encoding at offset 0"},
		"Trace": {&InvalidBERError{
			Trace:  []Frame{{"SEQUENCE", 1}, {"SET", -1}},
			Offset: 17,
			Err:    &MissingElementError{2},
		}, "berval: invalid encoding at offset 17: SEQUENCE(item #1): SET: missing item #2"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithFrame(t *testing.T) {
	inner := invalid(5, io.ErrUnexpectedEOF)
	err := withFrame(withFrame(inner, "SEQUENCE", 2), "SET", 0)
	var e *InvalidBERError
	if !errors.As(err, &e) {
		t.Fatalf("withFrame() = %v, want *InvalidBERError", err)
	}
	if len(e.Trace) != 2 || e.Trace[0] != (Frame{"SET", 0}) || e.Trace[1] != (Frame{"SEQUENCE", 2}) {
		t.Errorf("Trace = %v", e.Trace)
	}
	if e.Offset != 5 || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("withFrame() = %v", err)
	}
	if len(inner.Trace) != 0 {
		t.Errorf("withFrame() modified the original error: %v", inner)
	}

	// Errors of the underlying reader are not annotated.
	boom := errors.New("boom")
	if got := withFrame(boom, "SEQUENCE", 0); got != boom {
		t.Errorf("withFrame() = %v, want %v", got, boom)
	}
}

func TestTagMismatchError(t *testing.T) {
	err := &TagMismatchError{
		Expected: Universal(TagSequence), ExpectedForm: Constructed,
		Found: Universal(TagSet), FoundForm: Constructed,
		CheckForm: true,
	}
	want := "tag mismatch: expected [UNIVERSAL 16] constructed, found [UNIVERSAL 17] constructed"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrTagMismatch) {
		t.Errorf("errors.Is(%v, ErrTagMismatch) = false", err)
	}
	err.CheckForm = false
	want = "tag mismatch: expected [UNIVERSAL 16], found [UNIVERSAL 17]"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestEncodeError(t *testing.T) {
	err := &EncodeError{Value: IA5String("ä"), Err: errors.New("invalid character")}
	want := "berval: cannot encode berval.CharacterString: invalid character"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := (&EncodeError{}).Error(); got != "berval: cannot encode nil" {
		t.Errorf("Error() = %q", got)
	}
}
