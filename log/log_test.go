// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package log

import (
	"bytes"
	"context"
	"testing"

	"gopkg.in/stretchr/testify.v1/assert"
)

func TestWithLoggerAndGetLogger(t *testing.T) {
	l := New(&bytes.Buffer{}, LevelInfo)
	ctx := WithLogger(context.Background(), l)
	if got := GetLogger(ctx); got != l {
		t.Errorf("GetLogger() = %v, want %v", got, l)
	}
}

func TestGetLoggerWithNoLogger(t *testing.T) {
	if got := GetLogger(context.Background()); got != Discard {
		t.Errorf("GetLogger() = %v, want Discard", got)
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)
	l.Debug("hidden")
	l.Infof("hidden %d", 1)
	l.Warnf("element %d", 3)
	l.Errorln("bad", "input")

	assert.Equal(t, "warn: element 3\nerror: bad input\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"DEBUG":   LevelDebug,
		"info":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"unknown": LevelInfo,
	}
	for s, want := range tests {
		t.Run(s, func(t *testing.T) {
			got := ParseLevel(s)
			assert.Equal(t, want, got)
			if s == want.String() {
				assert.Equal(t, s, got.String())
			}
		})
	}
}
