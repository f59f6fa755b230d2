// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package params parses the textual element parameters accepted by SEQUENCE
// and SET template builders.
package params

import (
	"errors"
	"strconv"
	"strings"
)

// Tag classes as they appear in the identifier octet.
const (
	ClassUniversal       = 0
	ClassApplication     = 1
	ClassContextSpecific = 2
	ClassPrivate         = 3
)

// Element is the parsed representation of an element parameter string.
type Element struct {
	HasTag     bool   // true iff a tag number was given
	Class      uint8  // class of the tag, context-specific unless overridden
	Number     uint64 // tag number
	Explicit   bool   // true iff the tag is EXPLICIT rather than IMPLICIT
	Optional   bool
	Repeatable bool
	Discard    bool
}

// Parse parses a comma separated list of parameters such as
// "optional,tag:3,explicit". Recognized parameters are optional, repeatable,
// discard, explicit, tag:N, application, private and universal. Unknown
// parameters and malformed tag numbers are reported as an error.
func Parse(str string) (ret Element, err error) {
	ret.Class = ClassContextSpecific
	if str == "" {
		return ret, nil
	}
	for part := range strings.SplitSeq(str, ",") {
		switch part = strings.TrimSpace(part); {
		case part == "optional":
			ret.Optional = true
		case part == "repeatable":
			ret.Repeatable = true
		case part == "discard":
			ret.Discard = true
		case part == "explicit":
			ret.Explicit = true
		case strings.HasPrefix(part, "tag:"):
			n, perr := strconv.ParseUint(part[4:], 10, 64)
			if perr != nil {
				return ret, errors.New("invalid tag number " + strconv.Quote(part[4:]))
			}
			ret.HasTag = true
			ret.Number = n
		case part == "application":
			ret.Class = ClassApplication
		case part == "private":
			ret.Class = ClassPrivate
		case part == "universal":
			ret.Class = ClassUniversal
		default:
			return ret, errors.New("unknown parameter " + strconv.Quote(part))
		}
	}
	if ret.Explicit && !ret.HasTag {
		return ret, errors.New("explicit without tag number")
	}
	return ret, nil
}
