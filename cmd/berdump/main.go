// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command berdump prints BER or DER encoded data as an indented tree.
//
// Usage:
//
//	berdump [flags] [file]
//
// If no file is given or file is "-", the input is read from stdin. The input
// may contain any number of consecutive data values. Values with a universal
// tag known to berval are decoded and printed in readable form, all other
// primitive values are printed as hex.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"codello.dev/berval"
	"codello.dev/berval/log"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes berdump and returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("berdump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	hexInput := fs.Bool("hex", false, "interpret the input as hex, whitespace is ignored")
	indent := fs.String("indent", "  ", "indentation per nesting level")
	maxDepth := fs.Int("max-depth", berval.DefaultMaxDepth, "maximum nesting depth of constructed values")
	verbose := fs.Bool("v", false, "log every decoded element to stderr")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: berdump [flags] [file]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	level := log.LevelInfo
	if *verbose {
		level = log.LevelDebug
	}
	logger := log.New(stderr, level)
	ctx := log.WithLogger(context.Background(), logger)

	in := stdin
	if name := fs.Arg(0); name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			logger.Error(err)
			return 1
		}
		defer f.Close()
		in = f
	}
	if *hexInput {
		data, err := readHex(in)
		if err != nil {
			logger.Errorf("invalid hex input: %v", err)
			return 1
		}
		in = bytes.NewReader(data)
	}

	out := bufio.NewWriter(stdout)
	err := dump(ctx, bufio.NewReader(in), out, *indent, *maxDepth)
	if ferr := out.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		logger.Error(err)
		return 1
	}
	return 0
}

// readHex reads all of r and decodes it as hex.
func readHex(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, string(b))
	return hex.DecodeString(s)
}

// dump writes all data values in in to w.
func dump(ctx context.Context, in io.Reader, w io.Writer, indent string, maxDepth int) error {
	r := berval.NewReader(in)
	r.SetMaxDepth(maxDepth)
	d := &dumper{log: log.GetLogger(ctx), w: w, indent: indent, maxDepth: maxDepth}
	for {
		v, err := berval.AnyTemplate{}.Decode(r)
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
		if err = d.dump(v.(berval.Any), 0); err != nil {
			return err
		}
	}
}

type dumper struct {
	log      log.Logger
	w        io.Writer
	indent   string
	maxDepth int
}

func (d *dumper) dump(a berval.Any, depth int) error {
	h := a.Header()
	d.log.Debugf("%s %s, length %d", h.Tag(), strings.ToLower(h.Form().String()), h.Length())
	prefix := strings.Repeat(d.indent, depth)
	name := h.Tag().TypeName()

	if h.Form() == berval.Constructed {
		if depth >= d.maxDepth {
			return fmt.Errorf("%s: %w", name, berval.ErrTooDeep)
		}
		children, err := a.Children()
		if err != nil {
			return err
		}
		if _, err = fmt.Fprintf(d.w, "%s%s (%d elem)\n", prefix, name, len(children)); err != nil {
			return err
		}
		for _, c := range children {
			if err = d.dump(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	line := prefix + name
	if s := d.format(a); s != "" {
		line += " " + s
	}
	_, err := fmt.Fprintln(d.w, line)
	return err
}

// format returns the readable representation of a primitive value.
func (d *dumper) format(a berval.Any) string {
	v, err := a.Decode()
	if err != nil {
		d.log.Warnf("%s: %v", a.Tag(), err)
		return fmt.Sprintf("% X", a.Content())
	}
	switch v := v.(type) {
	case berval.Boolean:
		return strconv.FormatBool(bool(v))
	case berval.Integer:
		return v.String()
	case berval.Enumerated:
		return v.String()
	case berval.Null:
		return ""
	case berval.OctetString:
		return fmt.Sprintf("% X", []byte(v))
	case berval.BitString:
		return v.String()
	case berval.ObjectIdentifier:
		return v.String()
	case berval.CharacterString:
		return strconv.Quote(v.String())
	case berval.UTCTime:
		return v.Time().UTC().Format(time.RFC3339)
	case berval.GeneralizedTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("% X", a.Content())
}
