// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

import (
	"strconv"
	"strings"
)

// Flags is a bit set of lenient-mode options for a Stream. The zero value
// selects strict RFC 8259 parsing.
type Flags uint

const (
	// AllowComments accepts C++ style block comments (/* ... */) and line
	// comments (// ...) wherever whitespace is allowed.
	AllowComments Flags = 1 << iota

	// DontValidateStrings disables checking string contents for valid UTF-8
	// and accepts unescaped control characters, including newlines, inside
	// strings. Escape sequences are still checked.
	DontValidateStrings

	// AllowTrailingGarbage stops parsing once the first top-level value is
	// complete. Any input after it is not read.
	AllowTrailingGarbage

	// AllowMultipleValues accepts any number of whitespace-separated
	// top-level values, reported in sequence.
	AllowMultipleValues

	// AllowPartialValues accepts input that ends before the top-level value
	// is complete, provided it ends at a value boundary of the outermost
	// container. An empty input is also accepted.
	AllowPartialValues
)

var flagNames = []string{
	"AllowComments",
	"DontValidateStrings",
	"AllowTrailingGarbage",
	"AllowMultipleValues",
	"AllowPartialValues",
}

func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var names []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
			f &^= 1 << i
		}
	}
	if f != 0 {
		names = append(names, "Flags(0x"+strconv.FormatUint(uint64(f), 16)+")")
	}
	return strings.Join(names, "|")
}

// DefaultChunkSize is the number of bytes a Stream reads at a time if the
// options do not specify a positive chunk size.
const DefaultChunkSize = 65536

// Options control the behaviour of a Stream. A nil *Options is ready for use
// and selects the defaults.
type Options struct {
	Flags Flags

	// The maximum number of bytes to read from the input at once.
	// If ChunkSize ≤ 0, DefaultChunkSize is used.
	ChunkSize int
}

func (o *Options) flags() Flags {
	if o == nil {
		return 0
	}
	return o.Flags
}

func (o *Options) chunkSize() int {
	if o == nil || o.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}
