// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

import (
	"fmt"
	"strings"
)

// SyntaxError is the concrete type of errors reported by the scanner and the
// stream parser.
type SyntaxError struct {
	Offset   int64   // byte offset of the error in the input
	Location LineCol // line and column of the error
	Message  string

	// Context holds a copy of the input surrounding the error, as far as it
	// was available in the chunk being processed. Mark is the index in
	// Context of the byte at Offset; it may equal len(Context) at the end of
	// the input.
	Context []byte
	Mark    int
}

// Error satisfies the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("at %s (offset %d): %s", e.Location, e.Offset, e.Message)
}

// Snippet renders the context of the error as two lines of text: the input
// surrounding the error, and a caret marking the offending position.
// Snippet returns "" if no context is available.
func (e *SyntaxError) Snippet() string {
	if len(e.Context) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, b := range e.Context {
		if b < ' ' || b == 0x7f {
			b = ' '
		}
		sb.WriteByte(b)
	}
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat(" ", e.Mark))
	sb.WriteString("^")
	return sb.String()
}

// contextBytes is the maximum number of bytes of context retained on either
// side of the location of a syntax error.
const contextBytes = 30

// setContext populates the context of e from chunk, whose first byte is at
// offset base in the input. It has no effect if e already has context or if
// e.Offset is not inside or at the end of chunk.
func (e *SyntaxError) setContext(chunk []byte, base int64) {
	i := e.Offset - base
	if e.Context != nil || i < 0 || i > int64(len(chunk)) {
		return
	}
	lo, hi := max(0, int(i)-contextBytes), min(len(chunk), int(i)+contextBytes)
	e.Context = append([]byte(nil), chunk[lo:hi]...)
	e.Mark = int(i) - lo
}
