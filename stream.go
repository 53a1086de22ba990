// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

import (
	"io"
	"sync"
)

// Status reports how a parse ended.
type Status byte

const (
	Completed Status = iota // the input was fully processed
	Cancelled               // a handler cancelled the parse
	Failed                  // the parse stopped with an error
)

var statusStr = [...]string{
	Completed: "completed",
	Cancelled: "cancelled",
	Failed:    "failed",
}

func (s Status) String() string {
	if int(s) >= len(statusStr) {
		return "unknown status"
	}
	return statusStr[s]
}

// Stream is a stream parser that consumes input and delivers events to a
// Handler corresponding with the structure of the input.
//
// A Stream reads its input in chunks, and retains only the chunk being
// processed and the text of a token split between chunks, so the memory it
// uses does not depend on the size of the input.
type Stream struct {
	r    io.Reader
	opts Options
}

// NewStream constructs a new Stream that consumes input from r.  If opts ==
// nil, default options are used; otherwise a copy of *opts is retained.
func NewStream(r io.Reader, opts *Options) *Stream {
	s := &Stream{r: r}
	if opts != nil {
		s.opts = *opts
	}
	return s
}

// Parse parses the input stream and delivers events to h until the input is
// exhausted, h cancels the parse, or an error occurs.
//
// If the input is fully processed, Parse returns Completed and nil. If h
// cancels the parse, Parse stops reading at once and returns Cancelled and
// nil. Otherwise Parse returns Failed and an error: either an error of
// concrete type [*SyntaxError], or an error reported by the underlying reader,
// which is returned unmodified.
//
// Parse does not retain h after it returns. Concurrent calls to Parse must
// not share a handler.
func (s *Stream) Parse(h Handler) (Status, error) {
	buf := getChunk(s.opts.chunkSize())
	defer putChunk(buf)

	p := newParser(h, s.opts.flags())
	for {
		nr, err := s.r.Read(*buf)
		if nr > 0 {
			oc, perr := p.feed((*buf)[:nr])
			if perr != nil {
				return Failed, perr
			}
			switch oc {
			case cancelled:
				return Cancelled, nil
			case finished:
				return Completed, nil
			}
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return Failed, err
		}
	}

	oc, err := p.finish()
	if err != nil {
		return Failed, err
	} else if oc == cancelled {
		return Cancelled, nil
	}
	return Completed, nil
}

// Run parses the input from r with the given options, delivering events to
// h, and returns the result of h along with the status of the parse.
//
// If the parse completes or is cancelled, the result is the value of
// h.Complete if h implements [Completer], otherwise h itself. If the parse
// fails, Run returns a nil result, Failed, and the error reported by
// [Stream.Parse]. Complete is not called in that case.
func Run(r io.Reader, h Handler, opts *Options) (any, Status, error) {
	st, err := NewStream(r, opts).Parse(h)
	if err != nil {
		return nil, st, err
	}
	if c, ok := h.(Completer); ok {
		return c.Complete(), st, nil
	}
	return h, st, nil
}

var chunkPool sync.Pool

// getChunk returns a buffer of exactly n bytes, reusing a pooled buffer if
// one with enough capacity is available.
func getChunk(n int) *[]byte {
	if v, ok := chunkPool.Get().(*[]byte); ok && cap(*v) >= n {
		*v = (*v)[:n]
		return v
	}
	buf := make([]byte, n)
	return &buf
}

func putChunk(buf *[]byte) { chunkPool.Put(buf) }
