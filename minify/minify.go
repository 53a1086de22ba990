// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package minify implements a jsax.Handler that re-encodes the events of a
// parse as compact JSON text, with no insignificant whitespace.
package minify

import (
	"bufio"
	"io"

	"github.com/creachadair/jsax"
)

// state is the position of the minifier within a container.
type state byte

const (
	stInit        state = iota // before any top-level value
	stNext                     // after a top-level value
	stArrayFirst               // before the first element of an array
	stArray                    // after an element of an array
	stMapKeyFirst              // before the first key of a map
	stMapKey                   // after a member of a map
	stMapVal                   // after a key, before its value
)

// A Minifier is a jsax.Handler that writes a minified copy of its input to
// an io.Writer. Comments are discarded. If there are multiple top-level
// values, they are separated by newlines.
//
// Output is buffered. The Complete method flushes the buffer and returns the
// underlying writer. If a write fails, the Minifier cancels the parse, and
// the error is reported by Err.
type Minifier struct {
	w   io.Writer
	buf *bufio.Writer
	stk []state
	tmp []byte
	err error
}

// New constructs a Minifier that writes its output to w.
func New(w io.Writer) *Minifier {
	return &Minifier{w: w, buf: bufio.NewWriter(w), stk: []state{stInit}}
}

// Minify reads JSON from r and writes a minified copy to w. It reports an
// error if the input is not valid, or if reading or writing fails.
func Minify(w io.Writer, r io.Reader, opts *jsax.Options) error {
	m := New(w)
	if _, _, err := jsax.Run(r, m, opts); err != nil {
		return err
	}
	return m.Err()
}

// Err returns the first error reported by the writer, if any.
func (m *Minifier) Err() error { return m.err }

// Complete flushes buffered output and returns the underlying writer.
// It implements jsax.Completer.
func (m *Minifier) Complete() any {
	if err := m.buf.Flush(); err != nil && m.err == nil {
		m.err = err
	}
	return m.w
}

func (m *Minifier) Null() jsax.Action { return m.literal("null") }

func (m *Minifier) Bool(v bool) jsax.Action {
	if v {
		return m.literal("true")
	}
	return m.literal("false")
}

func (m *Minifier) Number(n jsax.Number) jsax.Action {
	m.prefix()
	m.write(n.Text)
	return m.check()
}

func (m *Minifier) String(s []byte) jsax.Action {
	m.prefix()
	m.quote(s)
	return m.check()
}

func (m *Minifier) MapKey(key []byte) jsax.Action {
	if m.top() == stMapKey {
		m.writeByte(',')
	}
	m.setTop(stMapVal)
	m.quote(key)
	m.writeByte(':')
	return m.check()
}

func (m *Minifier) BeginMap() jsax.Action   { return m.open('{', stMapKeyFirst) }
func (m *Minifier) EndMap() jsax.Action     { return m.close('}') }
func (m *Minifier) BeginArray() jsax.Action { return m.open('[', stArrayFirst) }
func (m *Minifier) EndArray() jsax.Action   { return m.close(']') }

func (m *Minifier) literal(s string) jsax.Action {
	m.prefix()
	if _, err := m.buf.WriteString(s); err != nil {
		m.fail(err)
	}
	return m.check()
}

func (m *Minifier) open(b byte, st state) jsax.Action {
	m.prefix()
	m.writeByte(b)
	m.stk = append(m.stk, st)
	return m.check()
}

func (m *Minifier) close(b byte) jsax.Action {
	m.writeByte(b)
	m.stk = m.stk[:len(m.stk)-1]
	return m.check()
}

// prefix writes the separator, if any, that precedes a value in the current
// state, and updates the state to account for the value.
func (m *Minifier) prefix() {
	switch m.top() {
	case stInit:
		m.setTop(stNext)
	case stNext:
		m.writeByte('\n')
	case stArrayFirst:
		m.setTop(stArray)
	case stArray:
		m.writeByte(',')
	case stMapVal:
		m.setTop(stMapKey)
	}
}

func (m *Minifier) quote(s []byte) {
	m.tmp = jsax.AppendQuote(m.tmp[:0], s)
	m.write(m.tmp)
}

func (m *Minifier) write(data []byte) {
	if _, err := m.buf.Write(data); err != nil {
		m.fail(err)
	}
}

func (m *Minifier) writeByte(b byte) {
	if err := m.buf.WriteByte(b); err != nil {
		m.fail(err)
	}
}

func (m *Minifier) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

func (m *Minifier) check() jsax.Action {
	if m.err != nil {
		return jsax.Cancel
	}
	return jsax.Continue
}

func (m *Minifier) top() state      { return m.stk[len(m.stk)-1] }
func (m *Minifier) setTop(st state) { m.stk[len(m.stk)-1] = st }
