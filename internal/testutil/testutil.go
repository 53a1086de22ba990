// Package testutil defines support code for unit tests.
package testutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/creachadair/jsax"
)

// Recorder is a jsax.Handler that records a line of text for each event.
// If Stop is non-nil, it is called with each recorded line, and the event
// returns jsax.Cancel if it reports true.
type Recorder struct {
	Events []string
	Stop   func(event string) bool
}

func (r *Recorder) pr(msg string, args ...any) jsax.Action {
	ev := fmt.Sprintf(msg, args...)
	r.Events = append(r.Events, ev)
	if r.Stop != nil && r.Stop(ev) {
		return jsax.Cancel
	}
	return jsax.Continue
}

// Output returns the recorded events, one per line.
func (r *Recorder) Output() string { return strings.Join(r.Events, "\n") }

func (r *Recorder) Null() jsax.Action       { return r.pr("null") }
func (r *Recorder) Bool(v bool) jsax.Action { return r.pr("bool %v", v) }
func (r *Recorder) BeginMap() jsax.Action   { return r.pr("begin map") }
func (r *Recorder) EndMap() jsax.Action     { return r.pr("end map") }
func (r *Recorder) BeginArray() jsax.Action { return r.pr("begin array") }
func (r *Recorder) EndArray() jsax.Action   { return r.pr("end array") }

func (r *Recorder) Number(n jsax.Number) jsax.Action {
	if n.Integer {
		return r.pr("integer %s", n.Text)
	}
	return r.pr("number %s", n.Text)
}

func (r *Recorder) String(s []byte) jsax.Action { return r.pr("string %q", s) }
func (r *Recorder) MapKey(k []byte) jsax.Action { return r.pr("key %q", k) }

// Chunked returns a reader that delivers the contents of s at most n bytes
// at a time.
func Chunked(s string, n int) io.Reader {
	return &chunkReader{s: s, n: n}
}

type chunkReader struct {
	s string
	n int
}

func (c *chunkReader) Read(data []byte) (int, error) {
	if c.s == "" {
		return 0, io.EOF
	}
	nr := copy(data[:min(len(data), c.n)], c.s)
	c.s = c.s[nr:]
	return nr, nil
}

// Lines splits want into lines, trimming leading and trailing whitespace, for
// comparison with the output of a Recorder.
func Lines(want string) []string {
	want = strings.TrimSpace(want)
	if want == "" {
		return nil
	}
	lines := strings.Split(want, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}
