// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

import "go4.org/mem"

// An Action is the result of a Handler method. It tells the parser whether to
// continue. Cancel is the only value that stops the parser; any other value,
// including the zero value, means to continue.
type Action byte

const (
	Continue Action = iota // continue parsing
	Cancel                 // stop parsing and report Cancelled
)

func (a Action) String() string {
	if a == Cancel {
		return "cancel"
	}
	return "continue"
}

// A Handler handles events from parsing an input stream. Events are
// delivered in document order. If a method returns Cancel, parsing stops at
// once: no further input is scanned and no further methods are called.
// The parser ensures maps and arrays are correctly balanced.
//
// A byte slice passed to a Handler method is only valid for the duration of
// that method call. If the handler needs to retain it after the method
// returns, it must copy the data.
type Handler interface {
	// Report a null value.
	Null() Action

	// Report a Boolean value.
	Bool(v bool) Action

	// Report a number value. The text of the number is not decoded; see the
	// Int64 and Float64 methods of Number.
	Number(n Number) Action

	// Report a string value. The contents are unquoted and unescaped.
	String(s []byte) Action

	// Begin a new map (JSON object).
	BeginMap() Action

	// Report the key of the next member of the current map. The key is
	// unquoted and unescaped. Exactly one value follows each key.
	MapKey(key []byte) Action

	// End the most-recently-opened map.
	EndMap() Action

	// Begin a new array.
	BeginArray() Action

	// End the most-recently-opened array.
	EndArray() Action
}

// Completer is an optional interface that a Handler may implement to convert
// its state into a result once parsing ends. See [Run].
type Completer interface {
	Complete() any
}

// CommentHandler is an optional interface that a Handler may implement to
// handle comment tokens. If a handler implements this method and comments are
// enabled, Comment will be called for each comment token that occurs in the
// input. If the handler does not provide this method, comments will be
// silently discarded.
type CommentHandler interface {
	// Process the line or block comment with the given text.
	// Line comments include their leading "//" and trailing newline (if present).
	// Block comments include their leading "/*" and trailing "*/".
	Comment(text []byte)
}

// Number is the value of a number event.
type Number struct {
	Text    []byte // the undecoded text of the number
	Integer bool   // the number has no fraction or exponent
}

// Int64 parses the text of n as a signed 64-bit integer.
// It reports an error if n is not an integer, or is out of range.
func (n Number) Int64() (int64, error) { return mem.ParseInt(mem.B(n.Text), 10, 64) }

// Float64 parses the text of n as a 64-bit floating-point value.
func (n Number) Float64() (float64, error) { return mem.ParseFloat(mem.B(n.Text), 64) }

func (n Number) String() string { return string(n.Text) }

// Base implements all the methods of Handler as no-ops that return Continue.
// Embed it in a handler type to implement only the events of interest.
type Base struct{}

func (Base) Null() Action         { return Continue }
func (Base) Bool(bool) Action     { return Continue }
func (Base) Number(Number) Action { return Continue }
func (Base) String([]byte) Action { return Continue }
func (Base) BeginMap() Action     { return Continue }
func (Base) MapKey([]byte) Action { return Continue }
func (Base) EndMap() Action       { return Continue }
func (Base) BeginArray() Action   { return Continue }
func (Base) EndArray() Action     { return Continue }
