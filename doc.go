// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jsax implements an incremental, event-driven JSON parser.
//
// # Streaming
//
// The Stream type reads JSON from an io.Reader in chunks and reports its
// structure as a sequence of events to a Handler, without constructing the
// parsed value in memory. Only the chunk being processed, the text of a
// token split between chunks, and a stack of open containers are retained,
// so a Handler that keeps constant state can process input of any size.
//
// Construct a Stream from an io.Reader and call its Parse method:
//
//	s := jsax.NewStream(input, nil)
//	st, err := s.Parse(handler)
//	if err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	} else if st == jsax.Cancelled {
//	   log.Print("Handler stopped the parse")
//	}
//
// Parse has three outcomes: Completed, when the input was fully processed;
// Cancelled, when a Handler method returned Cancel; and Failed, with an
// error. A syntax error has concrete type *jsax.SyntaxError, and reports the
// byte offset and line of the error along with the surrounding input. I/O
// errors from the reader are returned unchanged.
//
// The Run function parses an input and returns the result of the handler: the
// value of its Complete method if it implements Completer, otherwise the
// handler itself.
//
// # Handlers
//
// The Handler interface accepts parser events from a Stream. The methods of
// a handler correspond to the syntax of JSON values:
//
//	JSON type  | Methods                   | Description
//	---------- | ------------------------- | ---------------------------------
//	object     | BeginMap, MapKey, EndMap  | { "key": value, ... }
//	array      | BeginArray, EndArray      | [ value, ... ]
//	scalar     | Null, Bool, Number        | null, true, false, 1.5
//	string     | String                    | "text"
//
// Each method returns an Action. Returning Cancel stops the parse before any
// further input is scanned; any other value continues. Embed Base in a
// handler type to get no-op defaults for the events it does not need.
//
// String values and map keys are delivered unquoted and unescaped. Numbers
// are delivered as undecoded text; see Number.Int64 and Number.Float64. A
// byte slice passed to a handler is only valid for the duration of the call.
//
// The parser ensures that corresponding Begin and End methods are correctly
// paired, and that exactly one value follows each MapKey, or that a
// SyntaxError is reported.
//
// # Options
//
// By default the parser accepts exactly one RFC 8259 JSON value. The Flags in
// Options enable lenient modes: comments, unvalidated strings, trailing
// garbage after the value, multiple top-level values, and partial values
// truncated at the end of the input. The ChunkSize option sets the size of
// reads from the input.
//
// # Scanning
//
// The Scanner type implements the lexical scanner used by Stream. It accepts
// input in chunks of any size, and carries a token split across chunks over
// to the next chunk.
package jsax
