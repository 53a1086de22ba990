// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package callback implements a registration table of event callbacks for the
// jsax stream parser.
//
// A Table associates functions with the names of parser events, for a
// consumer type C. Each function receives the consumer value as its first
// argument, followed by the payload of the event, if any:
//
//	Name         Payload type
//	-----------  ------------------
//	null         (none)
//	boolean      bool
//	integer      int64
//	double       float64
//	number       []byte or string
//	string       []byte or string
//	map_key      []byte or string
//	start_map    (none)
//	end_map      (none)
//	start_array  (none)
//	end_array    (none)
//
// A function may return nothing, or a jsax.Action. The shape of each function
// is checked when it is registered, and Register reports an error if it does
// not fit the event. Events with no registered function are accepted
// silently.
//
// Example:
//
//	type stats struct{ strings, numbers int }
//
//	var table = callback.New[*stats]().
//	   MustRegister("string", func(s *stats, _ []byte) { s.strings++ }).
//	   MustRegister("number", func(s *stats, _ []byte) { s.numbers++ })
//
//	v, _, err := jsax.Run(input, table.Bind(new(stats)), nil)
//
// # Numbers
//
// A number may be reported to the "number" callback as text, or to the
// "integer" and "double" callbacks as a decoded value. If a "number" callback
// is registered, it receives all numbers and the "integer" and "double"
// callbacks are not used. Registering "number" after "integer" or "double",
// or the other way around, is allowed, but is recorded as a Warning.
//
// Otherwise, a number without a fraction or exponent is reported to the
// "integer" callback, unless its value does not fit in an int64, in which
// case it is reported to "double" like all other numbers. A number too large
// for a float64 is reported to "double" as an infinity. Neither case is a
// parse error, unlike YAJL, which reports integer and numeric overflow as
// errors.
package callback

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/creachadair/jsax"
)

// Table is a registration table of event callbacks for consumers of type C.
// The zero value is ready for use, and has no callbacks registered.
//
// A Table must not be modified concurrently with its use by a parse. Once
// setup is complete, a Table may be shared by concurrent parses, each with
// its own consumer value.
type Table[C any] struct {
	null, startMap, endMap, startArray, endArray func(C) jsax.Action

	boolean func(C, bool) jsax.Action
	integer func(C, int64) jsax.Action
	double  func(C, float64) jsax.Action

	number, str, mapKey func(C, []byte) jsax.Action

	complete func(C) any
	warnings []Warning
}

// New constructs a new empty Table for consumers of type C.
func New[C any]() *Table[C] { return new(Table[C]) }

// Register binds fn as the callback for the named event, replacing any
// previous callback for that event. If name is not a known event name, or fn
// does not have a valid shape for the event, Register reports an error of
// concrete type *RegistrationError and t is not modified.
func (t *Table[C]) Register(name string, fn any) error {
	ev, ok := eventNames[name]
	if !ok {
		return regError(name, fn, "unknown event name")
	}
	if !t.bind(ev, fn) {
		return regError(name, fn, diagnose[C](ev, fn))
	}

	switch ev {
	case evNumber:
		var shadowed []string
		if t.integer != nil {
			shadowed = append(shadowed, "integer")
		}
		if t.double != nil {
			shadowed = append(shadowed, "double")
		}
		if len(shadowed) != 0 {
			t.warnings = append(t.warnings, Warning{
				Name:    name,
				Message: fmt.Sprintf("number callback disables %s", strings.Join(shadowed, " and ")),
			})
		}
	case evInteger, evDouble:
		if t.number != nil {
			t.warnings = append(t.warnings, Warning{
				Name:    name,
				Message: fmt.Sprintf("%s callback has no effect after number", name),
			})
		}
	}
	return nil
}

// MustRegister is as Register, but panics if registration fails.  It returns
// t to permit chaining.
func (t *Table[C]) MustRegister(name string, fn any) *Table[C] {
	if err := t.Register(name, fn); err != nil {
		panic(err)
	}
	return t
}

// OnComplete sets the completion function for the table. When a parse using
// a handler from t.Bind(c) is finished, the result is complete(c). By default
// the result is c itself.
func (t *Table[C]) OnComplete(complete func(C) any) *Table[C] {
	t.complete = complete
	return t
}

// Warnings returns the warnings recorded by successful registrations, in the
// order they occurred.
func (t *Table[C]) Warnings() []Warning { return t.warnings }

// Bind returns a jsax.Handler that dispatches events to the callbacks of t,
// with c as the consumer. The handler also implements jsax.Completer.
// Changes to t after Bind are visible to the handler.
func (t *Table[C]) Bind(c C) jsax.Handler { return handler[C]{t: t, c: c} }

// bind installs fn as the callback for ev, and reports whether fn had a
// shape that was accepted.
func (t *Table[C]) bind(ev event, fn any) bool {
	switch ev {
	case evNull, evStartMap, evEndMap, evStartArray, evEndArray:
		f := noPayload[C](fn)
		if f == nil {
			return false
		}
		switch ev {
		case evNull:
			t.null = f
		case evStartMap:
			t.startMap = f
		case evEndMap:
			t.endMap = f
		case evStartArray:
			t.startArray = f
		default:
			t.endArray = f
		}

	case evBoolean:
		f := withPayload[C, bool](fn)
		if f == nil {
			return false
		}
		t.boolean = f

	case evInteger:
		f := withPayload[C, int64](fn)
		if f == nil {
			return false
		}
		t.integer = f

	case evDouble:
		f := withPayload[C, float64](fn)
		if f == nil {
			return false
		}
		t.double = f

	default: // evNumber, evString, evMapKey
		f := withText[C](fn)
		if f == nil {
			return false
		}
		switch ev {
		case evNumber:
			t.number = f
		case evString:
			t.str = f
		default:
			t.mapKey = f
		}
	}
	return true
}

func noPayload[C any](fn any) func(C) jsax.Action {
	switch f := fn.(type) {
	case func(C) jsax.Action:
		return f
	case func(C):
		return func(c C) jsax.Action { f(c); return jsax.Continue }
	}
	return nil
}

func withPayload[C, T any](fn any) func(C, T) jsax.Action {
	switch f := fn.(type) {
	case func(C, T) jsax.Action:
		return f
	case func(C, T):
		return func(c C, v T) jsax.Action { f(c, v); return jsax.Continue }
	}
	return nil
}

func withText[C any](fn any) func(C, []byte) jsax.Action {
	if f := withPayload[C, []byte](fn); f != nil {
		return f
	}
	switch f := fn.(type) {
	case func(C, string) jsax.Action:
		return func(c C, v []byte) jsax.Action { return f(c, string(v)) }
	case func(C, string):
		return func(c C, v []byte) jsax.Action { f(c, string(v)); return jsax.Continue }
	}
	return nil
}

// handler implements jsax.Handler by dispatching to the callbacks of a Table.
type handler[C any] struct {
	t *Table[C]
	c C
}

func (h handler[C]) Null() jsax.Action       { return call(h.t.null, h.c) }
func (h handler[C]) BeginMap() jsax.Action   { return call(h.t.startMap, h.c) }
func (h handler[C]) EndMap() jsax.Action     { return call(h.t.endMap, h.c) }
func (h handler[C]) BeginArray() jsax.Action { return call(h.t.startArray, h.c) }
func (h handler[C]) EndArray() jsax.Action   { return call(h.t.endArray, h.c) }

func (h handler[C]) Bool(v bool) jsax.Action     { return callWith(h.t.boolean, h.c, v) }
func (h handler[C]) String(s []byte) jsax.Action { return callWith(h.t.str, h.c, s) }
func (h handler[C]) MapKey(k []byte) jsax.Action { return callWith(h.t.mapKey, h.c, k) }

func (h handler[C]) Number(n jsax.Number) jsax.Action {
	t := h.t
	if t.number != nil {
		return t.number(h.c, n.Text)
	}
	if n.Integer {
		if v, err := n.Int64(); err == nil {
			return callWith(t.integer, h.c, v)
		}
	}
	if t.double == nil {
		return jsax.Continue
	}
	v, _ := n.Float64() // infinite if out of range
	return t.double(h.c, v)
}

// Complete implements jsax.Completer.
func (h handler[C]) Complete() any {
	if h.t.complete != nil {
		return h.t.complete(h.c)
	}
	return h.c
}

func call[C any](f func(C) jsax.Action, c C) jsax.Action {
	if f == nil {
		return jsax.Continue
	}
	return f(c)
}

func callWith[C, T any](f func(C, T) jsax.Action, c C, v T) jsax.Action {
	if f == nil {
		return jsax.Continue
	}
	return f(c, v)
}

// Warning is a non-fatal diagnostic from registration.
type Warning struct {
	Name    string // the event name being registered
	Message string
}

func (w Warning) String() string { return w.Name + ": " + w.Message }

// RegistrationError is the concrete type of errors reported by Register.
type RegistrationError struct {
	Name    string // the event name
	Type    string // the type of the rejected callback
	Message string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %q (%s): %s", e.Name, e.Type, e.Message)
}

func regError(name string, fn any, msg string) error {
	return &RegistrationError{Name: name, Type: fmt.Sprintf("%T", fn), Message: msg}
}

type event int

const (
	evNull event = iota
	evBoolean
	evInteger
	evDouble
	evNumber
	evString
	evMapKey
	evStartMap
	evEndMap
	evStartArray
	evEndArray
)

var eventNames = map[string]event{
	"null":        evNull,
	"boolean":     evBoolean,
	"integer":     evInteger,
	"double":      evDouble,
	"number":      evNumber,
	"string":      evString,
	"map_key":     evMapKey,
	"start_map":   evStartMap,
	"end_map":     evEndMap,
	"start_array": evStartArray,
	"end_array":   evEndArray,
}

var (
	actionType = reflect.TypeFor[jsax.Action]()
	bytesType  = reflect.TypeFor[[]byte]()
	stringType = reflect.TypeFor[string]()
)

// payloadTypes gives the permitted payload types for each event, or nil for
// events without a payload.
var payloadTypes = map[event][]reflect.Type{
	evBoolean: {reflect.TypeFor[bool]()},
	evInteger: {reflect.TypeFor[int64]()},
	evDouble:  {reflect.TypeFor[float64]()},
	evNumber:  {bytesType, stringType},
	evString:  {bytesType, stringType},
	evMapKey:  {bytesType, stringType},
}

// diagnose describes why fn is not an acceptable callback for ev with
// consumer type C.
func diagnose[C any](ev event, fn any) string {
	ft := reflect.TypeOf(fn)
	if ft == nil || ft.Kind() != reflect.Func {
		return "callback is not a function"
	}
	if ft.IsVariadic() {
		return "callback must not be variadic"
	}

	want := payloadTypes[ev]
	nin := 1
	if want != nil {
		nin = 2
	}
	if ft.NumIn() != nin {
		return fmt.Sprintf("callback has %d parameters, want %d", ft.NumIn(), nin)
	}
	ctype := reflect.TypeFor[C]()
	if ft.In(0) != ctype {
		return fmt.Sprintf("first parameter is %v, want %v", ft.In(0), ctype)
	}
	if want != nil {
		pt := ft.In(1)
		if pt.Kind() == reflect.Interface {
			return fmt.Sprintf("untyped parameter %v", pt)
		}
		var names []string
		for _, w := range want {
			if pt == w {
				names = nil
				break
			}
			names = append(names, w.String())
		}
		if names != nil {
			return fmt.Sprintf("parameter is %v, want %s", pt, strings.Join(names, " or "))
		}
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) != actionType {
			return fmt.Sprintf("result is %v, want %v", ft.Out(0), actionType)
		}
	default:
		return fmt.Sprintf("callback has %d results, want at most 1", ft.NumOut())
	}
	return fmt.Sprintf("unsupported callback type %T", fn)
}
