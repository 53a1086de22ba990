// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/creachadair/jsax/internal/escape"

	"go4.org/mem"
)

// pstate is a state of the structural parser. The parser keeps a stack of
// these, one for the top level and one for each open map or array.
type pstate byte

const (
	psStart          pstate = iota // expecting a top-level value
	psDone                         // after a complete top-level value
	psArrayStart                   // after "["
	psArrayNeedValue               // after "," in an array
	psArrayGotValue                // after an array element
	psMapStart                     // after "{"
	psMapNeedKey                   // after "," in a map
	psMapSep                       // after a map key
	psMapNeedValue                 // after ":"
	psMapGotValue                  // after a map value
)

// outcome is the result of delivering input to the parser.
type outcome byte

const (
	needMore  outcome = iota // more input is wanted
	cancelled                // a handler returned Cancel
	finished                 // the value is complete and further input is ignored
)

// tailBytes is the number of bytes from the end of the most recent chunk
// retained for the context of errors at the end of the input.
const tailBytes = 2 * contextBytes

// A parser consumes tokens from a scanner and delivers events to a handler.
// A parser is used for a single input and then discarded.
type parser struct {
	sc    *Scanner
	h     Handler
	ch    CommentHandler // nil if h does not handle comments
	flags Flags
	stk   []pstate
	dec   []byte // buffer for unescaped strings

	tail    []byte // end of the previous chunk, for error context
	tailOff int64  // input offset of tail[0]
}

func newParser(h Handler, flags Flags) *parser {
	sc := NewScanner()
	sc.AllowComments(flags&AllowComments != 0)
	sc.ValidateStrings(flags&DontValidateStrings == 0)
	ch, _ := h.(CommentHandler)
	return &parser{
		sc:    sc,
		h:     h,
		ch:    ch,
		flags: flags,
		stk:   []pstate{psStart},
	}
}

// feed delivers a chunk of input to the parser. Any error it reports has
// concrete type *SyntaxError.
func (p *parser) feed(chunk []byte) (outcome, error) {
	base := p.sc.Offset()
	defer p.saveTail(chunk, base)

	for data := chunk; ; {
		n, ok, err := p.sc.Scan(data)
		data = data[n:]
		if err != nil {
			return needMore, p.withContext(err, chunk, base)
		} else if !ok {
			return needMore, nil
		}
		oc, err := p.token(p.sc.Token())
		if err != nil {
			return needMore, p.withContext(err, chunk, base)
		} else if oc != needMore {
			return oc, nil
		}
	}
}

// finish reports the end of the input to the parser, and checks that the
// input was complete.
func (p *parser) finish() (outcome, error) {
	ok, err := p.sc.Finish()
	if err != nil {
		return needMore, p.withContext(err, p.tail, p.tailOff)
	} else if ok {
		oc, err := p.token(p.sc.Token())
		if err != nil {
			return needMore, p.withContext(err, p.tail, p.tailOff)
		} else if oc == cancelled {
			return oc, nil
		}
	}

	if top := p.top(); len(p.stk) == 1 && top == psDone {
		return finished, nil
	} else if p.flags&AllowPartialValues != 0 && p.atBoundary() {
		return finished, nil
	}
	return needMore, p.withContext(p.errorAtEnd(), p.tail, p.tailOff)
}

// atBoundary reports whether the parser is stopped at a value boundary of the
// outermost container, or before any input.
func (p *parser) atBoundary() bool {
	switch len(p.stk) {
	case 1:
		return p.top() == psStart
	case 2:
		switch p.top() {
		case psArrayStart, psArrayNeedValue, psArrayGotValue, psMapStart, psMapNeedKey, psMapGotValue:
			return true
		}
	}
	return false
}

// token delivers a single token to the parser.
func (p *parser) token(tok Token) (outcome, error) {
	if tok == LineComment || tok == BlockComment {
		if p.ch != nil {
			p.ch.Comment(p.sc.Text())
		}
		return needMore, nil
	}

	switch top := p.top(); top {
	case psDone:
		if p.flags&AllowMultipleValues == 0 {
			return needMore, p.syntaxError("unexpected %v after top-level value", tok)
		}
		return p.value(tok)

	case psStart, psArrayNeedValue, psMapNeedValue:
		return p.value(tok)

	case psArrayStart:
		if tok == RSquare {
			return p.end(p.h.EndArray())
		}
		return p.value(tok)

	case psArrayGotValue:
		switch tok {
		case Comma:
			p.setTop(psArrayNeedValue)
			return needMore, nil
		case RSquare:
			return p.end(p.h.EndArray())
		}
		return needMore, p.expected(tok, Comma, RSquare)

	case psMapStart, psMapNeedKey:
		if tok == RBrace && top == psMapStart {
			return p.end(p.h.EndMap())
		} else if tok != String {
			if top == psMapStart {
				return needMore, p.expected(tok, String, RBrace)
			}
			return needMore, p.expected(tok, String)
		}
		key, err := p.unquote()
		if err != nil {
			return needMore, err
		}
		p.setTop(psMapSep)
		return p.check(p.h.MapKey(key))

	case psMapSep:
		if tok != Colon {
			return needMore, p.expected(tok, Colon)
		}
		p.setTop(psMapNeedValue)
		return needMore, nil

	case psMapGotValue:
		switch tok {
		case Comma:
			p.setTop(psMapNeedKey)
			return needMore, nil
		case RBrace:
			return p.end(p.h.EndMap())
		}
		return needMore, p.expected(tok, Comma, RBrace)

	default:
		panic(fmt.Sprintf("parser: invalid state %d", top))
	}
}

// value handles a token where a value is expected.
func (p *parser) value(tok Token) (outcome, error) {
	if !tok.isValue() {
		return needMore, p.syntaxError("unexpected %v", tok)
	}
	p.gotValue()

	switch tok {
	case LBrace:
		p.stk = append(p.stk, psMapStart)
		return p.check(p.h.BeginMap())
	case LSquare:
		p.stk = append(p.stk, psArrayStart)
		return p.check(p.h.BeginArray())
	case String:
		s, err := p.unquote()
		if err != nil {
			return needMore, err
		}
		return p.check(p.h.String(s))
	case Integer, Float:
		return p.check(p.h.Number(Number{Text: p.sc.Text(), Integer: tok == Integer}))
	case True, False:
		return p.check(p.h.Bool(tok == True))
	default: // Null
		return p.check(p.h.Null())
	}
}

// gotValue updates the current state to account for a value beginning there.
func (p *parser) gotValue() {
	switch p.top() {
	case psStart, psDone:
		p.setTop(psDone)
	case psArrayStart, psArrayNeedValue:
		p.setTop(psArrayGotValue)
	case psMapNeedValue:
		p.setTop(psMapGotValue)
	}
}

// end pops the innermost container after its closing event was dispatched.
func (p *parser) end(a Action) (outcome, error) {
	p.stk = p.stk[:len(p.stk)-1]
	return p.check(a)
}

// check reports the outcome of dispatching an event with result a.
func (p *parser) check(a Action) (outcome, error) {
	if a == Cancel {
		return cancelled, nil
	}
	if len(p.stk) == 1 && p.stk[0] == psDone &&
		p.flags&(AllowTrailingGarbage|AllowMultipleValues) == AllowTrailingGarbage {
		return finished, nil
	}
	return needMore, nil
}

// unquote returns the decoded contents of the current string token. The
// result is only valid until the next call.
func (p *parser) unquote() ([]byte, error) {
	text := p.sc.Text()
	body := text[1 : len(text)-1]
	if bytes.IndexByte(body, '\\') < 0 {
		return body, nil
	}
	dec, err := escape.Unquote(p.dec[:0], mem.B(body))
	if err != nil {
		return nil, p.syntaxError("invalid string: %v", err)
	}
	p.dec = dec
	return dec, nil
}

func (p *parser) top() pstate      { return p.stk[len(p.stk)-1] }
func (p *parser) setTop(st pstate) { p.stk[len(p.stk)-1] = st }

// syntaxError reports an error at the location of the current token.
func (p *parser) syntaxError(msg string, args ...any) error {
	loc := p.sc.Location()
	return &SyntaxError{
		Offset:   loc.Pos,
		Location: loc.First,
		Message:  fmt.Sprintf(msg, args...),
	}
}

// expected reports an error for an unexpected token.
func (p *parser) expected(got Token, tokens ...Token) error {
	return p.syntaxError("%s", tokLabel(tokens, got))
}

// errorAtEnd reports an error for input that ended before the parse was
// complete.
func (p *parser) errorAtEnd() error {
	var want string
	switch p.top() {
	case psStart:
		want = "a value"
	case psArrayStart:
		want = `"]" or a value`
	case psArrayNeedValue, psMapNeedValue:
		want = "a value"
	case psArrayGotValue:
		want = `"," or "]"`
	case psMapStart:
		want = `string or "}"`
	case psMapNeedKey:
		want = "string"
	case psMapSep:
		want = `":"`
	case psMapGotValue:
		want = `"," or "}"`
	}
	return &SyntaxError{
		Offset:   p.sc.Offset(),
		Location: p.sc.locate(0),
		Message:  fmt.Sprintf("unexpected end of input, expected %s", want),
	}
}

// withContext attaches context to err, if it is a syntax error. The context
// comes from chunk, whose first byte is at offset base, or failing that from
// the end of the previous input.
func (p *parser) withContext(err error, chunk []byte, base int64) error {
	if se, ok := err.(*SyntaxError); ok {
		se.setContext(chunk, base)
		se.setContext(p.tail, p.tailOff)
	}
	return err
}

// saveTail retains the end of chunk for error context.
func (p *parser) saveTail(chunk []byte, base int64) {
	p.tail = append(p.tail, chunk[max(0, len(chunk)-tailBytes):]...)
	if n := len(p.tail) - tailBytes; n > 0 {
		copy(p.tail, p.tail[n:])
		p.tail = p.tail[:tailBytes]
	}
	p.tailOff = base + int64(len(chunk)-len(p.tail))
}

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []Token, got any) string {
	var exp string
	if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, len(tokens)-1)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}
