// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

import (
	"fmt"
	"unicode/utf8"

	"go4.org/mem"
)

// lexState records which kind of token the scanner is in the middle of.
type lexState byte

const (
	lexNone    lexState = iota // between tokens
	lexString                  // after the opening quote of a string
	lexNumber                  // inside a number
	lexLiteral                 // inside true, false, or null
	lexComment                 // inside a comment
)

// numState tracks progress through the grammar of a number.
type numState byte

const (
	numMinus     numState = iota // after a leading "-"
	numZero                      // after a leading "0"
	numInt                       // in integer digits
	numDot                       // after "."
	numFrac                      // in fraction digits
	numExp                       // after "e" or "E"
	numExpSign                   // after the sign of an exponent
	numExpDigits                 // in exponent digits
)

// comState tracks progress through a comment.
type comState byte

const (
	comStart comState = iota // after the initial "/"
	comLine                  // inside a line comment
	comBlock                 // inside a block comment
)

var (
	litTrue  = mem.S("true")
	litFalse = mem.S("false")
	litNull  = mem.S("null")
)

// A Scanner is an incremental lexical scanner for JSON. Input is delivered to
// the scanner in chunks of arbitrary size by calls to Scan. A token that is
// split across chunks is carried over to the next call; no other input is
// retained between calls.
//
//	for len(data) != 0 {
//	   n, ok, err := s.Scan(data)
//	   if err != nil {
//	      log.Fatalf("Scan failed: %v", err)
//	   }
//	   data = data[n:]
//	   if ok {
//	      log.Printf("Next token: %v", s.Token())
//	   }
//	}
//
// Once the input is exhausted, call Finish to complete the last token.
type Scanner struct {
	comments bool // allow comments
	validate bool // check strings for UTF-8 and control characters

	state lexState
	tok   Token
	text  []byte // text of the current token
	carry []byte // start of a token split across chunks
	err   error  // sticky error

	// Token sub-states, preserved across chunk boundaries.
	esc  bool     // string: after a backslash
	hex  int      // string: hex digits remaining in a \u escape
	need int      // string: UTF-8 continuation bytes remaining
	ubuf [4]byte  // string: current UTF-8 sequence
	un   int      // string: length of ubuf
	num  numState // number
	lit  mem.RO   // literal: expected spelling
	nlit int      // literal: bytes matched so far
	com  comState // comment
	star bool     // comment: previous byte was "*"

	off      int64 // offset of the next unread byte
	pos, end int64 // start and end offsets of current token

	line    int   // current line number, 0-based
	lineOff int64 // offset of the first byte of the current line
	first   LineCol
	last    LineCol
}

// NewScanner constructs a new lexical scanner. By default comments are
// rejected and strings are validated.
func NewScanner() *Scanner { return &Scanner{validate: true} }

// AllowComments configures the scanner to report (true) or reject (false)
// comment tokens. When enabled, block comments (/* ... */) and line comments
// (// ...) are accepted wherever whitespace is, and reported as tokens.
func (s *Scanner) AllowComments(ok bool) { s.comments = ok }

// ValidateStrings configures the scanner to check (true) or not check (false)
// that strings are valid UTF-8 without unescaped control characters.
func (s *Scanner) ValidateStrings(ok bool) { s.validate = ok }

// Scan scans data, which continues the input after the data passed to
// previous calls, for the next token. It returns the number of bytes of data
// consumed, and reports whether a complete token is available.
//
// If Scan reports false without error, all of data was consumed without
// completing a token, and the caller should call Scan again with more input
// or call Finish at the end of the input.
//
// Once Scan reports an error, all further calls report the same error.
func (s *Scanner) Scan(data []byte) (int, bool, error) {
	if s.err != nil {
		return 0, false, s.err
	}

	i, tstart := 0, 0
	if s.state == lexNone {
		s.tok, s.text, s.carry = Invalid, nil, s.carry[:0]

		// Discard whitespace.
		for i < len(data) && isSpace(data[i]) {
			if data[i] == '\n' {
				s.newline(i)
			}
			i++
		}
		if i == len(data) {
			return s.consume(i), false, nil
		}

		tstart = i
		s.pos = s.off + int64(i)
		s.first = s.locate(i)
		ch := data[i]
		i++

		switch {
		case ch == '"':
			s.state, s.tok = lexString, String
			s.esc, s.hex, s.need = false, 0, 0

		case isNumStart(ch):
			s.state = lexNumber
			switch ch {
			case '-':
				s.num = numMinus
			case '0':
				s.num = numZero
			default:
				s.num = numInt
			}

		case ch == 't' || ch == 'f' || ch == 'n':
			s.state = lexLiteral
			switch ch {
			case 't':
				s.tok, s.lit = True, litTrue
			case 'f':
				s.tok, s.lit = False, litFalse
			case 'n':
				s.tok, s.lit = Null, litNull
			}
			s.nlit = 1

		case ch == '/' && s.comments:
			s.state, s.com = lexComment, comStart

		default:
			if t, ok := selfDelim(ch); ok {
				s.tok = t
				return s.complete(data, tstart, i)
			}
			return i - 1, false, s.failAt(i-1, "unexpected %s", byteLabel(ch))
		}
	}

	var end int
	var done bool
	var err error
	switch s.state {
	case lexString:
		end, done, err = s.scanString(data, i)
	case lexNumber:
		end, done, err = s.scanNumber(data, i)
	case lexLiteral:
		end, done, err = s.scanLiteral(data, i)
	case lexComment:
		end, done, err = s.scanComment(data, i)
	default:
		panic(fmt.Sprintf("scanner: invalid state %d", s.state))
	}
	if err != nil {
		return end, false, err
	} else if !done {
		s.carry = append(s.carry, data[tstart:]...)
		return s.consume(len(data)), false, nil
	}
	return s.complete(data, tstart, end)
}

// Finish reports the end of the input to s. If a number, literal, or line
// comment was in progress, it is completed and Finish reports true. If no
// token was in progress, Finish reports false. Any other incomplete token is
// an error.
func (s *Scanner) Finish() (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	switch s.state {
	case lexNone:
		s.tok, s.text, s.carry = Invalid, nil, s.carry[:0]
		return false, nil

	case lexString:
		return false, s.failAt(0, "unterminated string")

	case lexNumber:
		switch s.num {
		case numZero, numInt:
			s.tok = Integer
		case numFrac, numExpDigits:
			s.tok = Float
		default:
			return false, s.failAt(0, "%s", numError(s.num))
		}

	case lexLiteral:
		if s.nlit != s.lit.Len() {
			return false, s.failAt(0, "invalid literal %q", s.carry)
		}

	case lexComment:
		if s.com != comLine {
			return false, s.failAt(0, "unterminated comment")
		}
		s.tok = LineComment
	}
	_, ok, err := s.complete(nil, 0, 0)
	return ok, err
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Scan or Finish.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token. The return value is
// only valid until the next call of Scan or Finish. The caller must copy the
// contents of the returned slice if it is needed beyond that.
func (s *Scanner) Text() []byte { return s.text }

// Copy returns a copy of the undecoded text of the current token.
func (s *Scanner) Copy() []byte { return append([]byte(nil), s.text...) }

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.pos, End: s.end} }

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{Span: s.Span(), First: s.first, Last: s.last}
}

// Offset returns the input offset of the next unread byte.
func (s *Scanner) Offset() int64 { return s.off }

// complete records that the current token ends at data[end], where its text
// begins at data[tstart] or in the carry buffer.
func (s *Scanner) complete(data []byte, tstart, end int) (int, bool, error) {
	if len(s.carry) == 0 {
		s.text = data[tstart:end]
	} else {
		s.carry = append(s.carry, data[tstart:end]...)
		s.text = s.carry
	}
	s.state = lexNone
	s.end = s.off + int64(end)
	s.last = s.locate(end)
	return s.consume(end), true, nil
}

// scanString scans the body of a string beginning at data[i].
func (s *Scanner) scanString(data []byte, i int) (int, bool, error) {
	for ; i < len(data); i++ {
		ch := data[i]
		switch {
		case s.hex > 0:
			if !isHexDigit(ch) {
				return i, false, s.failAt(i, "invalid %s in Unicode escape", byteLabel(ch))
			}
			s.hex--

		case s.esc:
			switch ch {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
			case 'u':
				s.hex = 4
			default:
				return i, false, s.failAt(i, "invalid %s after escape", byteLabel(ch))
			}
			s.esc = false

		case s.need > 0:
			if ch&0xc0 != 0x80 {
				return i, false, s.failAt(i, "invalid UTF-8 in string")
			}
			s.ubuf[s.un] = ch
			s.un++
			s.need--
			if s.need == 0 && !utf8.Valid(s.ubuf[:s.un]) {
				return i, false, s.failAt(i, "invalid UTF-8 in string")
			}

		case ch == '"':
			return i + 1, true, nil

		case ch == '\\':
			s.esc = true

		case !s.validate:
			if ch == '\n' {
				s.newline(i)
			}

		case ch < ' ':
			return i, false, s.failAt(i, "unescaped control %s in string", byteLabel(ch))

		case ch >= utf8.RuneSelf:
			n := utf8Continuations(ch)
			if n == 0 {
				return i, false, s.failAt(i, "invalid UTF-8 in string")
			}
			s.ubuf[0], s.un, s.need = ch, 1, n
		}
	}
	return i, false, nil
}

// scanNumber scans the remainder of a number beginning at data[i].  A number
// is complete at the first byte that cannot continue it, which is not part of
// the token.
func (s *Scanner) scanNumber(data []byte, i int) (int, bool, error) {
	for ; i < len(data); i++ {
		ch := data[i]
		switch s.num {
		case numMinus:
			if ch == '0' {
				s.num = numZero
			} else if isDigit(ch) {
				s.num = numInt
			} else {
				return i, false, s.failAt(i, "%s", numError(s.num))
			}

		case numZero:
			// A leading zero is OK if it's the only digit.
			// OK: 0, 0.1, -0.1; Bad: -01, 01.2, 00.1.
			if isDigit(ch) {
				return i, false, s.failAt(i, "extra leading zeroes")
			} else if ch == '.' {
				s.num = numDot
			} else if ch == 'e' || ch == 'E' {
				s.num = numExp
			} else {
				s.tok = Integer
				return i, true, nil
			}

		case numInt:
			if ch == '.' {
				s.num = numDot
			} else if ch == 'e' || ch == 'E' {
				s.num = numExp
			} else if !isDigit(ch) {
				s.tok = Integer
				return i, true, nil
			}

		case numDot:
			if !isDigit(ch) {
				return i, false, s.failAt(i, "%s", numError(s.num))
			}
			s.num = numFrac

		case numFrac:
			if ch == 'e' || ch == 'E' {
				s.num = numExp
			} else if !isDigit(ch) {
				s.tok = Float
				return i, true, nil
			}

		case numExp:
			if ch == '-' || ch == '+' {
				s.num = numExpSign
			} else if isDigit(ch) {
				s.num = numExpDigits
			} else {
				return i, false, s.failAt(i, "%s", numError(s.num))
			}

		case numExpSign:
			if !isDigit(ch) {
				return i, false, s.failAt(i, "%s", numError(s.num))
			}
			s.num = numExpDigits

		case numExpDigits:
			if !isDigit(ch) {
				s.tok = Float
				return i, true, nil
			}
		}
	}
	return i, false, nil
}

// scanLiteral scans the remainder of a constant beginning at data[i].
func (s *Scanner) scanLiteral(data []byte, i int) (int, bool, error) {
	for ; i < len(data); i++ {
		ch := data[i]
		if !isNameByte(ch) {
			if s.nlit != s.lit.Len() {
				return i, false, s.failAt(i, "incomplete literal %s", s.lit.StringCopy())
			}
			return i, true, nil
		} else if s.nlit >= s.lit.Len() || ch != s.lit.At(s.nlit) {
			return i, false, s.failAt(i, "invalid %s in literal %s", byteLabel(ch), s.lit.StringCopy())
		}
		s.nlit++
	}
	return i, false, nil
}

// scanComment scans the remainder of a comment beginning at data[i].
func (s *Scanner) scanComment(data []byte, i int) (int, bool, error) {
	for ; i < len(data); i++ {
		ch := data[i]
		switch s.com {
		case comStart:
			if ch == '/' {
				s.com = comLine
			} else if ch == '*' {
				s.com, s.star = comBlock, false
			} else {
				return i, false, s.failAt(i, "invalid %s in comment", byteLabel(ch))
			}

		case comLine:
			if ch == '\n' {
				s.newline(i)
				s.tok = LineComment
				return i + 1, true, nil
			}

		case comBlock:
			if ch == '\n' {
				s.newline(i)
			} else if s.star && ch == '/' {
				s.tok = BlockComment
				return i + 1, true, nil
			}
			s.star = ch == '*'
		}
	}
	return i, false, nil
}

// consume advances the input offset past n bytes of the current chunk.
func (s *Scanner) consume(n int) int {
	s.off += int64(n)
	return n
}

// newline records a newline at index i of the current chunk.
func (s *Scanner) newline(i int) {
	s.line++
	s.lineOff = s.off + int64(i) + 1
}

// locate returns the line and column of index i of the current chunk.
func (s *Scanner) locate(i int) LineCol {
	return LineCol{Line: s.line + 1, Column: int(s.off + int64(i) - s.lineOff)}
}

// failAt records a syntax error at index i of the current chunk.
func (s *Scanner) failAt(i int, msg string, args ...any) error {
	s.err = &SyntaxError{
		Offset:   s.off + int64(i),
		Location: s.locate(i),
		Message:  fmt.Sprintf(msg, args...),
	}
	return s.err
}

func numError(st numState) string {
	switch st {
	case numMinus:
		return "missing digits after minus sign"
	case numDot:
		return "no digits after decimal point"
	case numExp, numExpSign:
		return "missing exponent digits"
	}
	return "invalid number"
}

// byteLabel returns a human-readable quotation of a single input byte.
func byteLabel(ch byte) string {
	if ch < utf8.RuneSelf {
		return fmt.Sprintf("%q", rune(ch))
	}
	return fmt.Sprintf("byte 0x%02x", ch)
}

// utf8Continuations reports how many continuation bytes follow the UTF-8 lead
// byte ch, or 0 if ch cannot begin a multi-byte sequence.
func utf8Continuations(ch byte) int {
	switch {
	case ch >= 0xc2 && ch <= 0xdf:
		return 1
	case ch >= 0xe0 && ch <= 0xef:
		return 2
	case ch >= 0xf0 && ch <= 0xf4:
		return 3
	}
	return 0
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNumStart(ch byte) bool { return ch == '-' || isDigit(ch) }
func isDigit(ch byte) bool    { return '0' <= ch && ch <= '9' }

func isNameByte(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || isDigit(ch) || ch == '_'
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
