// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax_test

import (
	"strings"
	"testing"

	"github.com/creachadair/jsax"
	"github.com/google/go-cmp/cmp"
)

// chunkSizes are the sizes in which test inputs are fed to the scanner.
var chunkSizes = []int{1, 2, 3, 5, 64}

type scanned struct {
	Tokens []jsax.Token
	Texts  []string
}

// scanAll scans input in chunks of n bytes, and returns the tokens and texts
// reported, along with the first error.
func scanAll(s *jsax.Scanner, input string, n int) (scanned, error) {
	var out scanned
	add := func() {
		out.Tokens = append(out.Tokens, s.Token())
		out.Texts = append(out.Texts, string(s.Text()))
	}
	for off := 0; off < len(input); off += n {
		data := []byte(input[off:min(off+n, len(input))])
		for len(data) != 0 {
			nr, ok, err := s.Scan(data)
			if err != nil {
				return out, err
			}
			data = data[nr:]
			if ok {
				add()
			}
		}
	}
	ok, err := s.Finish()
	if ok {
		add()
	}
	return out, err
}

func TestScanner(t *testing.T) {
	tests := []struct {
		input string
		want  []jsax.Token
	}{
		// Empty inputs
		{"", nil},
		{"  ", nil},
		{"\n\n  \n", nil},
		{"\t  \r\n \t  \r\n", nil},

		// Constants
		{"true false null", []jsax.Token{jsax.True, jsax.False, jsax.Null}},

		// Punctuation
		{"{ [ ] } , :", []jsax.Token{
			jsax.LBrace, jsax.LSquare, jsax.RSquare, jsax.RBrace, jsax.Comma, jsax.Colon,
		}},

		// Strings
		{`"" "a b c" "a\nb\tc"`, []jsax.Token{jsax.String, jsax.String, jsax.String}},
		{`"\"\\\/\b\f\n\r\t"`, []jsax.Token{jsax.String}},
		{`"\u0000\u01fc\uAA9c"`, []jsax.Token{jsax.String}},
		{"\"caf\xc3\xa9 \xe2\x82\xac \xf0\x9f\x98\x80\"", []jsax.Token{jsax.String}},

		// Numbers
		{`0 -1 5139 2.3 5e+9 3.6E+4 -0.001E-100 1e5`, []jsax.Token{
			jsax.Integer, jsax.Integer, jsax.Integer,
			jsax.Float, jsax.Float, jsax.Float, jsax.Float, jsax.Float,
		}},

		// Mixed types
		{`{true,"false":-15 null[]}`, []jsax.Token{
			jsax.LBrace, jsax.True, jsax.Comma, jsax.String, jsax.Colon,
			jsax.Integer, jsax.Null, jsax.LSquare, jsax.RSquare, jsax.RBrace,
		}},
		{`{"a": true, "b":[null, 1, 0.5]}`, []jsax.Token{
			jsax.LBrace,
			jsax.String, jsax.Colon, jsax.True, jsax.Comma,
			jsax.String, jsax.Colon,
			jsax.LSquare,
			jsax.Null, jsax.Comma, jsax.Integer, jsax.Comma, jsax.Float,
			jsax.RSquare,
			jsax.RBrace,
		}},
		{`"a",1,true
       false["b"]
       `, []jsax.Token{
			jsax.String, jsax.Comma, jsax.Integer, jsax.Comma, jsax.True,
			jsax.False, jsax.LSquare, jsax.String, jsax.RSquare,
		}},
	}

	for _, test := range tests {
		var first scanned
		for _, n := range chunkSizes {
			got, err := scanAll(jsax.NewScanner(), test.input, n)
			if err != nil {
				t.Errorf("Scan %#q (chunk %d) failed: %v", test.input, n, err)
				continue
			}
			if diff := cmp.Diff(test.want, got.Tokens); diff != "" {
				t.Errorf("Input: %#q (chunk %d)\nTokens: (-want, +got)\n%s", test.input, n, diff)
			}

			// The text of each token must not depend on how the input was split.
			if n == chunkSizes[0] {
				first = got
			} else if diff := cmp.Diff(first.Texts, got.Texts); diff != "" {
				t.Errorf("Input: %#q (chunk %d)\nTexts: (-first, +got)\n%s", test.input, n, diff)
			}
		}
	}
}

func TestScanner_withComments(t *testing.T) {
	tests := []struct {
		input string
		want  []jsax.Token
		coms  []string
	}{
		{"/* block comment */\n\n\n", []jsax.Token{jsax.BlockComment},
			[]string{"/* block comment */"}},
		{"// line 1\n\n// line 2\n", []jsax.Token{jsax.LineComment, jsax.LineComment},
			[]string{"// line 1\n", "// line 2\n"}}, // N.B. includes terminating newline, if present
		{"// line at EOF", []jsax.Token{jsax.LineComment},
			[]string{"// line at EOF"}},
		{`{
 "x": 1, // howdy do
 "y" /* hide me */ : 2.0 }`, []jsax.Token{
			jsax.LBrace, jsax.String, jsax.Colon, jsax.Integer, jsax.Comma, jsax.LineComment,
			jsax.String, jsax.BlockComment, jsax.Colon, jsax.Float, jsax.RBrace,
		}, []string{
			"// howdy do\n", "/* hide me */",
		}},

		{`"a" // line
false /*
  this is a comment
*/ 1 null [ {} ]`, []jsax.Token{
			jsax.String, jsax.LineComment, jsax.False, jsax.BlockComment,
			jsax.Integer, jsax.Null, jsax.LSquare, jsax.LBrace, jsax.RBrace, jsax.RSquare,
		}, []string{
			"// line\n", "/*\n  this is a comment\n*/",
		}},

		{"/* x */\n{\n}//foo", []jsax.Token{
			jsax.BlockComment, jsax.LBrace, jsax.RBrace, jsax.LineComment,
		}, []string{
			"/* x */", "//foo",
		}},

		{"/**\n*/", []jsax.Token{jsax.BlockComment}, []string{"/**\n*/"}},

		{`/**/"foo"/***/"bar"/****/"baz"/*****/false/*x*/null`, []jsax.Token{
			jsax.BlockComment, jsax.String, jsax.BlockComment, jsax.String,
			jsax.BlockComment, jsax.String, jsax.BlockComment, jsax.False,
			jsax.BlockComment, jsax.Null,
		}, []string{
			"/**/", "/***/", "/****/", "/*****/", "/*x*/",
		}},
	}

	for _, test := range tests {
		for _, n := range chunkSizes {
			s := jsax.NewScanner()
			s.AllowComments(true)
			got, err := scanAll(s, test.input, n)
			if err != nil {
				t.Errorf("Scan %#q (chunk %d) failed: %v", test.input, n, err)
				continue
			}
			if diff := cmp.Diff(test.want, got.Tokens); diff != "" {
				t.Errorf("Input: %#q (chunk %d)\nTokens: (-want, +got)\n%s", test.input, n, diff)
			}
			var coms []string
			for i, tok := range got.Tokens {
				if tok == jsax.LineComment || tok == jsax.BlockComment {
					coms = append(coms, got.Texts[i])
				}
			}
			if diff := cmp.Diff(test.coms, coms); diff != "" {
				t.Errorf("Input: %#q (chunk %d)\nComments: (-want, +got)\n%s", test.input, n, diff)
			}
		}
	}
}

func TestTokenString(t *testing.T) {
	tests := []struct {
		tok  jsax.Token
		want string
	}{
		{jsax.Integer, "integer"},
		{jsax.Float, "number"},
		{jsax.String, "string"},
		{jsax.RBrace, `"}"`},
		{jsax.LineComment, "line comment"},
		{jsax.Token(200), "invalid token"},
	}
	for _, test := range tests {
		if got := test.tok.String(); got != test.want {
			t.Errorf("Token(%d).String(): got %q, want %q", int(test.tok), got, test.want)
		}
	}
}

func TestScannerErrors(t *testing.T) {
	type result struct {
		Offset  int64
		Message string
	}
	tests := []struct {
		input    string
		comments bool
		want     result
	}{
		{`"abc`, false, result{4, "unterminated string"}},
		{`"\x"`, false, result{2, `invalid 'x' after escape`}},
		{`"\u12G4"`, false, result{5, `invalid 'G' in Unicode escape`}},
		{"\"a\x01\"", false, result{2, `unescaped control '\x01' in string`}},
		{"\"\xff\"", false, result{1, "invalid UTF-8 in string"}},
		{"\"\xc3(\"", false, result{2, "invalid UTF-8 in string"}},
		{"\"\xed\xa0\x80\"", false, result{3, "invalid UTF-8 in string"}}, // surrogate
		{"\"\xc0\xaf\"", false, result{1, "invalid UTF-8 in string"}},     // overlong

		{`01`, false, result{1, "extra leading zeroes"}},
		{`-`, false, result{1, "missing digits after minus sign"}},
		{`-x`, false, result{1, "missing digits after minus sign"}},
		{`1.`, false, result{2, "no digits after decimal point"}},
		{`1.e5`, false, result{2, "no digits after decimal point"}},
		{`1e`, false, result{2, "missing exponent digits"}},
		{`1e+`, false, result{3, "missing exponent digits"}},
		{`1E-x`, false, result{3, "missing exponent digits"}},

		{`tru`, false, result{3, `invalid literal "tru"`}},
		{`trux`, false, result{3, `invalid 'x' in literal true`}},
		{`truex`, false, result{4, `invalid 'x' in literal true`}},
		{`nul,`, false, result{3, `incomplete literal null`}},
		{`  @`, false, result{2, `unexpected '@'`}},
		{`/`, false, result{0, `unexpected '/'`}},

		{`/x`, true, result{1, `invalid 'x' in comment`}},
		{`/* abc`, true, result{6, "unterminated comment"}},
		{`/`, true, result{1, "unterminated comment"}},
	}

	for _, test := range tests {
		for _, n := range []int{1, len(test.input)} {
			s := jsax.NewScanner()
			s.AllowComments(test.comments)
			_, err := scanAll(s, test.input, n)
			se, ok := err.(*jsax.SyntaxError)
			if !ok {
				t.Errorf("Input %#q (chunk %d): got error %v, want *SyntaxError", test.input, n, err)
				continue
			}
			got := result{se.Offset, se.Message}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Input %#q (chunk %d): error (-want, +got)\n%s", test.input, n, diff)
			}
			if s.Err() != err {
				t.Errorf("Err: got %v, want %v", s.Err(), err)
			}
		}
	}
}

func TestScannerLocation(t *testing.T) {
	const input = "[1,\n \"ab\"]"
	want := []jsax.Location{
		{Span: jsax.Span{Pos: 0, End: 1}, First: jsax.LineCol{Line: 1, Column: 0}, Last: jsax.LineCol{Line: 1, Column: 1}},
		{Span: jsax.Span{Pos: 1, End: 2}, First: jsax.LineCol{Line: 1, Column: 1}, Last: jsax.LineCol{Line: 1, Column: 2}},
		{Span: jsax.Span{Pos: 2, End: 3}, First: jsax.LineCol{Line: 1, Column: 2}, Last: jsax.LineCol{Line: 1, Column: 3}},
		{Span: jsax.Span{Pos: 5, End: 9}, First: jsax.LineCol{Line: 2, Column: 1}, Last: jsax.LineCol{Line: 2, Column: 5}},
		{Span: jsax.Span{Pos: 9, End: 10}, First: jsax.LineCol{Line: 2, Column: 5}, Last: jsax.LineCol{Line: 2, Column: 6}},
	}
	for _, n := range chunkSizes {
		s := jsax.NewScanner()
		var got []jsax.Location
		for off := 0; off < len(input); off += n {
			data := []byte(input[off:min(off+n, len(input))])
			for len(data) != 0 {
				nr, ok, err := s.Scan(data)
				if err != nil {
					t.Fatalf("Scan failed: %v", err)
				}
				data = data[nr:]
				if ok {
					got = append(got, s.Location())
				}
			}
		}
		if ok, err := s.Finish(); ok || err != nil {
			t.Errorf("Finish: got (%v, %v), want (false, nil)", ok, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Chunk %d: locations (-want, +got)\n%s", n, diff)
		}
	}
}

func TestScannerCarry(t *testing.T) {
	// A long string split into many chunks must come out whole.
	body := strings.Repeat("abcdefghij", 1000)
	input := `"` + body + `"`
	got, err := scanAll(jsax.NewScanner(), input, 7)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(got.Texts) != 1 || got.Texts[0] != input {
		t.Errorf("Got %d tokens, want 1 with the full input", len(got.Texts))
	}
}
