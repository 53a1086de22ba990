// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape_test

import (
	"testing"

	"github.com/creachadair/jsax/internal/escape"
	"github.com/google/go-cmp/cmp"
	"go4.org/mem"
)

func TestUnquote(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{``, ""},
		{`plain text`, "plain text"},
		{`a\"b\\c\/d`, `a"b\c/d`},
		{`\b\f\n\r\t`, "\b\f\n\r\t"},
		{`\u0041\u00e9`, "A\xc3\xa9"},
		{`\u00E9\u00e9`, "\xc3\xa9\xc3\xa9"},

		// Surrogate pairs are combined.
		{`\ud83d\ude00`, "\xf0\x9f\x98\x80"},
		{`x\uD83D\uDE00y`, "x\xf0\x9f\x98\x80y"},

		// Unpaired surrogates and invalid escapes become replacement runes.
		{`\ud83d`, "\xef\xbf\xbd"},
		{`\ude00\ud83d`, "\xef\xbf\xbd\xef\xbf\xbd"},
		{`\ud83dx`, "\xef\xbf\xbdx"},
		{`\ud83d\u0041`, "\xef\xbf\xbdA"},
		{`\q`, "\xef\xbf\xbd"},
		{`\uzzzz!`, "\xef\xbf\xbd!"},
	}
	for _, test := range tests {
		got, err := escape.Unquote(nil, mem.S(test.input))
		if err != nil {
			t.Errorf("Unquote(%#q) failed: %v", test.input, err)
			continue
		}
		if diff := cmp.Diff(test.want, string(got)); diff != "" {
			t.Errorf("Unquote(%#q) (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestUnquoteAppend(t *testing.T) {
	got, err := escape.Unquote([]byte("prefix:"), mem.S(`a\nb`))
	if err != nil {
		t.Fatalf("Unquote failed: %v", err)
	}
	if want := "prefix:a\nb"; string(got) != want {
		t.Errorf("Unquote: got %q, want %q", got, want)
	}
}

func TestUnquoteErrors(t *testing.T) {
	for _, input := range []string{`\`, `abc\`, `\u12`, `x\u`} {
		got, err := escape.Unquote(nil, mem.S(input))
		if err == nil {
			t.Errorf("Unquote(%#q): got %q, want error", input, got)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ``},
		{"abc", `abc`},
		{"a\"b\\c/d", `a\"b\\c/d`},
		{"\b\f\n\r\t", `\b\f\n\r\t`},
		{"\x00\x01\x1f", `\u0000\u0001\u001f`},
		{"caf\xc3\xa9", "caf\xc3\xa9"},
		{"\xf0\x9f\x98\x80", "\xf0\x9f\x98\x80"},
		{"\xe2\x80\xa8\xe2\x80\xa9", `\u2028\u2029`},
		{"ok\xffok", `ok\ufffdok`},
		{"\xef\xbf\xbd", `\ufffd`},
	}
	for _, test := range tests {
		got := escape.Quote(nil, mem.S(test.input))
		if diff := cmp.Diff(test.want, string(got)); diff != "" {
			t.Errorf("Quote(%q) (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, input := range []string{
		"", "hello, world", "tab\tand\nnewline", "\x7f\x00", `"quoted" \back\`,
		"\xe6\x97\xa5\xe6\x9c\xac\xe8\xaa\x9e",
	} {
		enc := escape.Quote(nil, mem.S(input))
		dec, err := escape.Unquote(nil, mem.B(enc))
		if err != nil {
			t.Errorf("Unquote(%#q) failed: %v", enc, err)
		} else if string(dec) != input {
			t.Errorf("Round trip %q: got %q", input, dec)
		}
	}
}
