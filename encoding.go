// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

import (
	"errors"

	"github.com/creachadair/jsax/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string { return string(AppendQuote(nil, []byte(src))) }

// AppendQuote appends the JSON string encoding of src to buf, including
// double quotation marks, and returns the extended slice.
func AppendQuote(buf, src []byte) []byte {
	buf = append(buf, '"')
	buf = escape.Quote(buf, mem.B(src))
	return append(buf, '"')
}

// Unquote decodes a JSON string value.  Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents.
//
// Invalid escapes are replaced by the Unicode replacement rune. Unquote
// reports an error for an incomplete escape sequence.
func Unquote(src []byte) ([]byte, error) {
	if len(src) < 2 || src[0] != '"' || src[len(src)-1] != '"' {
		return nil, errors.New("missing quotations")
	}
	return escape.Unquote(nil, mem.B(src[1:len(src)-1]))
}
