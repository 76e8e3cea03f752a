package lex

import (
	"bytes"
	"context"
	"unicode/utf8"

	"tlog.app/go/tlog"
)

// Lex splits text into tokens.
// The result always ends with a None token positioned at the end of text.
// Characters the language doesn't know are skipped, each skip is logged.
func Lex(ctx context.Context, b []byte) (toks []Token) {
	tr := tlog.SpanFromContext(ctx)

	var (
		t  Token
		ok bool
	)

	for i := 0; ; {
		t, i, ok = token(b, i)
		if !ok {
			tr.Printw("skip unrecognized character", "char", t.Text, "pos", t.Pos, "kind", "lexical_skip")
			continue
		}

		toks = append(toks, t)

		if t.Kind == None {
			break
		}
	}

	if tr.If("dump_tokens") {
		for i, t := range toks {
			tr.Printw("token", "i", i, "tok", t)
		}
	}

	return toks
}

// token reads the next token starting at st.
// ok is false if the character at t.Pos is not recognized,
// i points after it then.
func token(b []byte, st int) (t Token, i int, ok bool) {
	i = skipSpaces(b, st)

	for i+1 < len(b) && b[i] == '/' && b[i+1] == '/' {
		i = skipLine(b, i)
		i = skipSpaces(b, i)
	}

	st = i

	if i == len(b) {
		return Token{Kind: None, Pos: i}, i, true
	}

	tok := func(k Kind, end int) (Token, int, bool) {
		return Token{Kind: k, Text: string(b[st:end]), Pos: st}, end, true
	}

	switch c := b[i]; c {
	case '+':
		return tok(Plus, i+1)
	case '-':
		if i+1 < len(b) && b[i+1] == '>' {
			return tok(Arrow, i+2)
		}

		return tok(Minus, i+1)
	case '*':
		return tok(Star, i+1)
	case '/':
		return tok(Slash, i+1)
	case '(':
		return tok(LParen, i+1)
	case ')':
		return tok(RParen, i+1)
	case '{':
		return tok(LCurly, i+1)
	case '}':
		return tok(RCurly, i+1)
	case '=':
		return tok(Equal, i+1)
	case ';':
		return tok(Semicolon, i+1)
	case ':':
		return tok(Colon, i+1)
	case ',':
		return tok(Comma, i+1)
	}

	switch c := b[i]; {
	case isDigit(c):
		i = skipDigits(b, i)

		if i+1 < len(b) && b[i] == '.' && isDigit(b[i+1]) {
			i = skipDigits(b, i+1)

			return tok(Float, i)
		}

		return tok(Int, i)
	case isLetter(c):
		i = skipIdent(b, i+1)

		t, i, ok = tok(Ident, i)

		if k, kw := keywords[t.Text]; kw {
			t.Kind = k
		}

		return t, i, ok
	}

	_, w := utf8.DecodeRune(b[i:])

	return Token{Text: string(b[i : i+w]), Pos: i}, i + w, false
}

// Position converts byte offset into 1-based line and column.
func Position(b []byte, off int) (line, col int) {
	if off > len(b) {
		off = len(b)
	}

	line = 1 + bytes.Count(b[:off], []byte{'\n'})
	col = 1 + off - (bytes.LastIndexByte(b[:off], '\n') + 1)

	return line, col
}

func skipSpaces(b []byte, i int) int {
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\r', '\n', '\v', '\f':
			i++
			continue
		}

		break
	}

	return i
}

func skipDigits(b []byte, i int) int {
	for i < len(b) && isDigit(b[i]) {
		i++
	}

	return i
}

func skipIdent(b []byte, i int) int {
	for i < len(b) && (isLetter(b[i]) || isDigit(b[i])) {
		i++
	}

	return i
}

func skipLine(b []byte, i int) int {
	for i < len(b) && b[i] != '\n' {
		i++
	}

	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
