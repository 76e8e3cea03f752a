package lex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) (r []Kind) {
	for _, t := range toks {
		r = append(r, t.Kind)
	}

	return r
}

func texts(toks []Token) (r []string) {
	for _, t := range toks {
		r = append(r, t.Text)
	}

	return r
}

func TestLexFunc(t *testing.T) {
	toks := Lex(context.Background(), []byte("fn add(a: i32, b: i32) -> i32 {\n\tret a + b;\n}\n"))

	assert.Equal(t, []Kind{
		Fn, Ident, LParen, Ident, Colon, Type, Comma, Ident, Colon, Type, RParen, Arrow, Type, LCurly,
		Ret, Ident, Plus, Ident, Semicolon,
		RCurly,
		None,
	}, kinds(toks))

	assert.Equal(t, []string{
		"fn", "add", "(", "a", ":", "i32", ",", "b", ":", "i32", ")", "->", "i32", "{",
		"ret", "a", "+", "b", ";",
		"}",
		"",
	}, texts(toks))
}

func TestLexOperators(t *testing.T) {
	toks := Lex(context.Background(), []byte("- -> -1 * / = ( )"))

	assert.Equal(t, []Kind{Minus, Arrow, Minus, Int, Star, Slash, Equal, LParen, RParen, None}, kinds(toks))
}

func TestLexLiterals(t *testing.T) {
	toks := Lex(context.Background(), []byte("1i8 42 2.0f64 3.25 7."))

	assert.Equal(t, []Kind{Int, Type, Int, Float, Type, Float, Int, None}, kinds(toks))
	assert.Equal(t, []string{"1", "i8", "42", "2.0", "f64", "3.25", "7", ""}, texts(toks))
}

func TestLexKeywords(t *testing.T) {
	toks := Lex(context.Background(), []byte("let letter fn fnx ret u8 u16 u32 u64 i8 i16 i32 i64 f32 f64 bool void i128 _x1"))

	assert.Equal(t, []Kind{
		Let, Ident, Fn, Ident, Ret,
		Type, Type, Type, Type, Type, Type, Type, Type, Type, Type, Type, Type,
		Ident, Ident,
		None,
	}, kinds(toks))
}

func TestLexSkipsUnknown(t *testing.T) {
	toks := Lex(context.Background(), []byte("let x @= 1 # ;ж"))

	assert.Equal(t, []Kind{Let, Ident, Equal, Int, Semicolon, None}, kinds(toks))
}

func TestLexComments(t *testing.T) {
	toks := Lex(context.Background(), []byte("// header\nret 1; // tail\n// end"))

	assert.Equal(t, []Kind{Ret, Int, Semicolon, None}, kinds(toks))
}

func TestLexEmpty(t *testing.T) {
	toks := Lex(context.Background(), nil)
	require.Len(t, toks, 1)
	assert.Equal(t, None, toks[0].Kind)

	toks = Lex(context.Background(), []byte(" \n\t "))
	require.Len(t, toks, 1)
	assert.Equal(t, 4, toks[0].Pos)
}

func TestPosition(t *testing.T) {
	b := []byte("ab\ncd\n\nef")

	for _, tc := range []struct {
		off, line, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{4, 2, 2},
		{6, 3, 1},
		{7, 4, 1},
		{9, 4, 3},
		{100, 4, 3},
	} {
		line, col := Position(b, tc.off)
		assert.Equal(t, tc.line, line, "off %d", tc.off)
		assert.Equal(t, tc.col, col, "off %d", tc.off)
	}
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, `"x"`, Token{Kind: Ident, Text: "x"}.String())
	assert.Equal(t, "end of input", Token{}.String())
	assert.Equal(t, "'->'", Arrow.String())
}
