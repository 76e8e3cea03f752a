package back

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/tiny/compiler/parse"
)

func compile(t *testing.T, src string) string {
	t.Helper()

	ctx := context.Background()

	u, err := parse.Parse(ctx, "test.tiny", []byte(src))
	require.NoError(t, err)

	m, err := New().CompileUnit(ctx, u)
	require.NoError(t, err)

	return m.String()
}

func TestSmoke(t *testing.T) {
	res := compile(t, `fn main() -> i32 { ret 42; }`)

	t.Logf("result:\n%s", res)

	assert.Contains(t, res, `source_filename = "test.tiny"`)
	assert.Contains(t, res, "define i32 @main() {")
	assert.Contains(t, res, "entry:")
	assert.Contains(t, res, "ret i32 42")
}

func TestImplicitVoidReturn(t *testing.T) {
	res := compile(t, `fn f() { let x = 1; }`)

	assert.Contains(t, res, "define void @f() {")
	assert.Contains(t, res, "%x = alloca i32")
	assert.Contains(t, res, "store i32 1, ")
	assert.Contains(t, res, "ret void")
}

func TestExplicitVoidReturn(t *testing.T) {
	res := compile(t, `fn g() { } fn f() { ret g(); }`)

	assert.Contains(t, res, "call void @g()")
	assert.Equal(t, 2, strings.Count(res, "ret void"))
}

func TestCall(t *testing.T) {
	res := compile(t, `
fn add(a: i32, b: i32) -> i32 {
	ret a + b;
}

fn main() -> i32 {
	ret add(1, 2);
}
`)

	assert.Contains(t, res, "define i32 @add(i32 %a, i32 %b) {")
	assert.Contains(t, res, "%a.addr = alloca i32")
	assert.Contains(t, res, "%b.addr = alloca i32")
	assert.Contains(t, res, "store i32 %a, ")
	assert.Contains(t, res, "add i32 ")
	assert.Contains(t, res, "call i32 @add(i32 1, i32 2)")

	assert.Less(t, strings.Index(res, "@add("), strings.Index(res, "@main("))
}

func TestArithmetic(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want []string
	}{
		{"signed", `fn f(a: i32, b: i32) -> i32 { ret (a - b) * a / b; }`, []string{"sub i32 ", "mul i32 ", "sdiv i32 "}},
		{"unsigned", `fn f(a: u8, b: u8) -> u8 { ret a / b; }`, []string{"udiv i8 "}},
		{"i64", `fn f(a: i64) -> i64 { ret a + 1i64; }`, []string{"add i64 ", ", 1"}},
		{"double", `fn f(a: f64) -> f64 { ret a + 2.5; }`, []string{"fadd double "}},
		{"float", `fn f(a: f32) -> f32 { ret a * 2f32 / a - a; }`, []string{"fmul float ", "fdiv float ", "fsub float "}},
		{"neg", `fn f(a: i16) -> i16 { ret -a; }`, []string{"sub i16 0, "}},
		{"fneg", `fn f(a: f64) -> f64 { ret -a; }`, []string{"fsub double "}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res := compile(t, tc.src)

			for _, w := range tc.want {
				assert.Contains(t, res, w)
			}
		})
	}
}

func TestConstants(t *testing.T) {
	res := compile(t, `
fn f() {
	let a = 200u8;
	let b = 1bool;
	let c = 18446744073709551615u64;
	let d = -7i8;
}
`)

	assert.Contains(t, res, "store i8 -56, ")
	assert.Contains(t, res, "store i1 true, ")
	assert.Contains(t, res, "store i64 -1, ")
	assert.Contains(t, res, "store i8 -7, ")
	assert.NotContains(t, res, "sub i8 ")
}

func TestNegativeConstants(t *testing.T) {
	res := compile(t, `
fn f() -> i8 {
	let x = -128i8;
	let y = -9223372036854775808i64;
	let z = -(1i8);
	ret x;
}
`)

	assert.Contains(t, res, "store i8 -128, ")
	assert.Contains(t, res, "store i64 -9223372036854775808, ")
	assert.Contains(t, res, "sub i8 0, 1")
}

func TestEntryName(t *testing.T) {
	res := compile(t, `
fn f(entry: i32) -> i32 {
	let entry = 1;
	ret entry;
}

fn main() -> i32 {
	let entry = 2;
	ret entry;
}
`)

	fi := strings.Index(res, "define i32 @f(")
	mi := strings.Index(res, "define i32 @main(")
	require.True(t, fi >= 0 && mi > fi, "%s", res)

	f, m := res[fi:mi], res[mi:]

	assert.Contains(t, f, "define i32 @f(i32 %entry.1) {")
	assert.Contains(t, f, "%entry.addr = alloca i32")
	assert.Contains(t, f, "store i32 %entry.1, ")
	assert.Contains(t, f, "%entry.2 = alloca i32")

	assert.Contains(t, m, "%entry.1 = alloca i32")

	assert.NotContains(t, res, "%entry ")
	assert.NotContains(t, res, "%entry,")
	assert.Equal(t, 2, strings.Count(res, "\nentry:"))
}

func TestShadowing(t *testing.T) {
	res := compile(t, `
fn f() -> i8 {
	let x = 1i8;
	let x = 2i64;
	ret x;
}
`)

	assert.Contains(t, res, "%x = alloca i8")
	assert.Contains(t, res, "%x.1 = alloca i64")
	assert.Contains(t, res, "load i8, ")
	assert.Contains(t, res, "ret i8 ")
}

func TestAssignExpr(t *testing.T) {
	res := compile(t, `fn f() -> i32 { let x = 1; ret (x = 5) + x; }`)

	assert.Contains(t, res, "store i32 5, ")
	assert.Equal(t, 2, strings.Count(res, "store i32 "))
}

func TestNestedFunc(t *testing.T) {
	res := compile(t, `
fn f(a: i32) -> i32 {
	fn g() -> i32 {
		let a = 2;
		ret a;
	}

	ret g() + a;
}
`)

	fi := strings.Index(res, "define i32 @f(")
	gi := strings.Index(res, "define i32 @g(")
	require.True(t, fi >= 0 && gi > fi, "%s", res)

	f, g := res[fi:gi], res[gi:]

	assert.Contains(t, f, "call i32 @g()")
	assert.Contains(t, f, "%a.addr = alloca i32")
	assert.NotContains(t, f, "store i32 2")

	assert.Contains(t, g, "%a = alloca i32")
	assert.Contains(t, g, "store i32 2, ")
	assert.Equal(t, 1, strings.Count(g, "ret i32"))
	assert.Equal(t, 1, strings.Count(f, "ret i32"))
}

func TestDeterministic(t *testing.T) {
	const src = `
fn add(a: i32, b: i32) -> i32 { ret a + b; }
fn main() -> i32 {
	let x = add(1, 2) * -3;
	let y = x / 2;
	ret y;
}
`

	assert.Equal(t, compile(t, src), compile(t, src))
}

func TestSignExtend(t *testing.T) {
	assert.Equal(t, int64(-56), signExtend(200, 8))
	assert.Equal(t, int64(127), signExtend(127, 8))
	assert.Equal(t, int64(-1), signExtend(0xffff, 16))
	assert.Equal(t, int64(-1), signExtend(^uint64(0), 64))
	assert.Equal(t, int64(65535), signExtend(0xffff, 32))
}
