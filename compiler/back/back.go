package back

import (
	"context"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tiny/compiler/ast"
	"github.com/slowlang/tiny/compiler/parse"
	"github.com/slowlang/tiny/compiler/tp"
)

type (
	Compiler struct{}

	pkgContext struct {
		m *ir.Module
		t *ast.Tree

		funcs map[string]*ir.Func

		*funContext
	}

	funContext struct {
		f *ir.Func
		b *ir.Block // insertion point

		ret tp.Type

		vars  []binding
		names map[string]int
	}

	binding struct {
		name string
		slot *ir.InstAlloca
		typ  tp.Type
	}
)

func New() *Compiler {
	return &Compiler{}
}

// CompileUnit lowers type checked unit into LLVM module.
func (c *Compiler) CompileUnit(ctx context.Context, u *parse.Unit) (m *ir.Module, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: compile unit", "name", u.Name)
	defer tr.Finish("err", &err)

	p := &pkgContext{
		m:     ir.NewModule(),
		t:     u.Tree,
		funcs: make(map[string]*ir.Func),
	}

	p.m.SourceFilename = u.Name

	for _, x := range u.Tree.Kids(u.Root) {
		if k := p.t.Kind(x); k != ast.Fn {
			return nil, errors.New("unexpected top level %v", k)
		}

		err = c.compileFunc(ctx, p, x)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", p.t.Text(p.t.Kid(x, 0)))
		}
	}

	if tr.If("dump_module") {
		for _, f := range p.m.Funcs {
			tr.Printw("func", "name", f.Name(), "sig", f.Sig.String(), "blocks", len(f.Blocks))
		}
	}

	return p.m, nil
}

func (c *Compiler) compileFunc(ctx context.Context, p *pkgContext, x ast.ID) (err error) {
	t := p.t
	name, args, ret, body := t.Kid(x, 0), t.Kid(x, 1), t.Kid(x, 2), t.Kid(x, 3)

	fname := t.Text(name)
	rtyp := t.Type(ret)

	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile func", "name", fname, "ret", rtyp)
	defer tr.Finish("err", &err)

	fc := &funContext{
		ret:   rtyp,
		names: map[string]int{"entry": 1}, // block label shares the namespace
	}

	params := make([]*ir.Param, 0, len(t.Kids(args)))

	for _, a := range t.Kids(args) {
		params = append(params, ir.NewParam(fc.local(t.Text(a)), irType(t.Type(a))))
	}

	// externally visible: default linkage
	f := p.m.NewFunc(fname, irType(rtyp), params...)
	p.funcs[fname] = f

	fc.f = f
	fc.b = f.NewBlock("entry")

	outer := p.funContext
	defer func() {
		p.funContext = outer
	}()

	p.funContext = fc

	for j, a := range t.Kids(args) {
		slot := fc.alloc(t.Text(a)+".addr", t.Type(a))
		fc.b.NewStore(params[j], slot)

		fc.bind(t.Text(a), slot, t.Type(a))
	}

	for _, s := range t.Kids(body) {
		err = c.compileStmt(ctx, p, s)
		if err != nil {
			return errors.Wrap(err, "at pos %d", t.Node(s).Pos)
		}
	}

	if fc.b.Term == nil {
		if rtyp != tp.Void {
			return errors.New("no ret at the end of %v", fname)
		}

		fc.b.NewRet(nil)
	}

	return nil
}

func (c *Compiler) compileStmt(ctx context.Context, p *pkgContext, x ast.ID) (err error) {
	t := p.t

	switch k := t.Kind(x); k {
	case ast.Fn:
		return c.compileFunc(ctx, p, x)
	case ast.Let:
		e := t.Kid(x, 0)
		name := t.Text(t.Kid(e, 0))
		typ := t.Type(x)

		slot := p.alloc(name, typ)
		p.bind(name, slot, typ)

		v, err := c.compileExpr(ctx, p, t.Kid(e, 1))
		if err != nil {
			return errors.Wrap(err, "let %v", name)
		}

		p.b.NewStore(v, slot)

		tlog.SpanFromContext(ctx).V("back_let").Printw("let", "name", name, "type", typ, "slot", slot.Ident())
	case ast.Ret:
		v, err := c.compileExpr(ctx, p, t.Kid(x, 0))
		if err != nil {
			return errors.Wrap(err, "ret")
		}

		if p.ret == tp.Void {
			v = nil
		}

		p.b.NewRet(v)
	default:
		return errors.New("unsupported statement: %v", k)
	}

	return nil
}

func (c *Compiler) compileExpr(ctx context.Context, p *pkgContext, x ast.ID) (v value.Value, err error) {
	t := p.t
	n := t.Node(x)

	switch n.Kind {
	case ast.BinaryExpr:
		if n.Text == "=" {
			return c.compileStore(ctx, p, x)
		}

		l, err := c.compileExpr(ctx, p, n.Kids[0])
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		r, err := c.compileExpr(ctx, p, n.Kids[1])
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		return p.binOp(n.Text, n.Type, l, r)
	case ast.UnaryExpr:
		if k := t.Node(n.Kids[0]); k.Kind == ast.Integer || k.Kind == ast.Float {
			return constOf("-"+k.Text, n.Type)
		}

		y, err := c.compileExpr(ctx, p, n.Kids[0])
		if err != nil {
			return nil, err
		}

		zero, err := constOf("0", n.Type)
		if err != nil {
			return nil, err
		}

		return p.binOp("-", n.Type, zero, y)
	case ast.Grouping:
		return c.compileExpr(ctx, p, n.Kids[0])
	case ast.Integer, ast.Float:
		return constOf(n.Text, n.Type)
	case ast.Identifier:
		b, ok := p.lookup(n.Text)
		if !ok {
			return nil, errors.New("undefined: %v", n.Text)
		}

		return p.b.NewLoad(irType(b.typ), b.slot), nil
	case ast.Call:
		f, ok := p.funcs[n.Text]
		if !ok {
			return nil, errors.New("undefined function: %v", n.Text)
		}

		var args []value.Value

		for j, a := range t.Kids(n.Kids[0]) {
			v, err := c.compileExpr(ctx, p, a)
			if err != nil {
				return nil, errors.Wrap(err, "arg %d", j)
			}

			args = append(args, v)
		}

		return p.b.NewCall(f, args...), nil
	default:
		return nil, errors.New("unsupported expression: %v", n.Kind)
	}
}

func (c *Compiler) compileStore(ctx context.Context, p *pkgContext, x ast.ID) (value.Value, error) {
	name := p.t.Text(p.t.Kid(x, 0))

	b, ok := p.lookup(name)
	if !ok {
		return nil, errors.New("undefined: %v", name)
	}

	v, err := c.compileExpr(ctx, p, p.t.Kid(x, 1))
	if err != nil {
		return nil, err
	}

	p.b.NewStore(v, b.slot)

	return v, nil
}

func (fc *funContext) binOp(op string, typ tp.Type, l, r value.Value) (value.Value, error) {
	b := fc.b

	if typ.Float() {
		switch op {
		case "+":
			return b.NewFAdd(l, r), nil
		case "-":
			return b.NewFSub(l, r), nil
		case "*":
			return b.NewFMul(l, r), nil
		case "/":
			return b.NewFDiv(l, r), nil
		}

		return nil, errors.New("unsupported operator: %v", op)
	}

	switch op {
	case "+":
		return b.NewAdd(l, r), nil
	case "-":
		return b.NewSub(l, r), nil
	case "*":
		return b.NewMul(l, r), nil
	case "/":
		if typ.Unsigned() {
			return b.NewUDiv(l, r), nil
		}

		return b.NewSDiv(l, r), nil
	}

	return nil, errors.New("unsupported operator: %v", op)
}

// alloc reserves stack storage in the current block.
func (fc *funContext) alloc(name string, typ tp.Type) *ir.InstAlloca {
	slot := fc.b.NewAlloca(irType(typ))
	slot.SetName(fc.local(name))

	return slot
}

func (fc *funContext) bind(name string, slot *ir.InstAlloca, typ tp.Type) {
	fc.vars = append(fc.vars, binding{
		name: name,
		slot: slot,
		typ:  typ,
	})
}

// lookup finds the earliest binding of the name.
func (fc *funContext) lookup(name string) (binding, bool) {
	for _, b := range fc.vars {
		if b.name == name {
			return b, true
		}
	}

	return binding{}, false
}

// local returns unique in the function local name.
func (fc *funContext) local(name string) string {
	n := fc.names[name]
	fc.names[name] = n + 1

	if n == 0 {
		return name
	}

	return fc.local(name + "." + strconv.Itoa(n))
}

func irType(t tp.Type) types.Type {
	switch t {
	case tp.U8, tp.I8:
		return types.I8
	case tp.U16, tp.I16:
		return types.I16
	case tp.U32, tp.I32:
		return types.I32
	case tp.U64, tp.I64:
		return types.I64
	case tp.F32:
		return types.Float
	case tp.F64:
		return types.Double
	case tp.Bool:
		return types.I1
	case tp.Void:
		return types.Void
	}

	panic(t)
}

// constOf makes a typed constant from literal text.
func constOf(text string, t tp.Type) (constant.Constant, error) {
	switch typ := irType(t).(type) {
	case *types.FloatType:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errors.Wrap(err, "float constant")
		}

		if t == tp.F32 {
			v = float64(float32(v))
		}

		return constant.NewFloat(typ, v), nil
	case *types.IntType:
		var v int64

		if t.Signed() {
			x, err := strconv.ParseInt(text, 10, t.Bits())
			if err != nil {
				return nil, errors.Wrap(err, "int constant")
			}

			v = x
		} else {
			x, err := strconv.ParseUint(text, 10, t.Bits())
			if err != nil {
				return nil, errors.Wrap(err, "int constant")
			}

			v = int64(x)

			if t != tp.Bool {
				v = signExtend(x, t.Bits())
			}
		}

		return constant.NewInt(typ, v), nil
	default:
		return nil, errors.New("constant of type %v", t)
	}
}

// signExtend reinterprets the lower bits of x as a signed value.
// LLVM prints and parses integer constants as signed.
func signExtend(x uint64, bits int) int64 {
	sh := 64 - bits

	return int64(x<<sh) >> sh
}
