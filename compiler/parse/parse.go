package parse

import (
	"context"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/tiny/compiler/ast"
	"github.com/slowlang/tiny/compiler/lex"
	"github.com/slowlang/tiny/compiler/tp"
)

type (
	// Unit is a parsed and type checked source file.
	Unit struct {
		Name string
		Text []byte

		Tree *ast.Tree
		Root ast.ID

		Funcs []*Function
	}

	Parser struct {
		text []byte
		toks []lex.Token

		t *ast.Tree

		scopes []*Scope
		funcs  []*Function

		fn *Function // enclosing function, nil at the top level
	}
)

func Parse(ctx context.Context, name string, text []byte) (u *Unit, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse", "name", name, "size", len(text))
	defer tr.Finish("err", &err)

	p := New(ctx, text)

	root, err := p.Parse(ctx)
	if err != nil {
		return nil, err
	}

	tr.Printw("parsed", "tokens", len(p.toks), "nodes", p.t.Len(), "funcs", len(p.funcs))

	return &Unit{
		Name:  name,
		Text:  text,
		Tree:  p.t,
		Root:  root,
		Funcs: p.funcs,
	}, nil
}

func New(ctx context.Context, text []byte) *Parser {
	p := &Parser{
		text: text,
		toks: lex.Lex(ctx, text),
		t:    &ast.Tree{},
	}

	p.pushScope(nil)

	return p
}

// Parse parses the whole program.
// The first error stops parsing, there is no recovery.
func (p *Parser) Parse(ctx context.Context) (root ast.ID, err error) {
	root = p.t.Add(ast.Block, "program", 0)

	var x ast.ID

	for i := 0; ; {
		x, i, err = p.parseStmt(ctx, i)
		if err != nil {
			return ast.Nil, err
		}

		if x == ast.Nil {
			if !p.toks[i].Is(lex.None) {
				return ast.Nil, p.syntaxErr(i, "statement")
			}

			break
		}

		p.t.Append(root, x)
	}

	return root, nil
}

// parseStmt returns ast.Nil if there is no statement at st.
func (p *Parser) parseStmt(ctx context.Context, st int) (x ast.ID, i int, err error) {
	switch p.toks[st].Kind {
	case lex.Let:
		return p.parseLet(ctx, st)
	case lex.Ret:
		return p.parseRet(ctx, st)
	case lex.Fn:
		return p.parseFn(ctx, st)
	default:
		return ast.Nil, st, nil
	}
}

func (p *Parser) parseLet(ctx context.Context, st int) (x ast.ID, i int, err error) {
	if p.fn == nil {
		return ast.Nil, st, p.syntaxMsg(st, "let outside of function body")
	}

	i = st + 1

	e, i, err := p.parseAssignment(ctx, i)
	if err != nil {
		return ast.Nil, i, err
	}

	if p.t.Kind(e) != ast.BinaryExpr || p.t.Text(e) != "=" {
		return ast.Nil, i, p.syntaxErrAt(e, "assignment", p.t.Text(e))
	}

	lhs := p.t.Kid(e, 0)

	if p.t.Kind(lhs) != ast.Identifier {
		return ast.Nil, i, p.syntaxErrAt(lhs, "identifier", p.t.Text(lhs))
	}

	typ, err := p.evalType(e)
	if err != nil {
		return ast.Nil, i, err
	}

	name := p.t.Text(lhs)

	if !typ.Value() {
		return ast.Nil, i, p.typeErr(e, "can't declare %v of type %v", name, typ)
	}

	i, err = p.expect(i, lex.Semicolon)
	if err != nil {
		return ast.Nil, i, err
	}

	p.t.SetType(lhs, typ)

	p.scope().Declare(Variable{
		Name: name,
		Type: typ,
	})

	x = p.t.Add(ast.Let, "let", p.toks[st].Pos, e)
	p.t.SetType(x, typ)

	tlog.SpanFromContext(ctx).V("parse_let").Printw("let", "name", name, "type", typ)

	return x, i, nil
}

func (p *Parser) parseRet(ctx context.Context, st int) (x ast.ID, i int, err error) {
	if p.fn == nil {
		return ast.Nil, st, p.syntaxMsg(st, "ret outside of function body")
	}

	e, i, err := p.parseExpr(ctx, st+1)
	if err != nil {
		return ast.Nil, i, err
	}

	if typ := p.t.Type(e); typ != p.fn.Ret {
		return ast.Nil, i, p.typeErr(e, "ret %v in function %v returning %v", typ, p.fn.Name, p.fn.Ret)
	}

	i, err = p.expect(i, lex.Semicolon)
	if err != nil {
		return ast.Nil, i, err
	}

	x = p.t.Add(ast.Ret, "ret", p.toks[st].Pos, e)
	p.t.SetType(x, p.t.Type(e))

	return x, i, nil
}

func (p *Parser) parseFn(ctx context.Context, st int) (x ast.ID, i int, err error) {
	i = st + 1

	if !p.toks[i].Is(lex.Ident) {
		return ast.Nil, i, p.syntaxErr(i, "function name")
	}

	nameTok := p.toks[i]
	name := p.t.Add(ast.Identifier, nameTok.Text, nameTok.Pos)

	args, params, i, err := p.parseArguments(ctx, i+1)
	if err != nil {
		return ast.Nil, i, err
	}

	ret := p.t.Add(ast.Type, tp.Void.String(), p.toks[i].Pos)

	if p.toks[i].Is(lex.Arrow) {
		i++

		if !p.toks[i].Is(lex.Type) {
			return ast.Nil, i, p.syntaxErr(i, "type")
		}

		ret = p.t.Add(ast.Type, p.toks[i].Text, p.toks[i].Pos)
		i++
	}

	rtyp, err := p.evalType(ret)
	if err != nil {
		return ast.Nil, i, err
	}

	if p.lookupFunc(nameTok.Text) != nil {
		return ast.Nil, i, p.typeErr(name, "function %v redefined", nameTok.Text)
	}

	f := &Function{
		Name:   nameTok.Text,
		Params: params,
		Ret:    rtyp,
	}

	p.funcs = append(p.funcs, f)

	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse function", "name", f.Name, "ret", f.Ret)
	defer tr.Finish("err", &err)

	outer := p.fn
	p.fn = f
	p.pushScope(params)

	body, i, err := p.parseBlock(ctx, i)

	p.popScope()
	p.fn = outer

	if err != nil {
		return ast.Nil, i, err
	}

	if f.Ret != tp.Void {
		kids := p.t.Kids(body)

		if len(kids) == 0 || p.t.Kind(kids[len(kids)-1]) != ast.Ret {
			return ast.Nil, i, p.typeErr(name, "function %v returning %v must end with ret", f.Name, f.Ret)
		}
	}

	x = p.t.Add(ast.Fn, "fn", p.toks[st].Pos, name, args, ret, body)
	p.t.SetType(x, rtyp)

	return x, i, nil
}

func (p *Parser) parseArguments(ctx context.Context, st int) (x ast.ID, vars []Variable, i int, err error) {
	i, err = p.expect(st, lex.LParen)
	if err != nil {
		return ast.Nil, nil, i, err
	}

	x = p.t.Add(ast.Arguments, "args", p.toks[st].Pos)

	if p.toks[i].Is(lex.RParen) {
		return x, nil, i + 1, nil
	}

	for {
		var arg ast.ID

		arg, i, err = p.parseArgument(ctx, i)
		if err != nil {
			return ast.Nil, nil, i, err
		}

		v := Variable{
			Name: p.t.Text(arg),
			Type: p.t.Type(arg),
		}

		for _, prev := range vars {
			if prev.Name == v.Name {
				return ast.Nil, nil, i, p.typeErr(arg, "duplicate parameter %v", v.Name)
			}
		}

		p.t.Append(x, arg)
		vars = append(vars, v)

		if !p.toks[i].Is(lex.Comma) {
			break
		}

		i++
	}

	i, err = p.expect(i, lex.RParen)
	if err != nil {
		return ast.Nil, nil, i, err
	}

	return x, vars, i, nil
}

func (p *Parser) parseArgument(ctx context.Context, st int) (x ast.ID, i int, err error) {
	i = st

	if !p.toks[i].Is(lex.Ident) {
		return ast.Nil, i, p.syntaxErr(i, "parameter name")
	}

	i, err = p.expect(i+1, lex.Colon)
	if err != nil {
		return ast.Nil, i, err
	}

	if !p.toks[i].Is(lex.Type) {
		return ast.Nil, i, p.syntaxErr(i, "type")
	}

	typ := p.t.Add(ast.Type, p.toks[i].Text, p.toks[i].Pos)
	x = p.t.Add(ast.Argument, p.toks[st].Text, p.toks[st].Pos, typ)

	t, err := p.evalType(x)
	if err != nil {
		return ast.Nil, i, err
	}

	if !t.Value() {
		return ast.Nil, i, p.typeErr(x, "parameter %v can't be of type %v", p.toks[st].Text, t)
	}

	return x, i + 1, nil
}

func (p *Parser) parseBlock(ctx context.Context, st int) (x ast.ID, i int, err error) {
	i, err = p.expect(st, lex.LCurly)
	if err != nil {
		return ast.Nil, i, err
	}

	x = p.t.Add(ast.Block, "block", p.toks[st].Pos)

	returned := false

	for {
		var s ast.ID

		s, i, err = p.parseStmt(ctx, i)
		if err != nil {
			return ast.Nil, i, err
		}

		if s == ast.Nil {
			break
		}

		if returned {
			return ast.Nil, i, p.syntaxMsgAt(s, "unreachable statement after ret")
		}

		returned = p.t.Kind(s) == ast.Ret

		p.t.Append(x, s)
	}

	i, err = p.expect(i, lex.RCurly)
	if err != nil {
		return ast.Nil, i, err
	}

	return x, i, nil
}

func (p *Parser) expect(i int, k lex.Kind) (int, error) {
	if !p.toks[i].Is(k) {
		return i, p.syntaxErr(i, k.String())
	}

	return i + 1, nil
}

func (p *Parser) syntaxErr(i int, want string) error {
	t := p.toks[i]
	line, col := lex.Position(p.text, t.Pos)

	tlog.V("parse_errors").Printw("syntax error", "want", want, "got", t, "from", loc.Caller(1))

	return &SyntaxError{
		Line: line,
		Col:  col,
		Want: want,
		Got:  t,
		from: loc.Caller(1),
	}
}

func (p *Parser) syntaxErrAt(x ast.ID, want, got string) error {
	n := p.t.Node(x)
	line, col := lex.Position(p.text, n.Pos)

	return &SyntaxError{
		Line: line,
		Col:  col,
		Want: want,
		Got:  lex.Token{Kind: lex.Ident, Text: got, Pos: n.Pos},
		from: loc.Caller(1),
	}
}

func (p *Parser) syntaxMsg(i int, msg string) error {
	line, col := lex.Position(p.text, p.toks[i].Pos)

	return &SyntaxError{
		Line: line,
		Col:  col,
		Got:  p.toks[i],
		Msg:  msg,
		from: loc.Caller(1),
	}
}

func (p *Parser) syntaxMsgAt(x ast.ID, msg string) error {
	line, col := lex.Position(p.text, p.t.Node(x).Pos)

	return &SyntaxError{
		Line: line,
		Col:  col,
		Msg:  msg,
		from: loc.Caller(1),
	}
}
