package parse

import (
	"context"

	"github.com/slowlang/tiny/compiler/ast"
	"github.com/slowlang/tiny/compiler/lex"
	"github.com/slowlang/tiny/compiler/tp"
)

// parseExpr parses an expression and evaluates its type.
func (p *Parser) parseExpr(ctx context.Context, st int) (x ast.ID, i int, err error) {
	x, i, err = p.parseAssignment(ctx, st)
	if err != nil {
		return ast.Nil, i, err
	}

	_, err = p.evalType(x)
	if err != nil {
		return ast.Nil, i, err
	}

	if p.t.Kind(x) == ast.BinaryExpr && p.t.Text(x) == "=" {
		err = p.checkStore(x)
		if err != nil {
			return ast.Nil, i, err
		}
	}

	return x, i, nil
}

// parseAssignment is not chainable: a = b = c is a syntax error.
func (p *Parser) parseAssignment(ctx context.Context, st int) (x ast.ID, i int, err error) {
	x, i, err = p.parseAdditive(ctx, st)
	if err != nil {
		return
	}

	if !p.toks[i].Is(lex.Equal) {
		return x, i, nil
	}

	op := p.toks[i]

	r, i, err := p.parseAdditive(ctx, i+1)
	if err != nil {
		return
	}

	x = p.t.Add(ast.BinaryExpr, op.Text, op.Pos, x, r)

	return x, i, nil
}

func (p *Parser) parseAdditive(ctx context.Context, st int) (x ast.ID, i int, err error) {
	return p.leftToRight(ctx, st, p.parseMultiplicative, lex.Plus, lex.Minus)
}

func (p *Parser) parseMultiplicative(ctx context.Context, st int) (x ast.ID, i int, err error) {
	return p.leftToRight(ctx, st, p.parseUnary, lex.Star, lex.Slash)
}

func (p *Parser) leftToRight(ctx context.Context, st int, arg func(context.Context, int) (ast.ID, int, error), ops ...lex.Kind) (x ast.ID, i int, err error) {
	x, i, err = arg(ctx, st)
	if err != nil {
		return
	}

loop:
	for {
		op := p.toks[i]

		for _, k := range ops {
			if !op.Is(k) {
				continue
			}

			var r ast.ID

			r, i, err = arg(ctx, i+1)
			if err != nil {
				return
			}

			x = p.t.Add(ast.BinaryExpr, op.Text, op.Pos, x, r)

			continue loop
		}

		return x, i, nil
	}
}

func (p *Parser) parseUnary(ctx context.Context, st int) (x ast.ID, i int, err error) {
	if !p.toks[st].Is(lex.Minus) {
		return p.parsePrimary(ctx, st)
	}

	op := p.toks[st]

	x, i, err = p.parseUnary(ctx, st+1)
	if err != nil {
		return
	}

	x = p.t.Add(ast.UnaryExpr, op.Text, op.Pos, x)

	return x, i, nil
}

func (p *Parser) parsePrimary(ctx context.Context, st int) (x ast.ID, i int, err error) {
	t := p.toks[st]
	i = st + 1

	switch t.Kind {
	case lex.Int:
		return p.parseLiteral(ctx, st, ast.Integer, tp.I32)
	case lex.Float:
		return p.parseLiteral(ctx, st, ast.Float, tp.F64)
	case lex.LParen:
		var e ast.ID

		e, i, err = p.parseExpr(ctx, i)
		if err != nil {
			return
		}

		i, err = p.expect(i, lex.RParen)
		if err != nil {
			return
		}

		x = p.t.Add(ast.Grouping, "group", t.Pos, e)

		return x, i, nil
	case lex.Ident:
		if p.toks[i].Is(lex.LParen) {
			return p.parseCall(ctx, st)
		}

		x = p.t.Add(ast.Identifier, t.Text, t.Pos)

		return x, i, nil
	default:
		return ast.Nil, st, p.syntaxErr(st, "expression")
	}
}

func (p *Parser) parseLiteral(ctx context.Context, st int, k ast.Kind, def tp.Type) (x ast.ID, i int, err error) {
	t := p.toks[st]
	i = st + 1

	var typ ast.ID

	if s := p.toks[i]; s.Is(lex.Type) {
		typ = p.t.Add(ast.Type, s.Text, s.Pos)
		i++
	} else {
		typ = p.t.Add(ast.Type, def.String(), t.Pos)
	}

	x = p.t.Add(k, t.Text, t.Pos, typ)

	return x, i, nil
}

func (p *Parser) parseCall(ctx context.Context, st int) (x ast.ID, i int, err error) {
	t := p.toks[st]
	i = st + 2 // name and (

	params := p.t.Add(ast.Parameters, "params", p.toks[st+1].Pos)

	if !p.toks[i].Is(lex.RParen) {
		for {
			var e ast.ID

			e, i, err = p.parseExpr(ctx, i)
			if err != nil {
				return
			}

			p.t.Append(params, e)

			if !p.toks[i].Is(lex.Comma) {
				break
			}

			i++
		}
	}

	i, err = p.expect(i, lex.RParen)
	if err != nil {
		return
	}

	x = p.t.Add(ast.Call, t.Text, t.Pos, params)

	return x, i, nil
}
