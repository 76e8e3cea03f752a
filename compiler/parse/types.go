package parse

import (
	"fmt"
	"strconv"

	"tlog.app/go/loc"

	"github.com/slowlang/tiny/compiler/ast"
	"github.com/slowlang/tiny/compiler/lex"
	"github.com/slowlang/tiny/compiler/tp"
)

// evalType evaluates the type of the expression tree rooted at x
// and annotates every evaluated node with its type.
// It returns tp.Mismatch and a *TypeError if types don't agree.
func (p *Parser) evalType(x ast.ID) (t tp.Type, err error) {
	t, err = p.eval(x)
	if err != nil {
		return tp.Mismatch, err
	}

	p.t.SetType(x, t)

	return t, nil
}

func (p *Parser) eval(x ast.ID) (tp.Type, error) {
	n := p.t.Node(x)
	kids := n.Kids

	switch n.Kind {
	case ast.BinaryExpr:
		if n.Text == "=" {
			return p.evalType(kids[1])
		}

		l, err := p.evalType(kids[0])
		if err != nil {
			return tp.Mismatch, err
		}

		r, err := p.evalType(kids[1])
		if err != nil {
			return tp.Mismatch, err
		}

		if l != r {
			return tp.Mismatch, p.typeErr(x, "mismatched types %v and %v in %q", l, r, p.t.Text(x))
		}

		if !l.Value() {
			return tp.Mismatch, p.typeErr(x, "operator %q is not defined on %v", p.t.Text(x), l)
		}

		return l, nil
	case ast.UnaryExpr:
		var t tp.Type
		var err error

		if k := p.t.Kind(kids[0]); k == ast.Integer || k == ast.Float {
			t, err = p.evalLiteral(kids[0], "-")
			p.t.SetType(kids[0], t)
		} else {
			t, err = p.evalType(kids[0])
		}

		if err != nil {
			return tp.Mismatch, err
		}

		if !t.Value() {
			return tp.Mismatch, p.typeErr(x, "operator %q is not defined on %v", n.Text, t)
		}

		return t, nil
	case ast.Grouping, ast.Argument:
		return p.evalType(kids[0])
	case ast.Integer, ast.Float:
		return p.evalLiteral(x, "")
	case ast.Type:
		t, ok := tp.Lookup(n.Text)
		if !ok {
			return tp.Mismatch, p.typeErr(x, "unknown type %v", n.Text)
		}

		return t, nil
	case ast.Identifier:
		v, ok := p.scope().Lookup(n.Text)
		if !ok {
			return tp.Mismatch, p.typeErr(x, "undefined: %v", n.Text)
		}

		return v.Type, nil
	case ast.Call:
		return p.evalCall(x)
	case ast.Fn:
		return p.evalType(kids[2])
	default:
		return tp.Mismatch, p.typeErr(x, "%v is not an expression", n.Kind)
	}
}

// evalLiteral checks the constant with sign prepended fits its type.
func (p *Parser) evalLiteral(x ast.ID, sign string) (tp.Type, error) {
	n := p.t.Node(x)
	kind, text, typ := n.Kind, sign+n.Text, n.Kids[0]

	t, err := p.evalType(typ)
	if err != nil {
		return tp.Mismatch, err
	}

	if kind == ast.Float && !t.Float() {
		return tp.Mismatch, p.typeErr(x, "float constant %v can't be %v", text, t)
	}

	if !Fits(text, t) {
		return tp.Mismatch, p.typeErr(x, "constant %v overflows %v", text, t)
	}

	return t, nil
}

func (p *Parser) evalCall(x ast.ID) (tp.Type, error) {
	name := p.t.Text(x)
	args := p.t.Kids(p.t.Kid(x, 0))

	f := p.lookupFunc(name)
	if f == nil {
		return tp.Mismatch, p.typeErr(x, "undefined function: %v", name)
	}

	if len(args) != len(f.Params) {
		return tp.Mismatch, p.typeErr(x, "function %v takes %d arguments, got %d", name, len(f.Params), len(args))
	}

	for j, a := range args {
		t, err := p.evalType(a)
		if err != nil {
			return tp.Mismatch, err
		}

		if want := f.Params[j].Type; t != want {
			return tp.Mismatch, p.typeErr(a, "argument %d (%v) of %v: have %v, want %v", j+1, f.Params[j].Name, name, t, want)
		}
	}

	return f.Ret, nil
}

// checkStore checks the left side of an assignment outside of let.
func (p *Parser) checkStore(x ast.ID) error {
	lhs := p.t.Kid(x, 0)

	if p.t.Kind(lhs) != ast.Identifier {
		return p.syntaxErrAt(lhs, "identifier", p.t.Text(lhs))
	}

	l, err := p.evalType(lhs)
	if err != nil {
		return err
	}

	if r := p.t.Type(x); l != r {
		return p.typeErr(x, "can't assign %v to %v of type %v", r, p.t.Text(lhs), l)
	}

	return nil
}

// Fits reports whether constant text can be represented in type t.
func Fits(text string, t tp.Type) bool {
	var err error

	switch {
	case t.Signed():
		_, err = strconv.ParseInt(text, 10, t.Bits())
	case t.Unsigned():
		_, err = strconv.ParseUint(text, 10, t.Bits())
	case t.Float():
		_, err = strconv.ParseFloat(text, t.Bits())
	case t == tp.Bool:
		return text == "0" || text == "1"
	default:
		return false
	}

	return err == nil
}

func (p *Parser) typeErr(x ast.ID, format string, args ...any) error {
	line, col := lex.Position(p.text, p.t.Node(x).Pos)

	return &TypeError{
		Line: line,
		Col:  col,
		Msg:  fmt.Sprintf(format, args...),
		from: loc.Caller(1),
	}
}
