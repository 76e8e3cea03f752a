package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/tiny/compiler/ast"
)

const (
	branch = "├── "
	leaf   = "└── "
	indent = "|   "
)

// Format appends a tree view of the node x and its children to b.
// Evaluated expression nodes are followed by their type.
func Format(ctx context.Context, b []byte, t *ast.Tree, x ast.ID) ([]byte, error) {
	return format(ctx, b, t, x, "")
}

func format(ctx context.Context, b []byte, t *ast.Tree, x ast.ID, pref string) (_ []byte, err error) {
	n := t.Node(x)

	switch n.Kind {
	case ast.Invalid, ast.Identifier, ast.Type:
		b = app(b, pref, leaf, n)

		return b, nil
	case ast.Block, ast.Fn, ast.Let, ast.Ret,
		ast.BinaryExpr, ast.UnaryExpr, ast.Call, ast.Grouping,
		ast.Integer, ast.Float,
		ast.Argument, ast.Arguments, ast.Parameters:
	default:
		return nil, errors.New("unsupported node: %v", n.Kind)
	}

	b = app(b, pref, branch, n)

	for _, k := range n.Kids {
		b, err = format(ctx, b, t, k, pref+indent)
		if err != nil {
			return nil, errors.Wrap(err, "%v", n.Kind)
		}
	}

	return b, nil
}

func app(b []byte, pref, mark string, n *ast.Node) []byte {
	b = append(b, pref...)
	b = append(b, mark...)
	b = append(b, n.Text...)

	switch n.Kind {
	case ast.Let, ast.Ret, ast.BinaryExpr, ast.UnaryExpr, ast.Call, ast.Grouping,
		ast.Identifier, ast.Integer, ast.Float, ast.Argument:
		if n.Type.Valid() {
			b = hfmt.Appendf(b, " : %v", n.Type)
		}
	}

	return append(b, '\n')
}
