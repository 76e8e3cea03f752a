package compiler

import (
	"context"
	"io"
	"os"

	"github.com/llir/llvm/ir"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/tiny/compiler/back"
	"github.com/slowlang/tiny/compiler/format"
	"github.com/slowlang/tiny/compiler/parse"
	"github.com/slowlang/tiny/compiler/target"
)

type (
	Options struct {
		// Output is the object file path.
		Output string

		// Listing receives the AST and IR text. Nil discards it.
		Listing io.Writer

		ParseOnly bool

		// Target overrides the host backend.
		Target *target.Target
	}
)

const DefaultOutput = "output.o"

func CompileFile(ctx context.Context, name string, opts Options) (err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text, opts)
}

func Compile(ctx context.Context, name string, text []byte, opts Options) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", name)
	defer tr.Finish("err", &err)

	w := opts.Listing
	if w == nil {
		w = io.Discard
	}

	u, err := Parse(ctx, name, text)
	if err != nil {
		var d interface{ From() loc.PC }
		if errors.As(err, &d) && tr.If("parse_errors") {
			tr.Printw("parse error", "err", err, "raised_at", d.From())
		}

		return errors.Wrap(err, "parse")
	}

	defer u.Tree.Reset()

	b, err := format.Format(ctx, []byte("AST:\n"), u.Tree, u.Root)
	if err != nil {
		return errors.Wrap(err, "format ast")
	}

	_, err = w.Write(b)
	if err != nil {
		return errors.Wrap(err, "write ast")
	}

	if opts.ParseOnly {
		return nil
	}

	m, err := Generate(ctx, u)
	if err != nil {
		return errors.Wrap(err, "generate")
	}

	_, err = io.WriteString(w, "\nIR:\n"+m.String())
	if err != nil {
		return errors.Wrap(err, "write ir")
	}

	tg := opts.Target
	if tg == nil {
		tg, err = target.Host()
		if err != nil {
			return err
		}
	}

	out := opts.Output
	if out == "" {
		out = DefaultOutput
	}

	err = tg.Emit(ctx, m, out)
	if err != nil {
		return errors.Wrap(err, "emit")
	}

	return nil
}

// Parse lexes, parses and type checks the text.
func Parse(ctx context.Context, name string, text []byte) (*parse.Unit, error) {
	return parse.Parse(ctx, name, text)
}

// Generate lowers the checked unit into an IR module.
func Generate(ctx context.Context, u *parse.Unit) (*ir.Module, error) {
	return back.New().CompileUnit(ctx, u)
}
