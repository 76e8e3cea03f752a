package main

import (
	"context"
	"os"
	"runtime"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tiny/compiler"
	"github.com/slowlang/tiny/compiler/target"
)

func main() {
	app := &cli.Command{
		Name:        "tiny",
		Description: "tiny compiles a tiny source file into output.o",
		Usage:       "[flags] <file>",
		Before:      before,
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", compiler.DefaultOutput, "object file path"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.NewFlag("parse-only", false, "print ast and stop"),
			cli.NewFlag("tool", "", "backend tool path (llc or clang)"),
			cli.HelpFlag,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func compileAct(c *cli.Command) (err error) {
	if len(c.Args) != 1 {
		return errors.New("expected exactly one source file, got %d", len(c.Args))
	}

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	opts := compiler.Options{
		Output:    c.String("output"),
		Listing:   os.Stdout,
		ParseOnly: c.Bool("parse-only"),
	}

	if tool := c.String("tool"); tool != "" {
		tg := &target.Target{}
		tg.Triple, _ = target.Triple(runtime.GOOS, runtime.GOARCH)

		err = tg.SetTool(tool)
		if err != nil {
			return err
		}

		opts.Target = tg
	}

	name := c.Args[0]

	err = compiler.CompileFile(ctx, name, opts)
	if err != nil {
		return errors.Wrap(err, "compile %v", name)
	}

	return nil
}
