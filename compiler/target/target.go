package target

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/llir/llvm/ir"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

type (
	// Target is a host backend able to turn IR text into a native object.
	Target struct {
		Triple string

		// Tool reads IR on stdin and writes the object to stdout.
		Tool string
		Args []string
	}

	OutputError struct {
		Path string
		Err  error
	}
)

var ErrTargetUnavailable = errors.New("backend target unavailable")

var triples = map[[2]string]string{
	{"linux", "amd64"}:   "x86_64-pc-linux-gnu",
	{"linux", "386"}:     "i686-pc-linux-gnu",
	{"linux", "arm64"}:   "aarch64-unknown-linux-gnu",
	{"linux", "riscv64"}: "riscv64-unknown-linux-gnu",
	{"darwin", "amd64"}:  "x86_64-apple-darwin",
	{"darwin", "arm64"}:  "arm64-apple-darwin",
	{"freebsd", "amd64"}: "x86_64-unknown-freebsd",
	{"windows", "amd64"}: "x86_64-pc-windows-msvc",
	{"windows", "arm64"}: "aarch64-pc-windows-msvc",
}

// Host resolves the target of the running platform.
// llc is preferred, clang is the fallback.
func Host() (*Target, error) {
	return host(runtime.GOOS, runtime.GOARCH, exec.LookPath)
}

func host(goos, goarch string, look func(string) (string, error)) (*Target, error) {
	triple, ok := Triple(goos, goarch)
	if !ok {
		return nil, errors.Wrap(ErrTargetUnavailable, "%v/%v", goos, goarch)
	}

	t := &Target{Triple: triple}

	for _, tool := range []string{"llc", "clang"} {
		path, err := look(tool)
		if err != nil {
			continue
		}

		err = t.SetTool(path)
		if err != nil {
			return nil, err
		}

		return t, nil
	}

	return nil, errors.Wrap(ErrTargetUnavailable, "no llc or clang in PATH")
}

// Triple returns LLVM target triple for the Go platform.
func Triple(goos, goarch string) (string, bool) {
	t, ok := triples[[2]string{goos, goarch}]
	return t, ok
}

// SetTool sets the backend tool and the arguments it is run with.
func (t *Target) SetTool(path string) error {
	switch strings.TrimSuffix(filepath.Base(path), ".exe") {
	case "llc":
		t.Args = []string{"-filetype=obj", "-relocation-model=pic", "-o", "-", "-"}
	case "clang":
		t.Args = []string{"-c", "-x", "ir", "-fPIC", "-o", "-", "-"}
	default:
		return errors.New("unsupported backend tool: %q", path)
	}

	t.Tool = path

	return nil
}

// Emit writes the object file of the module to the path.
func (t *Target) Emit(ctx context.Context, m *ir.Module, path string) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "emit object", "tool", t.Tool, "triple", t.Triple, "path", path)
	defer tr.Finish("err", &err)

	if t.Triple != "" {
		m.TargetTriple = t.Triple
	}

	text := m.String()

	if tr.If("dump_ir") {
		tr.Printw("module", "ir", text)
	}

	f, err := os.Create(path)
	if err != nil {
		return &OutputError{Path: path, Err: err}
	}

	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = &OutputError{Path: path, Err: e}
		}

		if err != nil {
			_ = os.Remove(path)
		}
	}()

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, t.Tool, t.Args...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = f
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		return errors.Wrap(err, "%v: %s", filepath.Base(t.Tool), bytes.TrimSpace(stderr.Bytes()))
	}

	return nil
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("write output %v: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }
