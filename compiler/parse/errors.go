package parse

import (
	"fmt"

	"tlog.app/go/loc"

	"github.com/slowlang/tiny/compiler/lex"
)

type (
	// SyntaxError is returned when expected token or construct is not found.
	SyntaxError struct {
		Line, Col int

		Want string
		Got  lex.Token

		// Msg replaces "expected Want, found Got" if set.
		Msg string

		from loc.PC
	}

	// TypeError is returned when types do not agree
	// or a name can't be resolved.
	TypeError struct {
		Line, Col int

		Msg string

		from loc.PC
	}
)

func (e *SyntaxError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%d:%d: syntax error: %s", e.Line, e.Col, e.Msg)
	}

	return fmt.Sprintf("%d:%d: syntax error: expected %s, found %v", e.Line, e.Col, e.Want, e.Got)
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%d:%d: type mismatch: %s", e.Line, e.Col, e.Msg)
}

// From is the compiler location the error was raised at.
func (e *SyntaxError) From() loc.PC { return e.from }

func (e *TypeError) From() loc.PC { return e.from }
