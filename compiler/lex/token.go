package lex

import (
	"strconv"

	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/tiny/compiler/tp"
)

type (
	Kind int

	Token struct {
		Kind Kind
		Text string
		Pos  int
	}
)

const (
	None Kind = iota

	Int
	Float
	Ident

	Let
	Fn
	Ret
	Type

	LParen
	RParen
	LCurly
	RCurly
	Plus
	Minus
	Star
	Slash
	Equal
	Semicolon
	Colon
	Comma
	Arrow
)

var keywords = map[string]Kind{
	"let": Let,
	"fn":  Fn,
	"ret": Ret,
}

func init() {
	for _, t := range tp.All() {
		keywords[t.String()] = Type
	}
}

func (k Kind) String() string {
	switch k {
	case None:
		return "end of input"
	case Int:
		return "integer"
	case Float:
		return "float"
	case Ident:
		return "identifier"
	case Let:
		return "let"
	case Fn:
		return "fn"
	case Ret:
		return "ret"
	case Type:
		return "type"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LCurly:
		return "'{'"
	case RCurly:
		return "'}'"
	case Plus:
		return "'+'"
	case Minus:
		return "'-'"
	case Star:
		return "'*'"
	case Slash:
		return "'/'"
	case Equal:
		return "'='"
	case Semicolon:
		return "';'"
	case Colon:
		return "':'"
	case Comma:
		return "','"
	case Arrow:
		return "'->'"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (t Token) Is(k Kind) bool { return t.Kind == k }

func (t Token) String() string {
	if t.Kind == None {
		return t.Kind.String()
	}

	return strconv.Quote(t.Text)
}

func (t Token) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 3)

	b = e.AppendString(b, "kind")
	b = e.AppendString(b, t.Kind.String())
	b = e.AppendString(b, "text")
	b = e.AppendString(b, t.Text)
	b = e.AppendKeyInt(b, "pos", t.Pos)

	return b
}
