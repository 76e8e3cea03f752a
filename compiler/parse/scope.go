package parse

import (
	"github.com/slowlang/tiny/compiler/tp"
)

type (
	Variable struct {
		Name string
		Type tp.Type
	}

	Function struct {
		Name   string
		Params []Variable
		Ret    tp.Type
	}

	// Scope is a flat list of variables visible in a function body.
	// Names may repeat, the earliest declaration wins.
	Scope struct {
		Vars []Variable
	}
)

func (s *Scope) Declare(v Variable) {
	s.Vars = append(s.Vars, v)
}

func (s *Scope) Lookup(name string) (Variable, bool) {
	for _, v := range s.Vars {
		if v.Name == name {
			return v, true
		}
	}

	return Variable{}, false
}

func (p *Parser) scope() *Scope {
	return p.scopes[len(p.scopes)-1]
}

func (p *Parser) pushScope(vars []Variable) {
	s := &Scope{Vars: append([]Variable{}, vars...)}

	p.scopes = append(p.scopes, s)
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *Parser) lookupFunc(name string) *Function {
	for _, f := range p.funcs {
		if f.Name == name {
			return f
		}
	}

	return nil
}
