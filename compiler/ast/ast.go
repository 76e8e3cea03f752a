package ast

import (
	"strconv"

	"github.com/slowlang/tiny/compiler/tp"
)

type (
	// ID refers to a node in a Tree.
	ID int32

	Kind int8

	Node struct {
		Kind Kind
		Text string
		Pos  int

		// Type is set by the parser once the node is evaluated.
		Type tp.Type

		Kids []ID
	}

	// Tree owns all the nodes of a compilation unit.
	Tree struct {
		nodes []Node
	}
)

const (
	Nil ID = -1
)

const (
	Invalid Kind = iota
	Block
	Fn
	Let
	Ret
	BinaryExpr
	UnaryExpr
	Call
	Identifier
	Integer
	Float
	Type
	Argument
	Arguments
	Parameters
	Grouping
)

func (t *Tree) Add(k Kind, text string, pos int, kids ...ID) ID {
	id := ID(len(t.nodes))

	t.nodes = append(t.nodes, Node{
		Kind: k,
		Text: text,
		Pos:  pos,
		Type: tp.Mismatch,
		Kids: kids,
	})

	return id
}

func (t *Tree) Node(id ID) *Node {
	return &t.nodes[id]
}

func (t *Tree) Kind(id ID) Kind { return t.nodes[id].Kind }

func (t *Tree) Text(id ID) string { return t.nodes[id].Text }

func (t *Tree) Kids(id ID) []ID { return t.nodes[id].Kids }

func (t *Tree) Kid(id ID, i int) ID { return t.nodes[id].Kids[i] }

func (t *Tree) Type(id ID) tp.Type { return t.nodes[id].Type }

func (t *Tree) SetType(id ID, typ tp.Type) { t.nodes[id].Type = typ }

func (t *Tree) Append(id, kid ID) {
	t.nodes[id].Kids = append(t.nodes[id].Kids, kid)
}

func (t *Tree) Len() int { return len(t.nodes) }

// Reset releases all the nodes at once.
// IDs issued before are invalid after that.
func (t *Tree) Reset() {
	t.nodes = t.nodes[:0]
}

// Leaf reports whether the node kind never has children.
func (k Kind) Leaf() bool {
	switch k {
	case Invalid, Identifier, Type:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "Invalid"
	case Block:
		return "Block"
	case Fn:
		return "Fn"
	case Let:
		return "Let"
	case Ret:
		return "Ret"
	case BinaryExpr:
		return "BinaryExpr"
	case UnaryExpr:
		return "UnaryExpr"
	case Call:
		return "Call"
	case Identifier:
		return "Identifier"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case Type:
		return "Type"
	case Argument:
		return "Argument"
	case Arguments:
		return "Arguments"
	case Parameters:
		return "Parameters"
	case Grouping:
		return "Grouping"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}
