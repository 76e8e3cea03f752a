package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slowlang/tiny/compiler/tp"
)

func TestTree(t *testing.T) {
	var tr Tree

	one := tr.Add(Integer, "1", 0, tr.Add(Type, "i32", 0))
	two := tr.Add(Integer, "2", 4, tr.Add(Type, "i32", 4))
	sum := tr.Add(BinaryExpr, "+", 2, one, two)

	assert.Equal(t, 5, tr.Len())
	assert.Equal(t, []ID{one, two}, tr.Kids(sum))
	assert.Equal(t, "+", tr.Text(sum))
	assert.Equal(t, BinaryExpr, tr.Kind(sum))
	assert.Equal(t, tp.Mismatch, tr.Type(sum))

	tr.SetType(sum, tp.I32)
	assert.Equal(t, tp.I32, tr.Node(sum).Type)

	blk := tr.Add(Block, "block", 0)
	tr.Append(blk, sum)
	assert.Equal(t, sum, tr.Kid(blk, 0))

	tr.Reset()
	assert.Equal(t, 0, tr.Len())

	assert.Equal(t, ID(0), tr.Add(Identifier, "x", 0))
}

func TestKind(t *testing.T) {
	assert.True(t, Identifier.Leaf())
	assert.False(t, Call.Leaf())
	assert.Equal(t, "Grouping", Grouping.String())
	assert.Equal(t, "Kind(100)", Kind(100).String())
}
