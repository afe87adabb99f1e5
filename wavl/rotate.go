package wavl

import (
	"github.com/outofforest/grove/types"
)

// rotate rewires a single rotation around the z-x edge. x is z's child at
// direction d and rises into z's place; y is x's child at direction 1-d and
// reattaches as z's d-child. Pure index bookkeeping, never allocates.
func (t *Tree[K, T]) rotate(z, x, y types.Slot, d int) {
	g := t.node(z).Parent
	t.replaceChild(g, z, x)
	t.node(x).Parent = g

	t.node(z).Branch[d] = y
	if y != types.NilSlot {
		t.node(y).Parent = z
	}

	t.node(x).Branch[1-d] = z
	t.node(z).Parent = x
}

// doubleRotate rewires a double rotation around the z-x edge. x is z's child
// at direction d, y is x's child at direction 1-d and rises above both; y's
// former children are split between x and z.
func (t *Tree[K, T]) doubleRotate(z, x, y types.Slot, d int) {
	g := t.node(z).Parent
	t.replaceChild(g, z, y)
	ny := t.node(y)
	ny.Parent = g

	if c := ny.Branch[d]; c != types.NilSlot {
		t.node(c).Parent = x
		t.node(x).Branch[1-d] = c
	} else {
		t.node(x).Branch[1-d] = types.NilSlot
	}
	if c := ny.Branch[1-d]; c != types.NilSlot {
		t.node(c).Parent = z
		t.node(z).Branch[d] = c
	} else {
		t.node(z).Branch[d] = types.NilSlot
	}

	ny.Branch[d] = x
	t.node(x).Parent = y
	ny.Branch[1-d] = z
	t.node(z).Parent = y
}
