package wavl

import (
	"github.com/outofforest/grove/types"
)

// First returns the slot of the smallest element, the sentinel if the tree is
// empty.
func (t *Tree[K, T]) First() types.Slot {
	return t.edge(0)
}

// Last returns the slot of the greatest element, the sentinel if the tree is
// empty.
func (t *Tree[K, T]) Last() types.Slot {
	return t.edge(1)
}

// Next returns the slot of the in-order successor of s, the sentinel past the
// greatest element.
func (t *Tree[K, T]) Next(s types.Slot) types.Slot {
	return t.step(s, 1)
}

// Prev returns the slot of the in-order predecessor of s, the sentinel before
// the smallest element.
func (t *Tree[K, T]) Prev(s types.Slot) types.Slot {
	return t.step(s, 0)
}

// EqualRange returns the slots bounding the half-open key interval [lo, hi):
// begin is the first element not less than lo, end the first not less than
// hi. Iterating Next from begin until end visits exactly the interval. lo
// must not order after hi.
func (t *Tree[K, T]) EqualRange(lo, hi K) (begin, end types.Slot) {
	return t.lowerBound(lo), t.lowerBound(hi)
}

// lowerBound returns the slot of the first element whose key is not less than
// key. Find lands either on the match or on the attachment point; landing on
// the greater side means the bound is the parent itself, landing on the lower
// side means one successor step forward.
func (t *Tree[K, T]) lowerBound(key K) types.Slot {
	s, parent, dir := t.Find(key)
	if s != types.NilSlot {
		return s
	}
	if parent == types.NilSlot {
		return types.NilSlot
	}
	if dir == 0 {
		return parent
	}
	return t.step(parent, 1)
}

func (t *Tree[K, T]) edge(d int) types.Slot {
	cur := t.root
	if cur == types.NilSlot {
		return types.NilSlot
	}
	for t.node(cur).Branch[d] != types.NilSlot {
		cur = t.node(cur).Branch[d]
	}
	return cur
}

// step walks one position in direction d: descend into the unexplored subtree
// if present, otherwise climb until crossing an edge from the opposite side.
func (t *Tree[K, T]) step(s types.Slot, d int) types.Slot {
	if c := t.node(s).Branch[d]; c != types.NilSlot {
		for t.node(c).Branch[1-d] != types.NilSlot {
			c = t.node(c).Branch[1-d]
		}
		return c
	}
	p := t.node(s).Parent
	for p != types.NilSlot && t.node(p).Branch[d] == s {
		s = p
		p = t.node(p).Parent
	}
	return p
}
