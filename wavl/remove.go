package wavl

import (
	"github.com/outofforest/grove/types"
)

// Delete unlinks slot s from the tree, rebalances, releases the slot and
// returns the removed element.
func (t *Tree[K, T]) Delete(s types.Slot) T {
	v := *t.arena.Item(s)
	n := t.node(s)
	if n.Branch[0] != types.NilSlot && n.Branch[1] != types.NilSlot {
		t.deleteInner(s)
	} else {
		t.splice(s)
	}
	t.arena.Release(s)
	return v
}

// DeleteKey removes the element stored under key, if any.
func (t *Tree[K, T]) DeleteKey(key K) (T, bool) {
	s, _, _ := t.Find(key)
	if s == types.NilSlot {
		var zero T
		return zero, false
	}
	return t.Delete(s), true
}

// splice removes a node with at most one child: the sole child (or nothing)
// takes its place directly.
func (t *Tree[K, T]) splice(s types.Slot) {
	n := t.node(s)
	c := n.Branch[0]
	if c == types.NilSlot {
		c = n.Branch[1]
	}
	p := n.Parent

	var d int
	wasTwo := false
	if p != types.NilSlot {
		d = t.dirOf(p, s)
		wasTwo = t.is2Child(p, s)
	}

	t.replaceChild(p, s, c)
	if c != types.NilSlot {
		t.node(c).Parent = p
	}
	if p == types.NilSlot {
		return
	}

	if wasTwo {
		// The spliced-out node was a 2-child; its replacement is a 3-child.
		t.rebalance3Child(p, d)
		return
	}
	np := t.node(p)
	if c == types.NilSlot && np.Branch[0] == types.NilSlot && np.Branch[1] == types.NilSlot {
		// p lost its last child while at rank 1: an invalid 2,2-leaf.
		pp := np.Parent
		ppWasTwo := pp != types.NilSlot && t.is2Child(pp, p)
		ppDir := 0
		if ppWasTwo {
			ppDir = t.dirOf(pp, p)
		}
		t.demote(p)
		if ppWasTwo {
			t.rebalance3Child(pp, ppDir)
		}
	}
}

// deleteInner removes a node with two children by relocating its in-order
// successor into its tree position and splicing the successor's original
// position out instead.
func (t *Tree[K, T]) deleteInner(s types.Slot) {
	n := t.node(s)

	succ := n.Branch[1]
	for t.node(succ).Branch[0] != types.NilSlot {
		succ = t.node(succ).Branch[0]
	}
	ps := t.node(succ).Parent
	c := t.node(succ).Branch[1] // the successor never has a left child
	wasTwo := t.is2Child(ps, succ)
	d := 0
	if ps == s {
		d = 1
	}

	// Splice the successor out of its old position.
	t.node(ps).Branch[d] = c
	if c != types.NilSlot {
		t.node(c).Parent = ps
	}

	// Transplant the successor into s's position, copying the parity so the
	// position keeps its rank.
	g := n.Parent
	t.replaceChild(g, s, succ)
	sn := t.node(succ)
	sn.Parent = g
	sn.Branch[0] = n.Branch[0]
	t.node(n.Branch[0]).Parent = succ
	sn.Branch[1] = n.Branch[1]
	if n.Branch[1] != types.NilSlot {
		t.node(n.Branch[1]).Parent = succ
	}
	t.arena.SetParity(succ, t.arena.Parity(s))

	z := ps
	if ps == s {
		z = succ
	}
	if wasTwo {
		t.rebalance3Child(z, d)
		return
	}
	nz := t.node(z)
	if c == types.NilSlot && nz.Branch[0] == types.NilSlot && nz.Branch[1] == types.NilSlot {
		zp := nz.Parent
		zpWasTwo := zp != types.NilSlot && t.is2Child(zp, z)
		zpDir := 0
		if zpWasTwo {
			zpDir = t.dirOf(zp, z)
		}
		t.demote(z)
		if zpWasTwo {
			t.rebalance3Child(zp, zpDir)
		}
	}
}

// rebalance3Child restores the rank rule after deletion left a 3-child gap at
// z's d-branch. Demotion cases climb; a rotation case terminates. At most two
// rotations per deletion, demotions O(log n).
func (t *Tree[K, T]) rebalance3Child(z types.Slot, d int) {
	for {
		y := t.node(z).Branch[1-d] // sibling of the gap, never the sentinel

		if t.is2Child(z, y) {
			// 3,2-parent: demote z; the gap may reappear one level up.
			p := t.node(z).Parent
			wasTwo := p != types.NilSlot && t.is2Child(p, z)
			t.demote(z)
			if !wasTwo {
				return
			}
			d = t.dirOf(p, z)
			z = p
			continue
		}

		ny := t.node(y)
		if t.is2Child(y, ny.Branch[0]) && t.is2Child(y, ny.Branch[1]) {
			// y is a 2,2-parent: demote both and climb.
			p := t.node(z).Parent
			wasTwo := p != types.NilSlot && t.is2Child(p, z)
			t.demote(y)
			t.demote(z)
			if !wasTwo {
				return
			}
			d = t.dirOf(p, z)
			z = p
			continue
		}

		if t.is1Child(y, ny.Branch[1-d]) {
			// Outer child of y is a 1-child: single rotation raising y.
			t.rotate(z, y, ny.Branch[d], 1-d)
			t.promote(y)
			t.demote(z)
			nz := t.node(z)
			if nz.Branch[0] == types.NilSlot && nz.Branch[1] == types.NilSlot {
				// z ended up a childless rank-1 node, drop it to rank 0.
				t.demote(z)
			}
			return
		}

		// Inner child of y is the 1-child: double rotation raising it. The
		// riser gains two ranks and z loses two, both invisible at parity
		// level; only y's single demotion toggles a bit.
		v := ny.Branch[d]
		t.doubleRotate(z, y, v, 1-d)
		t.demote(y)
		return
	}
}
