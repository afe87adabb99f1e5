package wavl

import (
	"github.com/outofforest/grove/types"
)

// InsertAt stores v in a fresh slot and links it as the dir-directed child of
// parent, as previously reported by Find. A sentinel parent means the tree is
// empty and the new slot becomes the root. Returns the slot, or an error when
// the arena could not grow; in that case nothing has changed.
func (t *Tree[K, T]) InsertAt(parent types.Slot, dir int, v T) (types.Slot, error) {
	s, err := t.arena.Allocate()
	if err != nil {
		return types.NilSlot, err
	}

	*t.arena.Item(s) = v
	n := t.node(s)
	n.Branch[0], n.Branch[1], n.Parent = types.NilSlot, types.NilSlot, parent
	// A fresh node is a leaf of rank 0.
	t.arena.SetParity(s, false)

	if parent == types.NilSlot {
		t.replaceChild(types.NilSlot, types.NilSlot, s)
		return s, nil
	}

	p := t.node(parent)
	wasLeaf := p.Branch[0] == types.NilSlot && p.Branch[1] == types.NilSlot
	p.Branch[dir] = s
	if wasLeaf {
		// The new child turned a rank-0 leaf into a 0,1-parent.
		t.insertFixup(s)
	}
	return s, nil
}

// insertFixup restores the rank rule after x was linked as a 0-child. It
// climbs promoting 0,1-parents; a 0,2-parent terminates the climb with one
// single or double rotation. At most two rotations per insertion.
func (t *Tree[K, T]) insertFixup(x types.Slot) {
	for {
		z := t.node(x).Parent
		if z == types.NilSlot || !t.is0Child(z, x) {
			return
		}

		d := t.dirOf(z, x)
		if !t.is2Child(z, t.node(z).Branch[1-d]) {
			// 0,1-parent: promoting z moves the violation one level up.
			t.promote(z)
			x = z
			continue
		}

		// 0,2-parent: resolved by rotation around the z-x edge.
		y := t.node(x).Branch[1-d]
		if t.is2Child(x, y) {
			t.rotate(z, x, y, d)
			t.demote(z)
		} else {
			t.doubleRotate(z, x, y, d)
			t.promote(y)
			t.demote(x)
			t.demote(z)
		}
		return
	}
}
