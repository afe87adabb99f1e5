package wavl

import (
	"github.com/pkg/errors"

	"github.com/outofforest/grove/types"
)

// Validate checks every structural invariant of the tree and the arena:
// BST ordering, rank gaps of 1 or 2 on every live edge, leaves at rank 0,
// mutual parent/child consistency, sentinel parity and root mirroring, and
// free-list plus count accounting. Ranks are reconstructed bottom-up from the
// parity bits; any assignment passing the checks is a valid WAVL labeling.
func (t *Tree[K, T]) Validate() error {
	a := t.arena
	if a.Capacity() == 0 {
		if t.root != types.NilSlot {
			return errors.Errorf("root is %d on a freed arena", t.root)
		}
		return nil
	}

	if !a.Parity(types.NilSlot) {
		return errors.New("sentinel parity bit must be set")
	}
	s0 := t.node(types.NilSlot)
	if s0.Branch[0] != t.root || s0.Branch[1] != t.root {
		return errors.Errorf("sentinel children (%d, %d) do not mirror root %d",
			s0.Branch[0], s0.Branch[1], t.root)
	}
	if t.root != types.NilSlot && t.node(t.root).Parent != types.NilSlot {
		return errors.Errorf("root %d has parent %d", t.root, t.node(t.root).Parent)
	}

	live := map[types.Slot]struct{}{}
	count, _, err := t.checkNode(t.root, types.NilSlot, live)
	if err != nil {
		return err
	}
	if types.Slot(count)+1 != a.Count() {
		return errors.Errorf("%d slots reachable from root, count records %d live slots",
			count, a.Count()-1)
	}

	prev := types.NilSlot
	for s := t.First(); s != types.NilSlot; s = t.Next(s) {
		if prev != types.NilSlot && t.compare(t.Key(prev), t.Key(s)) >= 0 {
			return errors.Errorf("keys of slots %d and %d out of order", prev, s)
		}
		prev = s
	}

	freeLen := types.Slot(0)
	var freeErr error
	if err := a.FreeList(func(s types.Slot) {
		freeLen++
		if _, ok := live[s]; ok && freeErr == nil {
			freeErr = errors.Errorf("slot %d is both reachable and free", s)
		}
	}); err != nil {
		return err
	}
	if freeErr != nil {
		return freeErr
	}
	if freeLen+a.Count() != a.Capacity() {
		return errors.Errorf("%d free + %d live slots != capacity %d",
			freeLen, a.Count(), a.Capacity())
	}
	return nil
}

func (t *Tree[K, T]) checkNode(
	s, parent types.Slot,
	live map[types.Slot]struct{},
) (count, rank int, err error) {
	if s == types.NilSlot {
		return 0, -1, nil
	}
	if _, ok := live[s]; ok {
		return 0, 0, errors.Errorf("slot %d is reachable twice", s)
	}
	live[s] = struct{}{}

	n := t.node(s)
	if n.Parent != parent {
		return 0, 0, errors.Errorf("slot %d hangs off %d but records parent %d",
			s, parent, n.Parent)
	}

	lc, lr, err := t.checkNode(n.Branch[0], s, live)
	if err != nil {
		return 0, 0, err
	}
	rc, rr, err := t.checkNode(n.Branch[1], s, live)
	if err != nil {
		return 0, 0, err
	}

	// A parity match with a child means gap 2, a mismatch gap 1. The rank a
	// node gets through both children must agree, or some edge violates the
	// rank rule.
	rankL := lr + t.gapTo(s, n.Branch[0])
	rankR := rr + t.gapTo(s, n.Branch[1])
	if rankL != rankR {
		return 0, 0, errors.Errorf("slot %d rank is %d via left child, %d via right",
			s, rankL, rankR)
	}
	if n.Branch[0] == types.NilSlot && n.Branch[1] == types.NilSlot && rankL != 0 {
		return 0, 0, errors.Errorf("leaf slot %d has rank %d", s, rankL)
	}
	return lc + rc + 1, rankL, nil
}

func (t *Tree[K, T]) gapTo(s, child types.Slot) int {
	if t.sameParity(s, child) {
		return 2
	}
	return 1
}
