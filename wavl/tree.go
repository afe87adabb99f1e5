package wavl

import (
	"github.com/pkg/errors"

	"github.com/outofforest/grove/arena"
	"github.com/outofforest/grove/types"
)

// Tree is a weak AVL tree over arena slots. Node records carry child and
// parent slot indices instead of pointers; the only balance information is
// one rank-parity bit per slot. The rank rule restricts every parent/child
// rank gap to 1 or 2, so within any rebalancing case the parity bit of a
// neighbor pair determines the gap completely.
type Tree[K any, T comparable] struct {
	arena   *arena.Arena[T]
	root    types.Slot
	key     func(*T) K
	compare func(a, b K) int
}

// New creates a tree storing its nodes in the given arena.
func New[K any, T comparable](
	a *arena.Arena[T],
	key func(*T) K,
	compare func(a, b K) int,
) (*Tree[K, T], error) {
	if a == nil {
		return nil, errors.New("arena is nil")
	}
	if key == nil {
		return nil, errors.New("key extractor is nil")
	}
	if compare == nil {
		return nil, errors.New("comparator is nil")
	}
	return &Tree[K, T]{
		arena:   a,
		key:     key,
		compare: compare,
	}, nil
}

// Len returns the number of elements.
func (t *Tree[K, T]) Len() int {
	return t.arena.Live()
}

// Root returns the root slot.
func (t *Tree[K, T]) Root() types.Slot {
	return t.root
}

// Arena returns the backing arena.
func (t *Tree[K, T]) Arena() *arena.Arena[T] {
	return t.arena
}

// Item returns the element stored in slot s, nil for the sentinel.
func (t *Tree[K, T]) Item(s types.Slot) *T {
	if s == types.NilSlot {
		return nil
	}
	return t.arena.Item(s)
}

// Key returns the ordering key of the element in slot s.
func (t *Tree[K, T]) Key(s types.Slot) K {
	return t.key(t.arena.Item(s))
}

// KeyOf returns the ordering key of an element.
func (t *Tree[K, T]) KeyOf(v *T) K {
	return t.key(v)
}

// Find descends from the root comparing keys. When the key is present its
// slot is returned. When absent, parent and dir identify the attachment point
// of the would-be node, so a following insert needs no second descent.
func (t *Tree[K, T]) Find(key K) (slot, parent types.Slot, dir int) {
	cur := t.root
	for cur != types.NilSlot {
		c := t.compare(key, t.key(t.arena.Item(cur)))
		switch {
		case c == 0:
			return cur, parent, dir
		case c < 0:
			dir = 0
		default:
			dir = 1
		}
		parent = cur
		cur = t.node(cur).Branch[dir]
	}
	return types.NilSlot, parent, dir
}

// Clear removes every element, optionally running destroy on each, while
// keeping the backing allocation.
func (t *Tree[K, T]) Clear(destroy func(*T)) {
	if destroy != nil {
		for s := t.First(); s != types.NilSlot; s = t.Next(s) {
			destroy(t.arena.Item(s))
		}
	}
	t.arena.Reset()
	t.root = types.NilSlot
}

// ClearAndFree removes every element and releases the backing allocation.
func (t *Tree[K, T]) ClearAndFree(destroy func(*T)) {
	if destroy != nil {
		for s := t.First(); s != types.NilSlot; s = t.Next(s) {
			destroy(t.arena.Item(s))
		}
	}
	t.arena.Free()
	t.root = types.NilSlot
}

// Reserve makes room for at least n more elements without further growth.
func (t *Tree[K, T]) Reserve(n int) error {
	return t.arena.Reserve(n)
}

func (t *Tree[K, T]) node(s types.Slot) *types.Node {
	return t.arena.Node(s)
}

// sameParity reports whether the rank-parity bits of two slots are equal.
// With valid rank gaps this means the gap between them is even, and the
// sentinel bit being fixed to set makes missing children read correctly as
// rank -1.
func (t *Tree[K, T]) sameParity(a, b types.Slot) bool {
	return t.arena.Parity(a) == t.arena.Parity(b)
}

// is2Child reports whether x is a 2-child of z. The same parity comparison
// answers is0Child during insertion fixup; the distinct names only document
// which invariant class the call site reasons about.
func (t *Tree[K, T]) is2Child(z, x types.Slot) bool {
	return t.sameParity(z, x)
}

// is0Child reports whether x is a 0-child of z, the transient rule violation
// introduced by insertion.
func (t *Tree[K, T]) is0Child(z, x types.Slot) bool {
	return t.sameParity(z, x)
}

// is1Child reports whether x is a 1-child of z.
func (t *Tree[K, T]) is1Child(z, x types.Slot) bool {
	return !t.sameParity(z, x)
}

// promote raises the rank of s by one. Only the parity bit is stored, so this
// is a toggle; correctness rests on the case analysis invoking it the right
// number of times.
func (t *Tree[K, T]) promote(s types.Slot) {
	t.arena.FlipParity(s)
}

// demote lowers the rank of s by one.
func (t *Tree[K, T]) demote(s types.Slot) {
	t.arena.FlipParity(s)
}

// dirOf returns the direction under which x hangs off p.
func (t *Tree[K, T]) dirOf(p, x types.Slot) int {
	if t.node(p).Branch[1] == x {
		return 1
	}
	return 0
}

// replaceChild makes n take old's place under g. When g is the sentinel, n
// becomes the root and the sentinel's children mirror it.
func (t *Tree[K, T]) replaceChild(g, old, n types.Slot) {
	if g == types.NilSlot {
		t.root = n
		s := t.node(types.NilSlot)
		s.Branch[0], s.Branch[1] = n, n
		return
	}
	t.node(g).Branch[t.dirOf(g, old)] = n
}
