package arena

import (
	"unsafe"

	"github.com/bits-and-blooms/bitset"
	"github.com/outofforest/photon"
	"github.com/pkg/errors"

	"github.com/outofforest/grove/layout"
	"github.com/outofforest/grove/pkg/memalloc"
	"github.com/outofforest/grove/types"
)

// minCapacity is one parity word of slots. Growing straight to it amortizes
// the first growths of a small arena.
const minCapacity types.Slot = layout.WordBits

// Arena owns the single backing allocation holding the three parallel arrays:
// element records, node records and rank-parity bits. Slots are handed out
// from a LIFO free list threaded through the node record's Parent field.
//
// Elements are stored in raw memory, so T must not contain pointers.
type Arena[T comparable] struct {
	alloc    types.AllocFunc
	initCap  types.Slot
	itemSize uintptr

	buf    []byte
	lay    layout.Layout
	nodes  []types.Node
	parity *bitset.BitSet

	// count is the number of live slots, the sentinel included.
	count    types.Slot
	freeHead types.Slot
}

// New creates an arena with the given initial slot capacity. A nil alloc makes
// the arena fixed-capacity: the initial allocation comes from the heap and no
// growth ever happens.
func New[T comparable](alloc types.AllocFunc, capacity types.Slot) (*Arena[T], error) {
	if capacity < 2 {
		capacity = minCapacity
	}

	var t T
	a := &Arena[T]{
		alloc:    alloc,
		initCap:  capacity,
		itemSize: unsafe.Sizeof(t),
	}
	if err := a.grow(capacity); err != nil {
		return nil, err
	}
	return a, nil
}

// Node returns the node record of slot s.
func (a *Arena[T]) Node(s types.Slot) *types.Node {
	return &a.nodes[s]
}

// Item returns the element record of slot s.
func (a *Arena[T]) Item(s types.Slot) *T {
	return photon.NewFromBytes[T](a.buf[uintptr(s)*a.itemSize:]).V
}

// Parity returns the rank-parity bit of slot s.
func (a *Arena[T]) Parity(s types.Slot) bool {
	return a.parity.Test(uint(s))
}

// FlipParity toggles the rank-parity bit of slot s. Promoting and demoting a
// node are both exactly this toggle.
func (a *Arena[T]) FlipParity(s types.Slot) {
	a.parity.Flip(uint(s))
}

// SetParity sets the rank-parity bit of slot s.
func (a *Arena[T]) SetParity(s types.Slot, v bool) {
	a.parity.SetTo(uint(s), v)
}

// Allocate pops a slot off the free list, growing the arena first if the free
// list is exhausted. On growth failure the arena is left exactly as it was.
func (a *Arena[T]) Allocate() (types.Slot, error) {
	if a.freeHead == types.NilSlot {
		if err := a.grow(2 * a.lay.Capacity); err != nil {
			return types.NilSlot, err
		}
	}

	s := a.freeHead
	a.freeHead = a.nodes[s].Parent
	a.count++
	return s, nil
}

// Release pushes slot s back onto the free list.
func (a *Arena[T]) Release(s types.Slot) {
	a.nodes[s].Parent = a.freeHead
	a.freeHead = s
	a.count--
}

// Reserve grows the arena so that at least n more slots can be allocated
// without further growth.
func (a *Arena[T]) Reserve(n int) error {
	live := int(a.count)
	if live == 0 {
		live = 1
	}
	if int(a.lay.Capacity)-live >= n {
		return nil
	}

	newCap := a.lay.Capacity
	if newCap < minCapacity {
		newCap = minCapacity
	}
	for int(newCap)-live < n {
		newCap *= 2
	}
	return a.grow(newCap)
}

// Reset frees every live slot while keeping the allocation.
func (a *Arena[T]) Reset() {
	if a.lay.Capacity == 0 {
		return
	}
	a.nodes[0] = types.Node{}
	a.parity.Set(0)
	a.count = 1
	a.freeHead = types.NilSlot
	for s := a.lay.Capacity - 1; s >= 1; s-- {
		a.nodes[s].Parent = a.freeHead
		a.freeHead = s
	}
}

// Free releases the backing allocation entirely. The next allocation
// reinitializes the arena at its initial capacity.
func (a *Arena[T]) Free() {
	if a.alloc != nil && a.buf != nil {
		a.alloc(a.buf, 0)
	}
	a.buf = nil
	a.lay = layout.Layout{}
	a.nodes = nil
	a.parity = nil
	a.count = 0
	a.freeHead = types.NilSlot
}

// Live returns the number of live elements, the sentinel excluded.
func (a *Arena[T]) Live() int {
	if a.count == 0 {
		return 0
	}
	return int(a.count) - 1
}

// Count returns the number of live slots, the sentinel included.
func (a *Arena[T]) Count() types.Slot {
	return a.count
}

// Capacity returns the total number of slots, the sentinel included.
func (a *Arena[T]) Capacity() types.Slot {
	return a.lay.Capacity
}

// Layout returns the current layout of the backing allocation.
func (a *Arena[T]) Layout() layout.Layout {
	return a.lay
}

// FreeList walks the free list. It returns an error when the walk exceeds the
// arena capacity, meaning the list is cyclic.
func (a *Arena[T]) FreeList(fn func(types.Slot)) error {
	steps := types.Slot(0)
	for s := a.freeHead; s != types.NilSlot; s = a.nodes[s].Parent {
		if steps >= a.lay.Capacity {
			return errors.Errorf("free list is cyclic after %d steps", steps)
		}
		steps++
		fn(s)
	}
	return nil
}

func (a *Arena[T]) grow(newCap types.Slot) error {
	oldCap := a.lay.Capacity
	if oldCap == 0 && newCap < a.initCap {
		newCap = a.initCap
	}
	if newCap < minCapacity {
		newCap = minCapacity
	}

	alloc := a.alloc
	if alloc == nil {
		if oldCap > 0 {
			return errors.Errorf("arena is fixed at %d slots", oldCap)
		}
		// Fixed-capacity arenas still need their initial allocation.
		alloc = memalloc.Heap()
	}

	lay := layout.Compute(a.itemSize, newCap)
	buf := alloc(a.buf, lay.TotalSize)
	if buf == nil {
		return errors.Errorf("allocator returned no memory for %d bytes", lay.TotalSize)
	}
	if len(buf) < lay.TotalSize {
		return errors.Errorf("allocator returned %d bytes, %d required", len(buf), lay.TotalSize)
	}

	// Copy regions right to left so an allocator reusing the old memory
	// cannot clobber a region that still waits to be moved.
	if oldCap > 0 {
		copy(lay.ParityBuf(buf), a.lay.ParityBuf(a.buf))
		copy(buf[lay.NodeOffset:lay.NodeOffset+layout.NodeSize*int(oldCap)],
			a.buf[a.lay.NodeOffset:a.lay.NodeOffset+layout.NodeSize*int(oldCap)])
		copy(buf, a.buf[:int(a.itemSize)*int(oldCap)])
	}

	a.buf = buf
	a.lay = lay
	a.nodes = lay.Nodes(buf)
	a.parity = bitset.From(lay.ParityBuf(buf))

	if oldCap == 0 {
		a.nodes[0] = types.Node{}
		a.parity.Set(0)
		a.count = 1
		oldCap = 1
	}

	// Free list over the new slots, lowest index on top.
	for s := newCap - 1; s >= oldCap; s-- {
		a.nodes[s].Parent = a.freeHead
		a.freeHead = s
	}
	return nil
}
