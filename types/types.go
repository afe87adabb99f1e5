package types

// Slot is the index of an element in the arena. Slots are stable handles:
// growing the arena changes the base address of the allocation but never the
// slot assigned to an element.
type Slot uint32

// NilSlot is the sentinel slot. It is never allocated to user data and stands
// for the absent node: a nil child, a nil parent and the not-found result.
// Conceptually it is a leaf of rank -1, so its parity bit is always set.
const NilSlot Slot = 0

// Node is the per-slot tree record. Branch[0] and Branch[1] are the child
// slots; the two directions carry no fixed geometric meaning and are used
// symmetrically.
//
// Parent holds the parent slot while the slot is wired into the tree, and the
// next free slot while the slot sits on the free list. The two readings are
// mutually exclusive: a slot is on the free list exactly when it is not
// reachable from the root.
type Node struct {
	Branch [2]Slot
	Parent Slot
}

// Status is the bitmask describing the outcome of a map or handle operation.
type Status uint8

// Status flags.
const (
	// StatusOccupied is set when the operation resolved to a live element.
	StatusOccupied Status = 1 << iota

	// StatusVacant is set when the key was absent. A vacant handle caches the
	// insertion point so a later insert needs no second search.
	StatusVacant

	// StatusInsertError is set when growth was required and the allocator
	// returned no memory, or the map is fixed-capacity and full.
	StatusInsertError

	// StatusArgumentError is set when a precondition was violated (nil map,
	// missing comparator). No state has been touched.
	StatusArgumentError

	// StatusNoUnwrap is set when the handle's slot does not reference a live
	// element and must not be dereferenced.
	StatusNoUnwrap
)

// Has reports whether all flags in mask are set.
func (s Status) Has(mask Status) bool {
	return s&mask == mask
}

// AllocFunc provides raw memory for the arena. It receives the previous
// allocation (nil on the first call) so the implementation may reuse or
// release it, and the requested size in bytes. Returning nil signals that no
// memory is available; the arena is then left unchanged.
type AllocFunc func(old []byte, size int) []byte
