package grove

import (
	"github.com/pkg/errors"

	"github.com/outofforest/grove/types"
)

// Handle is the entry view of one key. An occupied handle references the live
// slot storing the key; a vacant handle caches the attachment point found
// during the search, so materializing it inserts in O(1) without a second
// descent. A vacant handle becomes stale after any other mutation of the map.
type Handle[K any, T comparable] struct {
	m      *Map[K, T]
	slot   types.Slot
	parent types.Slot
	dir    int
	status types.Status
}

// Handle searches for key and returns its entry view.
func (m *Map[K, T]) Handle(key K) Handle[K, T] {
	if m == nil || m.tree == nil {
		return Handle[K, T]{status: types.StatusArgumentError | types.StatusNoUnwrap}
	}
	s, parent, dir := m.tree.Find(key)
	if s != types.NilSlot {
		return Handle[K, T]{m: m, slot: s, status: types.StatusOccupied}
	}
	return Handle[K, T]{
		m:      m,
		parent: parent,
		dir:    dir,
		status: types.StatusVacant | types.StatusNoUnwrap,
	}
}

// Status returns the status bitmask of the handle.
func (h Handle[K, T]) Status() types.Status {
	return h.status
}

// Occupied reports whether the handle references a live element.
func (h Handle[K, T]) Occupied() bool {
	return h.status.Has(types.StatusOccupied)
}

// Slot returns the slot of the referenced element, the sentinel when the
// handle is not occupied.
func (h Handle[K, T]) Slot() types.Slot {
	if !h.Occupied() {
		return types.NilSlot
	}
	return h.slot
}

// Item returns the referenced element. Dereferencing a handle flagged
// NoUnwrap is an error.
func (h Handle[K, T]) Item() (*T, error) {
	if !h.Occupied() {
		return nil, errors.Errorf("handle does not reference an element, status %#x", h.status)
	}
	return h.m.tree.Item(h.slot), nil
}

// AndModify applies fn to the referenced element when the handle is occupied
// and returns the handle for chaining. The key of the element must not be
// changed by fn.
func (h Handle[K, T]) AndModify(fn func(*T)) Handle[K, T] {
	if h.Occupied() {
		fn(h.m.tree.Item(h.slot))
	}
	return h
}

// OrInsert materializes a vacant handle by inserting v at the cached
// attachment point and returns the now occupied handle. The key of v must be
// the key the handle was obtained for. An occupied handle is returned as is.
func (h Handle[K, T]) OrInsert(v T) Handle[K, T] {
	if h.Occupied() || h.status.Has(types.StatusArgumentError) {
		return h
	}
	s, err := h.m.tree.InsertAt(h.parent, h.dir, v)
	if err != nil {
		h.status |= types.StatusInsertError
		return h
	}
	h.slot = s
	h.status = types.StatusOccupied
	return h
}

// InsertOrAssign stores v under the handle's key: occupied handles are
// overwritten in place, vacant ones materialized like OrInsert.
func (h Handle[K, T]) InsertOrAssign(v T) Handle[K, T] {
	if h.Occupied() {
		*h.m.tree.Item(h.slot) = v
		return h
	}
	return h.OrInsert(v)
}

// Remove erases the referenced element and returns it. A handle that is not
// occupied reports its status unchanged. The handle is stale afterwards.
func (h Handle[K, T]) Remove() (T, types.Status) {
	if !h.Occupied() {
		var zero T
		return zero, h.status
	}
	return h.m.tree.Delete(h.slot), types.StatusOccupied
}
