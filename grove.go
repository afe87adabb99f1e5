package grove

import (
	"github.com/pkg/errors"

	"github.com/outofforest/grove/arena"
	"github.com/outofforest/grove/types"
	"github.com/outofforest/grove/wavl"
)

// Config configures a map.
type Config[K any, T comparable] struct {
	// Key extracts the ordering key from an element.
	Key func(*T) K

	// Compare is the three-way comparator: negative when a orders before b,
	// zero when equal, positive otherwise. It must not mutate the map.
	Compare func(a, b K) int

	// Alloc supplies and reclaims the backing memory. Nil makes the map
	// fixed-capacity: it never grows past Capacity slots.
	Alloc types.AllocFunc

	// Capacity is the initial slot capacity. One slot is reserved for the
	// sentinel; zero picks a default.
	Capacity types.Slot
}

// Map is an ordered associative container with worst-case logarithmic search,
// insertion and removal. Elements live in a single growable allocation and
// are addressed by slot indices which stay valid across growth, unlike raw
// addresses.
//
// A Map must not be used concurrently.
type Map[K any, T comparable] struct {
	tree *wavl.Tree[K, T]
}

// New creates a map.
func New[K any, T comparable](cfg Config[K, T]) (*Map[K, T], error) {
	if cfg.Key == nil {
		return nil, errors.New("key extractor is required")
	}
	if cfg.Compare == nil {
		return nil, errors.New("comparator is required")
	}

	a, err := arena.New[T](cfg.Alloc, cfg.Capacity)
	if err != nil {
		return nil, err
	}
	tree, err := wavl.New[K, T](a, cfg.Key, cfg.Compare)
	if err != nil {
		return nil, err
	}
	return &Map[K, T]{tree: tree}, nil
}

// Len returns the number of elements.
func (m *Map[K, T]) Len() int {
	if m == nil || m.tree == nil {
		return 0
	}
	return m.tree.Len()
}

// Capacity returns the current slot capacity, the sentinel included.
func (m *Map[K, T]) Capacity() types.Slot {
	return m.tree.Arena().Capacity()
}

// FreeSlots returns the number of slots available without growth.
func (m *Map[K, T]) FreeSlots() types.Slot {
	return m.tree.Arena().Capacity() - m.tree.Arena().Count()
}

// Contains reports whether key is present.
func (m *Map[K, T]) Contains(key K) bool {
	return m.Find(key) != types.NilSlot
}

// Find returns the slot storing key, the sentinel when absent.
func (m *Map[K, T]) Find(key K) types.Slot {
	if m == nil || m.tree == nil {
		return types.NilSlot
	}
	s, _, _ := m.tree.Find(key)
	return s
}

// Get returns the element stored under key.
func (m *Map[K, T]) Get(key K) (*T, bool) {
	s := m.Find(key)
	if s == types.NilSlot {
		return nil, false
	}
	return m.tree.Item(s), true
}

// Item returns the element stored in slot s, nil for the sentinel.
func (m *Map[K, T]) Item(s types.Slot) *T {
	return m.tree.Item(s)
}

// TryInsert inserts v only when its key is absent. It returns the slot of the
// element stored under the key together with the outcome: StatusVacant when v
// was inserted, StatusOccupied when an existing element was left in place,
// StatusInsertError when growth failed.
func (m *Map[K, T]) TryInsert(v T) (types.Slot, types.Status) {
	if m == nil || m.tree == nil {
		return types.NilSlot, types.StatusArgumentError | types.StatusNoUnwrap
	}
	s, parent, dir := m.tree.Find(m.keyOf(&v))
	if s != types.NilSlot {
		return s, types.StatusOccupied
	}
	s, err := m.tree.InsertAt(parent, dir, v)
	if err != nil {
		return types.NilSlot, types.StatusInsertError | types.StatusNoUnwrap
	}
	return s, types.StatusVacant
}

// InsertOrAssign inserts v, overwriting the element previously stored under
// the same key. StatusOccupied reports an overwrite, StatusVacant a fresh
// insertion.
func (m *Map[K, T]) InsertOrAssign(v T) (types.Slot, types.Status) {
	if m == nil || m.tree == nil {
		return types.NilSlot, types.StatusArgumentError | types.StatusNoUnwrap
	}
	s, parent, dir := m.tree.Find(m.keyOf(&v))
	if s != types.NilSlot {
		*m.tree.Item(s) = v
		return s, types.StatusOccupied
	}
	s, err := m.tree.InsertAt(parent, dir, v)
	if err != nil {
		return types.NilSlot, types.StatusInsertError | types.StatusNoUnwrap
	}
	return s, types.StatusVacant
}

// Remove erases the element stored under key and returns it. StatusOccupied
// reports a removal, StatusVacant an absent key.
func (m *Map[K, T]) Remove(key K) (T, types.Status) {
	var zero T
	if m == nil || m.tree == nil {
		return zero, types.StatusArgumentError | types.StatusNoUnwrap
	}
	v, ok := m.tree.DeleteKey(key)
	if !ok {
		return zero, types.StatusVacant | types.StatusNoUnwrap
	}
	return v, types.StatusOccupied
}

// First returns the slot of the smallest element.
func (m *Map[K, T]) First() types.Slot {
	return m.tree.First()
}

// Last returns the slot of the greatest element.
func (m *Map[K, T]) Last() types.Slot {
	return m.tree.Last()
}

// Next returns the slot of the in-order successor of s.
func (m *Map[K, T]) Next(s types.Slot) types.Slot {
	return m.tree.Next(s)
}

// Prev returns the slot of the in-order predecessor of s.
func (m *Map[K, T]) Prev(s types.Slot) types.Slot {
	return m.tree.Prev(s)
}

// EqualRange returns the slots bounding the half-open key interval [lo, hi).
func (m *Map[K, T]) EqualRange(lo, hi K) (begin, end types.Slot) {
	return m.tree.EqualRange(lo, hi)
}

// Reserve makes room for at least n more elements without further growth.
func (m *Map[K, T]) Reserve(n int) error {
	if m == nil || m.tree == nil {
		return errors.New("map is nil")
	}
	return m.tree.Reserve(n)
}

// Clear removes every element, optionally running destroy on each, while
// keeping the backing allocation.
func (m *Map[K, T]) Clear(destroy func(*T)) {
	m.tree.Clear(destroy)
}

// ClearAndFree removes every element and releases the backing allocation.
func (m *Map[K, T]) ClearAndFree(destroy func(*T)) {
	m.tree.ClearAndFree(destroy)
}

// Validate checks all structural invariants. It exists for tests and
// debugging; a healthy map always validates.
func (m *Map[K, T]) Validate() error {
	if m == nil || m.tree == nil {
		return errors.New("map is nil")
	}
	return m.tree.Validate()
}

func (m *Map[K, T]) keyOf(v *T) K {
	return m.tree.KeyOf(v)
}
