package memalloc

import (
	"github.com/outofforest/grove/types"
)

// Heap returns an allocator backed by the Go heap. The previous allocation is
// abandoned to the garbage collector.
func Heap() types.AllocFunc {
	return func(old []byte, size int) []byte {
		if size == 0 {
			return nil
		}
		return make([]byte, size)
	}
}

// Limited returns a heap allocator refusing allocations above maxBytes. It is
// used to exercise the growth-failure path.
func Limited(maxBytes int) types.AllocFunc {
	return func(old []byte, size int) []byte {
		if size > maxBytes {
			return nil
		}
		if size == 0 {
			return nil
		}
		return make([]byte, size)
	}
}

// Failing returns a heap allocator failing deterministically after the given
// number of successful calls.
func Failing(successes int) types.AllocFunc {
	return func(old []byte, size int) []byte {
		if successes <= 0 || size == 0 {
			return nil
		}
		successes--
		return make([]byte, size)
	}
}
