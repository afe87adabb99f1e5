package layout

import (
	"unsafe"

	"github.com/outofforest/grove/types"
)

const (
	// wordAlignment specifies the alignment requirements of the parity word
	// region on this architecture.
	wordAlignment = 8

	// WordBits is the number of parity bits stored in one word.
	WordBits = 64

	// NodeSize is the size of one node record in bytes.
	NodeSize = int(unsafe.Sizeof(types.Node{}))

	// NodeAlignment is the alignment required by the node region.
	NodeAlignment = int(unsafe.Alignof(types.Node{}))
)

// Layout describes the placement of the three co-resident arrays inside one
// allocation: element records at offset 0, node records after them, parity
// words at the end. Offsets are recomputed from scratch after every growth,
// so only the base address of the allocation ever changes.
type Layout struct {
	// Capacity is the number of slots, the sentinel included.
	Capacity types.Slot

	// ItemSize is the size of one element record in bytes.
	ItemSize int

	// NodeOffset is the byte offset of the node region. It equals the element
	// region length rounded up to the node record's alignment.
	NodeOffset int

	// ParityOffset is the byte offset of the parity word region, rounded up
	// to the word alignment.
	ParityOffset int

	// ParityWords is the number of parity words. No trailing padding follows.
	ParityWords int

	// TotalSize is the size of the whole allocation in bytes.
	TotalSize int
}

// Compute returns the layout for the given element size and slot capacity.
// It is deterministic and allocation-free.
func Compute(itemSize uintptr, capacity types.Slot) Layout {
	nodeOffset := alignUp(int(itemSize)*int(capacity), NodeAlignment)
	parityOffset := alignUp(nodeOffset+NodeSize*int(capacity), wordAlignment)
	parityWords := (int(capacity) + WordBits - 1) / WordBits

	return Layout{
		Capacity:     capacity,
		ItemSize:     int(itemSize),
		NodeOffset:   nodeOffset,
		ParityOffset: parityOffset,
		ParityWords:  parityWords,
		TotalSize:    parityOffset + parityWords*wordAlignment,
	}
}

// Nodes returns the node region of buf as a typed slice.
func (l Layout) Nodes(buf []byte) []types.Node {
	return unsafe.Slice((*types.Node)(unsafe.Pointer(&buf[l.NodeOffset])), l.Capacity)
}

// ParityBuf returns the parity word region of buf as a typed slice.
func (l Layout) ParityBuf(buf []byte) []uint64 {
	return unsafe.Slice((*uint64)(unsafe.Pointer(&buf[l.ParityOffset])), l.ParityWords)
}

func alignUp(n, alignment int) int {
	return (n + alignment - 1) / alignment * alignment
}
