package layout

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/grove/types"
)

// Layout assertions at a fixed capacity, guarding against compiler or
// alignment regressions.
func TestComputeFixedCapacity(t *testing.T) {
	requireT := require.New(t)

	type item struct {
		Key   uint64
		Value uint64
	}

	const capacity types.Slot = 64
	l := Compute(unsafe.Sizeof(item{}), capacity)

	requireT.EqualValues(capacity, l.Capacity)
	requireT.EqualValues(16, l.ItemSize)

	requireT.Zero(l.NodeOffset % NodeAlignment)
	requireT.GreaterOrEqual(l.NodeOffset, l.ItemSize*int(capacity))
	requireT.Less(l.NodeOffset, l.ItemSize*int(capacity)+NodeAlignment)

	requireT.Zero(l.ParityOffset % wordAlignment)
	requireT.GreaterOrEqual(l.ParityOffset, l.NodeOffset+NodeSize*int(capacity))
	requireT.Less(l.ParityOffset, l.NodeOffset+NodeSize*int(capacity)+wordAlignment)

	requireT.Equal(1, l.ParityWords)
	requireT.Equal(l.ParityOffset+8, l.TotalSize)

	// Deterministic given the same inputs.
	requireT.Equal(l, Compute(unsafe.Sizeof(item{}), capacity))
}

func TestComputeParityWords(t *testing.T) {
	requireT := require.New(t)

	requireT.Equal(1, Compute(8, 64).ParityWords)
	requireT.Equal(2, Compute(8, 65).ParityWords)
	requireT.Equal(2, Compute(8, 128).ParityWords)
	requireT.Equal(3, Compute(8, 129).ParityWords)
}

func TestComputeZeroSizeItem(t *testing.T) {
	requireT := require.New(t)

	l := Compute(0, 64)
	requireT.Zero(l.NodeOffset)
	requireT.Equal(NodeSize*64, l.ParityOffset)
	requireT.Equal(l.ParityOffset+8, l.TotalSize)
}

func TestRegions(t *testing.T) {
	requireT := require.New(t)

	const capacity types.Slot = 128
	l := Compute(8, capacity)
	buf := make([]byte, l.TotalSize)

	nodes := l.Nodes(buf)
	requireT.Len(nodes, int(capacity))

	words := l.ParityBuf(buf)
	requireT.Len(words, l.ParityWords)

	// The typed regions alias buf: writes through them land in the raw bytes.
	nodes[0].Parent = 0x01020304
	requireT.NotEqual(make([]byte, 4), buf[l.NodeOffset+int(unsafe.Offsetof(types.Node{}.Parent)):l.NodeOffset+int(unsafe.Offsetof(types.Node{}.Parent))+4])
	words[0] = 1
	requireT.NotEqual(make([]byte, 8), buf[l.ParityOffset:l.ParityOffset+8])
}
