package wavl

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/grove/arena"
	"github.com/outofforest/grove/pkg/memalloc"
	"github.com/outofforest/grove/types"
)

type item struct {
	Key   uint64
	Value uint64
}

func itemKey(it *item) uint64 {
	return it.Key
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func newTestTree(t *testing.T) *Tree[uint64, item] {
	requireT := require.New(t)

	a, err := arena.New[item](memalloc.Heap(), 64)
	requireT.NoError(err)

	tree, err := New[uint64, item](a, itemKey, compareUint64)
	requireT.NoError(err)
	return tree
}

func insertKey(t *testing.T, tree *Tree[uint64, item], key uint64) types.Slot {
	requireT := require.New(t)

	s, parent, dir := tree.Find(key)
	requireT.Equal(types.NilSlot, s)

	s, err := tree.InsertAt(parent, dir, item{Key: key, Value: key * 10})
	requireT.NoError(err)
	return s
}

func inOrderKeys(tree *Tree[uint64, item]) []uint64 {
	keys := []uint64{}
	for s := tree.First(); s != types.NilSlot; s = tree.Next(s) {
		keys = append(keys, tree.Key(s))
	}
	return keys
}

func TestInsertScenario(t *testing.T) {
	requireT := require.New(t)
	tree := newTestTree(t)

	for _, key := range []uint64{5, 3, 8, 1, 4, 7, 9} {
		insertKey(t, tree, key)
		requireT.NoError(tree.Validate())
	}

	requireT.Equal(7, tree.Len())
	requireT.Equal([]uint64{1, 3, 4, 5, 7, 8, 9}, inOrderKeys(tree))
}

func TestDeleteScenario(t *testing.T) {
	requireT := require.New(t)
	tree := newTestTree(t)

	for _, key := range []uint64{5, 3, 8, 1, 4, 7, 9} {
		insertKey(t, tree, key)
	}

	v, ok := tree.DeleteKey(5)
	requireT.True(ok)
	requireT.Equal(item{Key: 5, Value: 50}, v)
	requireT.NoError(tree.Validate())

	s, _, _ := tree.Find(5)
	requireT.Equal(types.NilSlot, s)
	requireT.Equal([]uint64{1, 3, 4, 7, 8, 9}, inOrderKeys(tree))

	// Half-open interval: 4 included, 8 excluded.
	begin, end := tree.EqualRange(4, 8)
	keys := []uint64{}
	for s := begin; s != end; s = tree.Next(s) {
		keys = append(keys, tree.Key(s))
	}
	requireT.Equal([]uint64{4, 7}, keys)
}

func TestDeleteKeyAbsent(t *testing.T) {
	requireT := require.New(t)
	tree := newTestTree(t)

	insertKey(t, tree, 1)
	_, ok := tree.DeleteKey(2)
	requireT.False(ok)
	requireT.Equal(1, tree.Len())
}

func TestDeleteTwoChildrenRoot(t *testing.T) {
	requireT := require.New(t)
	tree := newTestTree(t)

	for _, key := range []uint64{4, 2, 6, 1, 3, 5, 7} {
		insertKey(t, tree, key)
	}
	root := tree.Root()
	requireT.Equal(uint64(4), tree.Key(root))

	// The successor is relocated into the removed slot's tree position.
	tree.Delete(root)
	requireT.NoError(tree.Validate())
	requireT.Equal([]uint64{1, 2, 3, 5, 6, 7}, inOrderKeys(tree))
}

func TestAscendingDescendingInserts(t *testing.T) {
	requireT := require.New(t)

	tree := newTestTree(t)
	for key := uint64(0); key < 200; key++ {
		insertKey(t, tree, key)
		requireT.NoError(tree.Validate())
	}

	tree = newTestTree(t)
	for key := uint64(200); key > 0; key-- {
		insertKey(t, tree, key)
		requireT.NoError(tree.Validate())
	}
}

func TestRandomRoundTrip(t *testing.T) {
	requireT := require.New(t)
	tree := newTestTree(t)

	rnd := rand.New(rand.NewSource(42))
	keys := rnd.Perm(500)

	for _, key := range keys {
		insertKey(t, tree, uint64(key))
		requireT.NoError(tree.Validate())
	}
	requireT.Equal(500, tree.Len())

	expected := make([]uint64, 500)
	for i := range expected {
		expected[i] = uint64(i)
	}
	requireT.Equal(expected, inOrderKeys(tree))

	for _, i := range rnd.Perm(len(keys)) {
		_, ok := tree.DeleteKey(uint64(keys[i]))
		requireT.True(ok)
		requireT.NoError(tree.Validate())
	}
	requireT.Zero(tree.Len())
	requireT.EqualValues(1, tree.Arena().Count())
	requireT.Equal(types.NilSlot, tree.First())
}

func TestNextPrevSymmetry(t *testing.T) {
	requireT := require.New(t)
	tree := newTestTree(t)

	rnd := rand.New(rand.NewSource(7))
	for _, key := range rnd.Perm(100) {
		insertKey(t, tree, uint64(key))
	}

	forward := inOrderKeys(tree)
	backward := []uint64{}
	for s := tree.Last(); s != types.NilSlot; s = tree.Prev(s) {
		backward = append(backward, tree.Key(s))
	}
	requireT.Len(backward, len(forward))
	for i := range forward {
		requireT.Equal(forward[i], backward[len(backward)-1-i])
	}
}

func TestEqualRangeBoundaries(t *testing.T) {
	requireT := require.New(t)
	tree := newTestTree(t)

	for _, key := range []uint64{10, 20, 30, 40, 50} {
		insertKey(t, tree, key)
	}

	rangeKeys := func(lo, hi uint64) []uint64 {
		keys := []uint64{}
		begin, end := tree.EqualRange(lo, hi)
		for s := begin; s != end; s = tree.Next(s) {
			keys = append(keys, tree.Key(s))
		}
		return keys
	}

	// Boundaries between stored keys.
	requireT.Equal([]uint64{20, 30}, rangeKeys(15, 35))
	// Exact boundaries: begin inclusive, end exclusive.
	requireT.Equal([]uint64{20, 30}, rangeKeys(20, 40))
	// Above all keys.
	requireT.Equal([]uint64{50}, rangeKeys(45, 100))
	// Empty interval.
	requireT.Equal([]uint64{}, rangeKeys(21, 22))
}

func TestEqualRangeEmptyTree(t *testing.T) {
	requireT := require.New(t)
	tree := newTestTree(t)

	begin, end := tree.EqualRange(1, 10)
	requireT.Equal(types.NilSlot, begin)
	requireT.Equal(types.NilSlot, end)
}

func TestFindCachesAttachmentPoint(t *testing.T) {
	requireT := require.New(t)
	tree := newTestTree(t)

	insertKey(t, tree, 10)
	insertKey(t, tree, 20)

	s, parent, dir := tree.Find(15)
	requireT.Equal(types.NilSlot, s)
	requireT.NotEqual(types.NilSlot, parent)

	// Inserting at the reported point needs no second descent and keeps the
	// tree valid.
	slot, err := tree.InsertAt(parent, dir, item{Key: 15, Value: 150})
	requireT.NoError(err)
	requireT.NoError(tree.Validate())
	requireT.Equal(uint64(15), tree.Key(slot))
	requireT.Equal([]uint64{10, 15, 20}, inOrderKeys(tree))
}

func TestClear(t *testing.T) {
	requireT := require.New(t)
	tree := newTestTree(t)

	for key := uint64(0); key < 50; key++ {
		insertKey(t, tree, key)
	}

	destroyed := 0
	tree.Clear(func(it *item) {
		destroyed++
	})
	requireT.Equal(50, destroyed)
	requireT.Zero(tree.Len())
	requireT.NoError(tree.Validate())

	// The arena is reusable after clearing.
	insertKey(t, tree, 7)
	requireT.Equal(1, tree.Len())
	requireT.NoError(tree.Validate())
}

func TestClearAndFree(t *testing.T) {
	requireT := require.New(t)
	tree := newTestTree(t)

	for key := uint64(0); key < 50; key++ {
		insertKey(t, tree, key)
	}
	tree.ClearAndFree(nil)

	requireT.Zero(tree.Len())
	requireT.Zero(tree.Arena().Capacity())
	requireT.NoError(tree.Validate())

	insertKey(t, tree, 7)
	requireT.Equal(1, tree.Len())
	requireT.NoError(tree.Validate())
}

func TestValidateDetectsCorruption(t *testing.T) {
	requireT := require.New(t)
	tree := newTestTree(t)

	for _, key := range []uint64{5, 3, 8} {
		insertKey(t, tree, key)
	}
	requireT.NoError(tree.Validate())

	// Breaking the sentinel parity must be reported.
	tree.Arena().SetParity(types.NilSlot, false)
	requireT.Error(tree.Validate())
	tree.Arena().SetParity(types.NilSlot, true)
	requireT.NoError(tree.Validate())

	// So must a corrupted parent link.
	root := tree.Root()
	child := tree.Arena().Node(root).Branch[0]
	tree.Arena().Node(child).Parent = child
	requireT.Error(tree.Validate())
	tree.Arena().Node(child).Parent = root
	requireT.NoError(tree.Validate())
}

func TestGrowthDuringInserts(t *testing.T) {
	requireT := require.New(t)
	tree := newTestTree(t)

	// Enough keys to force at least two growths of the initial 64 slots.
	slots := map[uint64]types.Slot{}
	for key := uint64(0); key < 300; key++ {
		slots[key] = insertKey(t, tree, key)
	}
	requireT.NoError(tree.Validate())

	// Slots assigned before the growths still locate the same elements.
	for key, s := range slots {
		requireT.Equal(key, tree.Key(s))
		requireT.Equal(key*10, tree.Item(s).Value)
	}
}
