// Copyright 2024 The Mercury Authors
// This file is part of Mercury.
//
// Mercury is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Mercury is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Mercury. If not, see <http://www.gnu.org/licenses/>.

package aatree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canyala/mercury/heap"
	"github.com/canyala/mercury/stream"
)

func newTestTree(t *testing.T, k int) *Tree {
	t.Helper()
	h, err := heap.Create(stream.NewMemory(0), heap.DefaultConfig())
	require.NoError(t, err)
	tree, err := Create(h, k)
	require.NoError(t, err)
	return tree
}

// cmpKey treats a node's data[0] as a plain integer key rather than a real
// heap offset, which is enough to exercise ordering/rebalancing without
// needing a real allocator underneath.
func cmpKey(key uint64) Cmp {
	return func(nodeKey uint64) int {
		switch {
		case nodeKey < key:
			return -1
		case nodeKey > key:
			return 1
		default:
			return 0
		}
	}
}

func insertKey(t *testing.T, tree *Tree, key uint64) {
	t.Helper()
	require.NoError(t, tree.Insert(cmpKey(key), func(data []uint64) {
		data[0] = key
	}))
}

func TestInsertSearchFindsExisting(t *testing.T) {
	tree := newTestTree(t, 1)
	for _, k := range []uint64{5, 3, 8, 1, 4, 7, 9} {
		insertKey(t, tree, k)
	}
	count, err := tree.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), count)

	data, err := tree.Search(cmpKey(4))
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, uint64(4), data[0])

	missing, err := tree.Search(cmpKey(100))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInsertOnExistingKeyCallsInitAgain(t *testing.T) {
	tree := newTestTree(t, 2)
	require.NoError(t, tree.Insert(cmpKey(1), func(data []uint64) {
		data[0] = 1
		data[1] = 100
	}))
	require.NoError(t, tree.Insert(cmpKey(1), func(data []uint64) {
		data[0] = 1
		data[1] = 200
	}))
	count, err := tree.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count, "inserting the same key twice must not create a second node")

	data, err := tree.Search(cmpKey(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(200), data[1])
}

func TestMinMax(t *testing.T) {
	tree := newTestTree(t, 1)
	for _, k := range []uint64{50, 10, 90, 30, 70} {
		insertKey(t, tree, k)
	}
	min, err := tree.Min()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), min[0])

	max, err := tree.Max()
	require.NoError(t, err)
	assert.Equal(t, uint64(90), max[0])
}

func TestMinMaxEmptyTree(t *testing.T) {
	tree := newTestTree(t, 1)
	_, err := tree.Min()
	assert.ErrorIs(t, err, ErrEmptyCollection)
	_, err = tree.Max()
	assert.ErrorIs(t, err, ErrEmptyCollection)
}

func TestEnumerateAscendingDescending(t *testing.T) {
	tree := newTestTree(t, 1)
	keys := []uint64{5, 3, 8, 1, 4, 7, 9, 2, 6}
	for _, k := range keys {
		insertKey(t, tree, k)
	}

	var ascending []uint64
	for data := range tree.Enumerate(true) {
		ascending = append(ascending, data[0])
	}
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9}, ascending)

	var descending []uint64
	for data := range tree.Enumerate(false) {
		descending = append(descending, data[0])
	}
	assert.Equal(t, []uint64{9, 8, 7, 6, 5, 4, 3, 2, 1}, descending)
}

func TestEnumerateStopsEarly(t *testing.T) {
	tree := newTestTree(t, 1)
	for _, k := range []uint64{1, 2, 3, 4, 5} {
		insertKey(t, tree, k)
	}
	var seen []uint64
	for data := range tree.Enumerate(true) {
		seen = append(seen, data[0])
		if data[0] == 3 {
			break
		}
	}
	assert.Equal(t, []uint64{1, 2, 3}, seen)
}

func TestEnumerateFromInclusiveExclusive(t *testing.T) {
	tree := newTestTree(t, 1)
	for _, k := range []uint64{10, 20, 30, 40, 50} {
		insertKey(t, tree, k)
	}

	var inclusive []uint64
	for data := range tree.EnumerateFrom(cmpKey(30), true, true) {
		inclusive = append(inclusive, data[0])
	}
	assert.Equal(t, []uint64{30, 40, 50}, inclusive)

	var exclusive []uint64
	for data := range tree.EnumerateFrom(cmpKey(30), true, false) {
		exclusive = append(exclusive, data[0])
	}
	assert.Equal(t, []uint64{40, 50}, exclusive)

	var descFrom []uint64
	for data := range tree.EnumerateFrom(cmpKey(30), false, true) {
		descFrom = append(descFrom, data[0])
	}
	assert.Equal(t, []uint64{30, 20, 10}, descFrom)
}

func TestEnumerateRangeBounded(t *testing.T) {
	tree := newTestTree(t, 1)
	for _, k := range []uint64{10, 20, 30, 40, 50, 60} {
		insertKey(t, tree, k)
	}

	var inRange []uint64
	for data := range tree.EnumerateRange(cmpKey(20), cmpKey(50), true, true) {
		inRange = append(inRange, data[0])
	}
	assert.Equal(t, []uint64{20, 30, 40, 50}, inRange)

	var exclusiveRange []uint64
	for data := range tree.EnumerateRange(cmpKey(20), cmpKey(50), true, false) {
		exclusiveRange = append(exclusiveRange, data[0])
	}
	assert.Equal(t, []uint64{30, 40}, exclusiveRange)
}

func TestRemoveRebalancesAndDisposes(t *testing.T) {
	tree := newTestTree(t, 1)
	keys := []uint64{5, 3, 8, 1, 4, 7, 9, 2, 6}
	for _, k := range keys {
		insertKey(t, tree, k)
	}

	var disposed []uint64
	found, err := tree.Remove(cmpKey(5), func(data []uint64) {
		disposed = append(disposed, data[0])
	})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []uint64{5}, disposed)

	count, err := tree.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(keys)-1), count)

	_, err = tree.Search(cmpKey(5))
	require.NoError(t, err)
	data, err := tree.Search(cmpKey(5))
	require.NoError(t, err)
	assert.Nil(t, data)

	var remaining []uint64
	for d := range tree.Enumerate(true) {
		remaining = append(remaining, d[0])
	}
	assert.Equal(t, []uint64{1, 2, 3, 4, 6, 7, 8, 9}, remaining)
}

func TestRemoveMissingKeyReportsNotFound(t *testing.T) {
	tree := newTestTree(t, 1)
	insertKey(t, tree, 1)
	found, err := tree.Remove(cmpKey(999), nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRemoveAllKeysLeavesEmptyTree(t *testing.T) {
	tree := newTestTree(t, 1)
	keys := []uint64{5, 3, 8, 1, 4, 7, 9, 2, 6, 10, 20, 15}
	for _, k := range keys {
		insertKey(t, tree, k)
	}
	for _, k := range keys {
		found, err := tree.Remove(cmpKey(k), nil)
		require.NoError(t, err)
		assert.True(t, found)
	}
	count, err := tree.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	_, err = tree.Min()
	assert.ErrorIs(t, err, ErrEmptyCollection)
}

func TestClearWithKeepSkipsDispose(t *testing.T) {
	tree := newTestTree(t, 1)
	for _, k := range []uint64{1, 2, 3} {
		insertKey(t, tree, k)
	}
	var disposed []uint64
	require.NoError(t, tree.Clear(func(data []uint64) {
		disposed = append(disposed, data[0])
	}, func(primary uint64) bool {
		return primary == 2
	}))
	assert.ElementsMatch(t, []uint64{1, 3}, disposed)

	count, err := tree.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestDestroyFreesHeaderBlock(t *testing.T) {
	h, err := heap.Create(stream.NewMemory(0), heap.DefaultConfig())
	require.NoError(t, err)
	tree, err := Create(h, 1)
	require.NoError(t, err)
	insertKey(t, tree, 1)

	require.NoError(t, tree.Destroy(nil))
	assert.False(t, h.IsValid(tree.HeaderOffset()))
}

func TestRefcounting(t *testing.T) {
	tree := newTestTree(t, 1)
	n, err := tree.IncreaseRef()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
	n, err = tree.IncreaseRef()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
	n, err = tree.DecreaseRef()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestOpenReopensExistingTree(t *testing.T) {
	h, err := heap.Create(stream.NewMemory(0), heap.DefaultConfig())
	require.NoError(t, err)
	tree, err := Create(h, 2)
	require.NoError(t, err)
	insertKey(t, tree, 1)

	reopened, err := Open(h, tree.HeaderOffset())
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.K())
	count, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
