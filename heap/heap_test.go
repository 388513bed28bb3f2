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

package heap

import (
	"bytes"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canyala/mercury/stream"
)

func newTestHeap(t *testing.T) *Heap {
	t.Helper()
	h, err := Create(stream.NewMemory(0), DefaultConfig())
	require.NoError(t, err)
	return h
}

func TestAllocFreeConservesSpace(t *testing.T) {
	h := newTestHeap(t)
	before, err := h.CountFreeBlocks()
	require.NoError(t, err)

	off, err := h.Alloc(64)
	require.NoError(t, err)
	assert.True(t, h.IsValid(off))

	require.NoError(t, h.Free(off))
	after, err := h.CountFreeBlocks()
	require.NoError(t, err)
	assert.Equal(t, before, after, "freeing the only allocation should restore the single free run")
	assert.False(t, h.IsValid(off))
}

func TestAllocReadWriteRoundTrip(t *testing.T) {
	h := newTestHeap(t)
	off, err := h.Alloc(13)
	require.NoError(t, err)

	payload := []byte("hello, world!")
	require.NoError(t, h.Write(off, payload))

	got, err := h.Read(off)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(got, payload))
}

func TestSizeofRoundsUpTo8(t *testing.T) {
	h := newTestHeap(t)
	off, err := h.Alloc(5)
	require.NoError(t, err)
	size, err := h.Sizeof(off)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, size, uint64(5))
	assert.Equal(t, uint64(0), size%8)
}

func TestDoubleFreeIsDetected(t *testing.T) {
	h := newTestHeap(t)
	off, err := h.Alloc(16)
	require.NoError(t, err)
	require.NoError(t, h.Free(off))
	err = h.Free(off)
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestInvalidOffsetRejected(t *testing.T) {
	h := newTestHeap(t)
	assert.False(t, h.IsValid(0))
	assert.False(t, h.IsValid(999999))
	_, err := h.Sizeof(999999)
	assert.ErrorIs(t, err, ErrInvalidOffset)
}

func TestFreeCoalescesAdjacentRuns(t *testing.T) {
	h := newTestHeap(t)
	offs := make([]uint64, 5)
	var err error
	for i := range offs {
		offs[i], err = h.Alloc(32)
		require.NoError(t, err)
	}
	// Free blocks 2,3,5 (1-indexed) so that 2&3 coalesce into one run and 5
	// merges with the trailing free space after it, leaving 2 distinct free
	// runs.
	require.NoError(t, h.Free(offs[1]))
	require.NoError(t, h.Free(offs[2]))
	require.NoError(t, h.Free(offs[4]))

	require.NoError(t, h.GarbageCollect())
	n, err := h.CountFreeBlocks()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// offs[0] and offs[3] remain used; the freed ones must not validate.
	assert.True(t, h.IsValid(offs[0]))
	assert.True(t, h.IsValid(offs[3]))
	assert.False(t, h.IsValid(offs[1]))
	assert.False(t, h.IsValid(offs[2]))
	assert.False(t, h.IsValid(offs[4]))
}

func TestOffsetsStableAcrossGC(t *testing.T) {
	h := newTestHeap(t)
	a, err := h.Alloc(40)
	require.NoError(t, err)
	b, err := h.Alloc(40)
	require.NoError(t, err)
	require.NoError(t, h.Write(a, []byte("alpha")))
	require.NoError(t, h.Write(b, []byte("bravo")))

	require.NoError(t, h.GarbageCollect())

	gotA, err := h.Read(a)
	require.NoError(t, err)
	gotB, err := h.Read(b)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(gotA, []byte("alpha")))
	assert.True(t, bytes.HasPrefix(gotB, []byte("bravo")))
}

func TestHeapGrowsWhenFreeListExhausted(t *testing.T) {
	cfg := Config{InitialSize: 128, GrowIncrement: 256}
	h, err := Create(stream.NewMemory(0), cfg)
	require.NoError(t, err)

	var last uint64
	for i := 0; i < 64; i++ {
		off, err := h.Alloc(64)
		require.NoError(t, err)
		last = off
	}
	assert.True(t, h.IsValid(last))
}

func TestNamedRoots(t *testing.T) {
	h := newTestHeap(t)
	off, err := h.Alloc(8)
	require.NoError(t, err)

	require.NoError(t, h.SetRoot("spo", off))
	got, err := h.GetRoot("spo")
	require.NoError(t, err)
	assert.Equal(t, off, got)

	missing, err := h.GetRoot("nonexistent")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), missing)

	roots, err := h.Roots()
	require.NoError(t, err)
	assert.Contains(t, roots, "spo")

	off2, err := h.Alloc(8)
	require.NoError(t, err)
	require.NoError(t, h.SetRoot("spo", off2))
	got2, err := h.GetRoot("spo")
	require.NoError(t, err)
	assert.Equal(t, off2, got2)
}

func TestTooManyRoots(t *testing.T) {
	h := newTestHeap(t)
	for i := 0; i < MaxNamedRoots; i++ {
		off, err := h.Alloc(8)
		require.NoError(t, err)
		require.NoError(t, h.SetRoot(string(rune('a'+i)), off))
	}
	off, err := h.Alloc(8)
	require.NoError(t, err)
	err = h.SetRoot("overflow", off)
	assert.ErrorIs(t, err, ErrTooManyRoots)
}

func TestConfigDefaultsAndGrowIncrement(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultGrowIncrement.Bytes(), cfg.growIncrement())

	frac := Config{GrowFraction: 0.0001}
	assert.Greater(t, frac.growIncrement(), uint64(0))
}

func TestCountUsedBlocksAgreesWithBitmap(t *testing.T) {
	h := newTestHeap(t)
	offs := make([]uint64, 10)
	var err error
	for i := range offs {
		offs[i], err = h.Alloc(24)
		require.NoError(t, err)
	}
	assert.Equal(t, 10, h.CountUsedBlocks())
	require.NoError(t, h.Free(offs[0]))
	assert.Equal(t, 9, h.CountUsedBlocks())
}

func TestSnapshotRoundTrip(t *testing.T) {
	h := newTestHeap(t)
	off, err := h.Alloc(11)
	require.NoError(t, err)
	require.NoError(t, h.Write(off, []byte("persisted!!")))
	require.NoError(t, h.SetRoot("thing", off))

	var buf bytes.Buffer
	require.NoError(t, h.Snapshot(&buf))

	restored, err := Restore(stream.NewMemory(0), &buf)
	require.NoError(t, err)

	got, err := restored.Read(off)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted!!"), got)

	root, err := restored.GetRoot("thing")
	require.NoError(t, err)
	assert.Equal(t, off, root)
}

func TestOpenRejectsBadMagic(t *testing.T) {
	s := stream.NewMemory(0)
	_, err := s.Grow(headerFixedSize)
	require.NoError(t, err)
	_, err = Open(s)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestMappedFileFlockContention(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/heap.db"

	other := flock.New(path + ".lock")
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	_, err = stream.OpenMappedFile(path)
	assert.ErrorIs(t, err, stream.ErrLocked)
}
