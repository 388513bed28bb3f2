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

package alloc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canyala/mercury/aatree"
	"github.com/canyala/mercury/heap"
	"github.com/canyala/mercury/stream"
)

func newTestHeap(t *testing.T) *heap.Heap {
	t.Helper()
	h, err := heap.Create(stream.NewMemory(0), heap.DefaultConfig())
	require.NoError(t, err)
	return h
}

func TestNullAllocatorIsIdentity(t *testing.T) {
	var a NullAllocator
	off, err := a.Alloc(42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), off)
	v, err := a.Read(off)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)
	assert.NoError(t, a.Free(off))
}

type uint64Codec struct{}

func (uint64Codec) Encode(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func (uint64Codec) Decode(buf []byte) uint64 {
	return binary.BigEndian.Uint64(buf)
}

func TestValueAllocatorRoundTrip(t *testing.T) {
	h := newTestHeap(t)
	a := NewValueAllocator[uint64](h, uint64Codec{})

	off1, err := a.Alloc(7)
	require.NoError(t, err)
	off2, err := a.Alloc(7)
	require.NoError(t, err)
	assert.NotEqual(t, off1, off2, "value allocator must not share storage between equal values")

	v, err := a.Read(off1)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)

	require.NoError(t, a.Free(off1))
	require.NoError(t, a.Free(off2))
}

func TestSingletonAllocatorBijection(t *testing.T) {
	h := newTestHeap(t)
	a, err := OpenSingletonAllocator(h)
	require.NoError(t, err)

	off1, err := a.Alloc("hello")
	require.NoError(t, err)
	off2, err := a.Alloc("hello")
	require.NoError(t, err)
	assert.Equal(t, off1, off2, "alloc(s1) == alloc(s2) iff s1 == s2")

	offOther, err := a.Alloc("world")
	require.NoError(t, err)
	assert.NotEqual(t, off1, offOther)

	s, err := a.Read(off1)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestSingletonAllocatorFreeOnNonLastRefIsNoop(t *testing.T) {
	h := newTestHeap(t)
	a, err := OpenSingletonAllocator(h)
	require.NoError(t, err)

	off, err := a.Alloc("shared")
	require.NoError(t, err)
	_, err = a.Alloc("shared")
	require.NoError(t, err)

	require.NoError(t, a.Free(off))
	assert.True(t, h.IsValid(off), "block must survive while a reference remains")

	require.NoError(t, a.Free(off))
	assert.False(t, h.IsValid(off), "block must be released once the last reference is freed")
}

func TestSingletonAllocatorDiscoverableByName(t *testing.T) {
	h := newTestHeap(t)
	_, err := OpenSingletonAllocator(h)
	require.NoError(t, err)

	roots, err := h.Roots()
	require.NoError(t, err)
	assert.Contains(t, roots, SingletonIndexRootName)
}

func TestReferenceAllocatorBumpsAndDestroys(t *testing.T) {
	h := newTestHeap(t)
	tree, err := aatree.Create(h, 1)
	require.NoError(t, err)

	destroyed := false
	incRef := func(uint64) (uint64, error) { return tree.IncreaseRef() }
	decRef := func(uint64) (uint64, error) { return tree.DecreaseRef() }
	a := NewReferenceAllocator(incRef, decRef, func(uint64) error {
		destroyed = true
		return tree.Destroy(nil)
	})

	off, err := a.Alloc(tree.HeaderOffset())
	require.NoError(t, err)
	_, err = a.Alloc(tree.HeaderOffset())
	require.NoError(t, err)

	require.NoError(t, a.Free(off))
	assert.False(t, destroyed)

	require.NoError(t, a.Free(off))
	assert.True(t, destroyed)
}
