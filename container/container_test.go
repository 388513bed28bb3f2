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

package container

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canyala/mercury/alloc"
	"github.com/canyala/mercury/heap"
	"github.com/canyala/mercury/stream"
)

func newTestHeap(t *testing.T) *heap.Heap {
	t.Helper()
	h, err := heap.Create(stream.NewMemory(0), heap.DefaultConfig())
	require.NoError(t, err)
	return h
}

func stringLess(a, b string) int { return strings.Compare(a, b) }

func newStringSet(t *testing.T, h *heap.Heap) *SortedSet[string] {
	t.Helper()
	a, err := alloc.OpenSingletonAllocator(h)
	require.NoError(t, err)
	s, err := NewSortedSet[string](h, a, stringLess)
	require.NoError(t, err)
	return s
}

func TestSetAddContainsRemove(t *testing.T) {
	h := newTestHeap(t)
	s := newStringSet(t, h)

	created, err := s.Add("banana")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Add("banana")
	require.NoError(t, err)
	assert.False(t, created, "re-adding must not duplicate")

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	ok, err := s.Contains("banana")
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := s.Remove("banana")
	require.NoError(t, err)
	assert.True(t, removed)

	ok, err = s.Contains("banana")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetEnumerateOrdering(t *testing.T) {
	h := newTestHeap(t)
	s := newStringSet(t, h)
	for _, v := range []string{"banana", "apple", "cherry"} {
		_, err := s.Add(v)
		require.NoError(t, err)
	}
	var got []string
	for v := range s.Enumerate(true) {
		got = append(got, v)
	}
	assert.Equal(t, []string{"apple", "banana", "cherry"}, got)
}

func TestSetIntersectUnionExcept(t *testing.T) {
	h := newTestHeap(t)
	a := newStringSet(t, h)
	b := newStringSet(t, h)
	for _, v := range []string{"apple", "banana", "cherry"} {
		_, err := a.Add(v)
		require.NoError(t, err)
	}
	for _, v := range []string{"banana", "cherry", "date"} {
		_, err := b.Add(v)
		require.NoError(t, err)
	}

	inter, err := a.Intersect(b)
	require.NoError(t, err)
	var interVals []string
	for v := range inter.Enumerate(true) {
		interVals = append(interVals, v)
	}
	assert.Equal(t, []string{"banana", "cherry"}, interVals)

	union, err := a.Union(b)
	require.NoError(t, err)
	var unionVals []string
	for v := range union.Enumerate(true) {
		unionVals = append(unionVals, v)
	}
	assert.Equal(t, []string{"apple", "banana", "cherry", "date"}, unionVals)

	except, err := a.Except(b)
	require.NoError(t, err)
	var exceptVals []string
	for v := range except.Enumerate(true) {
		exceptVals = append(exceptVals, v)
	}
	assert.Equal(t, []string{"apple"}, exceptVals)
}

func TestMapSetTryGetRemove(t *testing.T) {
	h := newTestHeap(t)
	keyAlloc, err := alloc.OpenSingletonAllocator(h)
	require.NoError(t, err)
	valueAlloc, err := alloc.OpenSingletonAllocator(h)
	require.NoError(t, err)
	m, err := NewSortedMap[string, string](h, keyAlloc, valueAlloc, stringLess)
	require.NoError(t, err)

	created, err := m.Set("name", "alice")
	require.NoError(t, err)
	assert.True(t, created)

	v, ok, err := m.TryGet("name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", v)

	created, err = m.Set("name", "bob")
	require.NoError(t, err)
	assert.False(t, created, "updating an existing key must not be reported as created")

	v, ok, err = m.TryGet("name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bob", v)

	_, ok, err = m.TryGet("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := m.Remove("name")
	require.NoError(t, err)
	assert.True(t, removed)
	_, ok, err = m.TryGet("name")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMapEnumerateOrdering(t *testing.T) {
	h := newTestHeap(t)
	keyAlloc, err := alloc.OpenSingletonAllocator(h)
	require.NoError(t, err)
	valueAlloc, err := alloc.OpenSingletonAllocator(h)
	require.NoError(t, err)
	m, err := NewSortedMap[string, string](h, keyAlloc, valueAlloc, stringLess)
	require.NoError(t, err)

	pairs := map[string]string{"b": "2", "a": "1", "c": "3"}
	for k, v := range pairs {
		_, err := m.Set(k, v)
		require.NoError(t, err)
	}

	var keys []string
	for k, v := range m.Enumerate(true) {
		keys = append(keys, k)
		assert.Equal(t, pairs[k], v)
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}
