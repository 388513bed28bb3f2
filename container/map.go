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
	"iter"

	"github.com/canyala/mercury/aatree"
	"github.com/canyala/mercury/heap"
)

// SortedMap is a persisted ordered map K -> V: an aatree.Tree with node
// fanout 2 (payload holds [key offset, value offset]).
type SortedMap[K, V any] struct {
	h          *heap.Heap
	tree       *aatree.Tree
	keyAlloc   Allocator[K]
	valueAlloc Allocator[V]
	less       Less[K]
}

// NewSortedMap creates an empty map persisted in h.
func NewSortedMap[K, V any](h *heap.Heap, keyAlloc Allocator[K], valueAlloc Allocator[V], less Less[K]) (*SortedMap[K, V], error) {
	tree, err := aatree.Create(h, 2)
	if err != nil {
		return nil, err
	}
	return &SortedMap[K, V]{h: h, tree: tree, keyAlloc: keyAlloc, valueAlloc: valueAlloc, less: less}, nil
}

// OpenSortedMap reopens a map previously created at headerOffset.
func OpenSortedMap[K, V any](h *heap.Heap, headerOffset uint64, keyAlloc Allocator[K], valueAlloc Allocator[V], less Less[K]) (*SortedMap[K, V], error) {
	tree, err := aatree.Open(h, headerOffset)
	if err != nil {
		return nil, err
	}
	return &SortedMap[K, V]{h: h, tree: tree, keyAlloc: keyAlloc, valueAlloc: valueAlloc, less: less}, nil
}

// HeaderOffset returns the offset of the underlying tree header.
func (m *SortedMap[K, V]) HeaderOffset() uint64 { return m.tree.HeaderOffset() }

func (m *SortedMap[K, V]) cmp(key K) aatree.Cmp {
	return func(keyOffset uint64) int {
		k, err := m.keyAlloc.Read(keyOffset)
		if err != nil {
			return 1
		}
		return m.less(k, key)
	}
}

// Set inserts or updates key's value, freeing the previous value's
// allocation when key already existed (no leak). Reports whether key was
// newly created.
func (m *SortedMap[K, V]) Set(key K, value V) (bool, error) {
	var created bool
	var innerErr error
	err := m.tree.Insert(m.cmp(key), func(data []uint64) {
		if data[0] == 0 {
			koff, kerr := m.keyAlloc.Alloc(key)
			if kerr != nil {
				innerErr = kerr
				return
			}
			voff, verr := m.valueAlloc.Alloc(value)
			if verr != nil {
				innerErr = verr
				return
			}
			data[0] = koff
			data[1] = voff
			created = true
			return
		}
		if ferr := m.valueAlloc.Free(data[1]); ferr != nil {
			innerErr = ferr
			return
		}
		voff, verr := m.valueAlloc.Alloc(value)
		if verr != nil {
			innerErr = verr
			return
		}
		data[1] = voff
	})
	if err != nil {
		return false, err
	}
	if innerErr != nil {
		return false, innerErr
	}
	return created, nil
}

// TryGet returns key's value and true if present, or the zero value and
// false otherwise.
func (m *SortedMap[K, V]) TryGet(key K) (V, bool, error) {
	data, err := m.tree.Search(m.cmp(key))
	if err != nil {
		var zero V
		return zero, false, err
	}
	if data == nil {
		var zero V
		return zero, false, nil
	}
	v, err := m.valueAlloc.Read(data[1])
	return v, true, err
}

// Remove deletes key if present, freeing its key and value allocations.
func (m *SortedMap[K, V]) Remove(key K) (bool, error) {
	var innerErr error
	found, err := m.tree.Remove(m.cmp(key), func(data []uint64) {
		if ferr := m.keyAlloc.Free(data[0]); ferr != nil {
			innerErr = ferr
			return
		}
		if ferr := m.valueAlloc.Free(data[1]); ferr != nil {
			innerErr = ferr
		}
	})
	if err != nil {
		return false, err
	}
	if innerErr != nil {
		return false, innerErr
	}
	return found, nil
}

// Count returns the number of entries.
func (m *SortedMap[K, V]) Count() (uint64, error) { return m.tree.Count() }

// Min returns the entry with the least key.
func (m *SortedMap[K, V]) Min() (K, V, error) {
	data, err := m.tree.Min()
	if err != nil {
		var zk K
		var zv V
		return zk, zv, err
	}
	k, err := m.keyAlloc.Read(data[0])
	if err != nil {
		var zv V
		return k, zv, err
	}
	v, err := m.valueAlloc.Read(data[1])
	return k, v, err
}

// Max returns the entry with the greatest key.
func (m *SortedMap[K, V]) Max() (K, V, error) {
	data, err := m.tree.Max()
	if err != nil {
		var zk K
		var zv V
		return zk, zv, err
	}
	k, err := m.keyAlloc.Read(data[0])
	if err != nil {
		var zv V
		return k, zv, err
	}
	v, err := m.valueAlloc.Read(data[1])
	return k, v, err
}

// Clear removes every entry, freeing each key's and value's allocation.
func (m *SortedMap[K, V]) Clear() error {
	return m.tree.Clear(func(data []uint64) {
		_ = m.keyAlloc.Free(data[0])
		_ = m.valueAlloc.Free(data[1])
	}, nil)
}

// Destroy clears the map and frees its own tree header block. Use when this
// map is exclusively owned and is being torn down entirely, e.g. a triple
// index's outer or middle level once its last entry is removed.
func (m *SortedMap[K, V]) Destroy() error {
	return m.tree.Destroy(func(data []uint64) {
		_ = m.keyAlloc.Free(data[0])
		_ = m.valueAlloc.Free(data[1])
	})
}

// Enumerate lazily yields every (key, value) pair in order.
func (m *SortedMap[K, V]) Enumerate(ascending bool) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for data := range m.tree.Enumerate(ascending) {
			k, err := m.keyAlloc.Read(data[0])
			if err != nil {
				return
			}
			v, err := m.valueAlloc.Read(data[1])
			if err != nil {
				return
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// EnumerateFrom lazily yields (key, value) pairs starting at (or adjacent
// to) start.
func (m *SortedMap[K, V]) EnumerateFrom(start K, ascending, inclusive bool) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for data := range m.tree.EnumerateFrom(m.cmp(start), ascending, inclusive) {
			k, err := m.keyAlloc.Read(data[0])
			if err != nil {
				return
			}
			v, err := m.valueAlloc.Read(data[1])
			if err != nil {
				return
			}
			if !yield(k, v) {
				return
			}
		}
	}
}
