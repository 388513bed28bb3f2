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

// SortedSet is a persisted ordered set of T: an aatree.Tree with node
// fanout 1 (the payload holds a single element offset), composed with an
// Allocator[T] and a Less ordering.
type SortedSet[T any] struct {
	h     *heap.Heap
	tree  *aatree.Tree
	alloc Allocator[T]
	less  Less[T]
}

// NewSortedSet creates an empty set persisted in h.
func NewSortedSet[T any](h *heap.Heap, alloc Allocator[T], less Less[T]) (*SortedSet[T], error) {
	tree, err := aatree.Create(h, 1)
	if err != nil {
		return nil, err
	}
	return &SortedSet[T]{h: h, tree: tree, alloc: alloc, less: less}, nil
}

// OpenSortedSet reopens a set previously created at headerOffset.
func OpenSortedSet[T any](h *heap.Heap, headerOffset uint64, alloc Allocator[T], less Less[T]) (*SortedSet[T], error) {
	tree, err := aatree.Open(h, headerOffset)
	if err != nil {
		return nil, err
	}
	return &SortedSet[T]{h: h, tree: tree, alloc: alloc, less: less}, nil
}

// HeaderOffset returns the offset of the underlying tree header, for use as
// a named root or an embedded reference.
func (s *SortedSet[T]) HeaderOffset() uint64 { return s.tree.HeaderOffset() }

func (s *SortedSet[T]) cmp(v T) aatree.Cmp {
	return func(elemOffset uint64) int {
		elem, err := s.alloc.Read(elemOffset)
		if err != nil {
			return 1
		}
		return s.less(elem, v)
	}
}

// Add inserts v if not already present, reporting whether it was newly
// added.
func (s *SortedSet[T]) Add(v T) (bool, error) {
	var created bool
	var innerErr error
	err := s.tree.Insert(s.cmp(v), func(data []uint64) {
		if data[0] != 0 {
			return
		}
		off, aerr := s.alloc.Alloc(v)
		if aerr != nil {
			innerErr = aerr
			return
		}
		data[0] = off
		created = true
	})
	if err != nil {
		return false, err
	}
	if innerErr != nil {
		return false, innerErr
	}
	return created, nil
}

// Remove deletes v if present, reporting whether it was found.
func (s *SortedSet[T]) Remove(v T) (bool, error) {
	var innerErr error
	found, err := s.tree.Remove(s.cmp(v), func(data []uint64) {
		if ferr := s.alloc.Free(data[0]); ferr != nil {
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

// Contains reports whether v is a member of the set.
func (s *SortedSet[T]) Contains(v T) (bool, error) {
	data, err := s.tree.Search(s.cmp(v))
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// Count returns the number of elements.
func (s *SortedSet[T]) Count() (uint64, error) { return s.tree.Count() }

// Min returns the least element.
func (s *SortedSet[T]) Min() (T, error) {
	data, err := s.tree.Min()
	if err != nil {
		var zero T
		return zero, err
	}
	return s.alloc.Read(data[0])
}

// Max returns the greatest element.
func (s *SortedSet[T]) Max() (T, error) {
	data, err := s.tree.Max()
	if err != nil {
		var zero T
		return zero, err
	}
	return s.alloc.Read(data[0])
}

// Clear removes every element, freeing each one's underlying allocation.
func (s *SortedSet[T]) Clear() error {
	return s.tree.Clear(func(data []uint64) {
		_ = s.alloc.Free(data[0])
	}, nil)
}

// Destroy clears the set and frees its own tree header block. Use when this
// set is exclusively owned (not shared by refcount) and is being torn down
// entirely, e.g. a triple index's innermost set once its last element is
// retracted.
func (s *SortedSet[T]) Destroy() error {
	return s.tree.Destroy(func(data []uint64) {
		_ = s.alloc.Free(data[0])
	})
}

// Enumerate lazily yields every element in ascending or descending order.
func (s *SortedSet[T]) Enumerate(ascending bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for data := range s.tree.Enumerate(ascending) {
			v, err := s.alloc.Read(data[0])
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// EnumerateFrom lazily yields elements starting at (or adjacent to) start.
func (s *SortedSet[T]) EnumerateFrom(start T, ascending, inclusive bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for data := range s.tree.EnumerateFrom(s.cmp(start), ascending, inclusive) {
			v, err := s.alloc.Read(data[0])
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// EnumerateRange lazily yields elements between low and high.
func (s *SortedSet[T]) EnumerateRange(low, high T, ascending, inclusive bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for data := range s.tree.EnumerateRange(s.cmp(low), s.cmp(high), ascending, inclusive) {
			v, err := s.alloc.Read(data[0])
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

func (s *SortedSet[T]) toSlice() ([]T, error) {
	var out []T
	for v := range s.Enumerate(true) {
		out = append(out, v)
	}
	return out, nil
}

// Intersect returns a new set holding elements present in both s and other.
func (s *SortedSet[T]) Intersect(other *SortedSet[T]) (*SortedSet[T], error) {
	result, err := NewSortedSet(s.h, s.alloc, s.less)
	if err != nil {
		return nil, err
	}
	a, err := s.toSlice()
	if err != nil {
		return nil, err
	}
	b, err := other.toSlice()
	if err != nil {
		return nil, err
	}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := s.less(a[i], b[j]); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			if _, err := result.Add(a[i]); err != nil {
				return nil, err
			}
			i++
			j++
		}
	}
	return result, nil
}

// Union returns a new set holding every element present in s or other.
func (s *SortedSet[T]) Union(other *SortedSet[T]) (*SortedSet[T], error) {
	result, err := NewSortedSet(s.h, s.alloc, s.less)
	if err != nil {
		return nil, err
	}
	a, err := s.toSlice()
	if err != nil {
		return nil, err
	}
	b, err := other.toSlice()
	if err != nil {
		return nil, err
	}
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && s.less(a[i], b[j]) < 0):
			if _, err := result.Add(a[i]); err != nil {
				return nil, err
			}
			i++
		case i >= len(a) || s.less(a[i], b[j]) > 0:
			if _, err := result.Add(b[j]); err != nil {
				return nil, err
			}
			j++
		default:
			if _, err := result.Add(a[i]); err != nil {
				return nil, err
			}
			i++
			j++
		}
	}
	return result, nil
}

// Except returns a new set holding elements of s that are not in other.
func (s *SortedSet[T]) Except(other *SortedSet[T]) (*SortedSet[T], error) {
	result, err := NewSortedSet(s.h, s.alloc, s.less)
	if err != nil {
		return nil, err
	}
	a, err := s.toSlice()
	if err != nil {
		return nil, err
	}
	b, err := other.toSlice()
	if err != nil {
		return nil, err
	}
	i, j := 0, 0
	for i < len(a) {
		for j < len(b) && s.less(b[j], a[i]) < 0 {
			j++
		}
		if j >= len(b) || s.less(a[i], b[j]) != 0 {
			if _, err := result.Add(a[i]); err != nil {
				return nil, err
			}
		}
		i++
	}
	return result, nil
}
