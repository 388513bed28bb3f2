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

package triplestore

import (
	"strings"

	"github.com/canyala/mercury/alloc"
	"github.com/canyala/mercury/container"
	"github.com/canyala/mercury/heap"
)

func stringLess(a, b string) int { return strings.Compare(a, b) }

// index is one ordering of the triple store: primary -> secondary ->
// set-of-tertiary, persisted as two nested SortedMaps over a leaf
// SortedSet. The outer and middle maps use NullAllocator for their values
// because those values are themselves the header offsets of the next
// nested container, exclusively owned by this index (never shared or
// refcounted) — the map's own node payload slot already holds that offset
// directly, so no extra value block is needed.
type index struct {
	h       *heap.Heap
	strings *alloc.SingletonAllocator
	ord     order
	outer   *container.SortedMap[string, uint64]
}

// openOrCreateIndex opens the index rooted at rootName, creating an empty
// one if the root is unset.
func openOrCreateIndex(h *heap.Heap, strs *alloc.SingletonAllocator, rootName string, ord order) (*index, error) {
	off, err := h.GetRoot(rootName)
	if err != nil {
		return nil, err
	}
	var outer *container.SortedMap[string, uint64]
	if off == 0 {
		outer, err = container.NewSortedMap[string, uint64](h, strs, alloc.NullAllocator{}, stringLess)
		if err != nil {
			return nil, err
		}
		if err := h.SetRoot(rootName, outer.HeaderOffset()); err != nil {
			return nil, err
		}
	} else {
		outer, err = container.OpenSortedMap[string, uint64](h, off, strs, alloc.NullAllocator{}, stringLess)
		if err != nil {
			return nil, err
		}
	}
	return &index{h: h, strings: strs, ord: ord, outer: outer}, nil
}

func (idx *index) openMiddle(off uint64) (*container.SortedMap[string, uint64], error) {
	return container.OpenSortedMap[string, uint64](idx.h, off, idx.strings, alloc.NullAllocator{}, stringLess)
}

func (idx *index) newMiddle() (*container.SortedMap[string, uint64], error) {
	return container.NewSortedMap[string, uint64](idx.h, idx.strings, alloc.NullAllocator{}, stringLess)
}

func (idx *index) openInner(off uint64) (*container.SortedSet[string], error) {
	return container.OpenSortedSet[string](idx.h, off, idx.strings, stringLess)
}

func (idx *index) newInner() (*container.SortedSet[string], error) {
	return container.NewSortedSet[string](idx.h, idx.strings, stringLess)
}

// assert ensures t is present, creating whichever nested levels are missing.
func (idx *index) assert(t Triple) error {
	primary, secondary, tertiary := project(idx.ord, t)

	middleOff, found, err := idx.outer.TryGet(primary)
	if err != nil {
		return err
	}
	var middle *container.SortedMap[string, uint64]
	if found {
		if middle, err = idx.openMiddle(middleOff); err != nil {
			return err
		}
	} else {
		if middle, err = idx.newMiddle(); err != nil {
			return err
		}
		if _, err := idx.outer.Set(primary, middle.HeaderOffset()); err != nil {
			return err
		}
	}

	innerOff, found, err := middle.TryGet(secondary)
	if err != nil {
		return err
	}
	var inner *container.SortedSet[string]
	if found {
		if inner, err = idx.openInner(innerOff); err != nil {
			return err
		}
	} else {
		if inner, err = idx.newInner(); err != nil {
			return err
		}
		if _, err := middle.Set(secondary, inner.HeaderOffset()); err != nil {
			return err
		}
	}

	_, err = inner.Add(tertiary)
	return err
}

// retract removes t if present, collapsing now-empty nested levels.
func (idx *index) retract(t Triple) error {
	primary, secondary, tertiary := project(idx.ord, t)

	middleOff, found, err := idx.outer.TryGet(primary)
	if err != nil || !found {
		return err
	}
	middle, err := idx.openMiddle(middleOff)
	if err != nil {
		return err
	}

	innerOff, found, err := middle.TryGet(secondary)
	if err != nil || !found {
		return err
	}
	inner, err := idx.openInner(innerOff)
	if err != nil {
		return err
	}

	removed, err := inner.Remove(tertiary)
	if err != nil || !removed {
		return err
	}

	innerCount, err := inner.Count()
	if err != nil {
		return err
	}
	if innerCount != 0 {
		return nil
	}
	if err := inner.Destroy(); err != nil {
		return err
	}
	if _, err := middle.Remove(secondary); err != nil {
		return err
	}

	middleCount, err := middle.Count()
	if err != nil {
		return err
	}
	if middleCount != 0 {
		return nil
	}
	if err := middle.Destroy(); err != nil {
		return err
	}
	_, err = idx.outer.Remove(primary)
	return err
}

// contains reports whether t is present without mutating any structure.
func (idx *index) contains(t Triple) (bool, error) {
	primary, secondary, tertiary := project(idx.ord, t)

	middleOff, found, err := idx.outer.TryGet(primary)
	if err != nil || !found {
		return false, err
	}
	middle, err := idx.openMiddle(middleOff)
	if err != nil {
		return false, err
	}
	innerOff, found, err := middle.TryGet(secondary)
	if err != nil || !found {
		return false, err
	}
	inner, err := idx.openInner(innerOff)
	if err != nil {
		return false, err
	}
	return inner.Contains(tertiary)
}

// clear empties the index entirely, destroying every nested level.
func (idx *index) clear() error {
	for _, middleOff := range idx.outer.Enumerate(true) {
		middle, err := idx.openMiddle(middleOff)
		if err != nil {
			return err
		}
		for _, innerOff := range middle.Enumerate(true) {
			inner, err := idx.openInner(innerOff)
			if err != nil {
				return err
			}
			if err := inner.Clear(); err != nil {
				return err
			}
			if err := inner.Destroy(); err != nil {
				return err
			}
		}
		if err := middle.Clear(); err != nil {
			return err
		}
		if err := middle.Destroy(); err != nil {
			return err
		}
	}
	return idx.outer.Clear()
}
