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
	"bytes"
	"fmt"

	"github.com/canyala/mercury/aatree"
	"github.com/canyala/mercury/heap"
)

// SingletonIndexRootName is the named root under which the shared
// string-interning tree is discoverable in a heap.
const SingletonIndexRootName = "SingletonAllocatorOfString.Index"

// SingletonAllocator interns strings: equal strings always resolve to the
// same offset, refcounted, backed by a shared AA-tree (node fanout 2:
// data[0] is the string block's offset, data[1] is its refcount).
type SingletonAllocator struct {
	h    *heap.Heap
	tree *aatree.Tree
}

// OpenSingletonAllocator opens (creating on first use) the intern table
// rooted at SingletonIndexRootName in h.
func OpenSingletonAllocator(h *heap.Heap) (*SingletonAllocator, error) {
	rootOff, err := h.GetRoot(SingletonIndexRootName)
	if err != nil {
		return nil, err
	}
	var tree *aatree.Tree
	if rootOff == 0 {
		tree, err = aatree.Create(h, 2)
		if err != nil {
			return nil, err
		}
		if err := h.SetRoot(SingletonIndexRootName, tree.HeaderOffset()); err != nil {
			return nil, err
		}
	} else {
		tree, err = aatree.Open(h, rootOff)
		if err != nil {
			return nil, err
		}
	}
	return &SingletonAllocator{h: h, tree: tree}, nil
}

func (a *SingletonAllocator) cmpString(s string) aatree.Cmp {
	target := []byte(s)
	return func(stringOffset uint64) int {
		buf, err := a.h.Read(stringOffset)
		if err != nil {
			// The interned block is gone under us: corruption, not a
			// search outcome the comparator protocol can express. Treat as
			// "greater" so callers see a miss rather than a false match.
			return 1
		}
		return bytes.Compare(buf, target)
	}
}

// Alloc returns the offset interning s, creating it on first use. Equal
// strings always yield the same offset.
func (a *SingletonAllocator) Alloc(s string) (uint64, error) {
	var result uint64
	var innerErr error
	err := a.tree.Insert(a.cmpString(s), func(data []uint64) {
		if data[0] == 0 {
			off, err := a.h.Alloc(uint64(len(s)))
			if err != nil {
				innerErr = err
				return
			}
			if err := a.h.Write(off, []byte(s)); err != nil {
				innerErr = err
				return
			}
			data[0] = off
			data[1] = 1
			result = off
		} else {
			data[1]++
			result = data[0]
		}
	})
	if err != nil {
		return 0, err
	}
	if innerErr != nil {
		return 0, innerErr
	}
	return result, nil
}

// Free decrements the refcount of the interned string at offset, removing
// it from the intern table and releasing its block once the count reaches
// zero.
func (a *SingletonAllocator) Free(offset uint64) error {
	buf, err := a.h.Read(offset)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStringNotInterned, err)
	}
	s := string(buf)

	data, err := a.tree.Search(a.cmpString(s))
	if err != nil {
		return err
	}
	if data == nil || data[0] != offset {
		return ErrStringNotInterned
	}

	var shouldDestroy bool
	err = a.tree.Insert(a.cmpString(s), func(data []uint64) {
		if data[1] > 0 {
			data[1]--
		}
		if data[1] == 0 {
			shouldDestroy = true
		}
	})
	if err != nil {
		return err
	}
	if !shouldDestroy {
		return nil
	}
	if _, err := a.tree.Remove(a.cmpString(s), nil); err != nil {
		return err
	}
	return a.h.Free(offset)
}

// Read dereferences an interned offset back to its string.
func (a *SingletonAllocator) Read(offset uint64) (string, error) {
	buf, err := a.h.Read(offset)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
