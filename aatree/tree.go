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

// Package aatree implements a persisted AA-tree: a balanced binary search
// tree, parameterised by a caller-supplied comparator, whose nodes live as
// offsets in a heap.Heap rather than as in-memory pointers. The tree never
// inspects the representation of the keys it orders; every comparison is
// delegated to a Cmp callback closed over the search key.
package aatree

import (
	"encoding/binary"
	"fmt"

	"github.com/canyala/mercury/heap"
)

// Cmp compares the node whose primary payload offset is nodeOffset against a
// search key captured in the closure. It returns a negative number if the
// node's key orders before the search key, zero if they are equal, and a
// positive number if the node's key orders after it.
type Cmp func(nodeOffset uint64) int

// headerSize is the fixed-size record a Tree occupies in its Heap: root
// offset, node count, node fanout K, and a caller-maintained refcount.
const headerSize = 32

type header struct {
	root     uint64
	count    uint64
	k        uint64
	refcount uint64
}

func encodeHeader(h header) []byte {
	buf := make([]byte, headerSize)
	binary.BigEndian.PutUint64(buf[0:8], h.root)
	binary.BigEndian.PutUint64(buf[8:16], h.count)
	binary.BigEndian.PutUint64(buf[16:24], h.k)
	binary.BigEndian.PutUint64(buf[24:32], h.refcount)
	return buf
}

func decodeHeader(buf []byte) header {
	return header{
		root:     binary.BigEndian.Uint64(buf[0:8]),
		count:    binary.BigEndian.Uint64(buf[8:16]),
		k:        binary.BigEndian.Uint64(buf[16:24]),
		refcount: binary.BigEndian.Uint64(buf[24:32]),
	}
}

// node is the in-memory shape of a tree record: left/right child offsets,
// the AA level used for rebalancing, and the K-wide payload of offsets.
type node struct {
	left, right, level uint64
	data               []uint64
}

// Tree is a persisted AA-tree rooted at a header block in h.
type Tree struct {
	h            *heap.Heap
	headerOffset uint64
	k            int
}

// Create allocates a new, empty tree header in h with the given node
// fanout K (1 for sets, 2 for maps, etc.) and returns a Tree addressing it.
// The caller is responsible for recording headerOffset as a named root or
// embedding it in an enclosing structure.
func Create(h *heap.Heap, k int) (*Tree, error) {
	off, err := h.Alloc(headerSize)
	if err != nil {
		return nil, fmt.Errorf("aatree: allocate header: %w", err)
	}
	t := &Tree{h: h, headerOffset: off, k: k}
	if err := t.writeHeader(header{k: uint64(k)}); err != nil {
		return nil, err
	}
	return t, nil
}

// Open reopens a tree previously created at headerOffset.
func Open(h *heap.Heap, headerOffset uint64) (*Tree, error) {
	t := &Tree{h: h, headerOffset: headerOffset}
	hdr, err := t.readHeader()
	if err != nil {
		return nil, err
	}
	t.k = int(hdr.k)
	return t, nil
}

// HeaderOffset returns the heap offset of this tree's header block, for
// storing as a named root or embedding as a reference from a parent
// structure.
func (t *Tree) HeaderOffset() uint64 { return t.headerOffset }

// K returns the node fanout this tree was created with.
func (t *Tree) K() int { return t.k }

func (t *Tree) readHeader() (header, error) {
	buf, err := t.h.Read(t.headerOffset)
	if err != nil {
		return header{}, fmt.Errorf("aatree: read header: %w", err)
	}
	return decodeHeader(buf), nil
}

func (t *Tree) writeHeader(hdr header) error {
	if err := t.h.Write(t.headerOffset, encodeHeader(hdr)); err != nil {
		return fmt.Errorf("aatree: write header: %w", err)
	}
	return nil
}

func (t *Tree) root() (uint64, error) {
	hdr, err := t.readHeader()
	if err != nil {
		return 0, err
	}
	return hdr.root, nil
}

func (t *Tree) setRoot(off uint64) error {
	hdr, err := t.readHeader()
	if err != nil {
		return err
	}
	hdr.root = off
	return t.writeHeader(hdr)
}

// Count returns the number of nodes currently in the tree.
func (t *Tree) Count() (uint64, error) {
	hdr, err := t.readHeader()
	if err != nil {
		return 0, err
	}
	return hdr.count, nil
}

func (t *Tree) changeCount(delta int64) error {
	hdr, err := t.readHeader()
	if err != nil {
		return err
	}
	hdr.count = uint64(int64(hdr.count) + delta)
	return t.writeHeader(hdr)
}

// IncreaseRef increments this tree's header refcount (used by the
// reference-allocator strategy to track how many objects embed this tree)
// and returns the new value.
func (t *Tree) IncreaseRef() (uint64, error) {
	hdr, err := t.readHeader()
	if err != nil {
		return 0, err
	}
	hdr.refcount++
	if err := t.writeHeader(hdr); err != nil {
		return 0, err
	}
	return hdr.refcount, nil
}

// DecreaseRef decrements this tree's header refcount and returns the new
// value. It does not itself destroy the tree at zero; callers decide.
func (t *Tree) DecreaseRef() (uint64, error) {
	hdr, err := t.readHeader()
	if err != nil {
		return 0, err
	}
	if hdr.refcount > 0 {
		hdr.refcount--
	}
	if err := t.writeHeader(hdr); err != nil {
		return 0, err
	}
	return hdr.refcount, nil
}

func (t *Tree) nodeSize() uint64 { return 24 + 8*uint64(t.k) }

func (t *Tree) allocNode() (uint64, error) {
	return t.h.Alloc(t.nodeSize())
}

func (t *Tree) freeNode(offset uint64) error {
	return t.h.Free(offset)
}

func (t *Tree) readNode(offset uint64) (node, error) {
	buf, err := t.h.Read(offset)
	if err != nil {
		return node{}, fmt.Errorf("aatree: read node at %d: %w", offset, err)
	}
	n := node{
		left:  binary.BigEndian.Uint64(buf[0:8]),
		right: binary.BigEndian.Uint64(buf[8:16]),
		level: binary.BigEndian.Uint64(buf[16:24]),
		data:  make([]uint64, t.k),
	}
	for i := 0; i < t.k; i++ {
		n.data[i] = binary.BigEndian.Uint64(buf[24+8*i:])
	}
	return n, nil
}

func (t *Tree) writeNode(offset uint64, n node) error {
	buf := make([]byte, t.nodeSize())
	binary.BigEndian.PutUint64(buf[0:8], n.left)
	binary.BigEndian.PutUint64(buf[8:16], n.right)
	binary.BigEndian.PutUint64(buf[16:24], n.level)
	for i := 0; i < t.k; i++ {
		binary.BigEndian.PutUint64(buf[24+8*i:], n.data[i])
	}
	if err := t.h.Write(offset, buf); err != nil {
		return fmt.Errorf("aatree: write node at %d: %w", offset, err)
	}
	return nil
}

func (t *Tree) levelOf(offset uint64) (uint64, error) {
	if offset == 0 {
		return 0, nil
	}
	n, err := t.readNode(offset)
	if err != nil {
		return 0, err
	}
	return n.level, nil
}
