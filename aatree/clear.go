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

// Clear destroys every node in the tree, leaving it empty (root/count
// reset to zero; the header block itself survives). dispose is called once
// per node with its payload, unless keep is non-nil and returns true for
// the node's primary (data[0]) offset, in which case the payload is left
// untouched (the caller already owns its lifetime elsewhere) — only the
// tree's own bookkeeping record for that node is reclaimed.
func (t *Tree) Clear(dispose func(data []uint64), keep func(primaryOffset uint64) bool) error {
	root, err := t.root()
	if err != nil {
		return err
	}
	if err := t.clearSubtree(root, dispose, keep); err != nil {
		return err
	}
	hdr, err := t.readHeader()
	if err != nil {
		return err
	}
	hdr.root = 0
	hdr.count = 0
	return t.writeHeader(hdr)
}

func (t *Tree) clearSubtree(offset uint64, dispose func(data []uint64), keep func(uint64) bool) error {
	if offset == 0 {
		return nil
	}
	n, err := t.readNode(offset)
	if err != nil {
		return err
	}
	if err := t.clearSubtree(n.left, dispose, keep); err != nil {
		return err
	}
	if err := t.clearSubtree(n.right, dispose, keep); err != nil {
		return err
	}
	if dispose != nil && (keep == nil || !keep(n.data[0])) {
		dispose(n.data)
	}
	return t.freeNode(offset)
}

// Destroy clears the tree and frees its header block. The Tree MUST NOT be
// used again afterwards.
func (t *Tree) Destroy(dispose func(data []uint64)) error {
	if err := t.Clear(dispose, nil); err != nil {
		return err
	}
	return t.h.Free(t.headerOffset)
}
