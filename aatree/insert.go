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

// Insert finds the node whose primary payload compares equal (cmp == 0) to
// the search key, or creates one if none exists. init is called exactly
// once against the node's payload slice: on creation with a zero-valued
// slice, so the caller can alloc the key/value and fill in their offsets;
// on an existing match, against the current payload, so the caller can
// detect "already populated" and update in place. The tree rebalances on
// the path back up after a structural change.
func (t *Tree) Insert(cmp Cmp, init func(data []uint64)) error {
	root, err := t.root()
	if err != nil {
		return err
	}
	newRoot, created, err := t.insertNode(root, cmp, init)
	if err != nil {
		return err
	}
	if err := t.setRoot(newRoot); err != nil {
		return err
	}
	if created {
		return t.changeCount(1)
	}
	return nil
}

func (t *Tree) insertNode(offset uint64, cmp Cmp, init func(data []uint64)) (uint64, bool, error) {
	if offset == 0 {
		newOff, err := t.allocNode()
		if err != nil {
			return 0, false, err
		}
		data := make([]uint64, t.k)
		init(data)
		if err := t.writeNode(newOff, node{level: 1, data: data}); err != nil {
			return 0, false, err
		}
		return newOff, true, nil
	}

	n, err := t.readNode(offset)
	if err != nil {
		return 0, false, err
	}

	c := cmp(n.data[0])
	switch {
	case c > 0:
		newLeft, created, err := t.insertNode(n.left, cmp, init)
		if err != nil {
			return 0, false, err
		}
		n.left = newLeft
		if err := t.writeNode(offset, n); err != nil {
			return 0, false, err
		}
		return t.rebalanceAfterInsert(offset, created)
	case c < 0:
		newRight, created, err := t.insertNode(n.right, cmp, init)
		if err != nil {
			return 0, false, err
		}
		n.right = newRight
		if err := t.writeNode(offset, n); err != nil {
			return 0, false, err
		}
		return t.rebalanceAfterInsert(offset, created)
	default:
		init(n.data)
		if err := t.writeNode(offset, n); err != nil {
			return 0, false, err
		}
		return offset, false, nil
	}
}

func (t *Tree) rebalanceAfterInsert(offset uint64, created bool) (uint64, bool, error) {
	offset, err := t.skew(offset)
	if err != nil {
		return 0, false, err
	}
	offset, err = t.split(offset)
	if err != nil {
		return 0, false, err
	}
	return offset, created, nil
}
