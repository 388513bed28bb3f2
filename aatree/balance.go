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

// skew corrects a left horizontal link (two same-level nodes joined as
// left child) by rotating right. Returns the subtree's new root offset.
func (t *Tree) skew(offset uint64) (uint64, error) {
	if offset == 0 {
		return 0, nil
	}
	n, err := t.readNode(offset)
	if err != nil {
		return 0, err
	}
	if n.left == 0 {
		return offset, nil
	}
	ln, err := t.readNode(n.left)
	if err != nil {
		return 0, err
	}
	if ln.level != n.level {
		return offset, nil
	}

	lOffset := n.left
	n.left = ln.right
	ln.right = offset
	if err := t.writeNode(offset, n); err != nil {
		return 0, err
	}
	if err := t.writeNode(lOffset, ln); err != nil {
		return 0, err
	}
	return lOffset, nil
}

// split corrects two consecutive right horizontal links by rotating left
// and promoting the middle node's level. Returns the subtree's new root
// offset.
func (t *Tree) split(offset uint64) (uint64, error) {
	if offset == 0 {
		return 0, nil
	}
	n, err := t.readNode(offset)
	if err != nil {
		return 0, err
	}
	if n.right == 0 {
		return offset, nil
	}
	rn, err := t.readNode(n.right)
	if err != nil {
		return 0, err
	}
	if rn.right == 0 {
		return offset, nil
	}
	rrLevel, err := t.levelOf(rn.right)
	if err != nil {
		return 0, err
	}
	if rrLevel != n.level {
		return offset, nil
	}

	rOffset := n.right
	n.right = rn.left
	rn.left = offset
	rn.level++
	if err := t.writeNode(offset, n); err != nil {
		return 0, err
	}
	if err := t.writeNode(rOffset, rn); err != nil {
		return 0, err
	}
	return rOffset, nil
}
