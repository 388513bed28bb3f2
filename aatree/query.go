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

// Search returns the payload of the node matching cmp, or nil if none
// exists.
func (t *Tree) Search(cmp Cmp) ([]uint64, error) {
	off, err := t.root()
	if err != nil {
		return nil, err
	}
	for off != 0 {
		n, err := t.readNode(off)
		if err != nil {
			return nil, err
		}
		c := cmp(n.data[0])
		switch {
		case c < 0:
			off = n.right
		case c > 0:
			off = n.left
		default:
			return n.data, nil
		}
	}
	return nil, nil
}

// Min returns the payload of the least node in ascending order.
func (t *Tree) Min() ([]uint64, error) {
	off, err := t.root()
	if err != nil {
		return nil, err
	}
	if off == 0 {
		return nil, ErrEmptyCollection
	}
	for {
		n, err := t.readNode(off)
		if err != nil {
			return nil, err
		}
		if n.left == 0 {
			return n.data, nil
		}
		off = n.left
	}
}

// Max returns the payload of the greatest node in ascending order.
func (t *Tree) Max() ([]uint64, error) {
	off, err := t.root()
	if err != nil {
		return nil, err
	}
	if off == 0 {
		return nil, ErrEmptyCollection
	}
	for {
		n, err := t.readNode(off)
		if err != nil {
			return nil, err
		}
		if n.right == 0 {
			return n.data, nil
		}
		off = n.right
	}
}
