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

// Remove deletes the node whose primary payload compares equal to the
// search key, if any. dispose is called exactly once with the removed
// payload (the matched node's original data, not the in-order successor
// pulled up to replace it internally) so the caller can free embedded
// offsets. Reports whether a node was found and removed.
func (t *Tree) Remove(cmp Cmp, dispose func(data []uint64)) (bool, error) {
	root, err := t.root()
	if err != nil {
		return false, err
	}
	newRoot, removed, found, err := t.removeNode(root, cmp)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := t.setRoot(newRoot); err != nil {
		return false, err
	}
	if dispose != nil {
		dispose(removed)
	}
	if err := t.changeCount(-1); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Tree) removeNode(offset uint64, cmp Cmp) (newOffset uint64, removed []uint64, found bool, err error) {
	if offset == 0 {
		return 0, nil, false, nil
	}
	n, err := t.readNode(offset)
	if err != nil {
		return 0, nil, false, err
	}

	c := cmp(n.data[0])
	switch {
	case c > 0:
		newLeft, removed, found, err := t.removeNode(n.left, cmp)
		if err != nil || !found {
			return offset, removed, found, err
		}
		n.left = newLeft
		if err := t.writeNode(offset, n); err != nil {
			return 0, nil, false, err
		}
		offset, err = t.rebalanceAfterDelete(offset)
		return offset, removed, true, err

	case c < 0:
		newRight, removed, found, err := t.removeNode(n.right, cmp)
		if err != nil || !found {
			return offset, removed, found, err
		}
		n.right = newRight
		if err := t.writeNode(offset, n); err != nil {
			return 0, nil, false, err
		}
		offset, err = t.rebalanceAfterDelete(offset)
		return offset, removed, true, err

	default:
		matched := append([]uint64(nil), n.data...)
		switch {
		case n.left == 0:
			if err := t.freeNode(offset); err != nil {
				return 0, nil, false, err
			}
			return n.right, matched, true, nil
		case n.right == 0:
			if err := t.freeNode(offset); err != nil {
				return 0, nil, false, err
			}
			return n.left, matched, true, nil
		default:
			newRight, succData, err := t.deleteMin(n.right)
			if err != nil {
				return 0, nil, false, err
			}
			n.right = newRight
			n.data = succData
			if err := t.writeNode(offset, n); err != nil {
				return 0, nil, false, err
			}
			offset, err = t.rebalanceAfterDelete(offset)
			return offset, matched, true, err
		}
	}
}

// deleteMin removes and returns the leftmost (minimum) node's payload from
// the subtree rooted at offset, which MUST be non-zero.
func (t *Tree) deleteMin(offset uint64) (newOffset uint64, minData []uint64, err error) {
	n, err := t.readNode(offset)
	if err != nil {
		return 0, nil, err
	}
	if n.left == 0 {
		minData = append([]uint64(nil), n.data...)
		if err := t.freeNode(offset); err != nil {
			return 0, nil, err
		}
		return n.right, minData, nil
	}
	newLeft, minData, err := t.deleteMin(n.left)
	if err != nil {
		return 0, nil, err
	}
	n.left = newLeft
	if err := t.writeNode(offset, n); err != nil {
		return 0, nil, err
	}
	offset, err = t.rebalanceAfterDelete(offset)
	return offset, minData, err
}

// rebalanceAfterDelete restores the AA level invariant on offset's subtree
// after a child was removed, following Andersson's level-decrease plus
// skew/split sequence.
func (t *Tree) rebalanceAfterDelete(offset uint64) (uint64, error) {
	if offset == 0 {
		return 0, nil
	}
	n, err := t.readNode(offset)
	if err != nil {
		return 0, err
	}
	leftLevel, err := t.levelOf(n.left)
	if err != nil {
		return 0, err
	}
	rightLevel, err := t.levelOf(n.right)
	if err != nil {
		return 0, err
	}
	should := min(leftLevel, rightLevel) + 1
	if should < n.level {
		n.level = should
		if err := t.writeNode(offset, n); err != nil {
			return 0, err
		}
		if should < rightLevel {
			rn, err := t.readNode(n.right)
			if err != nil {
				return 0, err
			}
			rn.level = should
			if err := t.writeNode(n.right, rn); err != nil {
				return 0, err
			}
		}
	}

	offset, err = t.skew(offset)
	if err != nil {
		return 0, err
	}
	n, err = t.readNode(offset)
	if err != nil {
		return 0, err
	}
	if n.right != 0 {
		newRight, err := t.skew(n.right)
		if err != nil {
			return 0, err
		}
		n.right = newRight
		if err := t.writeNode(offset, n); err != nil {
			return 0, err
		}
		rn, err := t.readNode(n.right)
		if err != nil {
			return 0, err
		}
		if rn.right != 0 {
			newRR, err := t.skew(rn.right)
			if err != nil {
				return 0, err
			}
			rn.right = newRR
			if err := t.writeNode(n.right, rn); err != nil {
				return 0, err
			}
		}
	}

	offset, err = t.split(offset)
	if err != nil {
		return 0, err
	}
	n, err = t.readNode(offset)
	if err != nil {
		return 0, err
	}
	if n.right != 0 {
		newRight, err := t.split(n.right)
		if err != nil {
			return 0, err
		}
		n.right = newRight
		if err := t.writeNode(offset, n); err != nil {
			return 0, err
		}
	}
	return offset, nil
}
