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

import "iter"

// noLowerBound and noUpperBound are sentinel comparators used to represent
// an open-ended side of a range: they never compare equal, so the
// "inclusive" flag never applies to them, and their sign always keeps the
// corresponding subtree in scope.
func noLowerBound(uint64) int { return 1 }
func noUpperBound(uint64) int { return -1 }

// Enumerate returns a lazy in-order traversal of every payload, ascending
// or descending.
func (t *Tree) Enumerate(ascending bool) iter.Seq[[]uint64] {
	return t.EnumerateRange(noLowerBound, noUpperBound, ascending, true)
}

// EnumerateFrom returns a lazy directional traversal starting at the least
// (ascending) or greatest (descending) node for which cmpStart is zero, or
// at the appropriate successor/predecessor if no exact match exists.
// inclusive controls whether an exact match is yielded.
func (t *Tree) EnumerateFrom(cmpStart Cmp, ascending, inclusive bool) iter.Seq[[]uint64] {
	if ascending {
		return t.EnumerateRange(cmpStart, noUpperBound, ascending, inclusive)
	}
	return t.EnumerateRange(noLowerBound, cmpStart, ascending, inclusive)
}

// EnumerateRange returns a lazy traversal bounded by cmpLow and cmpHigh.
// inclusive applies symmetrically to both bounds.
func (t *Tree) EnumerateRange(cmpLow, cmpHigh Cmp, ascending, inclusive bool) iter.Seq[[]uint64] {
	return func(yield func([]uint64) bool) {
		root, err := t.root()
		if err != nil {
			return
		}
		t.walkRange(root, cmpLow, cmpHigh, ascending, inclusive, yield)
	}
}

func (t *Tree) walkRange(offset uint64, cmpLow, cmpHigh Cmp, ascending, inclusive bool, yield func([]uint64) bool) (bool, error) {
	if offset == 0 {
		return true, nil
	}
	n, err := t.readNode(offset)
	if err != nil {
		return false, err
	}

	cLow := cmpLow(n.data[0])
	cHigh := cmpHigh(n.data[0])
	belowLow := cLow < 0 || (cLow == 0 && !inclusive)
	aboveHigh := cHigh > 0 || (cHigh == 0 && !inclusive)
	goLeft := cLow >= 0
	goRight := cHigh <= 0

	firstChild, secondChild := n.left, n.right
	goFirst, goSecond := goLeft, goRight
	if !ascending {
		firstChild, secondChild = n.right, n.left
		goFirst, goSecond = goRight, goLeft
	}

	if goFirst {
		cont, err := t.walkRange(firstChild, cmpLow, cmpHigh, ascending, inclusive, yield)
		if err != nil || !cont {
			return cont, err
		}
	}
	if !belowLow && !aboveHigh {
		if !yield(n.data) {
			return false, nil
		}
	}
	if goSecond {
		return t.walkRange(secondChild, cmpLow, cmpHigh, ascending, inclusive, yield)
	}
	return true, nil
}
