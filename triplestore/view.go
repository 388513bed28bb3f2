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
	"iter"
	"sort"

	"github.com/canyala/mercury/container"
)

// DirectView exposes one persisted SortedSet column as an OrderedCollection,
// optionally pre-filtered by a Constraint. This is what a query plan hands
// back for a wildcard column it read straight off an index leaf.
type DirectView struct {
	set        *container.SortedSet[string]
	constraint Constraint
}

// NewDirectView wraps set, filtering through constraint if non-nil.
func NewDirectView(set *container.SortedSet[string], constraint Constraint) *DirectView {
	return &DirectView{set: set, constraint: constraint}
}

func (v *DirectView) Contains(s string) (bool, error) {
	if v.constraint != nil && !v.constraint.Match(s) {
		return false, nil
	}
	return v.set.Contains(s)
}

func (v *DirectView) Magnitude() (uint64, error) {
	if v.constraint == nil {
		return v.set.Count()
	}
	var n uint64
	for range v.Enumerate() {
		n++
	}
	return n, nil
}

func (v *DirectView) Min() (string, bool, error) {
	for s := range v.Enumerate() {
		return s, true, nil
	}
	return "", false, nil
}

func (v *DirectView) Max() (string, bool, error) {
	for s := range v.enumerateDirection(false) {
		return s, true, nil
	}
	return "", false, nil
}

func (v *DirectView) Enumerate() iter.Seq[string] { return v.enumerateDirection(true) }

func (v *DirectView) enumerateDirection(ascending bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		for s := range v.set.Enumerate(ascending) {
			if v.constraint != nil && !v.constraint.Match(s) {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

func (v *DirectView) EnumerateAll() iter.Seq[string] { return v.Enumerate() }

func (v *DirectView) EnumerateRange(low, high string, ascending, inclusive bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		for s := range v.set.EnumerateRange(low, high, ascending, inclusive) {
			if v.constraint != nil && !v.constraint.Match(s) {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

// ConstrainedView layers a Constraint over any other View, computing its
// min/max/magnitude eagerly (a single scan at construction) while keeping
// Enumerate lazy.
type ConstrainedView struct {
	inner      OrderedCollection
	constraint Constraint
	min, max   string
	hasMin     bool
	magnitude  uint64
}

// NewConstrainedView scans inner once, recording the bounds and count of the
// elements that satisfy constraint.
func NewConstrainedView(inner OrderedCollection, constraint Constraint) *ConstrainedView {
	cv := &ConstrainedView{inner: inner, constraint: constraint}
	for v := range inner.EnumerateAll() {
		if !constraint.Match(v) {
			continue
		}
		if !cv.hasMin {
			cv.min = v
			cv.hasMin = true
		}
		cv.max = v
		cv.magnitude++
	}
	return cv
}

func (v *ConstrainedView) Contains(s string) (bool, error) {
	if !v.constraint.Match(s) {
		return false, nil
	}
	return v.inner.Contains(s)
}

func (v *ConstrainedView) Magnitude() (uint64, error) { return v.magnitude, nil }

func (v *ConstrainedView) Min() (string, bool, error) { return v.min, v.hasMin, nil }
func (v *ConstrainedView) Max() (string, bool, error) { return v.max, v.hasMin, nil }

func (v *ConstrainedView) EnumerateAll() iter.Seq[string] {
	return func(yield func(string) bool) {
		for s := range v.inner.EnumerateAll() {
			if v.constraint.Match(s) && !yield(s) {
				return
			}
		}
	}
}

func (v *ConstrainedView) EnumerateRange(low, high string, ascending, inclusive bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		for s := range v.inner.EnumerateRange(low, high, ascending, inclusive) {
			if v.constraint.Match(s) && !yield(s) {
				return
			}
		}
	}
}

// UnionView merges several Views into one, eagerly materializing a single
// deduplicated, sorted slice at construction. Used when a query plan must
// report the set of values appearing across several sibling index branches
// (e.g. the "s"-only query's object column, one subsequence per matching
// predicate).
type UnionView struct {
	values []string
}

// NewUnionView drains every view in views into one sorted, deduped cache.
func NewUnionView(views []OrderedCollection) *UnionView {
	seen := make(map[string]struct{})
	for _, v := range views {
		for s := range v.EnumerateAll() {
			seen[s] = struct{}{}
		}
	}
	vals := make([]string, 0, len(seen))
	for s := range seen {
		vals = append(vals, s)
	}
	sort.Strings(vals)
	return &UnionView{values: vals}
}

func (v *UnionView) Contains(s string) (bool, error) {
	i := sort.SearchStrings(v.values, s)
	return i < len(v.values) && v.values[i] == s, nil
}

func (v *UnionView) Magnitude() (uint64, error) { return uint64(len(v.values)), nil }

func (v *UnionView) Min() (string, bool, error) {
	if len(v.values) == 0 {
		return "", false, nil
	}
	return v.values[0], true, nil
}

func (v *UnionView) Max() (string, bool, error) {
	if len(v.values) == 0 {
		return "", false, nil
	}
	return v.values[len(v.values)-1], true, nil
}

func (v *UnionView) EnumerateAll() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, s := range v.values {
			if !yield(s) {
				return
			}
		}
	}
}

func (v *UnionView) EnumerateRange(low, high string, ascending, inclusive bool) iter.Seq[string] {
	lo := sort.SearchStrings(v.values, low)
	hi := sort.SearchStrings(v.values, high)
	if inclusive && hi < len(v.values) && v.values[hi] == high {
		hi++
	}
	slice := v.values[lo:hi]
	return func(yield func(string) bool) {
		if ascending {
			for _, s := range slice {
				if !yield(s) {
					return
				}
			}
			return
		}
		for i := len(slice) - 1; i >= 0; i-- {
			if !yield(slice[i]) {
				return
			}
		}
	}
}
