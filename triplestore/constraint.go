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
)

// OrderedCollection is the minimal surface a Constraint needs from whatever
// ordered keyset it is being applied against, whether that's a persisted
// container.SortedSet column or a View composed from several of them.
type OrderedCollection interface {
	Contains(v string) (bool, error)
	Magnitude() (uint64, error)
	EnumerateAll() iter.Seq[string]
	EnumerateRange(low, high string, ascending, inclusive bool) iter.Seq[string]
}

// Constraint is the closed set of ways a single triple column can be
// restricted. Every variant exposes the same two operations: Match tests one
// candidate value in isolation; Enumerate produces the matching subsequence
// of an ordered collection, choosing whichever of "scan the collection and
// filter" or "walk the constraint and probe the collection" is cheaper for
// that variant.
type Constraint interface {
	Match(v string) bool
	Enumerate(coll OrderedCollection) iter.Seq[string]
}

// Empty matches every value unconditionally — the wildcard.
type Empty struct{}

func (Empty) Match(string) bool { return true }

func (Empty) Enumerate(coll OrderedCollection) iter.Seq[string] {
	return coll.EnumerateAll()
}

// Specific matches exactly one value.
type Specific struct {
	Value string
}

func (c Specific) Match(v string) bool { return v == c.Value }

func (c Specific) Enumerate(coll OrderedCollection) iter.Seq[string] {
	return func(yield func(string) bool) {
		ok, err := coll.Contains(c.Value)
		if err != nil || !ok {
			return
		}
		yield(c.Value)
	}
}

// Range matches a lexicographic half-open interval [Low, High).
type Range struct {
	Low, High string
}

func (c Range) Match(v string) bool { return v >= c.Low && v < c.High }

func (c Range) Enumerate(coll OrderedCollection) iter.Seq[string] {
	return func(yield func(string) bool) {
		for v := range coll.EnumerateRange(c.Low, c.High, true, true) {
			if v >= c.High {
				break
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Array matches membership in a small, explicitly listed set of values. The
// values need not arrive sorted; Array sorts and dedups them once at
// construction so Enumerate can probe the collection in ascending order.
type Array struct {
	values []string
}

// NewArray builds an Array constraint from an arbitrary slice of candidate
// values.
func NewArray(values []string) Array {
	cp := append([]string(nil), values...)
	sort.Strings(cp)
	cp = dedupSorted(cp)
	return Array{values: cp}
}

func dedupSorted(s []string) []string {
	if len(s) == 0 {
		return s
	}
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func (c Array) Match(v string) bool {
	i := sort.SearchStrings(c.values, v)
	return i < len(c.values) && c.values[i] == v
}

func (c Array) Enumerate(coll OrderedCollection) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, v := range c.values {
			ok, err := coll.Contains(v)
			if err != nil {
				return
			}
			if ok && !yield(v) {
				return
			}
		}
	}
}

// Set matches membership in a larger ordered keyset (typically another
// column's View). Enumerate compares cardinalities and iterates whichever
// side is smaller, probing membership in the other.
type Set struct {
	source OrderedCollection
}

// NewSet wraps an OrderedCollection (a View, or any other sorted keyset) as
// a membership constraint.
func NewSet(source OrderedCollection) Set { return Set{source: source} }

func (c Set) Match(v string) bool {
	ok, err := c.source.Contains(v)
	return err == nil && ok
}

func (c Set) Enumerate(coll OrderedCollection) iter.Seq[string] {
	return func(yield func(string) bool) {
		sourceMag, err := c.source.Magnitude()
		if err != nil {
			return
		}
		collMag, err := coll.Magnitude()
		if err != nil {
			return
		}
		small, probe := c.source, coll
		if collMag < sourceMag {
			small, probe = coll, c.source
		}
		for v := range small.EnumerateAll() {
			ok, err := probe.Contains(v)
			if err != nil {
				return
			}
			if ok && !yield(v) {
				return
			}
		}
	}
}

// View is an alias of OrderedCollection retained for readability at call
// sites that construct a Set from a query-planner View.
type View = OrderedCollection

// Predicate matches via an arbitrary caller-supplied boolean function.
// Because the function is opaque, Enumerate can never be accelerated by the
// index: it always falls back to scanning the whole collection and filtering.
type Predicate struct {
	fn       func(string) bool
	negate   bool
	polarity string
}

// True builds a Predicate that keeps values for which fn returns true.
func True(fn func(string) bool) Predicate { return Predicate{fn: fn, polarity: "true"} }

// False builds a Predicate that keeps values for which fn returns false.
func False(fn func(string) bool) Predicate { return Predicate{fn: fn, negate: true, polarity: "false"} }

func (c Predicate) Match(v string) bool {
	r := c.fn(v)
	if c.negate {
		return !r
	}
	return r
}

func (c Predicate) Enumerate(coll OrderedCollection) iter.Seq[string] {
	return func(yield func(string) bool) {
		for v := range coll.EnumerateAll() {
			if c.Match(v) && !yield(v) {
				return
			}
		}
	}
}

// specificValue reports the value of c when it is a Specific constraint, for
// the query planner's full-match fast path.
func specificValue(c Constraint) (string, bool) {
	if s, ok := c.(Specific); ok {
		return s.Value, true
	}
	return "", false
}
