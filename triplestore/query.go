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

import "iter"

// Solution is the result of Graph.Enumerate: a lazy sequence of matching
// triples plus, for whichever columns were not pinned to a Specific value, a
// View over the distinct values that column took across the result — handed
// back so a caller can inspect cardinality or bounds without re-scanning.
type Solution struct {
	Triples iter.Seq[Triple]
	Views   map[string]OrderedCollection
}

// plan picks the cheapest of the three indexes for (cs, cp, co) following
// the same table regardless of graph state: two or three bound columns walk
// straight to a leaf; one bound column enumerates one index's outer level;
// zero bound columns fall back to a full scan of SPO.
func (g *Graph) plan(cs, cp, co Constraint) (iter.Seq[Triple], map[string]OrderedCollection) {
	sv, sSpecific := specificValue(cs)
	pv, pSpecific := specificValue(cp)
	ov, oSpecific := specificValue(co)

	switch {
	case sSpecific && pSpecific && oSpecific:
		return g.planExact(sv, pv, ov)
	case sSpecific && pSpecific:
		return g.planTwoBound(g.spo, sv, pv, co, "o")
	case pSpecific && oSpecific:
		return g.planTwoBound(g.pos, pv, ov, cs, "s")
	case oSpecific && sSpecific:
		return g.planTwoBound(g.osp, ov, sv, cp, "p")
	case sSpecific:
		return g.planOneBound(g.spo, sv, cp, co, "p", "o")
	case pSpecific:
		return g.planOneBound(g.pos, pv, co, cs, "o", "s")
	case oSpecific:
		return g.planOneBound(g.osp, ov, cs, cp, "s", "p")
	default:
		return g.planFullScan(cs, cp, co)
	}
}

func (g *Graph) planExact(s, p, o string) (iter.Seq[Triple], map[string]OrderedCollection) {
	seq := func(yield func(Triple) bool) {
		ok, err := g.spo.contains(Triple{S: s, P: p, O: o})
		if err != nil || !ok {
			return
		}
		yield(Triple{S: s, P: p, O: o})
	}
	return seq, map[string]OrderedCollection{}
}

// planTwoBound descends an index two levels (primary, secondary fixed) and
// applies the wildcard column's constraint to the leaf set.
func (g *Graph) planTwoBound(idx *index, primary, secondary string, c Constraint, wildcardCol string) (iter.Seq[Triple], map[string]OrderedCollection) {
	middleOff, found, err := idx.outer.TryGet(primary)
	if err != nil || !found {
		return emptySeq, map[string]OrderedCollection{}
	}
	middle, err := idx.openMiddle(middleOff)
	if err != nil {
		return emptySeq, map[string]OrderedCollection{}
	}
	innerOff, found, err := middle.TryGet(secondary)
	if err != nil || !found {
		return emptySeq, map[string]OrderedCollection{}
	}
	inner, err := idx.openInner(innerOff)
	if err != nil {
		return emptySeq, map[string]OrderedCollection{}
	}
	view := NewDirectView(inner, c)
	seq := func(yield func(Triple) bool) {
		for tertiary := range c.Enumerate(NewDirectView(inner, nil)) {
			if !yield(unproject(idx.ord, primary, secondary, tertiary)) {
				return
			}
		}
	}
	return seq, map[string]OrderedCollection{wildcardCol: view}
}

// planOneBound descends one level (primary fixed), filters the middle map's
// keys by the secondary constraint, and within each surviving secondary
// filters its leaf set by the tertiary constraint. Map-key filtering is a
// plain scan-and-match rather than a probe/scan cost comparison, since
// SortedMap does not itself implement OrderedCollection.
func (g *Graph) planOneBound(idx *index, primary string, secondaryConstraint, tertiaryConstraint Constraint, secondaryCol, tertiaryCol string) (iter.Seq[Triple], map[string]OrderedCollection) {
	middleOff, found, err := idx.outer.TryGet(primary)
	if err != nil || !found {
		return emptySeq, map[string]OrderedCollection{}
	}
	middle, err := idx.openMiddle(middleOff)
	if err != nil {
		return emptySeq, map[string]OrderedCollection{}
	}

	var tertiaryViews []OrderedCollection
	secondaryValues := newMemorySet()

	seq := func(yield func(Triple) bool) {
		for secondary, innerOff := range middle.Enumerate(true) {
			if !secondaryConstraint.Match(secondary) {
				continue
			}
			inner, err := idx.openInner(innerOff)
			if err != nil {
				return
			}
			for tertiary := range tertiaryConstraint.Enumerate(NewDirectView(inner, nil)) {
				if !yield(unproject(idx.ord, primary, secondary, tertiary)) {
					return
				}
			}
		}
	}

	// Views are best-effort: walk once up front to build the secondary
	// column's view and the union of qualifying tertiary leaf sets.
	for secondary, innerOff := range middle.Enumerate(true) {
		if !secondaryConstraint.Match(secondary) {
			continue
		}
		secondaryValues.add(secondary)
		inner, err := idx.openInner(innerOff)
		if err != nil {
			continue
		}
		tertiaryViews = append(tertiaryViews, NewDirectView(inner, tertiaryConstraint))
	}

	views := map[string]OrderedCollection{
		secondaryCol: secondaryValues,
		tertiaryCol:  NewUnionView(tertiaryViews),
	}
	return seq, views
}

func (g *Graph) planFullScan(cs, cp, co Constraint) (iter.Seq[Triple], map[string]OrderedCollection) {
	seq := func(yield func(Triple) bool) {
		for s, middleOff := range g.spo.outer.Enumerate(true) {
			if !cs.Match(s) {
				continue
			}
			middle, err := g.spo.openMiddle(middleOff)
			if err != nil {
				return
			}
			for p, innerOff := range middle.Enumerate(true) {
				if !cp.Match(p) {
					continue
				}
				inner, err := g.spo.openInner(innerOff)
				if err != nil {
					return
				}
				for o := range co.Enumerate(NewDirectView(inner, nil)) {
					if !yield(Triple{S: s, P: p, O: o}) {
						return
					}
				}
			}
		}
	}
	return seq, map[string]OrderedCollection{}
}

func emptySeq(func(Triple) bool) {}

// memorySetBuilder is a minimal in-memory OrderedCollection used to back a
// View whose membership was computed by a planner scan rather than read
// straight off a persisted column (e.g. the secondary column of a
// one-bound query).
func newMemorySet() *memorySetBuilder { return &memorySetBuilder{} }

type memorySetBuilder struct{ values []string }

func (b *memorySetBuilder) add(v string) { b.values = append(b.values, v) }

func (b *memorySetBuilder) Contains(s string) (bool, error) {
	return b.toView().Contains(s)
}
func (b *memorySetBuilder) Magnitude() (uint64, error) { return b.toView().Magnitude() }
func (b *memorySetBuilder) EnumerateAll() iter.Seq[string] {
	return b.toView().EnumerateAll()
}
func (b *memorySetBuilder) EnumerateRange(low, high string, ascending, inclusive bool) iter.Seq[string] {
	return b.toView().EnumerateRange(low, high, ascending, inclusive)
}

func (b *memorySetBuilder) toView() *UnionView {
	single := &literalCollection{values: b.values}
	return NewUnionView([]OrderedCollection{single})
}

// literalCollection adapts a plain string slice to OrderedCollection so it
// can seed a UnionView.
type literalCollection struct{ values []string }

func (c *literalCollection) Contains(v string) (bool, error) {
	for _, s := range c.values {
		if s == v {
			return true, nil
		}
	}
	return false, nil
}
func (c *literalCollection) Magnitude() (uint64, error) { return uint64(len(c.values)), nil }
func (c *literalCollection) EnumerateAll() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, s := range c.values {
			if !yield(s) {
				return
			}
		}
	}
}
func (c *literalCollection) EnumerateRange(low, high string, ascending, inclusive bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, s := range c.values {
			if s < low || s > high || (!inclusive && s == high) {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}
