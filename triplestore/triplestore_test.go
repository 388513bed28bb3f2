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
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canyala/mercury/heap"
	"github.com/canyala/mercury/stream"
)

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	h, err := heap.Create(stream.NewMemory(0), heap.DefaultConfig())
	require.NoError(t, err)
	g, err := Open(h, "")
	require.NoError(t, err)
	return g
}

// family is the running example from the spec's testable properties: a
// small set of parent/child and birth-year facts about the Skywalker family.
func assertFamily(t *testing.T, g *Graph) {
	t.Helper()
	facts := []Triple{
		{S: "Luke", P: "parent", O: "Anakin"},
		{S: "Leia", P: "parent", O: "Anakin"},
		{S: "Luke", P: "parent", O: "Padme"},
		{S: "Leia", P: "parent", O: "Padme"},
		{S: "Anakin", P: "parent", O: "Shmi"},
		{S: "Luke", P: "born", O: "19BBY"},
		{S: "Leia", P: "born", O: "19BBY"},
		{S: "Anakin", P: "born", O: "41BBY"},
		{S: "Shmi", P: "born", O: "72BBY"},
	}
	for _, f := range facts {
		require.NoError(t, g.Assert(f.S, f.P, f.O))
	}
}

func collect(t *testing.T, sol Solution) []Triple {
	t.Helper()
	var out []Triple
	for tr := range sol.Triples {
		out = append(out, tr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].S != out[j].S {
			return out[i].S < out[j].S
		}
		if out[i].P != out[j].P {
			return out[i].P < out[j].P
		}
		return out[i].O < out[j].O
	})
	return out
}

func TestAssertRetractIsTrue(t *testing.T) {
	g := newTestGraph(t)
	ok, err := g.IsTrue("Luke", "parent", "Anakin")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.Assert("Luke", "parent", "Anakin"))
	ok, err = g.IsTrue("Luke", "parent", "Anakin")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, g.Retract("Luke", "parent", "Anakin"))
	ok, err = g.IsTrue("Luke", "parent", "Anakin")
	require.NoError(t, err)
	assert.False(t, ok)

	// Retracting something absent is a no-op, not an error.
	require.NoError(t, g.Retract("Luke", "parent", "Anakin"))
}

func TestAssertIsIdempotent(t *testing.T) {
	g := newTestGraph(t)
	require.NoError(t, g.Assert("Luke", "parent", "Anakin"))
	require.NoError(t, g.Assert("Luke", "parent", "Anakin"))
	sol := g.Enumerate(Specific{Value: "Luke"}, Specific{Value: "parent"}, Empty{})
	assert.Len(t, collect(t, sol), 1)
}

func TestEnumerateByPredicateExactMatch(t *testing.T) {
	g := newTestGraph(t)
	assertFamily(t, g)

	sol := g.Enumerate(Empty{}, Specific{Value: "parent"}, Empty{})
	got := collect(t, sol)
	assert.Len(t, got, 5)
	for _, tr := range got {
		assert.Equal(t, "parent", tr.P)
	}
}

func TestEnumerateRangeConstraintIsHalfOpen(t *testing.T) {
	// Seven odd-numbered facts, of which four fall in the half-open range
	// [03, 10).
	g := newTestGraph(t)
	values := []string{"01", "03", "05", "07", "09", "11", "13"}
	for _, v := range values {
		require.NoError(t, g.Assert("n", "value", v))
	}
	sol := g.Enumerate(Specific{Value: "n"}, Specific{Value: "value"}, Range{Low: "03", High: "10"})
	got := collect(t, sol)
	assert.Equal(t, []Triple{
		{S: "n", P: "value", O: "03"},
		{S: "n", P: "value", O: "05"},
		{S: "n", P: "value", O: "07"},
		{S: "n", P: "value", O: "09"},
	}, got)
}

func TestRetractByWildcardLeavesRemainder(t *testing.T) {
	g := newTestGraph(t)
	assertFamily(t, g)

	// Remove every "born" fact by iterating the solution and retracting.
	sol := g.Enumerate(Empty{}, Specific{Value: "born"}, Empty{})
	var toRemove []Triple
	for tr := range sol.Triples {
		toRemove = append(toRemove, tr)
	}
	for _, tr := range toRemove {
		require.NoError(t, g.Retract(tr.S, tr.P, tr.O))
	}

	remaining := collect(t, g.Enumerate(Empty{}, Empty{}, Empty{}))
	assert.Len(t, remaining, 5)
	for _, tr := range remaining {
		assert.Equal(t, "parent", tr.P)
	}
}

func TestPersistenceReopenByName(t *testing.T) {
	h, err := heap.Create(stream.NewMemory(0), heap.DefaultConfig())
	require.NoError(t, err)

	g1, err := Open(h, "people")
	require.NoError(t, err)
	require.NoError(t, g1.Assert("Luke", "parent", "Anakin"))

	g2, err := Open(h, "people")
	require.NoError(t, err)
	ok, err := g2.IsTrue("Luke", "parent", "Anakin")
	require.NoError(t, err)
	assert.True(t, ok)

	roots, err := h.Roots()
	require.NoError(t, err)
	assert.Contains(t, roots, "people.SPO")
	assert.Contains(t, roots, "people.POS")
	assert.Contains(t, roots, "people.OSP")
}

func TestInferenceRuleFiresOnAssert(t *testing.T) {
	g := newTestGraph(t)
	var fired int
	g.AddRule(func(g *Graph, t Triple) error {
		fired++
		if t.P == "parent" {
			return g.AssertLocked(Triple{S: t.O, P: "child", O: t.S})
		}
		return nil
	})

	require.NoError(t, g.Assert("Luke", "parent", "Anakin"))
	assert.Equal(t, 1, fired)

	ok, err := g.IsTrue("Anakin", "child", "Luke")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClearRemovesEverything(t *testing.T) {
	g := newTestGraph(t)
	assertFamily(t, g)
	require.NoError(t, g.Clear())
	remaining := collect(t, g.Enumerate(Empty{}, Empty{}, Empty{}))
	assert.Empty(t, remaining)
}

func TestArrayConstraintMatchesListedValues(t *testing.T) {
	g := newTestGraph(t)
	assertFamily(t, g)

	sol := g.Enumerate(NewArray([]string{"Luke", "Leia"}), Specific{Value: "parent"}, Empty{})
	got := collect(t, sol)
	assert.Len(t, got, 4)
	for _, tr := range got {
		assert.Contains(t, []string{"Luke", "Leia"}, tr.S)
	}
}

func TestPredicateConstraintFallsBackToScan(t *testing.T) {
	g := newTestGraph(t)
	assertFamily(t, g)

	startsWithA := True(func(v string) bool { return len(v) > 0 && v[0] == 'A' })
	sol := g.Enumerate(startsWithA, Specific{Value: "parent"}, Empty{})
	got := collect(t, sol)
	assert.Len(t, got, 1)
	assert.Equal(t, "Anakin", got[0].S)
}

func TestViewsReportedForWildcardColumns(t *testing.T) {
	g := newTestGraph(t)
	assertFamily(t, g)

	sol := g.Enumerate(Specific{Value: "Luke"}, Specific{Value: "parent"}, Empty{})
	view, ok := sol.Views["o"]
	require.True(t, ok)
	mag, err := view.Magnitude()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), mag)
}
