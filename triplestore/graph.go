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
	"sync"
	"time"

	"github.com/canyala/mercury/alloc"
	"github.com/canyala/mercury/heap"
)

// DefaultGraphName is the root-name prefix used when Open/Create is not
// given an explicit graph name, yielding roots "Default.SPO", "Default.POS"
// and "Default.OSP".
const DefaultGraphName = "Default"

// InferenceRule runs once per top-level Assert, inside the writer lock,
// before the triple is inserted into the indexes. A rule may Assert or
// Retract further triples (AssertLocked/RetractLocked re-enter the same
// writer section without taking the lock again) but must not call any
// reader-lock method (Enumerate, IsTrue) on the same Graph — doing so
// would deadlock against the non-reentrant lock.
type InferenceRule func(g *Graph, t Triple) error

// Recorder receives graph-level activity notifications; metrics.Set
// implements it. Graph works without one (the zero value is simply never
// called).
type Recorder interface {
	ObserveAssert(graph string)
	ObserveRetract(graph string)
	ObserveEnumerate(seconds float64)
}

// Option configures optional ambient behaviour on Open.
type Option func(*Graph)

// WithRecorder attaches rec, notified on every Assert/Retract under the
// graph's own name.
func WithRecorder(rec Recorder) Option {
	return func(g *Graph) { g.recorder = rec }
}

// Graph is the query/mutation facade over one triple store: three indexes
// sharing one string-singleton allocator, serialized by a single
// reader/writer lock. Assert, Retract, Clear and inference registration take
// the writer lock; Enumerate and IsTrue take the reader lock.
// Iterators returned by Enumerate carry the reader lock for their entire
// iteration, released when the iterator is exhausted or the caller stops
// early.
type Graph struct {
	h       *heap.Heap
	strings *alloc.SingletonAllocator
	spo     *index
	pos     *index
	osp     *index
	name    string

	recorder Recorder

	mu    sync.RWMutex
	rules []InferenceRule
}

// Open opens (creating on first use) the graph named name in h. An empty
// name is equivalent to DefaultGraphName.
func Open(h *heap.Heap, name string, opts ...Option) (*Graph, error) {
	if name == "" {
		name = DefaultGraphName
	}
	strs, err := alloc.OpenSingletonAllocator(h)
	if err != nil {
		return nil, err
	}
	spo, err := openOrCreateIndex(h, strs, name+".SPO", orderSPO)
	if err != nil {
		return nil, err
	}
	pos, err := openOrCreateIndex(h, strs, name+".POS", orderPOS)
	if err != nil {
		return nil, err
	}
	osp, err := openOrCreateIndex(h, strs, name+".OSP", orderOSP)
	if err != nil {
		return nil, err
	}
	g := &Graph{h: h, strings: strs, spo: spo, pos: pos, osp: osp, name: name}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// AddRule registers an inference rule, run on every subsequent top-level
// Assert. Rules are not persisted; callers re-register them each time the
// graph is opened.
func (g *Graph) AddRule(r InferenceRule) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, r)
}

// Assert adds (s, p, o), firing every registered inference rule first.
func (g *Graph) Assert(s, p, o string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := Triple{S: s, P: p, O: o}
	for _, rule := range g.rules {
		if err := rule(g, t); err != nil {
			return err
		}
	}
	return g.AssertLocked(t)
}

// AssertLocked inserts t without taking the lock and without firing the
// inference rules, so an InferenceRule running inside the writer lock can
// assert further triples without deadlocking on a second Lock call.
func (g *Graph) AssertLocked(t Triple) error {
	if err := g.spo.assert(t); err != nil {
		return err
	}
	if err := g.pos.assert(t); err != nil {
		return err
	}
	if err := g.osp.assert(t); err != nil {
		return err
	}
	if g.recorder != nil {
		g.recorder.ObserveAssert(g.name)
	}
	return nil
}

// Retract removes (s, p, o) if present; a miss is not an error.
func (g *Graph) Retract(s, p, o string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.RetractLocked(Triple{S: s, P: p, O: o})
}

// RetractLocked is Retract's body, for use by inference rules (see
// AssertLocked).
func (g *Graph) RetractLocked(t Triple) error {
	if err := g.spo.retract(t); err != nil {
		return err
	}
	if err := g.pos.retract(t); err != nil {
		return err
	}
	if err := g.osp.retract(t); err != nil {
		return err
	}
	if g.recorder != nil {
		g.recorder.ObserveRetract(g.name)
	}
	return nil
}

// IsTrue reports whether (s, p, o) currently holds.
func (g *Graph) IsTrue(s, p, o string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.spo.contains(Triple{S: s, P: p, O: o})
}

// Clear removes every triple from the graph.
func (g *Graph) Clear() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.spo.clear(); err != nil {
		return err
	}
	if err := g.pos.clear(); err != nil {
		return err
	}
	return g.osp.clear()
}

// Enumerate runs the query planner for (cs, cp, co) and returns a Solution.
// The reader lock is acquired when Solution.Triples begins iterating and
// released when iteration stops or completes; callers that only need the
// per-column Views (computed eagerly, before this call returns) may ignore
// Triples entirely.
func (g *Graph) Enumerate(cs, cp, co Constraint) Solution {
	start := time.Now()
	g.mu.RLock()
	_, views := g.plan(cs, cp, co)
	g.mu.RUnlock()
	if g.recorder != nil {
		g.recorder.ObserveEnumerate(time.Since(start).Seconds())
	}

	triples := func(yield func(Triple) bool) {
		g.mu.RLock()
		defer g.mu.RUnlock()
		seq, _ := g.plan(cs, cp, co)
		for t := range seq {
			if !yield(t) {
				return
			}
		}
	}
	return Solution{Triples: triples, Views: views}
}
