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

// Package triplestore implements a persisted RDF-style triple store over a
// heap.Heap: three orthogonal orderings of (subject, predicate, object)
// strings (SPO, POS, OSP), a constraint algebra for querying them, and a
// Graph facade serializing access with a reader/writer lock.
package triplestore

import "errors"

// ErrInferenceOnSameGraph documents, rather than mechanically enforces, the
// constraint that an InferenceRule must not call Enumerate/IsTrue (any
// reader-lock method) on the graph whose writer lock it is running under:
// doing so blocks forever against the non-reentrant lock rather than
// returning this error. Rules may Assert/Retract via AssertLocked/
// RetractLocked, which re-enter the writer section without locking again.
var ErrInferenceOnSameGraph = errors.New("triplestore: inference rule must not enumerate its own graph")
