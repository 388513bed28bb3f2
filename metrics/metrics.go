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

// Package metrics collects the prometheus collectors an Environment
// registers on behalf of the graphs it owns (the Heap registers its own
// gauges directly; this package covers graph-level activity that spans
// more than one Heap call).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Set holds the mercury_graph_* collectors registered against one
// prometheus.Registerer, namespaced so multiple Environments sharing a
// registry don't collide.
type Set struct {
	reg           prometheus.Registerer
	triplesTotal  *prometheus.CounterVec
	enumerateTime prometheus.Histogram
}

// NewSet creates and registers a Set's collectors under namespace against
// reg.
func NewSet(reg prometheus.Registerer, namespace string) *Set {
	s := &Set{
		reg: reg,
		triplesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_triples_total",
			Help:      "Count of assert/retract calls per graph, labelled by operation.",
		}, []string{"graph", "op"}),
		enumerateTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_enumerate_seconds",
			Help:      "Wall-clock time planning an Enumerate call (excludes result iteration).",
		}),
	}
	reg.MustRegister(s.triplesTotal, s.enumerateTime)
	return s
}

// ObserveAssert implements triplestore.Recorder.
func (s *Set) ObserveAssert(graph string) {
	s.triplesTotal.WithLabelValues(graph, "assert").Inc()
}

// ObserveRetract implements triplestore.Recorder.
func (s *Set) ObserveRetract(graph string) {
	s.triplesTotal.WithLabelValues(graph, "retract").Inc()
}

// ObserveEnumerate implements triplestore.Recorder.
func (s *Set) ObserveEnumerate(seconds float64) {
	s.enumerateTime.Observe(seconds)
}

// Registerer returns the prometheus.Registerer this Set was built against,
// for a caller that wants to register further collectors alongside it.
func (s *Set) Registerer() prometheus.Registerer { return s.reg }
