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

package heap

import "github.com/prometheus/client_golang/prometheus"

// metricsSet holds the prometheus collectors a Heap updates on every
// mutation. A Heap opened without a registerer leaves this zero-valued and
// every update becomes a no-op.
type metricsSet struct {
	usedBytes  prometheus.Gauge
	freeBytes  prometheus.Gauge
	allocTotal prometheus.Counter
	freeTotal  prometheus.Counter
	gcTotal    prometheus.Counter
}

func newMetricsSet(reg prometheus.Registerer, name string) *metricsSet {
	if reg == nil {
		return nil
	}
	labels := prometheus.Labels{"heap": name}
	m := &metricsSet{
		usedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mercury_heap_used_bytes", Help: "Bytes currently held by used blocks.", ConstLabels: labels,
		}),
		freeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mercury_heap_free_bytes", Help: "Bytes currently held by free blocks.", ConstLabels: labels,
		}),
		allocTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mercury_heap_alloc_total", Help: "Total Alloc calls.", ConstLabels: labels,
		}),
		freeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mercury_heap_free_total", Help: "Total Free calls.", ConstLabels: labels,
		}),
		gcTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mercury_heap_gc_total", Help: "Total GarbageCollect runs.", ConstLabels: labels,
		}),
	}
	reg.MustRegister(m.usedBytes, m.freeBytes, m.allocTotal, m.freeTotal, m.gcTotal)
	return m
}

func (m *metricsSet) onAlloc(size uint64) {
	if m == nil {
		return
	}
	m.allocTotal.Inc()
	m.usedBytes.Add(float64(size))
}

func (m *metricsSet) onFree(size uint64) {
	if m == nil {
		return
	}
	m.freeTotal.Inc()
	m.usedBytes.Sub(float64(size))
}

func (m *metricsSet) onFreeBytesDelta(delta float64) {
	if m == nil {
		return
	}
	m.freeBytes.Add(delta)
}

func (m *metricsSet) onGC() {
	if m == nil {
		return
	}
	m.gcTotal.Inc()
}
