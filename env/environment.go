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

package env

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/canyala/mercury/config"
	"github.com/canyala/mercury/heap"
	"github.com/canyala/mercury/metrics"
	"github.com/canyala/mercury/stream"
	"github.com/canyala/mercury/triplestore"
)

// Environment is one open mercury store: a directory of independently
// persisted graphs (or, with an empty Config.Path, a set of in-memory
// graphs that vanish on Close), each with its own heap.Heap and backing
// stream.Stream so that unrelated graphs never contend for the same
// stream's growth lock.
type Environment struct {
	cfg config.Config

	mu      sync.Mutex
	heaps   map[string]*heap.Heap
	graphs  map[string]*triplestore.Graph
	metrics *metrics.Set
	closed  bool
}

// Open creates an Environment from cfg, eagerly opening every graph named in
// cfg.Graphs. Graphs not listed there are opened lazily on first Graph call.
func Open(cfg config.Config) (*Environment, error) {
	e := &Environment{
		cfg:    cfg,
		heaps:  make(map[string]*heap.Heap),
		graphs: make(map[string]*triplestore.Graph),
	}
	if cfg.MetricsNamespace != "" {
		e.metrics = metrics.NewSet(prometheus.DefaultRegisterer, cfg.MetricsNamespace)
	}
	for _, name := range cfg.Graphs {
		if _, err := e.Graph(name); err != nil {
			return nil, fmt.Errorf("env: eagerly opening graph %q: %w", name, err)
		}
	}
	return e, nil
}

func graphKey(name string) string {
	if name == "" {
		return triplestore.DefaultGraphName
	}
	return name
}

// Graph opens (creating on first use) the named graph, caching it for
// subsequent calls. An empty name addresses triplestore.DefaultGraphName.
func (e *Environment) Graph(name string) (*triplestore.Graph, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}

	key := graphKey(name)
	if g, ok := e.graphs[key]; ok {
		return g, nil
	}

	h, err := e.openHeap(key)
	if err != nil {
		return nil, err
	}
	var gopts []triplestore.Option
	if e.metrics != nil {
		gopts = append(gopts, triplestore.WithRecorder(e.metrics))
	}
	g, err := triplestore.Open(h, name, gopts...)
	if err != nil {
		return nil, err
	}
	e.graphs[key] = g
	return g, nil
}

// Metrics returns the Set of prometheus collectors this environment's
// graphs publish to, or nil when cfg.MetricsNamespace is unset.
func (e *Environment) Metrics() *metrics.Set {
	return e.metrics
}

func (e *Environment) pathFor(key string) string {
	if e.cfg.Path == "" {
		return ""
	}
	return filepath.Join(e.cfg.Path, key+".mercury")
}

func (e *Environment) openHeap(key string) (*heap.Heap, error) {
	if h, ok := e.heaps[key]; ok {
		return h, nil
	}

	var opts []heap.Option
	if e.cfg.MetricsNamespace != "" {
		opts = append(opts, heap.WithMetrics(prometheus.DefaultRegisterer, e.cfg.MetricsNamespace+"_"+key))
	}

	path := e.pathFor(key)
	var s stream.Stream
	if path == "" {
		s = stream.NewMemory(0)
	} else {
		if err := os.MkdirAll(e.cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("env: creating %q: %w", e.cfg.Path, err)
		}
		mf, err := stream.OpenMappedFile(path)
		if err != nil {
			return nil, fmt.Errorf("env: opening %q: %w", path, err)
		}
		s = mf
	}

	var h *heap.Heap
	var err error
	if s.Len() == 0 {
		h, err = heap.Create(s, e.cfg.Heap, opts...)
	} else {
		h, err = heap.Open(s, opts...)
	}
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	e.heaps[key] = h
	return h, nil
}

// Close releases every opened heap (and its backing stream: file
// descriptors, mmap regions, advisory locks) concurrently, returning the
// first error encountered. Idempotent: a second Close is a no-op.
func (e *Environment) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	var g errgroup.Group
	for _, h := range e.heaps {
		h := h
		g.Go(func() error { return h.Close() })
	}
	return g.Wait()
}
