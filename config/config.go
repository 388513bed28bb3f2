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

// Package config holds mercury's top-level, TOML-decodable configuration:
// where the store lives on disk, how its heap grows, and which graph names
// it exposes on Open.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/canyala/mercury/heap"
)

// Config is the root configuration for an Environment.
type Config struct {
	// Path is the directory holding one "<graph>.mercury" backing file per
	// graph. Empty means an in-memory store (useful for tests and scratch
	// graphs; Environment.Close discards it).
	Path string `toml:"path"`
	// Heap controls the backing stream's initial size and growth policy.
	Heap heap.Config `toml:"heap"`
	// Graphs lists the named graphs to open eagerly. A graph not listed
	// here is still reachable via Environment.Graph, opened lazily on first
	// use.
	Graphs []string `toml:"graphs"`
	// MetricsNamespace, if non-empty, is the ConstLabel namespace under
	// which the heap's prometheus gauges/counters are registered.
	MetricsNamespace string `toml:"metrics_namespace"`
}

// Default returns a Config with heap.DefaultConfig and no named graphs,
// suitable as a base for callers that only need to override a couple of
// fields.
func Default() Config {
	return Config{Heap: heap.DefaultConfig()}
}

// Load reads and decodes a TOML configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %q: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %q: %w", path, err)
	}
	return cfg, nil
}
