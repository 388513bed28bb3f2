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

// Package mercury is the top-level entry point: Open wires a config.Config
// into a running env.Environment, the single object a host process needs to
// reach any graph it persists.
package mercury

import (
	"github.com/canyala/mercury/config"
	"github.com/canyala/mercury/env"
)

// Config is re-exported so callers need only import this package for the
// common case.
type Config = config.Config

// DefaultConfig returns a Config with sane heap defaults and no named
// graphs.
func DefaultConfig() Config { return config.Default() }

// Open starts an Environment rooted at path (empty for an in-memory-only
// store) using cfg for everything else. Callers must Close the returned
// Environment when done.
func Open(path string, cfg Config) (*env.Environment, error) {
	cfg.Path = path
	return env.Open(cfg)
}
