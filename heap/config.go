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

import (
	"github.com/c2h5oh/datasize"
	"github.com/pbnjay/memory"
)

// Config controls the growth behaviour of a Heap's backing stream. It is
// TOML-decodable (see the top-level mercury.Config) using human-readable
// sizes such as "64MB".
type Config struct {
	// InitialSize is reserved on Create before any Alloc call.
	InitialSize datasize.ByteSize `toml:"initial_size"`
	// GrowIncrement is how much the stream grows whenever Alloc can't be
	// satisfied by the free list. Zero means "derive from GrowFraction".
	GrowIncrement datasize.ByteSize `toml:"grow_increment"`
	// GrowFraction, used only when GrowIncrement is zero, expresses the
	// growth step as a fraction of the host's total physical memory
	// (via github.com/pbnjay/memory). The step is not capped; a fraction
	// that yields zero bytes falls back to DefaultGrowIncrement.
	GrowFraction float64 `toml:"grow_fraction"`
}

// DefaultGrowIncrement is used when a Config leaves both GrowIncrement and
// GrowFraction at zero.
const DefaultGrowIncrement = 4 * datasize.MB

// DefaultConfig returns sensible defaults for an embedded graph.
func DefaultConfig() Config {
	return Config{
		InitialSize:   64 * datasize.KB,
		GrowIncrement: DefaultGrowIncrement,
	}
}

func (c Config) growIncrement() uint64 {
	if c.GrowIncrement > 0 {
		return c.GrowIncrement.Bytes()
	}
	if c.GrowFraction > 0 {
		step := uint64(float64(memory.TotalMemory()) * c.GrowFraction)
		if step > 0 {
			return step
		}
	}
	return DefaultGrowIncrement.Bytes()
}
