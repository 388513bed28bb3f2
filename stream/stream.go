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

// Package stream provides the random-access byte store that every layer of
// mercury is ultimately persisted into. A Stream never shrinks: the core
// never truncates it, it only grows on demand.
package stream

import "fmt"

// Stream is a random-access byte store addressed by 64-bit offsets.
//
// Offsets are never reused by a Stream implementation on their own; it is the
// Heap layered on top that recycles offsets via its free list. Implementations
// MUST be safe for concurrent ReadAt calls once Grow/WriteAt calls have
// happened-before them; mercury serialises writers with its own locks and
// does not rely on a Stream to do so.
type Stream interface {
	// ReadAt copies length bytes starting at offset into a new slice.
	ReadAt(offset uint64, length uint64) ([]byte, error)
	// WriteAt writes data starting at offset. offset+len(data) MUST be <= Len().
	WriteAt(offset uint64, data []byte) error
	// Len returns the current size of the stream in bytes.
	Len() uint64
	// Grow extends the stream by delta bytes, returning the offset at which
	// the newly available region starts.
	Grow(delta uint64) (uint64, error)
	// Close releases any resources (file descriptors, mappings, locks) held
	// by the stream. A closed Stream MUST NOT be used again.
	Close() error
}

// ErrOutOfRange is returned when a ReadAt/WriteAt call falls outside Len().
type ErrOutOfRange struct {
	Offset, Length, StreamLen uint64
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("stream: access [%d, %d) out of range, stream length is %d", e.Offset, e.Offset+e.Length, e.StreamLen)
}
