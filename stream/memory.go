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

package stream

import "sync"

// Memory is an in-memory Stream backed by a growable byte slice. It is the
// default Stream for transient graphs and for tests.
type Memory struct {
	mu   sync.RWMutex
	buf  []byte
}

// NewMemory creates an empty in-memory stream with the given initial
// capacity reserved (but not yet part of Len()).
func NewMemory(initialCapacity uint64) *Memory {
	return &Memory{buf: make([]byte, 0, initialCapacity)}
}

func (m *Memory) ReadAt(offset, length uint64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if offset+length > uint64(len(m.buf)) {
		return nil, &ErrOutOfRange{Offset: offset, Length: length, StreamLen: uint64(len(m.buf))}
	}
	out := make([]byte, length)
	copy(out, m.buf[offset:offset+length])
	return out, nil
}

func (m *Memory) WriteAt(offset uint64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offset+uint64(len(data)) > uint64(len(m.buf)) {
		return &ErrOutOfRange{Offset: offset, Length: uint64(len(data)), StreamLen: uint64(len(m.buf))}
	}
	copy(m.buf[offset:], data)
	return nil
}

func (m *Memory) Len() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.buf))
}

func (m *Memory) Grow(delta uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := uint64(len(m.buf))
	m.buf = append(m.buf, make([]byte, delta)...)
	return start, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf = nil
	return nil
}

// Bytes returns a snapshot copy of the full in-memory buffer. Intended for
// tests; Heap.Snapshot reads through ReadAt instead.
func (m *Memory) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]byte, len(m.buf))
	copy(out, m.buf)
	return out
}
