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

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
	"github.com/gofrs/flock"
)

// ErrLocked is returned by OpenMappedFile when another process (or another
// open call in this process) already holds the advisory write lock on path.
var ErrLocked = errors.New("stream: file is locked by another opener")

// MappedFile is a Stream backed by a memory-mapped file. It re-maps on every
// Grow, and holds an advisory exclusive flock for the lifetime of the
// mapping, implementing the external single-writer locking that heap.Heap
// itself does not provide (see §4.1's "external locking required" note).
type MappedFile struct {
	mu     sync.RWMutex
	f      *os.File
	lock   *flock.Flock
	region mmap.MMap
	size   uint64
}

// OpenMappedFile opens (creating if necessary) a memory-mapped file stream at
// path, acquiring an exclusive advisory lock. Returns ErrLocked if the lock
// is already held.
func OpenMappedFile(path string) (*MappedFile, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("stream: acquire lock for %q: %w", path, err)
	}
	if !locked {
		return nil, ErrLocked
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("stream: open %q: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		lock.Unlock()
		return nil, fmt.Errorf("stream: stat %q: %w", path, err)
	}

	mf := &MappedFile{f: f, lock: lock, size: uint64(info.Size())}
	if mf.size > 0 {
		if err := mf.remap(); err != nil {
			f.Close()
			lock.Unlock()
			return nil, err
		}
	}
	return mf, nil
}

func (s *MappedFile) remap() error {
	if s.region != nil {
		if err := s.region.Unmap(); err != nil {
			return fmt.Errorf("stream: unmap: %w", err)
		}
		s.region = nil
	}
	if s.size == 0 {
		return nil
	}
	region, err := mmap.MapRegion(s.f, int(s.size), mmap.RDWR, 0, 0)
	if err != nil {
		return fmt.Errorf("stream: mmap: %w", err)
	}
	s.region = region
	return nil
}

func (s *MappedFile) ReadAt(offset, length uint64) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset+length > s.size {
		return nil, &ErrOutOfRange{Offset: offset, Length: length, StreamLen: s.size}
	}
	out := make([]byte, length)
	copy(out, s.region[offset:offset+length])
	return out, nil
}

func (s *MappedFile) WriteAt(offset uint64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset+uint64(len(data)) > s.size {
		return &ErrOutOfRange{Offset: offset, Length: uint64(len(data)), StreamLen: s.size}
	}
	copy(s.region[offset:], data)
	return nil
}

func (s *MappedFile) Len() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

func (s *MappedFile) Grow(delta uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.size
	newSize := s.size + delta
	if err := s.f.Truncate(int64(newSize)); err != nil {
		return 0, fmt.Errorf("stream: grow to %d: %w", newSize, err)
	}
	s.size = newSize
	if err := s.remap(); err != nil {
		return 0, err
	}
	return start, nil
}

func (s *MappedFile) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.region != nil {
		err = s.region.Unmap()
	}
	if cerr := s.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if uerr := s.lock.Unlock(); uerr != nil && err == nil {
		err = uerr
	}
	return err
}
