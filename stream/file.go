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
	"fmt"
	"os"
	"sync"
)

// File is a Stream backed by a plain *os.File using ReadAt/WriteAt. It grows
// by truncating the file to a larger size.
type File struct {
	mu   sync.RWMutex
	f    *os.File
	size uint64
}

// OpenFile opens (creating if necessary) a file-backed stream at path.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("stream: open %q: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stream: stat %q: %w", path, err)
	}
	return &File{f: f, size: uint64(info.Size())}, nil
}

func (s *File) ReadAt(offset, length uint64) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset+length > s.size {
		return nil, &ErrOutOfRange{Offset: offset, Length: length, StreamLen: s.size}
	}
	buf := make([]byte, length)
	if _, err := s.f.ReadAt(buf, int64(offset)); err != nil {
		return nil, fmt.Errorf("stream: read at %d: %w", offset, err)
	}
	return buf, nil
}

func (s *File) WriteAt(offset uint64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset+uint64(len(data)) > s.size {
		return &ErrOutOfRange{Offset: offset, Length: uint64(len(data)), StreamLen: s.size}
	}
	if _, err := s.f.WriteAt(data, int64(offset)); err != nil {
		return fmt.Errorf("stream: write at %d: %w", offset, err)
	}
	return nil
}

func (s *File) Len() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

func (s *File) Grow(delta uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.size
	newSize := s.size + delta
	if err := s.f.Truncate(int64(newSize)); err != nil {
		return 0, fmt.Errorf("stream: grow to %d: %w", newSize, err)
	}
	s.size = newSize
	return start, nil
}

func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
