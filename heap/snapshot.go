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
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/canyala/mercury/stream"
)

// Snapshot writes a zstd-compressed copy of the whole backing stream to w,
// suitable for backup or transport. It reflects whatever has already been
// flushed to the stream; callers wanting a consistent point-in-time copy
// should hold the owning Graph's writer lock while calling it.
func (h *Heap) Snapshot(w io.Writer) error {
	total, err := h.totalSize()
	if err != nil {
		return err
	}
	buf, err := h.s.ReadAt(0, total)
	if err != nil {
		return fmt.Errorf("heap: snapshot read: %w", err)
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("heap: snapshot encoder: %w", err)
	}
	if _, err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("heap: snapshot write: %w", err)
	}
	return enc.Close()
}

// Restore decompresses a Snapshot produced by Heap.Snapshot into s, which
// must be empty, and opens it as a Heap.
func Restore(s stream.Stream, r io.Reader, opts ...Option) (*Heap, error) {
	if s.Len() != 0 {
		return nil, fmt.Errorf("heap: Restore requires an empty stream (len=%d)", s.Len())
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("heap: snapshot decoder: %w", err)
	}
	defer dec.Close()
	buf, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("heap: snapshot decompress: %w", err)
	}
	if _, err := s.Grow(uint64(len(buf))); err != nil {
		return nil, fmt.Errorf("heap: snapshot restore grow: %w", err)
	}
	if err := s.WriteAt(0, buf); err != nil {
		return nil, fmt.Errorf("heap: snapshot restore write: %w", err)
	}
	return Open(s, opts...)
}
