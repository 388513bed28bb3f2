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

// Package heap implements the block allocator described by mercury's core:
// a first-fit, coalescing allocator persisted into a stream.Stream, offering
// alloc/free/sizeof, named roots, and garbage_collect. Every offset it hands
// out is the start of a used block's payload, or zero (the null sentinel).
package heap

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/anacrolix/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/canyala/mercury/stream"
)

// Heap is a block allocator over a single stream.Stream. It is not safe for
// concurrent use without external locking (see §4.1/§5 of the design): a
// Graph serialises access to its Heaps with a reader-writer lock, and
// Environment assumes one goroutine configures a Heap at a time.
type Heap struct {
	s   stream.Stream
	cfg Config

	logger  log.Logger
	metrics *metricsSet

	// used is a non-persisted diagnostic index: bit (offset/8) is set while
	// the block at offset is used. It is rebuilt by walking every block
	// header on Open (and again by GarbageCollect) and kept in sync by
	// Alloc/Free; it makes CountUsedBlocks and IsValid O(1).
	// CountFreeBlocks walks the free list instead. It is never persisted to
	// the stream.
	used *roaring.Bitmap
}

// Option configures optional ambient behaviour (logging, metrics) on Open/Create.
type Option func(*Heap)

// WithLogger attaches a structured logger; heap creation, open, growth and
// GC runs are logged through it at debug level. Invariant violations are
// returned as errors, not logged.
func WithLogger(logger log.Logger) Option {
	return func(h *Heap) { h.logger = logger }
}

// WithMetrics registers this heap's gauges/counters against reg, naming them
// with the ConstLabel heap=name.
func WithMetrics(reg prometheus.Registerer, name string) Option {
	return func(h *Heap) { h.metrics = newMetricsSet(reg, name) }
}

func blockIndex(offset uint64) uint32 { return uint32(offset / 8) }

func roundUp8(n uint64) uint64 { return (n + 7) &^ 7 }

// Create initialises a fresh heap on s, which MUST be empty (Len() == 0).
func Create(s stream.Stream, cfg Config, opts ...Option) (*Heap, error) {
	if s.Len() != 0 {
		return nil, fmt.Errorf("heap: Create requires an empty stream (len=%d)", s.Len())
	}
	initial := roundUp8(cfg.InitialSize.Bytes())
	if initial < PrefixSize {
		initial = PrefixSize
	}
	if _, err := s.Grow(initial); err != nil {
		return nil, fmt.Errorf("heap: reserving initial size: %w", err)
	}

	h := &Heap{s: s, cfg: cfg, logger: log.Discard, used: roaring.New()}
	for _, opt := range opts {
		opt(h)
	}

	p := prefix{magic: magic, version: version, totalSize: initial, freeListHead: 0, rootCount: 0}
	if err := h.writePrefixHeader(p); err != nil {
		return nil, err
	}
	if err := h.clearRootTable(); err != nil {
		return nil, err
	}

	remainder := initial - PrefixSize
	if remainder > 0 {
		if err := h.writeBlockHeader(PrefixSize, blockHeader{payloadSize: remainder - blockHeaderSize, flags: flagFree}); err != nil {
			return nil, err
		}
		if err := h.setFreeListHead(PrefixSize + blockHeaderSize); err != nil {
			return nil, err
		}
		h.metrics.onFreeBytesDelta(float64(remainder - blockHeaderSize))
	}
	h.logger.Levelf(log.Debug, "heap: created, initial size %d bytes", initial)
	return h, nil
}

// Open reopens a heap previously written to s by Create.
func Open(s stream.Stream, opts ...Option) (*Heap, error) {
	if s.Len() < headerFixedSize {
		return nil, ErrBadMagic
	}
	h := &Heap{s: s, logger: log.Discard, used: roaring.New()}
	for _, opt := range opts {
		opt(h)
	}
	p, err := h.readPrefixHeader()
	if err != nil {
		return nil, err
	}
	if p.magic != magic {
		return nil, ErrBadMagic
	}
	if err := h.rebuildUsedIndex(); err != nil {
		return nil, err
	}
	h.logger.Levelf(log.Debug, "heap: opened, total size %d bytes", p.totalSize)
	return h, nil
}

func (h *Heap) readPrefixHeader() (prefix, error) {
	buf, err := h.s.ReadAt(0, headerFixedSize)
	if err != nil {
		return prefix{}, fmt.Errorf("heap: read prefix: %w", err)
	}
	return decodePrefixHeader(buf), nil
}

func (h *Heap) writePrefixHeader(p prefix) error {
	if err := h.s.WriteAt(0, encodePrefixHeader(p)); err != nil {
		return fmt.Errorf("heap: write prefix: %w", err)
	}
	return nil
}

func (h *Heap) setFreeListHead(off uint64) error {
	p, err := h.readPrefixHeader()
	if err != nil {
		return err
	}
	p.freeListHead = off
	return h.writePrefixHeader(p)
}

func (h *Heap) freeListHead() (uint64, error) {
	p, err := h.readPrefixHeader()
	if err != nil {
		return 0, err
	}
	return p.freeListHead, nil
}

func (h *Heap) totalSize() (uint64, error) {
	p, err := h.readPrefixHeader()
	if err != nil {
		return 0, err
	}
	return p.totalSize, nil
}

func (h *Heap) setTotalSize(n uint64) error {
	p, err := h.readPrefixHeader()
	if err != nil {
		return err
	}
	p.totalSize = n
	return h.writePrefixHeader(p)
}

func (h *Heap) clearRootTable() error {
	zero := make([]byte, MaxNamedRoots*rootEntrySize)
	return h.s.WriteAt(headerFixedSize, zero)
}

func (h *Heap) readBlockHeader(headerOff uint64) (blockHeader, error) {
	buf, err := h.s.ReadAt(headerOff, blockHeaderSize)
	if err != nil {
		return blockHeader{}, fmt.Errorf("heap: read block header at %d: %w", headerOff, err)
	}
	return decodeBlockHeader(buf), nil
}

func (h *Heap) writeBlockHeader(headerOff uint64, b blockHeader) error {
	if err := h.s.WriteAt(headerOff, encodeBlockHeader(b)); err != nil {
		return fmt.Errorf("heap: write block header at %d: %w", headerOff, err)
	}
	return nil
}

// rebuildUsedIndex walks the whole block chain once (used on Open) to
// reconstruct the diagnostic bitmap.
func (h *Heap) rebuildUsedIndex() error {
	total, err := h.totalSize()
	if err != nil {
		return err
	}
	off := uint64(PrefixSize)
	for off < total {
		hdr, err := h.readBlockHeader(off)
		if err != nil {
			return err
		}
		payloadOff := off + blockHeaderSize
		if !hdr.isFree() {
			h.used.Add(blockIndex(payloadOff))
		}
		off = nextHeaderOffset(payloadOff, hdr.payloadSize)
	}
	return nil
}

// IsValid reports whether offset is the start of a currently used block.
func (h *Heap) IsValid(offset uint64) bool {
	if offset == 0 {
		return false
	}
	return h.used.Contains(blockIndex(offset))
}

// Sizeof returns the payload size recorded in offset's block header.
func (h *Heap) Sizeof(offset uint64) (uint64, error) {
	if !h.IsValid(offset) {
		return 0, ErrInvalidOffset
	}
	hdr, err := h.readBlockHeader(headerOffsetOf(offset))
	if err != nil {
		return 0, err
	}
	return hdr.payloadSize, nil
}

// Read returns a copy of offset's payload bytes.
func (h *Heap) Read(offset uint64) ([]byte, error) {
	size, err := h.Sizeof(offset)
	if err != nil {
		return nil, err
	}
	buf, err := h.s.ReadAt(offset, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStreamIO, err)
	}
	return buf, nil
}

// Write stores data into offset's payload. len(data) MUST be <= Sizeof(offset).
func (h *Heap) Write(offset uint64, data []byte) error {
	size, err := h.Sizeof(offset)
	if err != nil {
		return err
	}
	if uint64(len(data)) > size {
		return fmt.Errorf("heap: write of %d bytes exceeds block size %d at offset %d", len(data), size, offset)
	}
	if err := h.s.WriteAt(offset, data); err != nil {
		return fmt.Errorf("%w: %v", ErrStreamIO, err)
	}
	return nil
}

// Close releases the underlying stream's resources (file descriptors,
// mappings, advisory locks). A closed Heap MUST NOT be used again.
func (h *Heap) Close() error { return h.s.Close() }

// CountUsedBlocks returns the number of currently used blocks.
func (h *Heap) CountUsedBlocks() int { return int(h.used.GetCardinality()) }

// CountFreeBlocks walks the free list and counts its nodes.
func (h *Heap) CountFreeBlocks() (int, error) {
	n := 0
	cur, err := h.freeListHead()
	if err != nil {
		return 0, err
	}
	for cur != 0 {
		n++
		hdr, err := h.readBlockHeader(headerOffsetOf(cur))
		if err != nil {
			return 0, err
		}
		cur = hdr.nextFree
	}
	return n, nil
}
