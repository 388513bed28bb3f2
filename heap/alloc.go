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

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/anacrolix/log"
)

// Alloc returns a usable offset to a block of exactly size payload bytes
// (size is rounded up to a multiple of 8 internally; Sizeof reflects the
// rounded value). First-fit over the free list; splits the chosen free
// block when the remainder can hold a header, otherwise grants the whole
// block.
func (h *Heap) Alloc(size uint64) (uint64, error) {
	size = roundUp8(size)
	off, err := h.allocFromFreeList(size)
	if err != nil {
		return 0, err
	}
	if off != 0 {
		h.metrics.onAlloc(size)
		return off, nil
	}
	if err := h.grow(size); err != nil {
		return 0, err
	}
	off, err = h.allocFromFreeList(size)
	if err != nil {
		return 0, err
	}
	if off == 0 {
		return 0, fmt.Errorf("%w: grew stream but still could not satisfy alloc of %d bytes", ErrOutOfSpace, size)
	}
	h.metrics.onAlloc(size)
	return off, nil
}

// allocFromFreeList returns 0 (no error) if no free block of sufficient size exists.
func (h *Heap) allocFromFreeList(size uint64) (uint64, error) {
	head, err := h.freeListHead()
	if err != nil {
		return 0, err
	}
	prev := uint64(0)
	cur := head
	for cur != 0 {
		hdr, err := h.readBlockHeader(headerOffsetOf(cur))
		if err != nil {
			return 0, err
		}
		if hdr.payloadSize >= size {
			if err := h.unlinkFree(prev, cur, hdr); err != nil {
				return 0, err
			}
			h.metrics.onFreeBytesDelta(-float64(hdr.payloadSize))
			return h.carve(cur, hdr.payloadSize, size)
		}
		prev = cur
		cur = hdr.nextFree
	}
	return 0, nil
}

// carve splits the free block at payloadOffset (capacity cap) into a used
// block of size bytes and, if room allows, a new free remainder which is
// reinserted into the free list.
func (h *Heap) carve(payloadOffset, capacity, size uint64) (uint64, error) {
	remainder := capacity - size
	if remainder < blockHeaderSize {
		// Not enough room for a remainder block's header: grant the whole
		// capacity, accepting up to blockHeaderSize-1 bytes of internal
		// fragmentation rather than leaving untracked bytes in the stream.
		if err := h.writeBlockHeader(headerOffsetOf(payloadOffset), blockHeader{payloadSize: capacity, flags: 0}); err != nil {
			return 0, err
		}
		h.used.Add(blockIndex(payloadOffset))
		return payloadOffset, nil
	}

	if err := h.writeBlockHeader(headerOffsetOf(payloadOffset), blockHeader{payloadSize: size, flags: 0}); err != nil {
		return 0, err
	}
	h.used.Add(blockIndex(payloadOffset))

	remainderPayloadOffset := payloadOffset + size + blockHeaderSize
	remainderPayloadSize := remainder - blockHeaderSize
	if err := h.writeBlockHeader(headerOffsetOf(remainderPayloadOffset), blockHeader{payloadSize: remainderPayloadSize, flags: flagFree}); err != nil {
		return 0, err
	}
	if err := h.insertFree(remainderPayloadOffset); err != nil {
		return 0, err
	}
	h.metrics.onFreeBytesDelta(float64(remainderPayloadSize))
	return payloadOffset, nil
}

// grow extends the backing stream and appends a single new free block
// covering the new region (coalescing with a currently-free tail block if
// one directly precedes the new region).
func (h *Heap) grow(minSize uint64) error {
	total, err := h.totalSize()
	if err != nil {
		return err
	}
	delta := h.cfg.growIncrement()
	needed := minSize + blockHeaderSize
	if delta < needed {
		delta = roundUp8(needed)
	}
	if _, err := h.s.Grow(delta); err != nil {
		return fmt.Errorf("%w: %v", ErrOutOfSpace, err)
	}
	newPayloadOffset := total + blockHeaderSize
	newPayloadSize := delta - blockHeaderSize
	if err := h.writeBlockHeader(headerOffsetOf(newPayloadOffset), blockHeader{payloadSize: newPayloadSize, flags: flagFree}); err != nil {
		return err
	}
	if err := h.setTotalSize(total + delta); err != nil {
		return err
	}
	if err := h.insertFreeCoalescingLeft(newPayloadOffset); err != nil {
		return err
	}
	h.metrics.onFreeBytesDelta(float64(newPayloadSize))
	h.logger.Levelf(log.Debug, "heap: grew by %d bytes, total now %d", delta, total+delta)
	return nil
}

// Free marks offset's block free and coalesces it with adjacent free
// neighbours. offset becomes invalid; using it again is undefined.
func (h *Heap) Free(offset uint64) error {
	if !h.IsValid(offset) {
		return fmt.Errorf("%w: double-free or invalid offset %d", ErrInvariant, offset)
	}
	hdr, err := h.readBlockHeader(headerOffsetOf(offset))
	if err != nil {
		return err
	}
	h.used.Remove(blockIndex(offset))
	h.metrics.onFree(hdr.payloadSize)

	size := hdr.payloadSize
	total, err := h.totalSize()
	if err != nil {
		return err
	}

	// Coalesce with the right neighbour if it exists and is free.
	rightHeaderOff := nextHeaderOffset(offset, size)
	if rightHeaderOff < total {
		rightHdr, err := h.readBlockHeader(rightHeaderOff)
		if err != nil {
			return err
		}
		if rightHdr.isFree() {
			rightPayloadOff := rightHeaderOff + blockHeaderSize
			if err := h.removeFree(rightPayloadOff, rightHdr); err != nil {
				return err
			}
			h.metrics.onFreeBytesDelta(-float64(rightHdr.payloadSize))
			size += blockHeaderSize + rightHdr.payloadSize
		}
	}

	if err := h.writeBlockHeader(headerOffsetOf(offset), blockHeader{payloadSize: size, flags: flagFree}); err != nil {
		return err
	}
	h.metrics.onFreeBytesDelta(float64(size))
	return h.insertFreeCoalescingLeft(offset)
}

// insertFree inserts a known-isolated free block into the sorted free list
// without attempting to coalesce (used when the block is freshly carved and
// cannot be adjacent to an existing free block).
func (h *Heap) insertFree(payloadOffset uint64) error {
	head, err := h.freeListHead()
	if err != nil {
		return err
	}
	prev := uint64(0)
	cur := head
	for cur != 0 && cur < payloadOffset {
		hdr, err := h.readBlockHeader(headerOffsetOf(cur))
		if err != nil {
			return err
		}
		prev = cur
		cur = hdr.nextFree
	}
	return h.linkFreeBetween(prev, payloadOffset, cur)
}

// insertFreeCoalescingLeft inserts payloadOffset into the sorted free list,
// merging it into its left neighbour in the list if they are adjacent in
// the stream.
func (h *Heap) insertFreeCoalescingLeft(payloadOffset uint64) error {
	head, err := h.freeListHead()
	if err != nil {
		return err
	}
	prev := uint64(0)
	cur := head
	for cur != 0 && cur < payloadOffset {
		hdr, err := h.readBlockHeader(headerOffsetOf(cur))
		if err != nil {
			return err
		}
		prev = cur
		cur = hdr.nextFree
	}

	hdr, err := h.readBlockHeader(headerOffsetOf(payloadOffset))
	if err != nil {
		return err
	}

	if prev != 0 {
		prevHdr, err := h.readBlockHeader(headerOffsetOf(prev))
		if err != nil {
			return err
		}
		if nextHeaderOffset(prev, prevHdr.payloadSize) == headerOffsetOf(payloadOffset) {
			// Adjacent: absorb payloadOffset's block into prev, no new node.
			prevHdr.payloadSize += blockHeaderSize + hdr.payloadSize
			if err := h.writeBlockHeader(headerOffsetOf(prev), prevHdr); err != nil {
				return err
			}
			return nil
		}
	}
	return h.linkFreeBetween(prev, payloadOffset, cur)
}

func (h *Heap) linkFreeBetween(prev, payloadOffset, next uint64) error {
	hdr, err := h.readBlockHeader(headerOffsetOf(payloadOffset))
	if err != nil {
		return err
	}
	hdr.prevFree = prev
	hdr.nextFree = next
	if err := h.writeBlockHeader(headerOffsetOf(payloadOffset), hdr); err != nil {
		return err
	}
	if prev != 0 {
		prevHdr, err := h.readBlockHeader(headerOffsetOf(prev))
		if err != nil {
			return err
		}
		prevHdr.nextFree = payloadOffset
		if err := h.writeBlockHeader(headerOffsetOf(prev), prevHdr); err != nil {
			return err
		}
	} else {
		if err := h.setFreeListHead(payloadOffset); err != nil {
			return err
		}
	}
	if next != 0 {
		nextHdr, err := h.readBlockHeader(headerOffsetOf(next))
		if err != nil {
			return err
		}
		nextHdr.prevFree = payloadOffset
		if err := h.writeBlockHeader(headerOffsetOf(next), nextHdr); err != nil {
			return err
		}
	}
	return nil
}

// unlinkFree removes payloadOffset (whose header is hdr, with prev being its
// known predecessor in the list, possibly 0) from the free list.
func (h *Heap) unlinkFree(prev, payloadOffset uint64, hdr blockHeader) error {
	return h.removeFree(payloadOffset, hdr)
}

func (h *Heap) removeFree(payloadOffset uint64, hdr blockHeader) error {
	if hdr.prevFree != 0 {
		prevHdr, err := h.readBlockHeader(headerOffsetOf(hdr.prevFree))
		if err != nil {
			return err
		}
		prevHdr.nextFree = hdr.nextFree
		if err := h.writeBlockHeader(headerOffsetOf(hdr.prevFree), prevHdr); err != nil {
			return err
		}
	} else {
		if err := h.setFreeListHead(hdr.nextFree); err != nil {
			return err
		}
	}
	if hdr.nextFree != 0 {
		nextHdr, err := h.readBlockHeader(headerOffsetOf(hdr.nextFree))
		if err != nil {
			return err
		}
		nextHdr.prevFree = hdr.prevFree
		if err := h.writeBlockHeader(headerOffsetOf(hdr.nextFree), nextHdr); err != nil {
			return err
		}
	}
	return nil
}

// GarbageCollect performs a full sequential pass over every block, merging
// any adjacent free runs the incremental Free() coalescing may have missed,
// and rebuilds the free list and diagnostic bitmap from scratch. It never
// moves used blocks; offsets remain stable.
func (h *Heap) GarbageCollect() error {
	total, err := h.totalSize()
	if err != nil {
		return err
	}

	type run struct {
		payloadOffset uint64
		payloadSize   uint64
	}
	var runs []run
	h.used = roaring.New()

	off := uint64(PrefixSize)
	for off < total {
		hdr, err := h.readBlockHeader(off)
		if err != nil {
			return err
		}
		payloadOff := off + blockHeaderSize
		if hdr.isFree() {
			if n := len(runs); n > 0 && runs[n-1].payloadOffset+runs[n-1].payloadSize+blockHeaderSize == off {
				runs[n-1].payloadSize += blockHeaderSize + hdr.payloadSize
			} else {
				runs = append(runs, run{payloadOffset: payloadOff, payloadSize: hdr.payloadSize})
			}
		} else {
			h.used.Add(blockIndex(payloadOff))
		}
		off = nextHeaderOffset(payloadOff, hdr.payloadSize)
	}

	prevOffset := uint64(0)
	var freeBytes float64
	for i, r := range runs {
		var next uint64
		if i+1 < len(runs) {
			next = runs[i+1].payloadOffset
		}
		if err := h.writeBlockHeader(headerOffsetOf(r.payloadOffset), blockHeader{
			payloadSize: r.payloadSize,
			flags:       flagFree,
			prevFree:    prevOffset,
			nextFree:    next,
		}); err != nil {
			return err
		}
		prevOffset = r.payloadOffset
		freeBytes += float64(r.payloadSize)
	}
	head := uint64(0)
	if len(runs) > 0 {
		head = runs[0].payloadOffset
	}
	if err := h.setFreeListHead(head); err != nil {
		return err
	}
	h.metrics.onGC()
	h.logger.Levelf(log.Debug, "heap: garbage_collect merged to %d free runs", len(runs))
	return nil
}
