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

import "encoding/binary"

// Block header layout, persisted immediately before every block's payload:
//
//	payload_size u64
//	flags        u64  (bit 0: 1 = free, 0 = used)
//	prev_free    u64  (payload offset of previous free block, 0 = none)
//	next_free    u64  (payload offset of next free block, 0 = none)
const blockHeaderSize = 32

const flagFree = uint64(1)

type blockHeader struct {
	payloadSize uint64
	flags       uint64
	prevFree    uint64
	nextFree    uint64
}

func (b blockHeader) isFree() bool { return b.flags&flagFree != 0 }

func encodeBlockHeader(b blockHeader) []byte {
	buf := make([]byte, blockHeaderSize)
	binary.BigEndian.PutUint64(buf[0:8], b.payloadSize)
	binary.BigEndian.PutUint64(buf[8:16], b.flags)
	binary.BigEndian.PutUint64(buf[16:24], b.prevFree)
	binary.BigEndian.PutUint64(buf[24:32], b.nextFree)
	return buf
}

func decodeBlockHeader(buf []byte) blockHeader {
	return blockHeader{
		payloadSize: binary.BigEndian.Uint64(buf[0:8]),
		flags:       binary.BigEndian.Uint64(buf[8:16]),
		prevFree:    binary.BigEndian.Uint64(buf[16:24]),
		nextFree:    binary.BigEndian.Uint64(buf[24:32]),
	}
}

// headerOffsetOf returns the stream offset of the header belonging to the
// block whose payload starts at payloadOffset.
func headerOffsetOf(payloadOffset uint64) uint64 { return payloadOffset - blockHeaderSize }

// nextHeaderOffset returns the stream offset of the header immediately
// following a block of payloadSize bytes starting at payloadOffset.
func nextHeaderOffset(payloadOffset, payloadSize uint64) uint64 {
	return payloadOffset + payloadSize
}
