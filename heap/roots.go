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
	"bytes"
	"encoding/binary"
)

// The stream begins with a fixed metadata prefix: magic, version, total
// size, free-list head offset, named-root count, then a fixed-capacity
// named-root table. MaxNamedRoots bounds the number of named roots a single
// heap can hold; a graph occupies 4 of them (SPO/POS/OSP + the shared
// singleton-string index), so 64 slots comfortably houses many named graphs
// sharing one heap.
const (
	magic   = uint64(0x4D455243555259) // "MERCURY" packed into 7 bytes
	version = uint64(1)

	MaxNamedRoots = 64
	rootNameSize  = 32
	rootEntrySize = rootNameSize + 8

	headerFixedSize = 48
	PrefixSize      = headerFixedSize + MaxNamedRoots*rootEntrySize
)

// prefix mirrors the fixed metadata region at the start of the stream.
type prefix struct {
	magic        uint64
	version      uint64
	totalSize    uint64
	freeListHead uint64
	rootCount    uint64
}

func encodePrefixHeader(p prefix) []byte {
	buf := make([]byte, headerFixedSize)
	binary.BigEndian.PutUint64(buf[0:8], p.magic)
	binary.BigEndian.PutUint64(buf[8:16], p.version)
	binary.BigEndian.PutUint64(buf[16:24], p.totalSize)
	binary.BigEndian.PutUint64(buf[24:32], p.freeListHead)
	binary.BigEndian.PutUint64(buf[32:40], p.rootCount)
	return buf
}

func decodePrefixHeader(buf []byte) prefix {
	return prefix{
		magic:        binary.BigEndian.Uint64(buf[0:8]),
		version:      binary.BigEndian.Uint64(buf[8:16]),
		totalSize:    binary.BigEndian.Uint64(buf[16:24]),
		freeListHead: binary.BigEndian.Uint64(buf[24:32]),
		rootCount:    binary.BigEndian.Uint64(buf[32:40]),
	}
}

func rootSlotOffset(slot int) uint64 {
	return headerFixedSize + uint64(slot)*rootEntrySize
}

func encodeRootName(name string) []byte {
	buf := make([]byte, rootNameSize)
	copy(buf, name)
	return buf
}

func decodeRootName(buf []byte) string {
	n := bytes.IndexByte(buf, 0)
	if n < 0 {
		n = len(buf)
	}
	return string(buf[:n])
}
