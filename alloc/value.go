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

package alloc

import "github.com/canyala/mercury/heap"

// Codec serialises values of T to and from the exact bytes a ValueAllocator
// persists; Encode's output length determines the heap block size.
type Codec[T any] interface {
	Encode(v T) []byte
	Decode(buf []byte) T
}

// ValueAllocator writes a fresh heap block per allocation; equal values do
// not share storage.
type ValueAllocator[T any] struct {
	h     *heap.Heap
	codec Codec[T]
}

// NewValueAllocator builds a ValueAllocator persisting into h using codec.
func NewValueAllocator[T any](h *heap.Heap, codec Codec[T]) *ValueAllocator[T] {
	return &ValueAllocator[T]{h: h, codec: codec}
}

func (a *ValueAllocator[T]) Alloc(v T) (uint64, error) {
	buf := a.codec.Encode(v)
	off, err := a.h.Alloc(uint64(len(buf)))
	if err != nil {
		return 0, err
	}
	if err := a.h.Write(off, buf); err != nil {
		return 0, err
	}
	return off, nil
}

func (a *ValueAllocator[T]) Free(offset uint64) error {
	return a.h.Free(offset)
}

func (a *ValueAllocator[T]) Read(offset uint64) (T, error) {
	buf, err := a.h.Read(offset)
	if err != nil {
		var zero T
		return zero, err
	}
	return a.codec.Decode(buf), nil
}
