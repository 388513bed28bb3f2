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

import "errors"

var (
	// ErrOutOfSpace is returned when the backing stream cannot be grown any
	// further to satisfy an Alloc.
	ErrOutOfSpace = errors.New("heap: out of space")

	// ErrInvariant is returned when an operation would violate (or has
	// detected a violation of) a heap invariant: double-free, a corrupt
	// free-list chain, or a root-table overflow. These indicate a bug or
	// external corruption, never bad user input.
	ErrInvariant = errors.New("heap: invariant violation")

	// ErrInvalidOffset is returned when an offset does not refer to the
	// start of a currently-used block.
	ErrInvalidOffset = errors.New("heap: offset does not refer to a used block")

	// ErrBadMagic is returned by Open when the stream's prefix does not
	// carry mercury's heap magic number.
	ErrBadMagic = errors.New("heap: stream does not contain a mercury heap")

	// ErrTooManyRoots is returned by SetRoot when the fixed-size named-root
	// table is full.
	ErrTooManyRoots = errors.New("heap: named-root table is full")

	// ErrRootNameTooLong is returned by SetRoot when name is empty or does
	// not fit in rootNameSize-1 bytes.
	ErrRootNameTooLong = errors.New("heap: root name too long")

	// ErrStreamIO wraps a failure from the underlying stream.Stream's
	// ReadAt/WriteAt that is not itself an out-of-space condition (a
	// truncated or corrupted backing file, for instance).
	ErrStreamIO = errors.New("heap: stream I/O error")
)
