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

package container

// Allocator is the uniform shape every alloc strategy (null, value,
// singleton, reference) implements; SortedSet/SortedMap are written against
// this interface so they compose with whichever strategy the Environment
// picked for T.
type Allocator[T any] interface {
	Alloc(v T) (uint64, error)
	Free(offset uint64) error
	Read(offset uint64) (T, error)
}

// Less orders two values of T, in the same negative/zero/positive
// convention as aatree.Cmp.
type Less[T any] func(a, b T) int
