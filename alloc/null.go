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

// NullAllocator is the identity strategy for primitives that already fit in
// a 64-bit offset: the value IS the offset, there is no backing heap, and
// Free is a no-op.
type NullAllocator struct{}

func (NullAllocator) Alloc(v uint64) (uint64, error) { return v, nil }

func (NullAllocator) Free(uint64) error { return nil }

func (NullAllocator) Read(offset uint64) (uint64, error) { return offset, nil }
