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

// Package alloc implements the four allocator strategies mercury's data
// model is built on: null (identity, for primitives that already fit in an
// offset), value (a fresh heap block per allocation), singleton (string
// interning over a shared AA-tree), and reference (refcounted embedding of
// one persisted object inside another).
package alloc

import "errors"

// ErrStringNotInterned is returned by SingletonAllocator.Free when offset
// does not refer to a block this allocator currently has interned.
var ErrStringNotInterned = errors.New("alloc: offset is not an interned string")
