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

// Package container implements SortedSet and SortedMap, thin typed wrappers
// composing an aatree.Tree with one or two element allocators.
package container

import "errors"

// ErrKeyNotFound reports an absent key. No container operation returns it:
// SortedMap has no strict accessor, and TryGet reports a missing key through
// its boolean result.
var ErrKeyNotFound = errors.New("container: key not found")
