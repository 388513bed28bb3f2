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

package aatree

import "errors"

// ErrEmptyCollection is returned by Min/Max when the tree holds no nodes.
var ErrEmptyCollection = errors.New("aatree: collection is empty")

// ErrKFanoutMismatch reports a header whose recorded K differs from the K a
// caller works with. Open takes no expected K and adopts whatever the header
// records, so it does not return this error.
var ErrKFanoutMismatch = errors.New("aatree: node fanout K mismatch")
