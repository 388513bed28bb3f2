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

// ReferenceAllocator embeds an already-existing persisted object (identified
// by its root offset) as the value of another structure, by refcount rather
// than by copy. incRef/decRef bump or drop the object's own refcount
// (typically wrapping aatree.Tree.IncreaseRef/DecreaseRef of the tree whose
// header is at rootOffset); destroy recursively tears
// the object down once its refcount reaches zero.
type ReferenceAllocator struct {
	incRef  func(rootOffset uint64) (uint64, error)
	decRef  func(rootOffset uint64) (uint64, error)
	destroy func(rootOffset uint64) error
}

// NewReferenceAllocator builds a ReferenceAllocator around the given
// object's refcount and teardown operations.
func NewReferenceAllocator(
	incRef func(rootOffset uint64) (uint64, error),
	decRef func(rootOffset uint64) (uint64, error),
	destroy func(rootOffset uint64) error,
) *ReferenceAllocator {
	return &ReferenceAllocator{incRef: incRef, decRef: decRef, destroy: destroy}
}

// Alloc records rootOffset's object as a value by bumping its refcount; the
// returned offset is rootOffset itself.
func (a *ReferenceAllocator) Alloc(rootOffset uint64) (uint64, error) {
	if _, err := a.incRef(rootOffset); err != nil {
		return 0, err
	}
	return rootOffset, nil
}

// Free drops rootOffset's refcount, destroying the object when it reaches
// zero.
func (a *ReferenceAllocator) Free(rootOffset uint64) error {
	n, err := a.decRef(rootOffset)
	if err != nil {
		return err
	}
	if n == 0 {
		return a.destroy(rootOffset)
	}
	return nil
}

// Read returns rootOffset unchanged; dereferencing the nested object is the
// caller's responsibility (it already knows the object's type).
func (a *ReferenceAllocator) Read(rootOffset uint64) (uint64, error) {
	return rootOffset, nil
}
