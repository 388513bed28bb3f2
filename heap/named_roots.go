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
	"encoding/binary"
	"fmt"
)

func (h *Heap) readRootSlot(slot int) (string, uint64, error) {
	buf, err := h.s.ReadAt(rootSlotOffset(slot), rootEntrySize)
	if err != nil {
		return "", 0, fmt.Errorf("heap: read root slot %d: %w", slot, err)
	}
	name := decodeRootName(buf[:rootNameSize])
	off := binary.BigEndian.Uint64(buf[rootNameSize:])
	return name, off, nil
}

func (h *Heap) writeRootSlot(slot int, name string, offset uint64) error {
	buf := make([]byte, rootEntrySize)
	copy(buf, encodeRootName(name))
	binary.BigEndian.PutUint64(buf[rootNameSize:], offset)
	if err := h.s.WriteAt(rootSlotOffset(slot), buf); err != nil {
		return fmt.Errorf("heap: write root slot %d: %w", slot, err)
	}
	return nil
}

func (h *Heap) findRootSlot(name string) (int, error) {
	for slot := 0; slot < MaxNamedRoots; slot++ {
		n, _, err := h.readRootSlot(slot)
		if err != nil {
			return -1, err
		}
		if n == name {
			return slot, nil
		}
	}
	return -1, nil
}

// SetRoot associates name with offset, a previously-allocated block (or zero
// to clear a root to the null sentinel). Setting an existing name overwrites
// its offset; otherwise the first empty slot is used.
func (h *Heap) SetRoot(name string, offset uint64) error {
	if len(name) == 0 || len(name) >= rootNameSize {
		return fmt.Errorf("%w: root name %q must be 1..%d bytes", ErrRootNameTooLong, name, rootNameSize-1)
	}
	slot, err := h.findRootSlot(name)
	if err != nil {
		return err
	}
	if slot >= 0 {
		return h.writeRootSlot(slot, name, offset)
	}
	empty, err := h.findRootSlot("")
	if err != nil {
		return err
	}
	if empty < 0 {
		return fmt.Errorf("%w: no free root slot for %q (max %d)", ErrTooManyRoots, name, MaxNamedRoots)
	}
	if err := h.writeRootSlot(empty, name, offset); err != nil {
		return err
	}
	p, err := h.readPrefixHeader()
	if err != nil {
		return err
	}
	p.rootCount++
	return h.writePrefixHeader(p)
}

// GetRoot returns the offset last associated with name, or zero if name has
// never been set.
func (h *Heap) GetRoot(name string) (uint64, error) {
	slot, err := h.findRootSlot(name)
	if err != nil {
		return 0, err
	}
	if slot < 0 {
		return 0, nil
	}
	_, off, err := h.readRootSlot(slot)
	return off, err
}

// Roots returns the names of every root currently set.
func (h *Heap) Roots() ([]string, error) {
	var names []string
	for slot := 0; slot < MaxNamedRoots; slot++ {
		name, _, err := h.readRootSlot(slot)
		if err != nil {
			return nil, err
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
