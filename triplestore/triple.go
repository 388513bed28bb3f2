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

package triplestore

// Triple is a single (subject, predicate, object) fact. All three fields are
// interned strings; equality and ordering are plain string comparisons.
type Triple struct {
	S, P, O string
}

// order names which column of a Triple a given index treats as primary,
// secondary and tertiary. SPO orders by subject first, POS by predicate
// first, OSP by object first — together the three cover every combination
// of one, two or three bound columns with a direct tree descent.
type order int

const (
	orderSPO order = iota
	orderPOS
	orderOSP
)

func (o order) rootSuffix() string {
	switch o {
	case orderSPO:
		return "SPO"
	case orderPOS:
		return "POS"
	case orderOSP:
		return "OSP"
	}
	return ""
}

// project maps a Triple's columns onto (primary, secondary, tertiary) for
// this index's ordering.
func project(o order, t Triple) (primary, secondary, tertiary string) {
	switch o {
	case orderSPO:
		return t.S, t.P, t.O
	case orderPOS:
		return t.P, t.O, t.S
	case orderOSP:
		return t.O, t.S, t.P
	}
	return "", "", ""
}

// unproject is project's inverse, rebuilding a Triple from one index's
// (primary, secondary, tertiary) triple.
func unproject(o order, primary, secondary, tertiary string) Triple {
	switch o {
	case orderSPO:
		return Triple{S: primary, P: secondary, O: tertiary}
	case orderPOS:
		return Triple{S: tertiary, P: primary, O: secondary}
	case orderOSP:
		return Triple{S: secondary, P: tertiary, O: primary}
	}
	return Triple{}
}
