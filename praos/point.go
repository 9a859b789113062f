// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package praos

import (
	"bytes"
	"fmt"
)

// Point identifies a position on a chain by slot and block hash.
// It's immutable.
type Point struct {
	Slot uint64
	Hash Hash32
}

// Origin is the point before the first block.
var Origin = Point{}

// NewPoint creates a point.
func NewPoint(slot uint64, hash Hash32) Point {
	return Point{slot, hash}
}

// IsOrigin returns whether p is the origin point.
func (p Point) IsOrigin() bool {
	return p == Origin
}

// Equal returns whether both slot and hash are equal.
func (p Point) Equal(other Point) bool {
	return p.Slot == other.Slot && p.Hash == other.Hash
}

// Compare orders points by slot, the hash disambiguates points in the same slot.
// It returns -1, 0 or 1.
func (p Point) Compare(other Point) int {
	switch {
	case p.Slot < other.Slot:
		return -1
	case p.Slot > other.Slot:
		return 1
	}
	return bytes.Compare(p.Hash[:], other.Hash[:])
}

func (p Point) String() string {
	if p.IsOrigin() {
		return "Point(origin)"
	}
	return fmt.Sprintf("Point(%d, %s)", p.Slot, p.Hash.AbbrevString())
}
