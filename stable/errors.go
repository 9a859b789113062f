// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stable

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vechain/praos/praos"
)

var (
	// ErrNonMonotonicSlot is returned when a block does not come after the stable tip.
	ErrNonMonotonicSlot = errors.New("non-monotonic slot")
	// ErrBrokenChain reports a record whose prev hash does not match its predecessor.
	ErrBrokenChain = errors.New("broken chain")
	// ErrInvalidRange is returned when a stream lower bound is after its upper bound.
	ErrInvalidRange = errors.New("invalid range")
	// ErrNoVolatileStore is returned when promoting without a volatile block source.
	ErrNoVolatileStore = errors.New("no volatile block store")
)

// MissingBlockError reports that no stored block corresponds to the requested point.
// Slot is zero when the block was requested by hash only.
type MissingBlockError struct {
	Point praos.Point
}

func (e *MissingBlockError) Error() string {
	if e.Point.Slot == 0 {
		return fmt.Sprintf("missing block %v", e.Point.Hash)
	}
	return fmt.Sprintf("missing block %v", e.Point)
}

// IsMissingBlock returns whether the error is a MissingBlockError.
func IsMissingBlock(err error) bool {
	_, ok := errors.Cause(err).(*MissingBlockError)
	return ok
}

func missingBlock(hash praos.Hash32) error {
	return &MissingBlockError{praos.Point{Hash: hash}}
}
