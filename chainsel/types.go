// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chainsel

import (
	"fmt"

	"github.com/vechain/praos/praos"
)

// Tip is the tip of the locally adopted chain.
type Tip struct {
	Point       praos.Point
	BlockNumber uint64
}

// Candidate is a chain announced by a peer.
type Candidate struct {
	Tip         praos.Point
	BlockNumber uint64
	// LeaderStake is the stake of the pool which minted the tip, nil if unknown.
	LeaderStake *uint64
}

func (c Candidate) String() string {
	stake := "n/a"
	if c.LeaderStake != nil {
		stake = fmt.Sprint(*c.LeaderStake)
	}
	return fmt.Sprintf("Candidate(%v, number: %d, stake: %s)", c.Tip, c.BlockNumber, stake)
}

// Preference tells which chain is preferred.
type Preference uint8

const (
	PreferCurrent Preference = iota
	PreferCandidate
)

func (p Preference) String() string {
	if p == PreferCandidate {
		return "candidate"
	}
	return "current"
}

// Intersection locates the common block of the local chain and a candidate.
type Intersection struct {
	// Block is the index of the intersection block in the local history.
	Block uint64
	// RollbackDistance is the number of local blocks after the intersection.
	RollbackDistance uint64
}

// Comparison is the result of comparing a candidate with the local chain.
type Comparison struct {
	Preferred Preference
	Intersection
}

// Ranked is a candidate along with its comparison result.
type Ranked struct {
	Candidate  Candidate
	Comparison Comparison
}

// History provides the locally adopted chain.
type History interface {
	// SlotHistory returns slots of all adopted blocks in ascending order.
	SlotHistory() ([]uint64, error)
	// Tip returns the tip of the adopted chain.
	Tip() Tip
}
