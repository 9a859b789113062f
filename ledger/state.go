// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"fmt"

	"github.com/vechain/praos/praos"
)

// VolatileState is the delta produced by applying one block.
// It's immutable, getters return copies.
type VolatileState struct {
	utxo  UTxODelta
	pools *PoolDelta
	stake *StakeDelta
	fees  uint64
}

// NewVolatileState creates a volatile state. Pool and stake deltas are optional.
func NewVolatileState(utxo UTxODelta, pools *PoolDelta, stake *StakeDelta, fees uint64) *VolatileState {
	return &VolatileState{
		utxo:  utxo.clone(),
		pools: pools.clone(),
		stake: stake.clone(),
		fees:  fees,
	}
}

// UTxO returns the utxo delta.
func (s *VolatileState) UTxO() UTxODelta { return s.utxo.clone() }

// Pools returns the pool delta, nil if absent.
func (s *VolatileState) Pools() *PoolDelta { return s.pools.clone() }

// Stake returns the stake delta, nil if absent.
func (s *VolatileState) Stake() *StakeDelta { return s.stake.clone() }

// Fees returns fees accumulated by the block.
func (s *VolatileState) Fees() uint64 { return s.fees }

// AnchoredVolatileState is a volatile state attached to the block that produced it.
type AnchoredVolatileState struct {
	Point  praos.Point
	Issuer praos.KeyHash
	State  *VolatileState
}

// NewAnchored anchors the state at the given point.
func NewAnchored(point praos.Point, issuer praos.KeyHash, state *VolatileState) *AnchoredVolatileState {
	return &AnchoredVolatileState{
		Point:  point,
		Issuer: issuer,
		State:  state,
	}
}

func (a *AnchoredVolatileState) String() string {
	return fmt.Sprintf("Anchored(%v, issuer: %v)", a.Point, a.Issuer)
}
