// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"maps"

	"github.com/holiman/uint256"

	"github.com/vechain/praos/praos"
)

// MergedState is the fold-merge of a sequence of volatile states.
// Consuming an output produced earlier in the sequence removes it; consuming
// an output from outside the sequence is recorded as spent.
type MergedState struct {
	utxo         map[TxIn]TxOut
	spent        map[TxIn]struct{}
	pools        map[praos.KeyHash]struct{}
	retiring     map[praos.KeyHash]uint64
	stake        map[praos.KeyHash]struct{}
	deregistered map[praos.KeyHash]struct{}
	delegations  map[praos.KeyHash]praos.KeyHash
	snapshots    map[SnapshotKind]map[praos.KeyHash]uint64
	fees         uint256.Int
	count        int
}

// NewMergedState creates an empty merged state.
func NewMergedState() *MergedState {
	m := &MergedState{}
	m.Reset()
	return m
}

// Reset drops everything merged so far.
func (m *MergedState) Reset() {
	m.utxo = make(map[TxIn]TxOut)
	m.spent = make(map[TxIn]struct{})
	m.pools = make(map[praos.KeyHash]struct{})
	m.retiring = make(map[praos.KeyHash]uint64)
	m.stake = make(map[praos.KeyHash]struct{})
	m.deregistered = make(map[praos.KeyHash]struct{})
	m.delegations = make(map[praos.KeyHash]praos.KeyHash)
	m.snapshots = make(map[SnapshotKind]map[praos.KeyHash]uint64)
	m.fees.Clear()
	m.count = 0
}

// Merge folds the state into m.
func (m *MergedState) Merge(s *VolatileState) {
	for in, out := range s.utxo.Produced {
		m.utxo[in] = out.clone()
	}
	for _, in := range s.utxo.Consumed {
		if _, ok := m.utxo[in]; ok {
			delete(m.utxo, in)
		} else {
			m.spent[in] = struct{}{}
		}
	}

	if p := s.pools; p != nil {
		for _, pool := range p.Registered {
			m.pools[pool] = struct{}{}
			// re-registration cancels a pending retirement
			delete(m.retiring, pool)
		}
		for pool, epoch := range p.Retired {
			m.retiring[pool] = epoch
		}
	}

	if d := s.stake; d != nil {
		for _, cred := range d.Registered {
			m.stake[cred] = struct{}{}
			delete(m.deregistered, cred)
		}
		for cred, pool := range d.Delegations {
			m.delegations[cred] = pool
		}
		for _, cred := range d.Deregistered {
			delete(m.stake, cred)
			delete(m.delegations, cred)
			m.deregistered[cred] = struct{}{}
		}
		for _, snap := range d.Snapshots {
			m.snapshots[snap.Kind] = maps.Clone(snap.Stake)
		}
	}

	m.fees.Add(&m.fees, uint256.NewInt(s.fees))
	m.count++
}

// Len returns the number of merged states.
func (m *MergedState) Len() int { return m.count }

// IsEmpty returns whether nothing was merged since creation or the last reset.
func (m *MergedState) IsEmpty() bool { return m.count == 0 }

// UTxO looks up an output produced and not yet consumed inside the merged states.
func (m *MergedState) UTxO(in TxIn) (TxOut, bool) {
	out, ok := m.utxo[in]
	if !ok {
		return TxOut{}, false
	}
	return out.clone(), true
}

// UTxOCount returns the number of unspent outputs produced inside the merged states.
func (m *MergedState) UTxOCount() int { return len(m.utxo) }

// IsSpent returns whether an output from outside the merged states was consumed.
func (m *MergedState) IsSpent(in TxIn) bool {
	_, ok := m.spent[in]
	return ok
}

// IsPoolRegistered returns whether the pool was registered.
func (m *MergedState) IsPoolRegistered(pool praos.KeyHash) bool {
	_, ok := m.pools[pool]
	return ok
}

// PoolRetirement returns the epoch a pool retires in.
func (m *MergedState) PoolRetirement(pool praos.KeyHash) (uint64, bool) {
	epoch, ok := m.retiring[pool]
	return epoch, ok
}

// IsStakeRegistered returns whether the credential is registered.
func (m *MergedState) IsStakeRegistered(cred praos.KeyHash) bool {
	_, ok := m.stake[cred]
	return ok
}

// IsStakeDeregistered returns whether the credential was deregistered.
func (m *MergedState) IsStakeDeregistered(cred praos.KeyHash) bool {
	_, ok := m.deregistered[cred]
	return ok
}

// Delegation returns the pool the credential delegates to.
func (m *MergedState) Delegation(cred praos.KeyHash) (praos.KeyHash, bool) {
	pool, ok := m.delegations[cred]
	return pool, ok
}

// SnapshotStake returns the stake of a pool in the latest snapshot of the given kind.
func (m *MergedState) SnapshotStake(kind SnapshotKind, pool praos.KeyHash) (uint64, bool) {
	snap, ok := m.snapshots[kind]
	if !ok {
		return 0, false
	}
	stake, ok := snap[pool]
	return stake, ok
}

// Fees returns the accumulated fees.
func (m *MergedState) Fees() *uint256.Int {
	return new(uint256.Int).Set(&m.fees)
}
