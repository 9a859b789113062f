// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/praos/praos"
)

func txIn(tx string, i uint32) TxIn {
	return TxIn{TxHash: praos.Blake2b([]byte(tx)), Index: i}
}

func TestMergeUTxO(t *testing.T) {
	m := NewMergedState()
	assert.True(t, m.IsEmpty())

	m.Merge(NewVolatileState(UTxODelta{
		Produced: map[TxIn]TxOut{
			txIn("a", 0): {Address: []byte("alice"), Value: 10},
			txIn("a", 1): {Address: []byte("bob"), Value: 20},
		},
		Consumed: []TxIn{txIn("genesis", 0)},
	}, nil, nil, 3))

	m.Merge(NewVolatileState(UTxODelta{
		Produced: map[TxIn]TxOut{txIn("b", 0): {Address: []byte("carol"), Value: 19}},
		Consumed: []TxIn{txIn("a", 1)},
	}, nil, nil, 1))

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 2, m.UTxOCount())

	out, ok := m.UTxO(txIn("a", 0))
	assert.True(t, ok)
	assert.Equal(t, uint64(10), out.Value)

	_, ok = m.UTxO(txIn("a", 1))
	assert.False(t, ok, "consumed inside the window")
	assert.False(t, m.IsSpent(txIn("a", 1)))
	assert.True(t, m.IsSpent(txIn("genesis", 0)))
	assert.Equal(t, uint256.NewInt(4), m.Fees())

	m.Reset()
	assert.True(t, m.IsEmpty())
	assert.Equal(t, 0, m.UTxOCount())
	assert.True(t, m.Fees().IsZero())
}

func TestMergeFeesOverflowSafe(t *testing.T) {
	m := NewMergedState()
	m.Merge(NewVolatileState(UTxODelta{}, nil, nil, math.MaxUint64))
	m.Merge(NewVolatileState(UTxODelta{}, nil, nil, math.MaxUint64))

	want := new(uint256.Int).Mul(uint256.NewInt(math.MaxUint64), uint256.NewInt(2))
	assert.Equal(t, want, m.Fees())
}

func TestMergePoolsAndStake(t *testing.T) {
	pool := praos.NewKeyHash([]byte("pool"))
	cred := praos.NewKeyHash([]byte("cred"))

	m := NewMergedState()
	m.Merge(NewVolatileState(UTxODelta{},
		&PoolDelta{Retired: map[praos.KeyHash]uint64{pool: 12}},
		&StakeDelta{
			Registered:  []praos.KeyHash{cred},
			Delegations: map[praos.KeyHash]praos.KeyHash{cred: pool},
			Snapshots:   []StakeSnapshot{{Kind: SnapshotMark, Stake: map[praos.KeyHash]uint64{pool: 500}}},
		}, 0))

	epoch, ok := m.PoolRetirement(pool)
	assert.True(t, ok)
	assert.Equal(t, uint64(12), epoch)
	delegated, ok := m.Delegation(cred)
	assert.True(t, ok)
	assert.Equal(t, pool, delegated)
	stake, ok := m.SnapshotStake(SnapshotMark, pool)
	assert.True(t, ok)
	assert.Equal(t, uint64(500), stake)
	_, ok = m.SnapshotStake(SnapshotGo, pool)
	assert.False(t, ok)

	m.Merge(NewVolatileState(UTxODelta{},
		&PoolDelta{Registered: []praos.KeyHash{pool}},
		&StakeDelta{Deregistered: []praos.KeyHash{cred}}, 0))

	assert.True(t, m.IsPoolRegistered(pool))
	_, ok = m.PoolRetirement(pool)
	assert.False(t, ok)
	assert.False(t, m.IsStakeRegistered(cred))
	assert.True(t, m.IsStakeDeregistered(cred))
	_, ok = m.Delegation(cred)
	assert.False(t, ok)
}

func TestVolatileStateImmutable(t *testing.T) {
	produced := map[TxIn]TxOut{txIn("a", 0): {Value: 1, Assets: map[string]uint64{"tok": 1}}}
	s := NewVolatileState(UTxODelta{Produced: produced}, nil, nil, 0)

	produced[txIn("a", 1)] = TxOut{Value: 2}
	got := s.UTxO()
	assert.Len(t, got.Produced, 1)

	got.Produced[txIn("a", 0)].Assets["tok"] = 100
	assert.Equal(t, uint64(1), s.UTxO().Produced[txIn("a", 0)].Assets["tok"])
	assert.Nil(t, s.Pools())
	assert.Nil(t, s.Stake())
	assert.Equal(t, "mark", SnapshotMark.String())
}
