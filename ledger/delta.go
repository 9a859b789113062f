// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger defines the state deltas produced by applying blocks, and
// how deltas of consecutive blocks are merged. It does not apply blocks.
package ledger

import (
	"fmt"
	"maps"

	"github.com/vechain/praos/praos"
)

// TxIn references an output of a transaction.
type TxIn struct {
	TxHash praos.Hash32
	Index  uint32
}

func (in TxIn) String() string {
	return fmt.Sprintf("%v#%d", in.TxHash.AbbrevString(), in.Index)
}

// TxOut is a resolved transaction output.
type TxOut struct {
	Address []byte
	Value   uint64
	Assets  map[string]uint64
}

func (out TxOut) clone() TxOut {
	return TxOut{
		Address: append([]byte(nil), out.Address...),
		Value:   out.Value,
		Assets:  maps.Clone(out.Assets),
	}
}

// UTxODelta is the set of outputs produced and inputs consumed by a block.
type UTxODelta struct {
	Produced map[TxIn]TxOut
	Consumed []TxIn
}

func (d UTxODelta) clone() UTxODelta {
	c := UTxODelta{
		Produced: make(map[TxIn]TxOut, len(d.Produced)),
		Consumed: append([]TxIn(nil), d.Consumed...),
	}
	for in, out := range d.Produced {
		c.Produced[in] = out.clone()
	}
	return c
}

// PoolDelta carries pool registrations and retirements.
type PoolDelta struct {
	Registered []praos.KeyHash
	// Retired maps a pool to the epoch it retires in.
	Retired map[praos.KeyHash]uint64
}

func (d *PoolDelta) clone() *PoolDelta {
	if d == nil {
		return nil
	}
	return &PoolDelta{
		Registered: append([]praos.KeyHash(nil), d.Registered...),
		Retired:    maps.Clone(d.Retired),
	}
}

// SnapshotKind is the kind of a stake distribution snapshot.
type SnapshotKind uint8

const (
	SnapshotMark SnapshotKind = iota + 1
	SnapshotSet
	SnapshotGo
)

func (k SnapshotKind) String() string {
	switch k {
	case SnapshotMark:
		return "mark"
	case SnapshotSet:
		return "set"
	case SnapshotGo:
		return "go"
	}
	return fmt.Sprintf("SnapshotKind(%d)", uint8(k))
}

// StakeSnapshot is a stake distribution taken at an epoch boundary.
type StakeSnapshot struct {
	Kind  SnapshotKind
	Stake map[praos.KeyHash]uint64
}

// StakeDelta carries stake credential changes.
type StakeDelta struct {
	Registered   []praos.KeyHash
	Deregistered []praos.KeyHash
	// Delegations maps a stake credential to the pool it delegates to.
	Delegations map[praos.KeyHash]praos.KeyHash
	// Snapshots are only present for epoch boundary blocks.
	Snapshots []StakeSnapshot
}

func (d *StakeDelta) clone() *StakeDelta {
	if d == nil {
		return nil
	}
	c := &StakeDelta{
		Registered:   append([]praos.KeyHash(nil), d.Registered...),
		Deregistered: append([]praos.KeyHash(nil), d.Deregistered...),
		Delegations:  maps.Clone(d.Delegations),
	}
	for _, s := range d.Snapshots {
		c.Snapshots = append(c.Snapshots, StakeSnapshot{Kind: s.Kind, Stake: maps.Clone(s.Stake)})
	}
	return c
}
