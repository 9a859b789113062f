// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stable

import (
	"context"
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/praos/block"
	"github.com/vechain/praos/praos"
)

func corruptPrevHash(t *testing.T, s *Store, blk *block.Block) {
	meta, err := loadMeta(s.blkStore, blk.Hash())
	require.NoError(t, err)
	meta.PrevHash = praos.Blake2b([]byte("garbage"))
	require.NoError(t, saveMeta(s.blkStore, blk.Hash(), meta))
}

func TestIntegrityRoundTrip(t *testing.T) {
	_, s := newTestStore(t)

	const n = 10
	var slots []uint64
	for i := uint64(1); i <= n; i++ {
		slots = append(slots, i*300)
	}
	blocks := buildChain(nil, slots...)
	require.NoError(t, s.TransitionToStable(blocks))

	ok, err := s.ValidateIntegrity()
	require.NoError(t, err)
	require.True(t, ok)

	report, err := s.RecoverFromCorruption()
	require.NoError(t, err)
	assert.False(t, report.Truncated)
	assert.Equal(t, s.Tip(), report.Tip)

	// break the link of the 6th block
	corruptPrevHash(t, s, blocks[5])
	ok, err = s.ValidateIntegrity()
	require.NoError(t, err)
	assert.False(t, ok)

	report, err = s.RecoverFromCorruption()
	require.NoError(t, err)
	require.True(t, report.Truncated, spew.Sdump(report))
	assert.Equal(t, 5, report.Removed)
	assert.ErrorIs(t, report.Cause, ErrBrokenChain)
	assert.Equal(t, Tip{Hash: blocks[4].Hash(), Slot: blocks[4].Header().Slot(), BlockCount: 5}, report.Tip)
	assert.Equal(t, report.Tip, s.Tip())

	ok, err = s.ValidateIntegrity()
	require.NoError(t, err)
	assert.True(t, ok)

	for i, blk := range blocks {
		_, err := s.GetBlock(blk.Hash())
		if i < 5 {
			assert.NoError(t, err)
		} else {
			assert.True(t, IsMissingBlock(err), "block #%d", i)
		}
	}

	// checksums follow the truncation
	invalid, err := s.ValidateAllChunks(context.Background(), 2, nil)
	require.NoError(t, err)
	assert.Empty(t, invalid)

	// appending continues from the recovered tip
	next := buildChain(blocks[4].Header(), 1600)
	require.NoError(t, s.AppendBlock(next[0]))
	ok, err = s.ValidateIntegrity()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecoverToEmpty(t *testing.T) {
	_, s := newTestStore(t)
	blocks := buildChain(nil, 1, 2, 3)
	require.NoError(t, s.TransitionToStable(blocks))

	// the first record is unreadable
	require.NoError(t, metaBucket.NewPutter(s.blkStore).Delete(blocks[0].Hash().Bytes()))

	report, err := s.RecoverFromCorruption()
	require.NoError(t, err)
	assert.True(t, report.Truncated)
	assert.Equal(t, 3, report.Removed)
	assert.True(t, s.Tip().IsEmpty())

	chain, err := s.GetStableChain()
	require.NoError(t, err)
	assert.Empty(t, chain)

	loaded, err := loadTip(s.propStore)
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())

	ok, err := s.ValidateIntegrity()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecoverTipRecord(t *testing.T) {
	_, s := newTestStore(t)
	blocks := buildChain(nil, 1, 2, 3)
	require.NoError(t, s.TransitionToStable(blocks))

	require.NoError(t, saveTip(s.propStore, Tip{Hash: blocks[0].Hash(), Slot: 1, BlockCount: 1}))
	ok, err := s.ValidateIntegrity()
	require.NoError(t, err)
	assert.False(t, ok)

	report, err := s.RecoverFromCorruption()
	require.NoError(t, err)
	assert.True(t, report.Truncated)
	assert.Equal(t, 0, report.Removed)
	assert.Equal(t, uint64(3), s.Tip().Slot)

	ok, err = s.ValidateIntegrity()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecoverMissingPayload(t *testing.T) {
	_, s := newTestStore(t)
	blocks := buildChain(nil, 1, 2, 3)
	require.NoError(t, s.TransitionToStable(blocks))

	require.NoError(t, payloadBucket.NewPutter(s.blkStore).Delete(blocks[2].Hash().Bytes()))
	ok, err := s.ValidateIntegrity()
	require.NoError(t, err)
	assert.False(t, ok)

	report, err := s.RecoverFromCorruption()
	require.NoError(t, err)
	assert.True(t, report.Truncated)
	assert.Equal(t, 1, report.Removed)
	assert.Equal(t, blocks[1].Point(), s.Tip().Point())

	_, err = s.GetBlock(blocks[2].Hash())
	assert.True(t, IsMissingBlock(err))
}

func TestRecoverTipAtLastSlot(t *testing.T) {
	_, s := newTestStore(t)
	blocks := buildChain(nil, 1, math.MaxUint64)
	require.NoError(t, s.TransitionToStable(blocks))

	require.NoError(t, saveTip(s.propStore, Tip{Hash: blocks[0].Hash(), Slot: 1, BlockCount: 1}))

	report, err := s.RecoverFromCorruption()
	require.NoError(t, err)
	assert.True(t, report.Truncated)
	assert.Equal(t, 0, report.Removed)
	assert.Equal(t, blocks[1].Point(), s.Tip().Point())

	chain, err := s.GetStableChain()
	require.NoError(t, err)
	assert.Len(t, chain, 2)
}
