// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stable

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/praos/muxdb"
	"github.com/vechain/praos/praos"
)

func TestChunks(t *testing.T) {
	_, s := newTestStore(t)
	// chunk 1 stays empty
	blocks := buildChain(nil, 10, 500, 2500, 2999, 3000)
	require.NoError(t, s.TransitionToStable(blocks))

	assert.Equal(t, uint64(2), s.ChunkOf(2999))
	first, last := s.ChunkBounds(2)
	assert.Equal(t, uint64(2000), first)
	assert.Equal(t, uint64(2999), last)
	_, last = s.ChunkBounds(s.ChunkOf(math.MaxUint64))
	assert.Equal(t, uint64(math.MaxUint64), last)

	inChunk, err := s.GetBlocksFromChunk(0)
	require.NoError(t, err)
	assert.Equal(t, hashes(blocks[:2]), hashes(inChunk))
	inChunk, err = s.GetBlocksFromChunk(1)
	require.NoError(t, err)
	assert.Empty(t, inChunk)

	for chunk := uint64(0); chunk <= 3; chunk++ {
		valid, err := s.ValidateChunk(chunk)
		require.NoError(t, err)
		assert.True(t, valid, "chunk %d", chunk)
	}

	rec, err := loadChunk(s.chunkStore, 2)
	require.NoError(t, err)
	p2, err := loadPayload(s.blkStore, blocks[2].Hash())
	require.NoError(t, err)
	p3, err := loadPayload(s.blkStore, blocks[3].Hash())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rec.Count)
	assert.Equal(t, checksum([][]byte{p2, p3}), rec.Checksum)

	var validated atomic.Int32
	invalid, err := s.ValidateAllChunks(context.Background(), 3, func(uint64) { validated.Add(1) })
	require.NoError(t, err)
	assert.Empty(t, invalid)
	assert.Equal(t, int32(4), validated.Load())
}

func TestChunkCorruption(t *testing.T) {
	_, s := newTestStore(t)
	blocks := buildChain(nil, 10, 500, 1500, 2500, 2999)
	require.NoError(t, s.TransitionToStable(blocks))

	// swap in the payload of another block
	other, err := loadPayload(s.blkStore, blocks[0].Hash())
	require.NoError(t, err)
	require.NoError(t, savePayload(s.blkStore, blocks[2].Hash(), other))

	// a forged checksum
	require.NoError(t, saveChunk(s.chunkStore, 2, &chunkRecord{Count: 2, Checksum: praos.Blake2b([]byte("forged"))}))

	valid, err := s.ValidateChunk(1)
	require.NoError(t, err)
	assert.False(t, valid)

	invalid, err := s.ValidateAllChunks(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, invalid)

	require.NoError(t, s.ReconstructChunk(2))
	invalid, err = s.ValidateAllChunks(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, invalid)

	// a checksum for a chunk without blocks
	require.NoError(t, saveChunk(s.chunkStore, 3, &chunkRecord{Count: 1}))
	valid, err = s.ValidateChunk(3)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestValidateAllChunksCanceled(t *testing.T) {
	_, s := newTestStore(t)
	require.NoError(t, s.TransitionToStable(buildChain(nil, 10, 5000)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ValidateAllChunks(ctx, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)

	db := muxdb.NewMem()
	defer db.Close()
	empty, err := New(db, nil)
	require.NoError(t, err)
	chunks, err := empty.ValidateAllChunks(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Nil(t, chunks)
}
