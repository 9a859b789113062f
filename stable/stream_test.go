// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stable

import (
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/praos/block"
	"github.com/vechain/praos/praos"
)

func TestStreamBounds(t *testing.T) {
	_, s := newTestStore(t)
	blocks := buildChain(nil, 100, 200, 300)
	require.NoError(t, s.TransitionToStable(blocks))
	p100, p200, p300 := blocks[0].Point(), blocks[1].Point(), blocks[2].Point()

	reg := NewResourceRegistry()
	defer reg.Release()

	tests := []struct {
		name string
		from From
		to   To
		want []uint64
	}{
		{"inclusive", FromInclusive(p100), ToInclusive(p300), []uint64{100, 200, 300}},
		{"exclusive", FromExclusive(p100), ToInclusive(p300), []uint64{200, 300}},
		{"to middle", FromInclusive(p100), ToInclusive(p200), []uint64{100, 200}},
		{"single", FromInclusive(p200), ToInclusive(p200), []uint64{200}},
		{"exclusive single", FromExclusive(p200), ToInclusive(p200), nil},
		{"origin", FromInclusive(praos.Origin), ToInclusive(p300), []uint64{100, 200, 300}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := Stream(s, reg, ComponentSlot, tt.from, tt.to)
			require.NoError(t, err)
			got, err := it.Collect()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, len(tests), reg.Len())

	_, err := Stream(s, reg, ComponentSlot, FromInclusive(p300), ToInclusive(p100))
	assert.Equal(t, ErrInvalidRange, errors.Cause(err))

	unknown := praos.NewPoint(150, praos.Blake2b([]byte("unknown")))
	_, err = Stream(s, reg, ComponentSlot, FromInclusive(unknown), ToInclusive(p300))
	assert.True(t, IsMissingBlock(err))
	_, err = Stream(s, reg, ComponentSlot, FromInclusive(p100), ToInclusive(unknown))
	assert.True(t, IsMissingBlock(err))

	// right hash, wrong slot
	_, err = Stream(s, reg, ComponentSlot, FromInclusive(praos.NewPoint(101, p100.Hash)), ToInclusive(p300))
	assert.True(t, IsMissingBlock(err))
	_, err = Stream(s, reg, ComponentSlot, FromInclusive(p100), ToInclusive(praos.Origin))
	assert.True(t, IsMissingBlock(err))

	assert.Equal(t, len(tests), reg.Len())
	assert.NoError(t, reg.Release())
	assert.Equal(t, 0, reg.Len())
}

func TestStreamComponents(t *testing.T) {
	_, s := newTestStore(t)
	ebb := new(block.Builder).Slot(100).EpochBoundary(true).Body([]byte("ebb")).Build()
	blocks := append([]*block.Block{ebb}, buildChain(ebb.Header(), 200, 300)...)
	require.NoError(t, s.TransitionToStable(blocks))

	from, to := FromInclusive(blocks[0].Point()), ToInclusive(blocks[2].Point())

	it, err := Stream(s, nil, ComponentHash, from, to)
	require.NoError(t, err)
	got, err := it.Collect()
	require.NoError(t, err)
	assert.Equal(t, hashes(blocks), got)
	assert.Equal(t, blocks[2].Point(), it.Point())
	assert.NoError(t, it.Close())
	assert.NoError(t, it.Close())
	assert.False(t, it.Next())

	it2, err := Stream(s, nil, ComponentIsEBB, from, to)
	require.NoError(t, err)
	defer it2.Close()
	ebbs, err := it2.Collect()
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, ebbs)

	it3, err := Stream(s, nil, ComponentBlock, FromExclusive(blocks[0].Point()), to)
	require.NoError(t, err)
	defer it3.Close()
	require.True(t, it3.Next())
	assert.Equal(t, blocks[1].Hash(), it3.Value().Hash())
	assert.Equal(t, blocks[1].Point(), it3.Point())
}

func TestGetBlockComponent(t *testing.T) {
	_, s := newTestStore(t)
	blocks := buildChain(nil, 100, 200)
	require.NoError(t, s.TransitionToStable(blocks))
	blk := blocks[1]
	point := blk.Point()

	header, err := GetBlockComponent(s, ComponentHeader, point)
	require.NoError(t, err)
	assert.Equal(t, blk.Hash(), header.Hash())

	full, err := GetBlockComponent(s, ComponentBlock, point)
	require.NoError(t, err)
	assert.Equal(t, blk.Body(), full.Body())

	raw, err := GetBlockComponent(s, ComponentRaw, point)
	require.NoError(t, err)
	encoded, err := blk.Encode()
	require.NoError(t, err)
	assert.Equal(t, block.Raw(encoded), raw)

	size, err := GetBlockComponent(s, ComponentBlockSize, point)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(encoded)), size)

	headerData, err := rlp.EncodeToBytes(blk.Header())
	require.NoError(t, err)
	headerSize, err := GetBlockComponent(s, ComponentHeaderSize, point)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(headerData)), headerSize)

	prev, err := GetBlockComponent(s, ComponentPrevHash, point)
	require.NoError(t, err)
	assert.Equal(t, blocks[0].Hash(), prev)

	slot, err := GetBlockComponent(s, ComponentSlot, point)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), slot)

	got, err := GetBlockComponent(s, ComponentPoint, point)
	require.NoError(t, err)
	assert.Equal(t, point, got)

	isEBB, err := GetBlockComponent(s, ComponentIsEBB, point)
	require.NoError(t, err)
	assert.False(t, isEBB)

	_, err = GetBlockComponent(s, ComponentHash, praos.NewPoint(201, point.Hash))
	var missing *MissingBlockError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, praos.NewPoint(201, point.Hash), missing.Point)

	_, err = GetBlockComponent(s, ComponentHash, praos.NewPoint(200, praos.Blake2b([]byte("x"))))
	assert.True(t, IsMissingBlock(err))

	assert.Equal(t, "header-size", ComponentHeaderSize.Name())
}

func TestStreamExclusiveLastSlot(t *testing.T) {
	_, s := newTestStore(t)
	blocks := buildChain(nil, 100, math.MaxUint64)
	require.NoError(t, s.TransitionToStable(blocks))
	last := blocks[1].Point()

	it, err := Stream(s, nil, ComponentSlot, FromExclusive(last), ToInclusive(last))
	require.NoError(t, err)
	defer it.Close()
	got, err := it.Collect()
	require.NoError(t, err)
	assert.Empty(t, got)

	it, err = Stream(s, nil, ComponentSlot, FromExclusive(blocks[0].Point()), ToInclusive(last))
	require.NoError(t, err)
	defer it.Close()
	got, err = it.Collect()
	require.NoError(t, err)
	assert.Equal(t, []uint64{math.MaxUint64}, got)
}
