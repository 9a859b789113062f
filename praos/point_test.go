// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package praos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointCompare(t *testing.T) {
	a := NewPoint(10, Hash32{1})
	b := NewPoint(10, Hash32{2})
	c := NewPoint(11, Hash32{0})

	tests := []struct {
		x, y Point
		want int
	}{
		{a, a, 0},
		{a, b, -1},
		{b, a, 1},
		{b, c, -1},
		{c, a, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.x.Compare(tt.y), "%v vs %v", tt.x, tt.y)
	}

	assert.True(t, a.Equal(NewPoint(10, Hash32{1})))
	assert.False(t, a.Equal(b), "same slot on a sibling fork must not match")
}

func TestOrigin(t *testing.T) {
	assert.True(t, Origin.IsOrigin())
	assert.False(t, NewPoint(1, Hash32{}).IsOrigin())
	assert.Equal(t, "Point(origin)", Origin.String())
}

func TestChunkOf(t *testing.T) {
	assert.Equal(t, uint64(0), ChunkOf(0))
	assert.Equal(t, uint64(0), ChunkOf(999))
	assert.Equal(t, uint64(1), ChunkOf(1000))

	first, last := ChunkBounds(2)
	assert.Equal(t, uint64(2000), first)
	assert.Equal(t, uint64(2999), last)
}
