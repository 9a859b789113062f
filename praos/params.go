// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package praos

// constants of consensus.
const (
	// DefaultSecurityParam is k, the max number of blocks a rollback may undo.
	DefaultSecurityParam uint64 = 2160

	// ChunkSize is the number of consecutive slots grouped into one stable chunk.
	ChunkSize uint64 = 1000
)

// ChunkOf returns the chunk number the slot belongs to.
func ChunkOf(slot uint64) uint64 {
	return slot / ChunkSize
}

// ChunkBounds returns the first and the last slot of the chunk.
func ChunkBounds(chunk uint64) (first, last uint64) {
	first = chunk * ChunkSize
	return first, first + ChunkSize - 1
}
