// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stable

import (
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/praos/kv"
	"github.com/vechain/praos/praos"
)

// RecoveryReport describes what RecoverFromCorruption did.
type RecoveryReport struct {
	// Truncated is false if the chain was intact.
	Truncated bool
	// Tip is the tip after recovery.
	Tip Tip
	// Removed is the number of removed blocks.
	Removed int
	// Cause is the corruption found, nil if intact.
	Cause error
}

// validPrefix walks the chain from the first block and returns the tip of the
// longest valid prefix, and the cause that stopped the walk if any.
func (s *Store) validPrefix() (prefix Tip, cause error, err error) {
	var prev *praos.Point
	err = s.iterateSlots(0, math.MaxUint64, func(slot uint64, hash praos.Hash32) (bool, error) {
		meta, err := loadMeta(s.blkStore, hash)
		if err != nil {
			if s.blkStore.IsNotFound(err) {
				cause = errors.WithMessagef(ErrBrokenChain, "slot %d: missing meta", slot)
				return false, nil
			}
			return false, err
		}
		if meta.Slot != slot {
			cause = errors.WithMessagef(ErrBrokenChain, "slot %d: indexed block has slot %d", slot, meta.Slot)
			return false, nil
		}
		if ok, err := hasPayload(s.blkStore, hash); err != nil {
			return false, err
		} else if !ok {
			cause = errors.WithMessagef(ErrBrokenChain, "slot %d: missing payload", slot)
			return false, nil
		}
		if prev != nil {
			if slot <= prev.Slot {
				cause = errors.WithMessagef(ErrNonMonotonicSlot, "slot %d after %d", slot, prev.Slot)
				return false, nil
			}
			if meta.PrevHash != prev.Hash {
				cause = errors.WithMessagef(ErrBrokenChain, "slot %d: prev hash %v, want %v", slot, meta.PrevHash, prev.Hash)
				return false, nil
			}
		}
		prev = &praos.Point{Slot: slot, Hash: hash}
		prefix = Tip{Hash: hash, Slot: slot, BlockCount: prefix.BlockCount + 1}
		return true, nil
	})
	if err != nil {
		return Tip{}, nil, err
	}
	if cause == nil {
		stored, err := loadTip(s.propStore)
		if err != nil {
			return Tip{}, nil, err
		}
		if stored != prefix {
			cause = errors.WithMessagef(ErrBrokenChain, "tip record (%d, %d blocks) mismatches chain (%d, %d blocks)",
				stored.Slot, stored.BlockCount, prefix.Slot, prefix.BlockCount)
		}
	}
	return prefix, cause, nil
}

// ValidateIntegrity walks the whole chain and reports whether slots strictly
// increase and every prev hash matches the hash of the prior block.
func (s *Store) ValidateIntegrity() (bool, error) {
	_, cause, err := s.validPrefix()
	if err != nil {
		return false, err
	}
	if cause != nil {
		logger.Warn("stable chain corrupted", "cause", cause)
		return false, nil
	}
	return true, nil
}

// RecoverFromCorruption keeps the longest valid prefix of the chain and removes
// the rest, in one write. It's a no-op if the chain is intact.
func (s *Store) RecoverFromCorruption() (*RecoveryReport, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	prefix, cause, err := s.validPrefix()
	if err != nil {
		return nil, err
	}
	if cause == nil {
		return &RecoveryReport{Tip: prefix}, nil
	}

	var (
		bulk   = s.root.Bulk()
		blkW   = kv.Bucket(blkStoreName).NewPutter(bulk)
		slotW  = kv.Bucket(slotStoreName).NewPutter(bulk)
		chunkW = kv.Bucket(chunkStoreName).NewPutter(bulk)
		start  uint64
		report = &RecoveryReport{Truncated: true, Tip: prefix, Cause: cause}
		hashes []praos.Hash32
	)
	if !prefix.IsEmpty() {
		start = prefix.Slot + 1
	}

	err = s.iterateSlots(start, math.MaxUint64, func(slot uint64, hash praos.Hash32) (bool, error) {
		if !prefix.IsEmpty() && slot <= prefix.Slot {
			// start wrapped past the last slot, nothing follows the tip
			return false, nil
		}
		if err := slotW.Delete(slotKey(slot)); err != nil {
			return false, err
		}
		if err := deleteBlock(blkW, hash); err != nil {
			return false, err
		}
		hashes = append(hashes, hash)
		report.Removed++
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	// drop checksums after the new tip, and rebuild the one of the tip chunk
	var staleChunks [][]byte
	it := s.chunkStore.Iterate(kv.Range{})
	for it.Next() {
		staleChunks = append(staleChunks, append([]byte(nil), it.Key()...))
	}
	it.Release()
	if err := it.Error(); err != nil {
		return nil, err
	}
	tipChunk := s.ChunkOf(prefix.Slot)
	for _, key := range staleChunks {
		if !prefix.IsEmpty() && string(key) <= string(chunkKey(tipChunk)) {
			continue
		}
		if err := chunkW.Delete(key); err != nil {
			return nil, err
		}
	}
	if !prefix.IsEmpty() {
		payloads, err := s.chunkPayloadsUpTo(tipChunk, prefix.Slot)
		if err != nil {
			return nil, err
		}
		if err := saveChunk(chunkW, tipChunk, &chunkRecord{
			Count:    uint64(len(payloads)),
			Checksum: checksum(payloads),
		}); err != nil {
			return nil, err
		}
	}

	if err := saveTip(kv.Bucket(propStoreName).NewPutter(bulk), prefix); err != nil {
		return nil, err
	}
	if err := bulk.Write(); err != nil {
		return nil, errors.Wrap(err, "write bulk")
	}

	for _, hash := range hashes {
		s.caches.meta.Remove(hash)
		s.caches.payload.Del(hash[:])
	}
	s.setTip(prefix)

	metricRecoveryCount().Add(1)
	logger.Warn("stable store truncated",
		"slot", prefix.Slot,
		"blocks", prefix.BlockCount,
		"removed", report.Removed,
		"cause", cause)
	return report, nil
}
