// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stable

import (
	"context"
	"io"
	"math"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/praos/block"
	"github.com/vechain/praos/kv"
	"github.com/vechain/praos/praos"
)

// checksum is the blake2b hash over the concatenated block payloads of a chunk.
func checksum(payloads [][]byte) praos.Hash32 {
	return praos.Blake2bFn(func(w io.Writer) {
		for _, p := range payloads {
			w.Write(p)
		}
	})
}

// chunkPayloads loads payloads of blocks stored in the chunk, in slot order.
func (s *Store) chunkPayloads(chunk uint64) ([][]byte, error) {
	return s.chunkPayloadsUpTo(chunk, math.MaxUint64)
}

// chunkPayloadsUpTo loads payloads of blocks stored in the chunk with slot <= maxSlot.
func (s *Store) chunkPayloadsUpTo(chunk, maxSlot uint64) ([][]byte, error) {
	first, last := s.ChunkBounds(chunk)
	last = min(last, maxSlot)

	var payloads [][]byte
	err := s.iterateSlots(first, last, func(_ uint64, hash praos.Hash32) (bool, error) {
		payload, err := loadPayload(s.blkStore, hash)
		if err != nil {
			return false, errors.Wrapf(err, "load payload %v", hash)
		}
		payloads = append(payloads, payload)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return payloads, nil
}

// GetBlocksFromChunk returns blocks of the chunk in slot order.
func (s *Store) GetBlocksFromChunk(chunk uint64) ([]*block.Block, error) {
	first, last := s.ChunkBounds(chunk)
	return s.GetBlocksInRange(first, last)
}

// ValidateChunk checks blocks of the chunk against the stored checksum.
// Each block must decode to a header matching its hash, slot and prev hash,
// and consecutive blocks inside the chunk must be linked. A chunk without
// blocks is valid only if no checksum was stored for it.
func (s *Store) ValidateChunk(chunk uint64) (bool, error) {
	cause, err := s.checkChunk(chunk)
	if err != nil {
		return false, err
	}
	if cause != nil {
		logger.Debug("invalid chunk", "chunk", chunk, "cause", cause)
		return false, nil
	}
	return true, nil
}

// checkChunk returns a non-nil cause if the chunk is invalid.
func (s *Store) checkChunk(chunk uint64) (cause error, err error) {
	rec, err := loadChunk(s.chunkStore, chunk)
	if err != nil {
		return nil, err
	}

	var (
		first, last = s.ChunkBounds(chunk)
		hasher      = praos.NewBlake2b()
		count       uint64
		prevHash    *praos.Hash32
	)
	err = s.iterateSlots(first, last, func(slot uint64, hash praos.Hash32) (bool, error) {
		meta, err := loadMeta(s.blkStore, hash)
		if err != nil {
			if s.blkStore.IsNotFound(err) {
				cause = errors.Errorf("slot %d: missing meta", slot)
				return false, nil
			}
			return false, err
		}
		payload, err := loadPayload(s.blkStore, hash)
		if err != nil {
			if s.blkStore.IsNotFound(err) {
				cause = errors.Errorf("slot %d: missing payload", slot)
				return false, nil
			}
			// snappy errors fall here too
			cause = errors.Wrapf(err, "slot %d: load payload", slot)
			return false, nil
		}
		header, err := block.Raw(payload).DecodeHeader()
		if err != nil {
			cause = errors.Wrapf(err, "slot %d: decode header", slot)
			return false, nil
		}
		switch {
		case header.Hash() != hash:
			cause = errors.Errorf("slot %d: hash mismatch", slot)
		case header.Slot() != slot || meta.Slot != slot:
			cause = errors.Errorf("slot %d: slot mismatch", slot)
		case header.PrevHash() != meta.PrevHash:
			cause = errors.Errorf("slot %d: prev hash mismatch", slot)
		case prevHash != nil && meta.PrevHash != *prevHash:
			cause = errors.WithMessagef(ErrBrokenChain, "slot %d", slot)
		}
		if cause != nil {
			return false, nil
		}

		hasher.Write(payload)
		count++
		prevHash = &hash
		return true, nil
	})
	if err != nil || cause != nil {
		return cause, err
	}

	if rec.Count != count {
		return errors.Errorf("block count mismatch: stored %d, got %d", rec.Count, count), nil
	}
	if count > 0 {
		var sum praos.Hash32
		hasher.Sum(sum[:0])
		if sum != rec.Checksum {
			return errors.New("checksum mismatch"), nil
		}
	}
	return nil, nil
}

// ReconstructChunk recomputes the checksum of the chunk from the stored blocks.
func (s *Store) ReconstructChunk(chunk uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	bulk := s.chunkStore.Bulk()
	if err := s.reconstructChunk(bulk, chunk); err != nil {
		return err
	}
	if err := bulk.Write(); err != nil {
		return err
	}
	logger.Info("chunk reconstructed", "chunk", chunk)
	return nil
}

// reconstructChunk writes the recomputed checksum through w, a putter of the chunk store.
func (s *Store) reconstructChunk(w kv.Putter, chunk uint64) error {
	payloads, err := s.chunkPayloads(chunk)
	if err != nil {
		return err
	}
	return saveChunk(w, chunk, &chunkRecord{
		Count:    uint64(len(payloads)),
		Checksum: checksum(payloads),
	})
}

// ValidateAllChunks validates chunks up to the one holding the tip, with at most
// workers chunks in parallel. It returns numbers of invalid chunks in ascending order.
// progress, if not nil, is called once per validated chunk.
func (s *Store) ValidateAllChunks(ctx context.Context, workers int, progress func(chunk uint64)) ([]uint64, error) {
	tip := s.Tip()
	if tip.IsEmpty() {
		return nil, nil
	}

	var (
		lastChunk = s.ChunkOf(tip.Slot)
		lock      sync.Mutex
		invalid   []uint64
	)
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for chunk := uint64(0); chunk <= lastChunk; chunk++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			valid, err := s.ValidateChunk(chunk)
			if err != nil {
				return errors.Wrapf(err, "validate chunk %d", chunk)
			}
			if !valid {
				lock.Lock()
				invalid = append(invalid, chunk)
				lock.Unlock()
			}
			if progress != nil {
				progress(chunk)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slices.Sort(invalid)
	return invalid, nil
}
