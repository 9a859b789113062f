// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stable implements the append-only store of blocks that fell behind
// the rollback horizon. Blocks are grouped into fixed slot spans called chunks,
// each carrying a checksum of its blocks for integrity checking.
package stable

import (
	"cmp"
	"encoding/binary"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/qianbin/directcache"

	"github.com/vechain/praos/block"
	"github.com/vechain/praos/cache"
	"github.com/vechain/praos/kv"
	"github.com/vechain/praos/log"
	"github.com/vechain/praos/muxdb"
	"github.com/vechain/praos/praos"
)

const (
	metaCacheSize    = 16384
	payloadCacheSize = 64 * 1024 * 1024
)

var logger = log.WithContext("pkg", "stable")

// VolatileBlocks is the source of blocks promoted into the stable store.
// It must live in the same db as the stable store.
type VolatileBlocks interface {
	GetRaw(hash praos.Hash32) (block.Raw, error)
	IsNotFound(err error) bool
	// Delete removes the block through w, a bulk of the db root store.
	Delete(w kv.Putter, hash praos.Hash32) error
	HashesUpTo(slot uint64) ([]praos.Hash32, error)
}

// Store is the stable block store.
//
// It's thread-safe. Writes are serialized, reads may run along with writes.
type Store struct {
	root       kv.Store
	blkStore   kv.Store
	slotStore  kv.Store
	propStore  kv.Store
	chunkStore kv.Store
	vol        VolatileBlocks
	chunkSize  uint64

	lock sync.Mutex
	tip  atomic.Value

	caches struct {
		meta    *cache.ARC
		payload *directcache.Cache
	}
}

// New creates the stable store over db. vol can be nil if blocks are never promoted.
func New(db *muxdb.MuxDB, vol VolatileBlocks) (*Store, error) {
	s := &Store{
		root:       db.NewStore(""),
		blkStore:   db.NewStore(blkStoreName),
		slotStore:  db.NewStore(slotStoreName),
		propStore:  db.NewStore(propStoreName),
		chunkStore: db.NewStore(chunkStoreName),
		vol:        vol,
		chunkSize:  db.ChunkSize(),
	}
	s.caches.meta = cache.NewARC(metaCacheSize)
	s.caches.payload = directcache.New(payloadCacheSize)

	tip, err := loadTip(s.propStore)
	if err != nil {
		return nil, errors.Wrap(err, "load tip")
	}
	s.tip.Store(tip)
	metricTipSlot().Set(int64(tip.Slot))
	return s, nil
}

// Tip returns the immutable tip.
func (s *Store) Tip() Tip {
	return s.tip.Load().(Tip)
}

// ChunkOf returns the chunk number of the slot.
func (s *Store) ChunkOf(slot uint64) uint64 {
	return slot / s.chunkSize
}

// ChunkBounds returns the first and the last slot of the chunk.
func (s *Store) ChunkBounds(chunk uint64) (first, last uint64) {
	first = chunk * s.chunkSize
	if last = first + s.chunkSize - 1; last < first {
		// the last chunk is cut short at the last slot
		last = math.MaxUint64
	}
	return first, last
}

// AppendBlock appends the block and advances the tip.
// It fails with ErrNonMonotonicSlot if the block does not come after the tip.
func (s *Store) AppendBlock(blk *block.Block) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.commit([]*block.Block{blk}, nil); err != nil {
		return err
	}
	metricAppendCount().AddWithLabel(1, map[string]string{"path": "append"})
	return nil
}

// TransitionToStable appends blocks in slot order, whatever order they're given in.
// All or none of the blocks are written.
func (s *Store) TransitionToStable(blocks []*block.Block) error {
	if len(blocks) == 0 {
		return nil
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.commit(blocks, nil); err != nil {
		return err
	}
	metricAppendCount().AddWithLabel(int64(len(blocks)), map[string]string{"path": "transition"})
	return nil
}

// GetBlocksReadyForImmutable returns hashes of volatile blocks with slot <= currentSlot - k.
func (s *Store) GetBlocksReadyForImmutable(currentSlot, k uint64) ([]praos.Hash32, error) {
	if s.vol == nil {
		return nil, ErrNoVolatileStore
	}
	if currentSlot < k {
		return nil, nil
	}
	return s.vol.HashesUpTo(currentSlot - k)
}

// MakeBlocksImmutable moves blocks from the volatile block store into the
// stable store. The insertion and the removal are committed in one write.
func (s *Store) MakeBlocksImmutable(hashes []praos.Hash32) error {
	if len(hashes) == 0 {
		return nil
	}
	if s.vol == nil {
		return ErrNoVolatileStore
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	blocks := make([]*block.Block, 0, len(hashes))
	for _, hash := range hashes {
		raw, err := s.vol.GetRaw(hash)
		if err != nil {
			if s.vol.IsNotFound(err) {
				return missingBlock(hash)
			}
			return errors.Wrap(err, "get volatile block")
		}
		blk, err := raw.Decode()
		if err != nil {
			return errors.Wrap(err, "decode volatile block")
		}
		blocks = append(blocks, blk)
	}

	if err := s.commit(blocks, func(w kv.Putter) error {
		for _, hash := range hashes {
			if err := s.vol.Delete(w, hash); err != nil {
				return errors.Wrap(err, "delete volatile block")
			}
		}
		return nil
	}); err != nil {
		return err
	}

	metricAppendCount().AddWithLabel(int64(len(blocks)), map[string]string{"path": "promote"})
	logger.Debug("blocks made immutable", "count", len(blocks), "tip", s.Tip().Point())
	return nil
}

// commit writes blocks along with updated chunk checksums and tip, and
// the optional extra writes, in one bulk. It must be called with the lock held.
func (s *Store) commit(blocks []*block.Block, extra func(w kv.Putter) error) error {
	blocks = slices.Clone(blocks)
	slices.SortStableFunc(blocks, func(a, b *block.Block) int {
		return cmp.Compare(a.Header().Slot(), b.Header().Slot())
	})

	var (
		bulk     = s.root.Bulk()
		blkW     = kv.Bucket(blkStoreName).NewPutter(bulk)
		slotW    = kv.Bucket(slotStoreName).NewPutter(bulk)
		tip      = s.Tip()
		chunks   []uint64
		payloads = make(map[uint64][][]byte)
	)

	for _, blk := range blocks {
		header := blk.Header()
		if !tip.IsEmpty() && header.Slot() <= tip.Slot {
			return errors.WithMessagef(ErrNonMonotonicSlot, "block slot %d, tip slot %d", header.Slot(), tip.Slot)
		}
		data, err := blk.Encode()
		if err != nil {
			return errors.Wrap(err, "encode block")
		}
		hash := blk.Hash()
		if err := saveMeta(blkW, hash, &metaRecord{
			Slot:     header.Slot(),
			PrevHash: header.PrevHash(),
			Size:     uint64(len(data)),
		}); err != nil {
			return err
		}
		if err := savePayload(blkW, hash, data); err != nil {
			return err
		}
		if err := slotW.Put(slotKey(header.Slot()), hash[:]); err != nil {
			return err
		}

		chunk := s.ChunkOf(header.Slot())
		if _, ok := payloads[chunk]; !ok {
			chunks = append(chunks, chunk)
		}
		payloads[chunk] = append(payloads[chunk], data)
		tip = Tip{Hash: hash, Slot: header.Slot(), BlockCount: tip.BlockCount + 1}
	}

	// new blocks come after all stored ones, so they're appended to the chunk content
	chunkW := kv.Bucket(chunkStoreName).NewPutter(bulk)
	for _, chunk := range chunks {
		stored, err := s.chunkPayloads(chunk)
		if err != nil {
			return err
		}
		all := append(stored, payloads[chunk]...)
		if err := saveChunk(chunkW, chunk, &chunkRecord{
			Count:    uint64(len(all)),
			Checksum: checksum(all),
		}); err != nil {
			return err
		}
	}

	if err := saveTip(kv.Bucket(propStoreName).NewPutter(bulk), tip); err != nil {
		return err
	}
	if extra != nil {
		if err := extra(bulk); err != nil {
			return err
		}
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "write bulk")
	}
	s.setTip(tip)
	return nil
}

func (s *Store) setTip(tip Tip) {
	s.tip.Store(tip)
	metricTipSlot().Set(int64(tip.Slot))
}

// getMeta returns the block meta through the cache.
func (s *Store) getMeta(hash praos.Hash32) (*metaRecord, error) {
	meta, _, err := s.caches.meta.GetOrLoad(hash, func() (any, error) {
		return loadMeta(s.blkStore, hash)
	})
	if err != nil {
		if s.blkStore.IsNotFound(err) {
			return nil, missingBlock(hash)
		}
		return nil, err
	}
	return meta.(*metaRecord), nil
}

// getPayload returns the encoded block through the cache.
func (s *Store) getPayload(hash praos.Hash32) ([]byte, error) {
	var payload []byte
	if s.caches.payload.AdvGet(hash[:], func(val []byte) {
		payload = slices.Clone(val)
	}, false) {
		metricCacheAccess().AddWithLabel(1, map[string]string{"result": "hit"})
		return payload, nil
	}
	metricCacheAccess().AddWithLabel(1, map[string]string{"result": "miss"})

	payload, err := loadPayload(s.blkStore, hash)
	if err != nil {
		if s.blkStore.IsNotFound(err) {
			return nil, missingBlock(hash)
		}
		return nil, err
	}
	_ = s.caches.payload.Set(hash[:], payload)
	return payload, nil
}

// CacheStats returns hit and miss counts of the block meta cache.
func (s *Store) CacheStats() (hit, miss int64) {
	hit, miss = s.caches.meta.Stats().Counts()
	return
}

// GetBlock returns the block by hash.
func (s *Store) GetBlock(hash praos.Hash32) (*block.Block, error) {
	payload, err := s.getPayload(hash)
	if err != nil {
		return nil, err
	}
	return block.Decode(payload)
}

// GetHashBySlot returns hash of the block at the slot.
func (s *Store) GetHashBySlot(slot uint64) (praos.Hash32, error) {
	data, err := s.slotStore.Get(slotKey(slot))
	if err != nil {
		if s.slotStore.IsNotFound(err) {
			return praos.Hash32{}, &MissingBlockError{praos.NewPoint(slot, praos.Hash32{})}
		}
		return praos.Hash32{}, err
	}
	return praos.BytesToHash32(data), nil
}

// iterateSlots calls fn for each stored block with slot in [start, end], in slot order,
// until fn returns false.
func (s *Store) iterateSlots(start, end uint64, fn func(slot uint64, hash praos.Hash32) (bool, error)) error {
	it := s.slotStore.Iterate(slotRange(start, end))
	defer it.Release()

	for it.Next() {
		more, err := fn(binary.BigEndian.Uint64(it.Key()), praos.BytesToHash32(it.Value()))
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return it.Error()
}

// GetBlocksInRange returns blocks with slot in [startSlot, endSlot].
func (s *Store) GetBlocksInRange(startSlot, endSlot uint64) ([]*block.Block, error) {
	if startSlot > endSlot {
		return nil, nil
	}
	var blocks []*block.Block
	err := s.iterateSlots(startSlot, endSlot, func(_ uint64, hash praos.Hash32) (bool, error) {
		blk, err := s.GetBlock(hash)
		if err != nil {
			return false, err
		}
		blocks = append(blocks, blk)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

// GetStableChain returns all stable blocks in slot order.
func (s *Store) GetStableChain() ([]*block.Block, error) {
	return s.GetBlocksInRange(0, math.MaxUint64)
}

// SlotHistory returns slots of all stable blocks in ascending order.
func (s *Store) SlotHistory() ([]uint64, error) {
	slots := make([]uint64, 0, s.Tip().BlockCount)
	err := s.iterateSlots(0, math.MaxUint64, func(slot uint64, _ praos.Hash32) (bool, error) {
		slots = append(slots, slot)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}
