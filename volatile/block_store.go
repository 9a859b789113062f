// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package volatile

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/praos/block"
	"github.com/vechain/praos/kv"
	"github.com/vechain/praos/muxdb"
	"github.com/vechain/praos/praos"
)

const (
	// StoreName is the name of the muxdb store holding volatile blocks.
	StoreName = "volatile.blk"

	blockFlag = byte(0) // flag byte of the key for saving block blob
	slotFlag  = byte(1) // flag byte of the key for the slot index
)

var (
	blockBucket = kv.Bucket(string(blockFlag))
	slotBucket  = kv.Bucket(string(slotFlag))
)

// slot index key: ( slot | hash )
type slotKey [8 + 32]byte

func makeSlotKey(slot uint64, hash praos.Hash32) (k slotKey) {
	binary.BigEndian.PutUint64(k[:], slot)
	copy(k[8:], hash[:])
	return
}

// BlockStore stores blocks that are not yet final, keyed by hash and indexed by slot.
//
// It's thread-safe.
type BlockStore struct {
	root  kv.Store
	store kv.Store
}

// NewBlockStore creates the block store on the named store of db.
func NewBlockStore(db *muxdb.MuxDB) *BlockStore {
	return &BlockStore{
		root:  db.NewStore(""),
		store: db.NewStore(StoreName),
	}
}

// Put saves the block.
func (s *BlockStore) Put(blk *block.Block) error {
	bulk := s.root.Bulk()
	if err := s.put(bulk, blk); err != nil {
		return err
	}
	return bulk.Write()
}

func (s *BlockStore) put(w kv.Putter, blk *block.Block) error {
	w = kv.Bucket(StoreName).NewPutter(w)
	data, err := blk.Encode()
	if err != nil {
		return err
	}
	hash := blk.Hash()
	if err := blockBucket.NewPutter(w).Put(hash[:], data); err != nil {
		return err
	}
	key := makeSlotKey(blk.Header().Slot(), hash)
	return slotBucket.NewPutter(w).Put(key[:], nil)
}

// GetRaw returns the encoded block.
func (s *BlockStore) GetRaw(hash praos.Hash32) (block.Raw, error) {
	data, err := blockBucket.NewGetter(s.store).Get(hash[:])
	if err != nil {
		return nil, err
	}
	return block.Raw(data), nil
}

// Get returns the block.
func (s *BlockStore) Get(hash praos.Hash32) (*block.Block, error) {
	raw, err := s.GetRaw(hash)
	if err != nil {
		return nil, err
	}
	return raw.Decode()
}

// Has returns whether the block exists.
func (s *BlockStore) Has(hash praos.Hash32) (bool, error) {
	return blockBucket.NewGetter(s.store).Has(hash[:])
}

// IsNotFound returns if the error indicates block not found.
func (s *BlockStore) IsNotFound(err error) bool {
	return s.store.IsNotFound(err)
}

// Delete removes the block through w, a bulk of the db root store, so that
// the removal can be committed along with writes to other stores.
// Deleting an absent block is a no-op.
func (s *BlockStore) Delete(w kv.Putter, hash praos.Hash32) error {
	raw, err := s.GetRaw(hash)
	if err != nil {
		if s.IsNotFound(err) {
			return nil
		}
		return err
	}
	header, err := raw.DecodeHeader()
	if err != nil {
		return errors.Wrap(err, "decode header")
	}
	w = kv.Bucket(StoreName).NewPutter(w)
	if err := blockBucket.NewPutter(w).Delete(hash[:]); err != nil {
		return err
	}
	key := makeSlotKey(header.Slot(), hash)
	return slotBucket.NewPutter(w).Delete(key[:])
}

// DeleteBlocks removes blocks in one atomic write.
func (s *BlockStore) DeleteBlocks(hashes ...praos.Hash32) error {
	bulk := s.root.Bulk()
	for _, hash := range hashes {
		if err := s.Delete(bulk, hash); err != nil {
			return err
		}
	}
	return bulk.Write()
}

// HashesUpTo returns hashes of blocks with slot <= the given slot, in slot order.
func (s *BlockStore) HashesUpTo(slot uint64) ([]praos.Hash32, error) {
	rng := slotBucket.Range(nil)
	if slot < math.MaxUint64 {
		limit := makeSlotKey(slot+1, praos.Hash32{})
		rng.Limit = append([]byte{slotFlag}, limit[:]...)
	}
	it := s.store.Iterate(rng)
	defer it.Release()

	var hashes []praos.Hash32
	for it.Next() {
		key := it.Key()[1:]
		hashes = append(hashes, praos.BytesToHash32(key[8:]))
	}
	return hashes, it.Error()
}
