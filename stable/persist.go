// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stable

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"

	"github.com/vechain/praos/kv"
	"github.com/vechain/praos/praos"
)

const (
	blkStoreName   = "stable.blk"   // for block meta and payload, keyed by hash
	slotStoreName  = "stable.slot"  // for slot -> hash index
	propStoreName  = "stable.props" // for the immutable tip
	chunkStoreName = "stable.chunk" // for chunk checksums

	metaFlag    = byte(0) // flag byte of the key for saving block meta
	payloadFlag = byte(1) // flag byte of the key for saving block payload
)

var (
	tipKey = []byte("tip")

	metaBucket    = kv.Bucket(string(metaFlag))
	payloadBucket = kv.Bucket(string(payloadFlag))
)

// Tip is the immutable tip, the most recent block of the stable store.
type Tip struct {
	Hash       praos.Hash32
	Slot       uint64
	BlockCount uint64
}

// IsEmpty returns whether the store holds no block.
func (t Tip) IsEmpty() bool {
	return t.BlockCount == 0
}

// Point returns the point of the tip block, or origin if empty.
func (t Tip) Point() praos.Point {
	if t.IsEmpty() {
		return praos.Origin
	}
	return praos.NewPoint(t.Slot, t.Hash)
}

// metaRecord is the per block record, along with the payload saved separately.
type metaRecord struct {
	Slot     uint64
	PrevHash praos.Hash32
	Size     uint64
}

type chunkRecord struct {
	Count    uint64
	Checksum praos.Hash32
}

func saveRLP(w kv.Putter, key []byte, val any) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return err
	}
	return w.Put(key, data)
}

func loadRLP(r kv.Getter, key []byte, val any) error {
	data, err := r.Get(key)
	if err != nil {
		return err
	}
	return rlp.DecodeBytes(data, val)
}

func slotKey(slot uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], slot)
	return k[:]
}

// slotRange returns the key range covering [start, end].
func slotRange(start, end uint64) kv.Range {
	r := kv.Range{Start: slotKey(start)}
	if end < ^uint64(0) {
		r.Limit = slotKey(end + 1)
	}
	return r
}

func chunkKey(chunk uint64) []byte {
	return slotKey(chunk)
}

func saveMeta(w kv.Putter, hash praos.Hash32, meta *metaRecord) error {
	return saveRLP(metaBucket.NewPutter(w), hash[:], meta)
}

func loadMeta(r kv.Getter, hash praos.Hash32) (*metaRecord, error) {
	var meta metaRecord
	if err := loadRLP(metaBucket.NewGetter(r), hash[:], &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func savePayload(w kv.Putter, hash praos.Hash32, payload []byte) error {
	return payloadBucket.NewPutter(w).Put(hash[:], snappy.Encode(nil, payload))
}

func loadPayload(r kv.Getter, hash praos.Hash32) ([]byte, error) {
	data, err := payloadBucket.NewGetter(r).Get(hash[:])
	if err != nil {
		return nil, err
	}
	return snappy.Decode(nil, data)
}

func hasPayload(r kv.Getter, hash praos.Hash32) (bool, error) {
	return payloadBucket.NewGetter(r).Has(hash[:])
}

func deleteBlock(w kv.Putter, hash praos.Hash32) error {
	if err := metaBucket.NewPutter(w).Delete(hash[:]); err != nil {
		return err
	}
	return payloadBucket.NewPutter(w).Delete(hash[:])
}

func saveTip(w kv.Putter, tip Tip) error {
	if tip.IsEmpty() {
		return w.Delete(tipKey)
	}
	return saveRLP(w, tipKey, &tip)
}

func loadTip(r kv.Getter) (Tip, error) {
	var tip Tip
	if err := loadRLP(r, tipKey, &tip); err != nil {
		if r.IsNotFound(err) {
			return Tip{}, nil
		}
		return Tip{}, err
	}
	return tip, nil
}

func saveChunk(w kv.Putter, chunk uint64, rec *chunkRecord) error {
	if rec.Count == 0 {
		return w.Delete(chunkKey(chunk))
	}
	return saveRLP(w, chunkKey(chunk), rec)
}

func loadChunk(r kv.Getter, chunk uint64) (*chunkRecord, error) {
	var rec chunkRecord
	if err := loadRLP(r, chunkKey(chunk), &rec); err != nil {
		if r.IsNotFound(err) {
			return &chunkRecord{}, nil
		}
		return nil, err
	}
	return &rec, nil
}
