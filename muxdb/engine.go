// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/praos/kv"
)

var (
	writeOpt = opt.WriteOptions{}
	readOpt  = opt.ReadOptions{}
	scanOpt  = opt.ReadOptions{DontFillCache: true}
)

// levelEngine wraps leveldb as kv.Store.
type levelEngine struct {
	db        *leveldb.DB
	batchPool *sync.Pool
}

var _ kv.Store = (*levelEngine)(nil)

func newLevelEngine(db *leveldb.DB) *levelEngine {
	return &levelEngine{
		db,
		&sync.Pool{
			New: func() any {
				return &leveldb.Batch{}
			},
		},
	}
}

func (ldb *levelEngine) Close() error {
	return ldb.db.Close()
}

func (ldb *levelEngine) IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

func (ldb *levelEngine) Get(key []byte) ([]byte, error) {
	val, err := ldb.db.Get(key, &readOpt)
	// val will be []byte{} if error occurs, which is not expected
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (ldb *levelEngine) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, &readOpt)
}

func (ldb *levelEngine) Put(key, val []byte) error {
	return ldb.db.Put(key, val, &writeOpt)
}

func (ldb *levelEngine) Delete(key []byte) error {
	return ldb.db.Delete(key, &writeOpt)
}

func (ldb *levelEngine) Bulk() kv.Bulk {
	batch := ldb.batchPool.Get().(*leveldb.Batch)
	batch.Reset()

	return &struct {
		kv.PutFunc
		kv.DeleteFunc
		kv.WriteFunc
	}{
		func(key, val []byte) error {
			batch.Put(key, val)
			return nil
		},
		func(key []byte) error {
			batch.Delete(key)
			return nil
		},
		func() error {
			defer func() {
				batch.Reset()
				ldb.batchPool.Put(batch)
				// the batch is returned to pool, the bulk must not be used any more
				batch = &leveldb.Batch{}
			}()
			if batch.Len() == 0 {
				return nil
			}
			return ldb.db.Write(batch, &writeOpt)
		},
	}
}

func (ldb *levelEngine) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator((*util.Range)(&r), &scanOpt)
}
