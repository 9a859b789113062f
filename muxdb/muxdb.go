// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package muxdb implements the storage layer for the chain databases.
// It multiplexes general purpose named kv-stores over a single leveldb instance,
// so that writes to different stores can be committed in one atomic bulk.
package muxdb

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	dberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/vechain/praos/kv"
	"github.com/vechain/praos/log"
	"github.com/vechain/praos/praos"
)

const (
	namedStoreSpace = byte(3) // the key space for named store.
)

const (
	propStoreName = "muxdb.props"
	configKey     = "config"
)

var logger = log.WithContext("pkg", "muxdb")

// Options optional parameters for MuxDB.
type Options struct {
	// OpenFilesCacheCapacity is the capacity of open files caching for underlying database.
	OpenFilesCacheCapacity int
	// ReadCacheMB is the size of read cache for underlying database.
	ReadCacheMB int
	// WriteBufferMB is the size of write buffer for underlying database.
	WriteBufferMB int
	// ChunkSize is the slot span of a stable chunk. It's persisted at creation
	// and must not change afterwards, since chunk checksums depend on it.
	ChunkSize uint64
}

// MuxDB is the database to store volatile and stable chain data.
type MuxDB struct {
	engine    *levelEngine
	chunkSize uint64
}

// Open opens or creates DB at the given path.
func Open(path string, options *Options) (*MuxDB, error) {
	// prepare leveldb options
	ldbOpts := opt.Options{
		OpenFilesCacheCapacity: options.OpenFilesCacheCapacity,
		BlockCacheCapacity:     options.ReadCacheMB * opt.MiB,
		WriteBuffer:            options.WriteBufferMB * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
		BlockSize:              1024 * 32, // balance performance of point reads and compression ratio.
		CompactionTableSize:    4 * opt.MiB,
	}

	// open leveldb
	ldb, err := leveldb.OpenFile(path, &ldbOpts)
	if _, corrupted := err.(*dberrors.ErrCorrupted); corrupted {
		logger.Warn("database corrupted, try to recover", "path", path)
		ldb, err = leveldb.RecoverFile(path, &ldbOpts)
	}
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}

	db := &MuxDB{engine: newLevelEngine(ldb)}

	// persists critical options to avoid corruption when tweaked.
	cfg := config{ChunkSize: options.ChunkSize}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = praos.ChunkSize
	}
	if err := cfg.LoadOrSave(db.NewStore(propStoreName)); err != nil {
		ldb.Close()
		return nil, err
	}
	db.chunkSize = cfg.ChunkSize
	return db, nil
}

// NewMem creates a memory-backed DB.
func NewMem() *MuxDB {
	storage := storage.NewMemStorage()
	ldb, _ := leveldb.Open(storage, nil)

	return &MuxDB{engine: newLevelEngine(ldb), chunkSize: praos.ChunkSize}
}

// Close closes the DB.
func (db *MuxDB) Close() error {
	return db.engine.Close()
}

// NewStore creates named kv-store.
func (db *MuxDB) NewStore(name string) kv.Store {
	return kv.Bucket(string(namedStoreSpace) + name).NewStore(db.engine)
}

// ChunkSize returns the slot span of a stable chunk.
func (db *MuxDB) ChunkSize() uint64 {
	return db.chunkSize
}

// IsNotFound returns if the error indicates key not found.
func (db *MuxDB) IsNotFound(err error) bool {
	return db.engine.IsNotFound(err)
}

type config struct {
	ChunkSize uint64
}

func (c *config) LoadOrSave(store kv.Store) error {
	// try to load
	data, err := store.Get([]byte(configKey))
	if err == nil {
		var saved config
		if err := json.Unmarshal(data, &saved); err != nil {
			return errors.Wrap(err, "decode config")
		}
		if saved.ChunkSize != c.ChunkSize {
			return errors.Errorf("chunk size mismatch: saved %v, given %v", saved.ChunkSize, c.ChunkSize)
		}
		return nil
	}

	if !store.IsNotFound(err) {
		return err
	}
	// not found
	// encode and save
	data, err = json.Marshal(c)
	if err != nil {
		return err
	}
	return store.Put([]byte(configKey), data)
}
