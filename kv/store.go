// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the ordered byte-keyed store consumed by the chain databases.
package kv

// Getter defines methods to read kv.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter defines methods to write kv.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Bulk collects writes and applies them atomically on Write.
// A bulk must not be used after Write.
type Bulk interface {
	Putter
	Write() error
}

// Iterator iterates over kv pairs in ascending key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Range is the key range.
type Range struct {
	Start []byte // start of key range (included)
	Limit []byte // limit of key range (excluded)
}

// Store defines the full functional kv store.
type Store interface {
	Getter
	Putter

	Bulk() Bulk
	Iterate(r Range) Iterator
}
