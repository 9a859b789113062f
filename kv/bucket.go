// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for kv store.
// Keys of a bucket are the bucket name followed by the raw key.
type Bucket string

// withKey calls fn with the prefixed key held in a pooled buffer.
// The key passed to fn must not be retained.
func (b Bucket) withKey(key []byte, fn func(k []byte)) {
	buf := bufPool.Get().(*buf)
	defer bufPool.Put(buf)
	buf.k = append(append(buf.k[:0], b...), key...)
	fn(buf.k)
}

// Range returns the key range of the bucket, narrowed by the optional prefix.
func (b Bucket) Range(prefix []byte) Range {
	return Range(*util.BytesPrefix(append([]byte(b), prefix...)))
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) (val []byte, err error) {
			b.withKey(key, func(k []byte) { val, err = src.Get(k) })
			return
		},
		func(key []byte) (has bool, err error) {
			b.withKey(key, func(k []byte) { has, err = src.Has(k) })
			return
		},
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) (err error) {
			b.withKey(key, func(k []byte) { err = src.Put(k, val) })
			return
		},
		func(key []byte) (err error) {
			b.withKey(key, func(k []byte) { err = src.Delete(k) })
			return
		},
	}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Putter
		BulkFunc
		IterateFunc
	}{
		b.NewGetter(src),
		b.NewPutter(src),
		func() Bulk {
			bulk := src.Bulk()
			return &struct {
				Putter
				WriteFunc
			}{
				b.NewPutter(bulk),
				bulk.Write,
			}
		},
		func(r Range) Iterator {
			// the range is copied since the pooled buffer is reused
			r.Start = append([]byte(b), r.Start...)
			if len(r.Limit) == 0 {
				r.Limit = util.BytesPrefix([]byte(b)).Limit
			} else {
				r.Limit = append([]byte(b), r.Limit...)
			}
			iter := src.Iterate(r)
			return &struct {
				NextFunc
				KeyFunc
				ValueFunc
				ReleaseFunc
				ErrorFunc
			}{
				iter.Next,
				// strip the bucket
				func() []byte { return iter.Key()[len(b):] },
				iter.Value,
				iter.Release,
				iter.Error,
			}
		},
	}
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
