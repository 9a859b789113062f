// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache provides caches used by chain databases.
package cache

import lru "github.com/hashicorp/golang-lru"

// ARC is an adaptive replacement cache extends golang-lru, with hit/miss stats.
type ARC struct {
	*lru.ARCCache
	stats Stats
}

// NewARC creates an ARC cache instance.
// maxSize should be > 0, or it panics.
func NewARC(maxSize int) *ARC {
	c, err := lru.NewARC(maxSize)
	if err != nil {
		panic(err)
	}
	return &ARC{ARCCache: c}
}

// GetOrLoad returns the value associated with the key if it exists in the cache.
// Otherwise, it calls the load function to get the value and adds it to the cache.
// The returned boolean reports whether the value was served from the cache.
func (c *ARC) GetOrLoad(key any, load func() (any, error)) (any, bool, error) {
	if value, ok := c.Get(key); ok {
		c.stats.Hit()
		return value, true, nil
	}
	c.stats.Miss()
	value, err := load()
	if err != nil {
		return nil, false, err
	}
	c.Add(key, value)
	return value, false, nil
}

// Stats returns the hit/miss stats of the cache.
func (c *ARC) Stats() *Stats {
	return &c.stats
}
