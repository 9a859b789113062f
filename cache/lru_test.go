// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestARCGetOrLoad(t *testing.T) {
	c := NewARC(2)
	loads := 0
	load := func() (any, error) {
		loads++
		return "v", nil
	}

	v, cached, err := c.GetOrLoad("k", load)
	assert.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "v", v)

	v, cached, err = c.GetOrLoad("k", load)
	assert.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, loads)

	hit, miss := c.Stats().Counts()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)

	_, _, err = c.GetOrLoad("x", func() (any, error) { return nil, errors.New("boom") })
	assert.Error(t, err)
	assert.False(t, c.Contains("x"))

	assert.Panics(t, func() { NewARC(0) })
}
