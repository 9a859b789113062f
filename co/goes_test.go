// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/praos/co"
)

func TestGoes(t *testing.T) {
	var (
		goes co.Goes
		n    atomic.Int32
	)
	for range 10 {
		goes.Go(func() { n.Add(1) })
	}
	<-goes.Done()
	assert.Equal(t, int32(10), n.Load())

	goes.Wait()
}
