// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/praos/co"
)

func fired(w co.Waiter) bool {
	select {
	case <-w.C():
		return true
	default:
		return false
	}
}

func TestSignalBroadcastBeforeWaiter(t *testing.T) {
	var sig co.Signal
	sig.Broadcast()

	w := sig.NewWaiter()
	assert.False(t, fired(w))
}

func TestSignalBroadcastAfterWaiter(t *testing.T) {
	var sig co.Signal

	ws := make([]co.Waiter, 0, 10)
	for range 10 {
		ws = append(ws, sig.NewWaiter())
	}
	sig.Broadcast()

	for _, w := range ws {
		<-w.C()
	}
}

func TestSignalWaiterMovesOn(t *testing.T) {
	var sig co.Signal
	w := sig.NewWaiter()

	sig.Broadcast()
	assert.True(t, fired(w))
	assert.False(t, fired(w), "the broadcast is consumed")

	sig.Broadcast()
	assert.True(t, fired(w))
}
