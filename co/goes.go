// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co provides goroutine coordination helpers.
package co

import (
	"sync"
)

// Goes tracks a group of goroutines, so that their owner can wait for them to exit.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a new goroutine.
func (g *Goes) Go(f func()) {
	g.wg.Go(f)
}

// Wait blocks until all goroutines started by Go returned.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed when all goroutines started by Go returned.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	return done
}
