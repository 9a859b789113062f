// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Waiter provides the channel to wait for the next broadcast.
type Waiter interface {
	C() <-chan struct{}
}

// Signal announces the occurrence of an event, such as a tip change, to any number of waiters.
// Waiting is done on a channel, so it can be combined with other events in a select.
// The zero value is ready to use.
type Signal struct {
	lock sync.Mutex
	ch   chan struct{} // closed by the next broadcast
}

func (s *Signal) pending() chan struct{} {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	return s.ch
}

// Broadcast wakes all waiters.
func (s *Signal) Broadcast() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.ch != nil {
		close(s.ch)
		s.ch = nil
	}
}

// NewWaiter creates a waiter for broadcasts made after this call.
// A waiter must not be shared between goroutines.
func (s *Signal) NewWaiter() Waiter {
	s.lock.Lock()
	defer s.lock.Unlock()

	return &waiter{s: s, ch: s.pending()}
}

type waiter struct {
	s  *Signal
	ch chan struct{}
}

// C returns the channel of the awaited broadcast. Once that broadcast is made,
// the following call moves on to the next one.
func (w *waiter) C() <-chan struct{} {
	ch := w.ch
	select {
	case <-ch:
		w.s.lock.Lock()
		w.ch = w.s.pending()
		w.s.lock.Unlock()
	default:
	}
	return ch
}
