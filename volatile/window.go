// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package volatile maintains the chain state that is not yet final: the window
// of anchored state deltas and the storage of blocks inside that window.
package volatile

import (
	"github.com/vechain/praos/ledger"
	"github.com/vechain/praos/log"
	"github.com/vechain/praos/praos"
)

var logger = log.WithContext("pkg", "volatile")

// Window is the ordered sequence of anchored states, oldest first, along with
// the merged cache of their deltas.
//
// It's not thread-safe, the owner must serialize all calls.
type Window struct {
	seq   []*ledger.AnchoredVolatileState
	cache *ledger.MergedState
}

// NewWindow creates an empty window.
func NewWindow() *Window {
	return &Window{
		cache: ledger.NewMergedState(),
	}
}

// PushBack appends the state to the tail and merges its delta into the cache.
// The caller guarantees that the state extends the current tail.
func (w *Window) PushBack(s *ledger.AnchoredVolatileState) {
	w.seq = append(w.seq, s)
	w.cache.Merge(s.State)
	metricWindowLength().Set(int64(len(w.seq)))
}

// PopFront removes and returns the oldest state.
// The cache is reset and rebuilt from the remaining states.
func (w *Window) PopFront() (*ledger.AnchoredVolatileState, bool) {
	if len(w.seq) == 0 {
		return nil, false
	}
	front := w.seq[0]
	w.seq[0] = nil
	w.seq = w.seq[1:]

	// deltas can't be subtracted, since a consumed input may be produced by the popped state
	w.cache.Reset()
	for _, s := range w.seq {
		w.cache.Merge(s.State)
	}

	metricWindowLength().Set(int64(len(w.seq)))
	return front, true
}

// RollbackTo truncates the window after the entry exactly matching point
// (both slot and hash), and rebuilds the cache from the retained entries.
// It returns false and leaves the window untouched if no such entry exists.
func (w *Window) RollbackTo(point praos.Point) bool {
	rebuilt := ledger.NewMergedState()
	keep := -1
	for i, s := range w.seq {
		if s.Point.Slot < point.Slot {
			rebuilt.Merge(s.State)
			continue
		}
		if s.Point.Equal(point) {
			rebuilt.Merge(s.State)
			keep = i + 1
		}
		// entries are ordered by slot, nothing beyond can match
		break
	}

	if keep < 0 {
		metricRollbackCount().AddWithLabel(1, map[string]string{"result": "miss"})
		logger.Debug("rollback point not in window", "point", point, "len", len(w.seq))
		return false
	}

	dropped := len(w.seq) - keep
	clear(w.seq[keep:])
	w.seq = w.seq[:keep]
	w.cache = rebuilt

	metricRollbackCount().AddWithLabel(1, map[string]string{"result": "hit"})
	metricRollbackDepth().Observe(int64(dropped))
	metricWindowLength().Set(int64(len(w.seq)))
	logger.Debug("rolled back", "point", point, "dropped", dropped)
	return true
}

// ViewBack returns the newest state.
func (w *Window) ViewBack() (*ledger.AnchoredVolatileState, bool) {
	if len(w.seq) == 0 {
		return nil, false
	}
	return w.seq[len(w.seq)-1], true
}

// Front returns the oldest state.
func (w *Window) Front() (*ledger.AnchoredVolatileState, bool) {
	if len(w.seq) == 0 {
		return nil, false
	}
	return w.seq[0], true
}

// IsEmpty returns whether the window is empty.
func (w *Window) IsEmpty() bool { return len(w.seq) == 0 }

// Len returns the number of states in the window.
func (w *Window) Len() int { return len(w.seq) }

// Points returns points of all states, oldest first.
func (w *Window) Points() []praos.Point {
	points := make([]praos.Point, 0, len(w.seq))
	for _, s := range w.seq {
		points = append(points, s.Point)
	}
	return points
}

// Cache returns the merged cache. It must be treated as read-only.
func (w *Window) Cache() *ledger.MergedState {
	return w.cache
}
