// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package chaindb coordinates the volatile window, the volatile and stable block
// stores and chain selection, as the single owner of the adopted chain.
package chaindb

import (
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/praos/block"
	"github.com/vechain/praos/chainsel"
	"github.com/vechain/praos/co"
	"github.com/vechain/praos/ledger"
	"github.com/vechain/praos/log"
	"github.com/vechain/praos/muxdb"
	"github.com/vechain/praos/praos"
	"github.com/vechain/praos/stable"
	"github.com/vechain/praos/volatile"
)

var logger = log.WithContext("pkg", "chaindb")

// ChainDB holds the adopted chain: stable blocks followed by at most k volatile blocks.
//
// It's thread-safe.
type ChainDB struct {
	k        uint64
	window   *volatile.Window
	blocks   *volatile.BlockStore
	stable   *stable.Store
	selector *chainsel.Selector

	lock sync.RWMutex
	tip  chainsel.Tip
	tick co.Signal
}

// New opens the chain db over db with the security parameter k.
// Volatile blocks left by the previous run are dropped, since the states
// anchored on them are not persisted.
func New(db *muxdb.MuxDB, k uint64) (*ChainDB, error) {
	if k == 0 {
		return nil, errors.New("security parameter must be positive")
	}
	blocks := volatile.NewBlockStore(db)
	st, err := stable.New(db, blocks)
	if err != nil {
		return nil, err
	}

	stale, err := blocks.HashesUpTo(math.MaxUint64)
	if err != nil {
		return nil, errors.Wrap(err, "scan volatile blocks")
	}
	if len(stale) > 0 {
		if err := blocks.DeleteBlocks(stale...); err != nil {
			return nil, errors.Wrap(err, "drop volatile blocks")
		}
		logger.Info("dropped stale volatile blocks", "count", len(stale))
	}

	cdb := &ChainDB{
		k:      k,
		window: volatile.NewWindow(),
		blocks: blocks,
		stable: st,
	}
	cdb.selector = chainsel.New(cdb)

	tip, err := loadStableTip(st)
	if err != nil {
		logger.Warn("stable tip unreadable, recovering", "err", err)
		report, rerr := st.RecoverFromCorruption()
		if rerr != nil {
			return nil, errors.Wrap(rerr, "recover stable chain")
		}
		if !report.Truncated {
			return nil, errors.Wrap(err, "load stable tip")
		}
		logger.Info("stable chain truncated", "tip", report.Tip.Point(), "removed", report.Removed, "cause", report.Cause)
		if tip, err = loadStableTip(st); err != nil {
			return nil, errors.Wrap(err, "load stable tip")
		}
	}
	cdb.tip = tip
	return cdb, nil
}

func loadStableTip(st *stable.Store) (chainsel.Tip, error) {
	tip := st.Tip()
	if tip.IsEmpty() {
		return chainsel.Tip{Point: praos.Origin}, nil
	}
	header, err := stable.GetBlockComponent(st, stable.ComponentHeader, tip.Point())
	if err != nil {
		return chainsel.Tip{}, err
	}
	return chainsel.Tip{Point: tip.Point(), BlockNumber: header.Number()}, nil
}

// SecurityParam returns k.
func (c *ChainDB) SecurityParam() uint64 { return c.k }

// Stable returns the stable store.
func (c *ChainDB) Stable() *stable.Store { return c.stable }

// NewTicker returns a waiter which is signaled when the tip changes.
func (c *ChainDB) NewTicker() co.Waiter {
	return c.tick.NewWaiter()
}

// Tip returns the tip of the adopted chain.
func (c *ChainDB) Tip() chainsel.Tip {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.tip
}

// VolatileLen returns the number of volatile blocks.
func (c *ChainDB) VolatileLen() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.window.Len()
}

// VolatileCache calls fn with the merged state of the volatile window.
func (c *ChainDB) VolatileCache(fn func(*ledger.MergedState)) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	fn(c.window.Cache())
}

// SlotHistory returns slots of the adopted chain, stable ones first.
func (c *ChainDB) SlotHistory() ([]uint64, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	slots, err := c.stable.SlotHistory()
	if err != nil {
		return nil, err
	}
	for _, p := range c.window.Points() {
		slots = append(slots, p.Slot)
	}
	return slots, nil
}

// GetBlock returns a block of the adopted chain, volatile or stable.
func (c *ChainDB) GetBlock(hash praos.Hash32) (*block.Block, error) {
	blk, err := c.blocks.Get(hash)
	if err == nil {
		return blk, nil
	}
	if !c.blocks.IsNotFound(err) {
		return nil, err
	}
	return c.stable.GetBlock(hash)
}

// AddBlock adopts the block extending the tip, along with the state produced
// by applying it. Blocks deeper than k are promoted to the stable store.
func (c *ChainDB) AddBlock(blk *block.Block, state *ledger.VolatileState) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	header := blk.Header()
	if !c.tip.Point.IsOrigin() {
		if header.PrevHash() != c.tip.Point.Hash || header.Slot() <= c.tip.Point.Slot {
			return errors.WithMessagef(ErrNotExtending, "block %v, tip %v", blk.Point(), c.tip.Point)
		}
	}

	if err := c.blocks.Put(blk); err != nil {
		return errors.Wrap(err, "save volatile block")
	}
	// the window is only touched once the fallible writes are done
	if err := c.promote(); err != nil {
		if derr := c.blocks.DeleteBlocks(blk.Hash()); derr != nil {
			logger.Warn("failed to drop unadopted block", "block", blk.Point(), "err", derr)
		}
		return err
	}
	c.window.PushBack(ledger.NewAnchored(blk.Point(), header.Issuer(), state))
	c.tip = chainsel.Tip{Point: blk.Point(), BlockNumber: header.Number()}

	c.tick.Broadcast()
	return nil
}

// promote moves the oldest states out of the window, so that it has room for
// one more within k, and their blocks into the stable store.
func (c *ChainDB) promote() error {
	for uint64(c.window.Len()) >= c.k {
		front, _ := c.window.Front()
		if err := c.stable.MakeBlocksImmutable([]praos.Hash32{front.Point.Hash}); err != nil {
			return errors.Wrapf(err, "promote %v", front.Point)
		}
		c.window.PopFront()
		metricPromoteCount().Add(1)
	}
	return nil
}

// Rollback truncates the adopted chain back to point. The stable part is never
// rolled back: a point before the stable tip fails with ErrRollbackTooDeep.
func (c *ChainDB) Rollback(point praos.Point) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if point.Equal(c.tip.Point) {
		return nil
	}

	before := c.window.Points()
	if !c.window.RollbackTo(point) {
		stableTip := c.stable.Tip()
		switch {
		case point.Equal(stableTip.Point()):
			// drop the whole window
			for !c.window.IsEmpty() {
				c.window.PopFront()
			}
		case !stableTip.IsEmpty() && point.Slot <= stableTip.Slot:
			metricRollbackCount().AddWithLabel(1, map[string]string{"result": "too-deep"})
			return errors.WithMessagef(ErrRollbackTooDeep, "point %v, stable tip %v", point, stableTip.Point())
		default:
			metricRollbackCount().AddWithLabel(1, map[string]string{"result": "unknown"})
			return errors.WithMessagef(ErrUnknownPoint, "point %v", point)
		}
	}

	removed := make([]praos.Hash32, 0, len(before)-c.window.Len())
	for _, p := range before[c.window.Len():] {
		removed = append(removed, p.Hash)
	}
	if err := c.blocks.DeleteBlocks(removed...); err != nil {
		return errors.Wrap(err, "delete rolled back blocks")
	}

	number, err := c.blockNumber(point)
	if err != nil {
		return err
	}
	c.tip = chainsel.Tip{Point: point, BlockNumber: number}

	metricRollbackCount().AddWithLabel(1, map[string]string{"result": "ok"})
	logger.Debug("rolled back", "point", point, "removed", len(removed))
	c.tick.Broadcast()
	return nil
}

func (c *ChainDB) blockNumber(point praos.Point) (uint64, error) {
	if point.IsOrigin() {
		return 0, nil
	}
	raw, err := c.blocks.GetRaw(point.Hash)
	if err == nil {
		header, err := raw.DecodeHeader()
		if err != nil {
			return 0, err
		}
		return header.Number(), nil
	}
	if !c.blocks.IsNotFound(err) {
		return 0, err
	}
	header, err := stable.GetBlockComponent(c.stable, stable.ComponentHeader, point)
	if err != nil {
		return 0, err
	}
	return header.Number(), nil
}

// SelectChain evaluates candidates against the adopted chain.
// See chainsel.IsNoCandidate for the errors meaning no switch is needed.
func (c *ChainDB) SelectChain(candidates []chainsel.Candidate) (*chainsel.Ranked, error) {
	return c.selector.EvaluateChains(candidates, c.k)
}

// RankChains ranks candidates against the adopted chain, best first.
func (c *ChainDB) RankChains(candidates []chainsel.Candidate) ([]chainsel.Ranked, error) {
	return c.selector.RankChains(candidates, c.k)
}
