// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chaindb

import (
	"context"

	"github.com/vechain/praos/co"
)

type command struct {
	fn     func(*ChainDB) error
	result chan error
}

// Runner serves commands on the chain db from a single goroutine, so that
// callers on other goroutines don't block on the db while it writes.
type Runner struct {
	cdb  *ChainDB
	cmds chan command
	done chan struct{}
	goes co.Goes
}

// NewRunner creates a runner with the given command backlog.
func NewRunner(cdb *ChainDB, backlog int) *Runner {
	return &Runner{
		cdb:  cdb,
		cmds: make(chan command, backlog),
		done: make(chan struct{}),
	}
}

// Start serves commands until ctx is done.
func (r *Runner) Start(ctx context.Context) {
	r.goes.Go(func() {
		defer close(r.done)
		r.run(ctx)
	})
}

// Wait waits for the runner to exit.
func (r *Runner) Wait() {
	r.goes.Wait()
}

func (r *Runner) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-r.cmds:
			metricRunnerBacklog().Set(int64(len(r.cmds)))
			cmd.result <- cmd.fn(r.cdb)
		}
	}
}

// Do sends fn to the runner and waits for its result.
func (r *Runner) Do(ctx context.Context, fn func(*ChainDB) error) error {
	cmd := command{fn: fn, result: make(chan error, 1)}
	select {
	case r.cmds <- cmd:
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.result:
		return err
	case <-r.done:
		// the command may have been served right before exiting
		select {
		case err := <-cmd.result:
			return err
		default:
			return ErrRunnerStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
