// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chaindb

import "github.com/pkg/errors"

var (
	// ErrRollbackTooDeep is returned when the rollback point is behind the stable tip.
	ErrRollbackTooDeep = errors.New("rollback too deep")
	// ErrUnknownPoint is returned when the rollback point is not on the adopted chain.
	ErrUnknownPoint = errors.New("unknown point")
	// ErrNotExtending is returned when a block does not extend the tip.
	ErrNotExtending = errors.New("block not extending tip")
	// ErrRunnerStopped is returned when a command is sent to a stopped runner.
	ErrRunnerStopped = errors.New("runner stopped")
)
