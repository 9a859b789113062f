// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chainsel

import "github.com/pkg/errors"

var (
	// ErrNoCandidates is returned when there is nothing to evaluate.
	ErrNoCandidates = errors.New("no candidates")
	// ErrNoPreferredCandidate is returned when the local chain beats every candidate.
	ErrNoPreferredCandidate = errors.New("no preferred candidate")
)

// IsNoCandidate returns whether the error means no suitable candidate, in which
// case the local chain is retained.
func IsNoCandidate(err error) bool {
	err = errors.Cause(err)
	return err == ErrNoCandidates || err == ErrNoPreferredCandidate
}
