// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package chainsel implements the Praos chain selection rule: the longest chain
// wins as long as switching to it does not roll back more than k blocks.
package chainsel

import (
	"bytes"
	"cmp"
	"slices"
	"sort"

	"github.com/pkg/errors"

	"github.com/vechain/praos/log"
)

var logger = log.WithContext("pkg", "chainsel")

// Selector compares candidates against the local chain.
type Selector struct {
	history History
}

// New creates a selector over the local chain history.
func New(history History) *Selector {
	return &Selector{history}
}

// FindIntersection finds the latest local block whose slot is not after the candidate tip.
// The local history is treated as a single chain, so the intersection is slot based
// and prev hash links are not walked.
func (s *Selector) FindIntersection(c Candidate) (Intersection, error) {
	slots, err := s.history.SlotHistory()
	if err != nil {
		return Intersection{}, errors.Wrap(err, "load slot history")
	}
	return findIntersection(slots, c), nil
}

func findIntersection(slots []uint64, c Candidate) Intersection {
	if len(slots) == 0 {
		return Intersection{}
	}
	n := sort.Search(len(slots), func(i int) bool {
		return slots[i] > c.Tip.Slot
	})
	if n == 0 {
		// the candidate forks before the first local block
		return Intersection{Block: 0, RollbackDistance: uint64(len(slots))}
	}
	index := uint64(n - 1)
	return Intersection{
		Block:            index,
		RollbackDistance: uint64(len(slots)) - 1 - index,
	}
}

// CompareChainsPraos compares the candidate with the current tip.
func (s *Selector) CompareChainsPraos(current Tip, c Candidate, k uint64) (Comparison, error) {
	isect, err := s.FindIntersection(c)
	if err != nil {
		return Comparison{}, err
	}
	return comparePraos(current, c, isect, k), nil
}

// comparePraos prefers the candidate iff it is strictly longer and the
// intersection is within k blocks.
func comparePraos(current Tip, c Candidate, isect Intersection, k uint64) Comparison {
	res := Comparison{Preferred: PreferCurrent, Intersection: isect}
	if isect.RollbackDistance <= k && c.BlockNumber > current.BlockNumber {
		res.Preferred = PreferCandidate
	}
	return res
}

// SelectBestChain compares every candidate with the same adopted tip and
// returns the last preferred one, so later candidates win ties.
func (s *Selector) SelectBestChain(candidates []Candidate, k uint64) (*Ranked, error) {
	slots, err := s.history.SlotHistory()
	if err != nil {
		return nil, errors.Wrap(err, "load slot history")
	}
	current := s.history.Tip()

	var best *Ranked
	for _, c := range candidates {
		res := comparePraos(current, c, findIntersection(slots, c), k)
		if res.Preferred == PreferCandidate {
			best = &Ranked{Candidate: c, Comparison: res}
		}
	}
	return best, nil
}

// EvaluateChains selects the best candidate. It fails with ErrNoCandidates when
// candidates is empty, or ErrNoPreferredCandidate when none beats the local chain.
func (s *Selector) EvaluateChains(candidates []Candidate, k uint64) (*Ranked, error) {
	if len(candidates) == 0 {
		metricEvaluateCount().AddWithLabel(1, map[string]string{"result": "empty"})
		return nil, ErrNoCandidates
	}
	best, err := s.SelectBestChain(candidates, k)
	if err != nil {
		return nil, err
	}
	if best == nil {
		metricEvaluateCount().AddWithLabel(1, map[string]string{"result": "retained"})
		logger.Trace("local chain retained", "candidates", len(candidates))
		return nil, ErrNoPreferredCandidate
	}

	metricEvaluateCount().AddWithLabel(1, map[string]string{"result": "switched"})
	logger.Debug("candidate preferred",
		"tip", best.Candidate.Tip,
		"number", best.Candidate.BlockNumber,
		"rollback", best.Comparison.RollbackDistance)
	return best, nil
}

// RankChains compares all candidates with the adopted tip and sorts them best
// first by CompareChains.
func (s *Selector) RankChains(candidates []Candidate, k uint64) ([]Ranked, error) {
	slots, err := s.history.SlotHistory()
	if err != nil {
		return nil, errors.Wrap(err, "load slot history")
	}
	current := s.history.Tip()

	ranked := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, Ranked{
			Candidate:  c,
			Comparison: comparePraos(current, c, findIntersection(slots, c), k),
		})
	}
	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return CompareChains(b, a, k)
	})
	return ranked, nil
}

// CompareChains is a total order of ranked candidates. It returns 1 if a ranks
// higher than b, -1 if lower, 0 if they're the same chain.
//
// The order is:
//  1. intersection within k ranks higher
//  2. higher block number
//  3. higher leader stake, absent stake ranks lowest
//  4. lower tip hash, bytewise
func CompareChains(a, b Ranked, k uint64) int {
	aValid := a.Comparison.RollbackDistance <= k
	bValid := b.Comparison.RollbackDistance <= k
	if aValid != bValid {
		if aValid {
			return 1
		}
		return -1
	}

	if c := cmp.Compare(a.Candidate.BlockNumber, b.Candidate.BlockNumber); c != 0 {
		return c
	}

	aStake, bStake := a.Candidate.LeaderStake, b.Candidate.LeaderStake
	switch {
	case aStake != nil && bStake == nil:
		return 1
	case aStake == nil && bStake != nil:
		return -1
	case aStake != nil && bStake != nil:
		if c := cmp.Compare(*aStake, *bStake); c != 0 {
			return c
		}
	}

	return bytes.Compare(b.Candidate.Tip.Hash[:], a.Candidate.Tip.Hash[:])
}
