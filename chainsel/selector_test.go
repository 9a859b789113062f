// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chainsel

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/praos/praos"
)

type memHistory struct {
	slots []uint64
	tip   Tip
	err   error
}

func (h *memHistory) SlotHistory() ([]uint64, error) { return h.slots, h.err }
func (h *memHistory) Tip() Tip                       { return h.tip }

// newHistory creates a history of n blocks at slots 1..n.
func newHistory(n int, tipNumber uint64) *memHistory {
	h := &memHistory{}
	for i := 1; i <= n; i++ {
		h.slots = append(h.slots, uint64(i))
	}
	h.tip = Tip{Point: praos.NewPoint(uint64(n), praos.Blake2b([]byte("tip"))), BlockNumber: tipNumber}
	return h
}

func candidate(slot, number uint64, name string) Candidate {
	return Candidate{Tip: praos.NewPoint(slot, praos.Blake2b([]byte(name))), BlockNumber: number}
}

func stake(v uint64) *uint64 { return &v }

func TestFindIntersection(t *testing.T) {
	tests := []struct {
		name  string
		slots []uint64
		tip   uint64
		want  Intersection
	}{
		{"empty history", nil, 100, Intersection{0, 0}},
		{"at tip", []uint64{10, 20, 30}, 30, Intersection{2, 0}},
		{"beyond tip", []uint64{10, 20, 30}, 99, Intersection{2, 0}},
		{"between", []uint64{10, 20, 30}, 25, Intersection{1, 1}},
		{"at first", []uint64{10, 20, 30}, 10, Intersection{0, 2}},
		{"before first", []uint64{10, 20, 30}, 5, Intersection{0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&memHistory{slots: tt.slots})
			got, err := s.FindIntersection(candidate(tt.tip, 0, "c"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompareChainsPraos(t *testing.T) {
	const k = praos.DefaultSecurityParam
	current := Tip{BlockNumber: 10}

	// 10 blocks at slots 10..100, a tip at slot 50 intersects 5 blocks back
	h := &memHistory{tip: current}
	for i := uint64(1); i <= 10; i++ {
		h.slots = append(h.slots, i*10)
	}
	s := New(h)

	res, err := s.CompareChainsPraos(current, candidate(50, 20, "longer"), k)
	require.NoError(t, err)
	assert.Equal(t, PreferCandidate, res.Preferred)
	assert.Equal(t, uint64(5), res.RollbackDistance)

	res, err = s.CompareChainsPraos(current, candidate(50, 10, "equal"), k)
	require.NoError(t, err)
	assert.Equal(t, PreferCurrent, res.Preferred)

	res, err = s.CompareChainsPraos(current, candidate(50, 9, "shorter"), k)
	require.NoError(t, err)
	assert.Equal(t, PreferCurrent, res.Preferred)

	// 4000 blocks, a tip at slot 1000 intersects 3000 blocks back
	deep := New(newHistory(4000, 10))
	res, err = deep.CompareChainsPraos(current, candidate(1000, 20, "deep"), k)
	require.NoError(t, err)
	assert.Equal(t, uint64(3000), res.RollbackDistance)
	assert.Equal(t, PreferCurrent, res.Preferred)

	// the bound itself is allowed
	assert.Equal(t, PreferCandidate, comparePraos(current, Candidate{BlockNumber: 11}, Intersection{RollbackDistance: k}, k).Preferred)
	assert.Equal(t, PreferCurrent, comparePraos(current, Candidate{BlockNumber: 11}, Intersection{RollbackDistance: k + 1}, k).Preferred)
}

func TestEvaluateChains(t *testing.T) {
	s := New(newHistory(100, 100))

	_, err := s.EvaluateChains(nil, 10)
	assert.Equal(t, ErrNoCandidates, err)
	assert.True(t, IsNoCandidate(err))

	_, err = s.EvaluateChains([]Candidate{candidate(100, 100, "a"), candidate(99, 50, "b")}, 10)
	assert.Equal(t, ErrNoPreferredCandidate, err)
	assert.True(t, IsNoCandidate(err))

	// later candidates win ties, and each is compared to the adopted tip only
	a := candidate(100, 105, "a")
	b := candidate(100, 102, "b")
	c := candidate(50, 200, "too deep")
	best, err := s.EvaluateChains([]Candidate{a, b, c}, 10)
	require.NoError(t, err)
	assert.Equal(t, b, best.Candidate)
	assert.Equal(t, PreferCandidate, best.Comparison.Preferred)

	best, err = s.EvaluateChains([]Candidate{b, a}, 10)
	require.NoError(t, err)
	assert.Equal(t, a, best.Candidate)

	broken := New(&memHistory{err: errors.New("io")})
	_, err = broken.EvaluateChains([]Candidate{a}, 10)
	assert.Error(t, err)
	assert.False(t, IsNoCandidate(err))
}

func TestCompareChains(t *testing.T) {
	const k = 10
	ranked := func(number uint64, distance uint64, leaderStake *uint64, hash byte) Ranked {
		var h praos.Hash32
		h[0] = hash
		return Ranked{
			Candidate:  Candidate{Tip: praos.NewPoint(1, h), BlockNumber: number, LeaderStake: leaderStake},
			Comparison: Comparison{Intersection: Intersection{RollbackDistance: distance}},
		}
	}

	tests := []struct {
		name string
		a, b Ranked
		want int
	}{
		{"intersection within k first", ranked(1, 0, nil, 9), ranked(100, 11, stake(100), 0), 1},
		{"higher block number", ranked(5, 3, nil, 9), ranked(4, 0, stake(100), 0), 1},
		{"higher stake", ranked(5, 0, stake(2), 9), ranked(5, 0, stake(1), 0), 1},
		{"absent stake lowest", ranked(5, 0, nil, 0), ranked(5, 0, stake(0), 9), -1},
		{"lower hash", ranked(5, 0, stake(1), 1), ranked(5, 0, stake(1), 2), 1},
		{"both absent stake, lower hash", ranked(5, 0, nil, 1), ranked(5, 0, nil, 2), 1},
		{"same chain", ranked(5, 0, stake(1), 1), ranked(5, 0, stake(1), 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareChains(tt.a, tt.b, k))
			assert.Equal(t, -tt.want, CompareChains(tt.b, tt.a, k), "antisymmetric")
		})
	}
}

func TestRankChains(t *testing.T) {
	s := New(newHistory(100, 100))

	low := candidate(100, 101, "low")
	high := Candidate{Tip: praos.NewPoint(100, praos.Blake2b([]byte("high"))), BlockNumber: 103, LeaderStake: stake(5)}
	staked := Candidate{Tip: praos.NewPoint(100, praos.Blake2b([]byte("staked"))), BlockNumber: 103, LeaderStake: stake(9)}
	deep := candidate(1, 500, "deep")

	ranked, err := s.RankChains([]Candidate{low, deep, high, staked}, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 4)
	assert.Equal(t, staked, ranked[0].Candidate)
	assert.Equal(t, high, ranked[1].Candidate)
	assert.Equal(t, low, ranked[2].Candidate)
	assert.Equal(t, deep, ranked[3].Candidate)
	assert.Equal(t, PreferCurrent, ranked[3].Comparison.Preferred)
}

func TestCandidates(t *testing.T) {
	cs := NewCandidates()
	cs.Set("peer-b", candidate(2, 2, "b"))
	cs.Set("peer-a", candidate(1, 1, "a"))
	cs.Set("peer-c", candidate(3, 3, "c"))
	cs.Set("peer-a", candidate(4, 4, "a2"))
	assert.Equal(t, 3, cs.Len())

	assert.Equal(t, []Candidate{candidate(4, 4, "a2"), candidate(2, 2, "b"), candidate(3, 3, "c")}, cs.List())

	cs.Remove("peer-b")
	cs.Remove("unknown")
	assert.Equal(t, []Candidate{candidate(4, 4, "a2"), candidate(3, 3, "c")}, cs.List())
}
