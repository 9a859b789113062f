// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chainsel

import (
	"slices"
	"sync"
)

// Candidates holds the latest candidate announced by each peer.
//
// It's thread-safe.
type Candidates struct {
	lock  sync.Mutex
	peers map[string]Candidate
}

// NewCandidates creates an empty registry.
func NewCandidates() *Candidates {
	return &Candidates{peers: make(map[string]Candidate)}
}

// Set replaces the candidate of the peer.
func (cs *Candidates) Set(peer string, c Candidate) {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.peers[peer] = c
	metricCandidates().Set(int64(len(cs.peers)))
}

// Remove drops the candidate of the peer, usually on disconnection.
func (cs *Candidates) Remove(peer string) {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	delete(cs.peers, peer)
	metricCandidates().Set(int64(len(cs.peers)))
}

// Len returns the number of peers with a candidate.
func (cs *Candidates) Len() int {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	return len(cs.peers)
}

// List returns all candidates ordered by peer id.
func (cs *Candidates) List() []Candidate {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	peers := make([]string, 0, len(cs.peers))
	for peer := range cs.peers {
		peers = append(peers, peer)
	}
	slices.Sort(peers)

	list := make([]Candidate, 0, len(peers))
	for _, peer := range peers {
		list = append(list, cs.peers[peer])
	}
	return list
}
