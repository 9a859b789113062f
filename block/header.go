// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/praos/praos"
)

// Header contains almost all information about a block, except block body.
// It's immutable.
type Header struct {
	body headerBody

	cache struct {
		hash atomic.Value
	}
}

// headerBody body of header
type headerBody struct {
	Slot          uint64
	Number        uint64
	PrevHash      praos.Hash32
	Issuer        praos.KeyHash
	BodyHash      praos.Hash32
	BodySize      uint64
	EpochBoundary bool
}

// Slot returns the slot the block was minted in.
func (h *Header) Slot() uint64 {
	return h.body.Slot
}

// Number returns sequential number of this block.
func (h *Header) Number() uint64 {
	return h.body.Number
}

// PrevHash returns hash of the previous block. Zero for the first block.
func (h *Header) PrevHash() praos.Hash32 {
	return h.body.PrevHash
}

// Issuer returns key hash of the pool which minted the block.
func (h *Header) Issuer() praos.KeyHash {
	return h.body.Issuer
}

// BodyHash returns hash of the block body.
func (h *Header) BodyHash() praos.Hash32 {
	return h.body.BodyHash
}

// BodySize returns size of the block body in bytes.
func (h *Header) BodySize() uint64 {
	return h.body.BodySize
}

// IsEpochBoundary returns whether the block is an epoch boundary block.
func (h *Header) IsEpochBoundary() bool {
	return h.body.EpochBoundary
}

// Hash computes hash of the block, which is the blake2b hash of the encoded header.
func (h *Header) Hash() (hash praos.Hash32) {
	if cached := h.cache.hash.Load(); cached != nil {
		return cached.(praos.Hash32)
	}
	defer func() { h.cache.hash.Store(hash) }()

	hw := praos.NewBlake2b()
	rlp.Encode(hw, &h.body)
	hw.Sum(hash[:0])
	return
}

// Point returns the chain point of the block.
func (h *Header) Point() praos.Point {
	return praos.NewPoint(h.body.Slot, h.Hash())
}

// EncodeRLP implements rlp.Encoder
func (h *Header) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &h.body)
}

// DecodeRLP implements rlp.Decoder.
func (h *Header) DecodeRLP(s *rlp.Stream) error {
	var body headerBody

	if err := s.Decode(&body); err != nil {
		return err
	}
	*h = Header{body: body}
	return nil
}

func (h *Header) String() string {
	return fmt.Sprintf(`Header(%v):
	Slot:			%v
	Number:			%v
	PrevHash:		%v
	Issuer:			%v
	BodyHash:		%v
	BodySize:		%v
	EpochBoundary:	%v`, h.Hash(), h.body.Slot, h.body.Number, h.body.PrevHash,
		h.body.Issuer, h.body.BodyHash, h.body.BodySize, h.body.EpochBoundary)
}
