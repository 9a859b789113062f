// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"github.com/vechain/praos/praos"
)

// Builder to make it easy to build a block object.
type Builder struct {
	headerBody headerBody
	body       []byte
}

// Slot set slot.
func (b *Builder) Slot(slot uint64) *Builder {
	b.headerBody.Slot = slot
	return b
}

// Number set block number.
func (b *Builder) Number(num uint64) *Builder {
	b.headerBody.Number = num
	return b
}

// PrevHash set hash of the previous block.
func (b *Builder) PrevHash(hash praos.Hash32) *Builder {
	b.headerBody.PrevHash = hash
	return b
}

// Parent sets prev hash and number from the parent header.
func (b *Builder) Parent(parent *Header) *Builder {
	b.headerBody.PrevHash = parent.Hash()
	b.headerBody.Number = parent.Number() + 1
	return b
}

// Issuer set issuer.
func (b *Builder) Issuer(issuer praos.KeyHash) *Builder {
	b.headerBody.Issuer = issuer
	return b
}

// EpochBoundary marks the block as epoch boundary block.
func (b *Builder) EpochBoundary(ebb bool) *Builder {
	b.headerBody.EpochBoundary = ebb
	return b
}

// Body set the opaque body.
func (b *Builder) Body(body []byte) *Builder {
	b.body = append([]byte(nil), body...)
	return b
}

// Build build a block object.
func (b *Builder) Build() *Block {
	body := b.headerBody
	body.BodyHash = praos.Blake2b(b.body)
	body.BodySize = uint64(len(b.body))

	return &Block{
		header: &Header{body: body},
		body:   b.body,
	}
}
