// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package block defines the block record kept by the chain databases.
// The body is opaque to consensus, only its hash and size are committed in the header.
package block

import (
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/praos/praos"
)

// Block is an immutable block type.
type Block struct {
	header *Header
	body   []byte

	cache struct {
		size atomic.Uint64
	}
}

// Compose compose a block with all needed components.
// Note: This method is usually to recover a block by its portions, and the BodyHash is not verified.
// To build up a block, use a Builder.
func Compose(header *Header, body []byte) *Block {
	return &Block{
		header: header,
		body:   append([]byte(nil), body...),
	}
}

// Header returns the block header.
func (b *Block) Header() *Header {
	return b.header
}

// Body returns a copy of the opaque block body.
func (b *Block) Body() []byte {
	return append([]byte(nil), b.body...)
}

// Hash returns the block hash.
func (b *Block) Hash() praos.Hash32 {
	return b.header.Hash()
}

// Point returns the chain point of the block.
func (b *Block) Point() praos.Point {
	return b.header.Point()
}

// Verify checks the body against the hash and size committed in the header.
func (b *Block) Verify() error {
	if uint64(len(b.body)) != b.header.BodySize() {
		return errors.Errorf("body size mismatch: want %v, got %v", b.header.BodySize(), len(b.body))
	}
	if praos.Blake2b(b.body) != b.header.BodyHash() {
		return errors.New("body hash mismatch")
	}
	return nil
}

// Size returns block size in bytes when RLP encoded.
func (b *Block) Size() uint64 {
	if cached := b.cache.size.Load(); cached != 0 {
		return cached
	}
	var size writeCounter
	rlp.Encode(&size, b)
	b.cache.size.Store(uint64(size))
	return uint64(size)
}

// EncodeRLP implements rlp.Encoder.
func (b *Block) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{
		b.header,
		b.body,
	})
}

// Encode returns the RLP encoded bytes of the block.
func (b *Block) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(b)
}

// Decoder to decode block from bytes.
// Since Block is immutable, it's not suitable to implement rlp.Decoder.
type Decoder struct {
	Result *Block
}

// DecodeRLP implements rlp.Decoder.
func (d *Decoder) DecodeRLP(s *rlp.Stream) error {
	payload := struct {
		Header Header
		Body   []byte
	}{}

	if err := s.Decode(&payload); err != nil {
		return err
	}
	d.Result = &Block{
		header: &payload.Header,
		body:   payload.Body,
	}
	return nil
}

// Decode decodes the block from the RLP encoded bytes.
func Decode(data []byte) (*Block, error) {
	var d Decoder
	if err := rlp.DecodeBytes(data, &d); err != nil {
		return nil, err
	}
	return d.Result, nil
}

type writeCounter uint64

func (c *writeCounter) Write(b []byte) (int, error) {
	*c += writeCounter(len(b))
	return len(b), nil
}
