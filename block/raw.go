// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"
)

// Raw allows to partially decode components of an encoded block.
type Raw []byte

// headerElem returns the encoded header element, and the rest of the block list.
func (r Raw) headerElem() (elem, rest []byte, err error) {
	content, _, err := rlp.SplitList(r)
	if err != nil {
		return nil, nil, err
	}
	_, _, rest, err = rlp.Split(content)
	if err != nil {
		return nil, nil, err
	}
	return content[:len(content)-len(rest)], rest, nil
}

// DecodeHeader decode only the header.
func (r Raw) DecodeHeader() (*Header, error) {
	elem, _, err := r.headerElem()
	if err != nil {
		return nil, err
	}

	var header Header
	if err := rlp.Decode(bytes.NewReader(elem), &header); err != nil {
		return nil, err
	}
	return &header, nil
}

// HeaderSize returns the encoded size of the header.
func (r Raw) HeaderSize() (uint64, error) {
	elem, _, err := r.headerElem()
	if err != nil {
		return 0, err
	}
	return uint64(len(elem)), nil
}

// DecodeBody decode only the body.
func (r Raw) DecodeBody() ([]byte, error) {
	_, rest, err := r.headerElem()
	if err != nil {
		return nil, err
	}
	body, _, err := rlp.SplitString(rest)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), body...), nil
}

// Decode decodes the whole block.
func (r Raw) Decode() (*Block, error) {
	return Decode(r)
}
