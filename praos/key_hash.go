// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package praos

import "encoding/hex"

// KeyHashLength length of key hash in bytes.
const KeyHashLength = 28

// KeyHash is the blake2b-224 hash of a verification key. Block issuers
// (stake pools) and stake credentials are identified by it.
type KeyHash [KeyHashLength]byte

// String implements the stringer interface
func (k KeyHash) String() string {
	return "0x" + hex.EncodeToString(k[:])
}

// Bytes returns byte slice form of key hash.
func (k KeyHash) Bytes() []byte {
	return k[:]
}

// IsZero returns if KeyHash has all zero bytes.
func (k KeyHash) IsZero() bool {
	return k == KeyHash{}
}

// ParseKeyHash convert string presented key hash into KeyHash type.
func ParseKeyHash(s string) (KeyHash, error) {
	b, err := parseHex(s, KeyHashLength)
	if err != nil {
		return KeyHash{}, err
	}
	var k KeyHash
	copy(k[:], b)
	return k, nil
}

// BytesToKeyHash converts bytes slice into key hash.
// If b is larger than key hash length, b will be cropped (from the left).
// If b is smaller than key hash length, b will be extended (from the left).
func BytesToKeyHash(b []byte) (k KeyHash) {
	if len(b) > len(k) {
		b = b[len(b)-len(k):]
	}
	copy(k[len(k)-len(b):], b)
	return
}

// NewKeyHash hashes the given verification key.
func NewKeyHash(vkey []byte) KeyHash {
	return Blake2b224(vkey)
}
