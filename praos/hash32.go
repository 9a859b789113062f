// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package praos

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Hash32 array of 32 bytes, the blake2b-256 digest used as block hash.
type Hash32 [32]byte

var (
	_ json.Marshaler   = (*Hash32)(nil)
	_ json.Unmarshaler = (*Hash32)(nil)
)

// String implements stringer
func (h Hash32) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// AbbrevString returns abbrev string presentation.
func (h Hash32) AbbrevString() string {
	return fmt.Sprintf("0x%x…%x", h[:4], h[28:])
}

// Bytes returns byte slice form of Hash32.
func (h Hash32) Bytes() []byte {
	return h[:]
}

// IsZero returns if Hash32 has all zero bytes.
func (h Hash32) IsZero() bool {
	return h == Hash32{}
}

// MarshalJSON implements json.Marshaler.
func (h *Hash32) MarshalJSON() ([]byte, error) {
	if h == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(h.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *Hash32) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHash32(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash32 convert string presented into Hash32 type.
// The 0x prefix is optional.
func ParseHash32(s string) (Hash32, error) {
	b, err := parseHex(s, 32)
	if err != nil {
		return Hash32{}, err
	}
	var h Hash32
	copy(h[:], b)
	return h, nil
}

// MustParseHash32 convert string presented into Hash32 type, panic on error.
func MustParseHash32(s string) Hash32 {
	h, err := ParseHash32(s)
	if err != nil {
		panic(err)
	}
	return h
}

// BytesToHash32 converts bytes slice into Hash32.
// If b is larger than Hash32 length, b will be cropped (from the left).
// If b is smaller than Hash32 length, b will be extended (from the left).
func BytesToHash32(b []byte) (h Hash32) {
	if len(b) > len(h) {
		b = b[len(b)-len(h):]
	}
	copy(h[len(h)-len(b):], b)
	return
}

func parseHex(s string, size int) ([]byte, error) {
	if len(s) == size*2 {
	} else if len(s) == size*2+2 {
		if strings.ToLower(s[:2]) != "0x" {
			return nil, errors.New("invalid prefix")
		}
		s = s[2:]
	} else {
		return nil, errors.New("invalid length")
	}
	return hex.DecodeString(s)
}
