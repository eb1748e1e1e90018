/*
 * Nuts node
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package hash

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// Blake2b256HashSize holds the size of a Blake2b-256 hash in bytes.
const Blake2b256HashSize = blake2b.Size256

// Blake2b256Hash is a Blake2b-256 hash over some bytes
type Blake2b256Hash [Blake2b256HashSize]byte

// Blake2b256Sum hashes the concatenation of the given byte slices in a single pass.
func Blake2b256Sum(data ...[]byte) Blake2b256Hash {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes
	for _, d := range data {
		_, _ = h.Write(d)
	}
	return FromSlice(h.Sum(nil))
}

// String returns the hash as a hexadecimal string (without 0x prefix).
func (h Blake2b256Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Hex returns the hash as a 0x-prefixed hexadecimal string.
func (h Blake2b256Hash) Hex() string {
	return "0x" + h.String()
}

// Base58 returns the hash encoded in base58 (Bitcoin alphabet).
func (h Blake2b256Hash) Base58() string {
	return base58.Encode(h[:])
}

// EmptyHash returns a Hash that is empty (initialized with zeros).
func EmptyHash() Blake2b256Hash {
	return [Blake2b256HashSize]byte{}
}

// Empty tests whether the Hash is empty (all zeros).
func (h Blake2b256Hash) Empty() bool {
	for _, b := range h {
		if b != 0 {
			return false
		}
	}
	return true
}

// Clone returns a copy of the Hash.
func (h Blake2b256Hash) Clone() Blake2b256Hash {
	clone := EmptyHash()
	copy(clone[:], h[:])
	return clone
}

// Slice returns the Hash as a slice. It does not copy the array.
func (h Blake2b256Hash) Slice() []byte {
	return h[:]
}

// Equals determines whether the given Hash is exactly the same (bytes match).
func (h Blake2b256Hash) Equals(other Blake2b256Hash) bool {
	return h.Compare(other) == 0
}

// Compare compares this Hash to another Hash using bytes.Compare.
func (h Blake2b256Hash) Compare(other Blake2b256Hash) int {
	return bytes.Compare(h[:], other[:])
}

// MarshalJSON marshals the hash as 0x-prefixed hex-encoded string
func (h Blake2b256Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Hex())
}

// UnmarshalJSON converts from (optionally 0x-prefixed) hex-encoded json value
func (h *Blake2b256Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHex(s)
	if err != nil {
		return err
	}
	copy(h[:], parsed[:])
	return nil
}

// FromSlice converts a byte slice to a Hash, returning a copy.
func FromSlice(slice []byte) Blake2b256Hash {
	result := EmptyHash()
	copy(result[:], slice)
	return result
}

// ParseHex parses the given input string as Hash. The 0x prefix is optional.
// If the input is invalid and can't be parsed as Hash, an error is returned.
func ParseHex(input string) (Blake2b256Hash, error) {
	input = strings.TrimPrefix(input, "0x")
	if input == "" {
		return EmptyHash(), nil
	}
	data, err := hex.DecodeString(input)
	if err != nil {
		return EmptyHash(), err
	}
	return fromExactSlice(data)
}

// ParseBase58 parses a base58 (Bitcoin alphabet) encoded Hash.
func ParseBase58(input string) (Blake2b256Hash, error) {
	if input == "" {
		return EmptyHash(), nil
	}
	data, err := base58.Decode(input)
	if err != nil {
		return EmptyHash(), err
	}
	return fromExactSlice(data)
}

func fromExactSlice(data []byte) (Blake2b256Hash, error) {
	if len(data) != Blake2b256HashSize {
		return EmptyHash(), fmt.Errorf("incorrect hash length (%d)", len(data))
	}
	return FromSlice(data), nil
}

// SortAscending sorts the given hashes in place by their raw bytes.
func SortAscending(hashes []Blake2b256Hash) {
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].Compare(hashes[j]) < 0
	})
}

// MarshalText encodes the hash as 0x-prefixed hex, allowing it to be used as JSON map key.
func (h Blake2b256Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText parses (optionally 0x-prefixed) hex.
func (h *Blake2b256Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	copy(h[:], parsed[:])
	return nil
}
