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

package commitment

import (
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/nuts-foundation/nuts-anchor/crypto"
)

// Nonce is the secret salt of a single statement. The zero Nonce means "withheld".
type Nonce [crypto.NonceSize]byte

// NewNonce generates a random nonce.
func NewNonce() Nonce {
	return crypto.GenerateNonce()
}

// Empty reports whether the nonce is withheld (all zeros).
func (n Nonce) Empty() bool {
	return n == Nonce{}
}

// String returns the base58 form of the nonce, or an empty string when withheld.
func (n Nonce) String() string {
	if n.Empty() {
		return ""
	}
	return base58.Encode(n[:])
}

// MarshalText encodes the nonce as base58, a withheld nonce as empty string.
func (n Nonce) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText parses a base58 nonce. An empty string yields a withheld nonce.
func (n *Nonce) UnmarshalText(text []byte) error {
	parsed, err := ParseNonce(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ParseNonce parses a base58 encoded nonce.
func ParseNonce(input string) (Nonce, error) {
	var result Nonce
	if input == "" {
		return result, nil
	}
	data, err := base58.Decode(input)
	if err != nil {
		return result, fmt.Errorf("invalid nonce: %w", err)
	}
	if len(data) != len(result) {
		return result, fmt.Errorf("invalid nonce: incorrect length (%d)", len(data))
	}
	copy(result[:], data)
	return result, nil
}
