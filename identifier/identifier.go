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

package identifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/multiformats/go-multibase"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
)

const (
	// LegacyPrefix is the scheme tag of identifiers derived from a root digest.
	LegacyPrefix = "cred:"
	// PublicCredentialPrefix is the scheme tag of public credential identifiers.
	PublicCredentialPrefix = "pubcred:0x"
)

// ErrInvalidID is returned when a string can't be parsed as credential identifier.
var ErrInvalidID = errors.New("invalid credential identifier")

// Scheme identifies how an ID was derived.
type Scheme int

const (
	// UnknownScheme is the scheme of invalid identifiers.
	UnknownScheme Scheme = iota
	// LegacyScheme identifiers are the multibase (base58btc) form of a root digest.
	LegacyScheme
	// PublicCredentialScheme identifiers are the hex form of the hash over the canonically encoded public credential.
	PublicCredentialScheme
)

// ID is a content-addressed credential identifier.
type ID string

// FromRootDigest returns the identifier of a credential with the given root digest.
func FromRootDigest(root hash.Blake2b256Hash) ID {
	// only fails for unknown encodings
	encoded, _ := multibase.Encode(multibase.Base58BTC, root.Slice())
	return ID(LegacyPrefix + encoded)
}

// FromPublicCredentialHash returns the public credential identifier for the given hash.
func FromPublicCredentialHash(h hash.Blake2b256Hash) ID {
	return ID(PublicCredentialPrefix + h.String())
}

// Parse parses and normalizes a credential identifier of either scheme.
func Parse(input string) (ID, error) {
	switch {
	case strings.HasPrefix(input, LegacyPrefix):
		encoding, data, err := multibase.Decode(strings.TrimPrefix(input, LegacyPrefix))
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidID, err)
		}
		if encoding != multibase.Base58BTC {
			return "", fmt.Errorf("%w: unsupported multibase encoding '%c'", ErrInvalidID, encoding)
		}
		if len(data) != hash.Blake2b256HashSize {
			return "", fmt.Errorf("%w: incorrect digest length (%d)", ErrInvalidID, len(data))
		}
		return FromRootDigest(hash.FromSlice(data)), nil
	case strings.HasPrefix(input, PublicCredentialPrefix):
		h, err := hash.ParseHex(strings.TrimPrefix(input, PublicCredentialPrefix))
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidID, err)
		}
		if h.Empty() {
			return "", fmt.Errorf("%w: empty digest", ErrInvalidID)
		}
		return FromPublicCredentialHash(h), nil
	default:
		return "", fmt.Errorf("%w: unknown scheme", ErrInvalidID)
	}
}

// MustParse is like Parse but panics on error.
func MustParse(input string) ID {
	id, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the identifier as string.
func (id ID) String() string {
	return string(id)
}

// Scheme returns how the identifier was derived.
func (id ID) Scheme() Scheme {
	switch {
	case strings.HasPrefix(string(id), LegacyPrefix):
		return LegacyScheme
	case strings.HasPrefix(string(id), PublicCredentialPrefix):
		return PublicCredentialScheme
	default:
		return UnknownScheme
	}
}

// Digest returns the digest the identifier encodes: the root digest for legacy identifiers,
// the public credential hash otherwise. Ledger records are keyed by it.
func (id ID) Digest() (hash.Blake2b256Hash, error) {
	switch id.Scheme() {
	case LegacyScheme:
		_, data, err := multibase.Decode(strings.TrimPrefix(string(id), LegacyPrefix))
		if err != nil || len(data) != hash.Blake2b256HashSize {
			return hash.EmptyHash(), fmt.Errorf("%w: %s", ErrInvalidID, id)
		}
		return hash.FromSlice(data), nil
	case PublicCredentialScheme:
		h, err := hash.ParseHex(strings.TrimPrefix(string(id), PublicCredentialPrefix))
		if err != nil {
			return hash.EmptyHash(), fmt.Errorf("%w: %w", ErrInvalidID, err)
		}
		return h, nil
	default:
		return hash.EmptyHash(), fmt.Errorf("%w: unknown scheme", ErrInvalidID)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id), nil
}

// UnmarshalText parses the identifier, rejecting invalid ones.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
