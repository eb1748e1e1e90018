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
	"sort"

	"github.com/nuts-foundation/nuts-anchor/claim"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
)

// NonceMap maps unsalted statement digests to their nonce.
type NonceMap map[hash.Blake2b256Hash]Nonce

// StatementDigest is the digest of one statement together with its salt.
type StatementDigest struct {
	Property   string              `json:"property"`
	Binding    bool                `json:"binding,omitempty"`
	Digest     hash.Blake2b256Hash `json:"digest"`
	Nonce      Nonce               `json:"nonce"`
	SaltedHash hash.Blake2b256Hash `json:"saltedHash"`
}

// DigestSet is the result of digesting a claim. It is immutable once created.
type DigestSet struct {
	// Hashes contains the salted hash of every statement, sorted ascending by raw bytes.
	Hashes []hash.Blake2b256Hash `json:"hashes"`
	// NonceMap contains the nonce of every statement, keyed by its unsalted digest.
	NonceMap NonceMap `json:"nonceMap"`
	// Statements lists the statement digests in statement order (bindings first, then properties by name).
	// It is not serialized: digesting the claim with NonceMap restores it.
	Statements []StatementDigest `json:"-"`
}

// Salt returns the nonces aligned with Hashes. Nonces of properties not accepted by disclose are left empty (withheld),
// the nonces of the bindings are always returned.
func (d DigestSet) Salt(disclose func(property string) bool) []Nonce {
	bySaltedHash := make(map[hash.Blake2b256Hash]StatementDigest, len(d.Statements))
	for _, s := range d.Statements {
		bySaltedHash[s.SaltedHash] = s
	}
	result := make([]Nonce, len(d.Hashes))
	for i, h := range d.Hashes {
		s, ok := bySaltedHash[h]
		if ok && (disclose == nil || s.Binding || disclose(s.Property)) {
			result[i] = s.Nonce
		}
	}
	return result
}

// Digest salts and hashes every statement of the claim. Nonces found in the given map (keyed by the unsalted
// statement digest) are reused, others are generated. Digesting again with the returned NonceMap yields the same
// Hashes, and digesting a claim with properties removed yields a subset of them.
func Digest(c claim.Claim, nonces NonceMap) (*DigestSet, error) {
	statements, err := Statements(c)
	if err != nil {
		return nil, err
	}
	result := &DigestSet{
		Hashes:     make([]hash.Blake2b256Hash, 0, len(statements)),
		NonceMap:   make(NonceMap, len(statements)),
		Statements: make([]StatementDigest, 0, len(statements)),
	}
	for _, s := range statements {
		digest := s.Digest()
		nonce, ok := nonces[digest]
		if !ok {
			nonce = NewNonce()
		}
		salted := SaltedHash(nonce, digest)
		result.Hashes = append(result.Hashes, salted)
		result.NonceMap[digest] = nonce
		result.Statements = append(result.Statements, StatementDigest{
			Property:   s.Property,
			Binding:    s.Binding,
			Digest:     digest,
			Nonce:      nonce,
			SaltedHash: salted,
		})
	}
	hash.SortAscending(result.Hashes)
	return result, nil
}

// VerifyNonces re-digests the claim with the given nonces only, and checks every salted hash is present in hashes.
// It returns a NonceMapMismatchError listing every statement that has no nonce or doesn't reproduce a hash.
func VerifyNonces(c claim.Claim, nonces NonceMap, hashes []hash.Blake2b256Hash) error {
	statements, err := Statements(c)
	if err != nil {
		return err
	}
	known := make(map[hash.Blake2b256Hash]bool, len(hashes))
	for _, h := range hashes {
		known[h] = true
	}
	var mismatches []string
	for _, s := range statements {
		digest := s.Digest()
		nonce, ok := nonces[digest]
		if !ok || !known[SaltedHash(nonce, digest)] {
			mismatches = append(mismatches, s.Property)
		}
	}
	if len(mismatches) > 0 {
		return &NonceMapMismatchError{Properties: mismatches}
	}
	return nil
}

// MatchSalted checks every statement of the (possibly partially disclosed) claim against the commitments,
// using the salt that is aligned with them. An empty salt entry is a withheld statement and never matches.
// It returns the properties of all statements that don't match any commitment, in ascending order.
func MatchSalted(c claim.Claim, commitments []hash.Blake2b256Hash, salt []Nonce) ([]string, error) {
	if len(commitments) != len(salt) {
		return nil, ErrSaltMisaligned
	}
	statements, err := Statements(c)
	if err != nil {
		return nil, err
	}
	var mismatches []string
	for _, s := range statements {
		if !matchesAny(s.Digest(), commitments, salt) {
			mismatches = append(mismatches, s.Property)
		}
	}
	sort.Strings(mismatches)
	return mismatches, nil
}

func matchesAny(digest hash.Blake2b256Hash, commitments []hash.Blake2b256Hash, salt []Nonce) bool {
	for i, nonce := range salt {
		if !nonce.Empty() && SaltedHash(nonce, digest).Equals(commitments[i]) {
			return true
		}
	}
	return false
}
