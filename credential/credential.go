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

package credential

import (
	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-anchor/claim"
	"github.com/nuts-foundation/nuts-anchor/commitment"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/nuts-foundation/nuts-anchor/identifier"
)

// Credential is a claim attested by an attester, identified by its root digest.
type Credential struct {
	ID            identifier.ID         `json:"id"`
	Claim         claim.Claim           `json:"claim"`
	Attester      did.DID               `json:"attester"`
	Legitimations []hash.Blake2b256Hash `json:"legitimations,omitempty"`
	DelegationID  *hash.Blake2b256Hash  `json:"delegationId,omitempty"`
	Proof         Proof                 `json:"proof"`
}

// Disclose returns a disclosure view of the credential that only contains the given properties.
// The salt of every withheld property is blanked, the commitments stay complete so the root digest can still be
// recomputed. The credential itself is not modified.
func (c Credential) Disclose(properties ...string) (Credential, error) {
	if len(c.Proof.Salt) != len(c.Proof.Commitments) {
		return Credential{}, commitment.ErrSaltMisaligned
	}
	statements, err := commitment.Statements(c.Claim)
	if err != nil {
		return Credential{}, err
	}
	kept := make(map[string]bool, len(properties))
	for _, p := range properties {
		kept[p] = true
	}
	proof := c.Proof.Copy()
	for _, s := range statements {
		if s.Binding || kept[s.Property] {
			continue
		}
		digest := s.Digest()
		for i, nonce := range proof.Salt {
			if !nonce.Empty() && commitment.SaltedHash(nonce, digest).Equals(proof.Commitments[i]) {
				proof.Salt[i] = commitment.Nonce{}
			}
		}
	}
	result := c
	result.Claim = c.Claim.Only(properties...)
	result.Legitimations = append([]hash.Blake2b256Hash(nil), c.Legitimations...)
	result.Proof = proof
	return result, nil
}

// PublicCredential is a credential about an asset, identified by the hash over its canonical encoding and attester.
type PublicCredential struct {
	ID          identifier.ID        `json:"id"`
	CTypeID     hash.Blake2b256Hash  `json:"cTypeHash"`
	Subject     string               `json:"subject"`
	Claims      claim.Contents       `json:"claims"`
	Delegation  *hash.Blake2b256Hash `json:"delegationId,omitempty"`
	Attester    did.DID              `json:"attester"`
	BlockNumber *uint64              `json:"blockNumber,omitempty"`
	Proof       *Proof               `json:"proof,omitempty"`
}

// Body returns the content the identifier of the public credential is derived from.
func (p PublicCredential) Body() identifier.PublicCredentialBody {
	return identifier.PublicCredentialBody{
		CTypeID:       p.CTypeID,
		Subject:       p.Subject,
		Claims:        p.Claims,
		Authorization: p.Delegation,
	}
}

// DeriveID recomputes the identifier from the credential content.
func (p PublicCredential) DeriveID() (identifier.ID, error) {
	return identifier.DerivePublicCredentialID(p.Body(), p.Attester)
}
