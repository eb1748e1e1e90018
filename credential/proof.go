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
	"encoding/json"
	"fmt"

	"github.com/nuts-foundation/nuts-anchor/commitment"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
)

// ProofType identifies the kind of proof on a credential document.
type ProofType string

const (
	// AttestationProofType is the proof of a credential anchored by its root digest.
	AttestationProofType ProofType = "AttestationProofV1"
	// PublicCredentialProofType is the proof of a public credential anchored by its identifier.
	PublicCredentialProofType ProofType = "PublicCredentialProofV1"
)

// Proof is the portable proof of anchoring. Commitments are sorted ascending by raw bytes and
// Salt is aligned with them; a withheld salt is empty.
type Proof struct {
	Type        ProofType
	AnchorBlock hash.Blake2b256Hash
	Commitments []hash.Blake2b256Hash
	Salt        []commitment.Nonce
}

type proofJSON struct {
	Type        ProofType          `json:"type"`
	AnchorBlock string             `json:"anchorBlock,omitempty"`
	Commitments []string           `json:"commitments,omitempty"`
	Salt        []commitment.Nonce `json:"salt,omitempty"`
}

// MarshalJSON encodes the block hash and commitments as base58.
func (p Proof) MarshalJSON() ([]byte, error) {
	result := proofJSON{
		Type:        p.Type,
		Commitments: make([]string, len(p.Commitments)),
		Salt:        p.Salt,
	}
	if !p.AnchorBlock.Empty() {
		result.AnchorBlock = p.AnchorBlock.Base58()
	}
	for i, c := range p.Commitments {
		result.Commitments[i] = c.Base58()
	}
	return json.Marshal(result)
}

// UnmarshalJSON decodes a proof with base58 encoded block hash, commitments and salt.
func (p *Proof) UnmarshalJSON(data []byte) error {
	var raw proofJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	anchorBlock, err := hash.ParseBase58(raw.AnchorBlock)
	if err != nil {
		return fmt.Errorf("invalid anchorBlock: %w", err)
	}
	commitments := make([]hash.Blake2b256Hash, len(raw.Commitments))
	for i, c := range raw.Commitments {
		if commitments[i], err = hash.ParseBase58(c); err != nil {
			return fmt.Errorf("invalid commitment %d: %w", i, err)
		}
	}
	*p = Proof{
		Type:        raw.Type,
		AnchorBlock: anchorBlock,
		Commitments: commitments,
		Salt:        raw.Salt,
	}
	return nil
}

// Copy returns a deep copy of the proof.
func (p Proof) Copy() Proof {
	result := p
	result.Commitments = append([]hash.Blake2b256Hash(nil), p.Commitments...)
	result.Salt = append([]commitment.Nonce(nil), p.Salt...)
	return result
}
