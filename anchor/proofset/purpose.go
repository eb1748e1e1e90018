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

package proofset

import (
	"context"
	"errors"
	"fmt"

	"github.com/nuts-foundation/nuts-anchor/credential"
)

// ErrProofMismatch is returned when a proof isn't fit for its declared type.
var ErrProofMismatch = errors.New("proof doesn't fit its type")

// VerifyFunc verifies a document against one of its proofs.
type VerifyFunc func(ctx context.Context, document credential.Document, proof credential.Proof) error

// ProofPurpose decides whether it applies to a proof and validates the document with it.
type ProofPurpose interface {
	Match(proof credential.Proof) bool
	Validate(ctx context.Context, document credential.Document, proof credential.Proof, verify VerifyFunc) Result
}

// Purpose enumerates the supported proof purposes.
type Purpose int

const (
	// AttestationPurpose is the purpose of proofs that anchor a root digest with commitments and salt.
	AttestationPurpose Purpose = iota + 1
	// PublicCredentialPurpose is the purpose of proofs that anchor a public credential identifier.
	PublicCredentialPurpose
)

var _ ProofPurpose = AttestationPurpose

var purposes = map[credential.ProofType]Purpose{
	credential.AttestationProofType:      AttestationPurpose,
	credential.PublicCredentialProofType: PublicCredentialPurpose,
}

// PurposeOf looks up the purpose for the given proof type.
func PurposeOf(proofType credential.ProofType) (Purpose, bool) {
	result, ok := purposes[proofType]
	return result, ok
}

func (p Purpose) String() string {
	switch p {
	case AttestationPurpose:
		return "attestation"
	case PublicCredentialPurpose:
		return "publicCredential"
	default:
		return fmt.Sprintf("Purpose(%d)", int(p))
	}
}

// Match reports whether the proof has the type of this purpose.
func (p Purpose) Match(proof credential.Proof) bool {
	purpose, ok := purposes[proof.Type]
	return ok && purpose == p
}

// Validate checks the shape of the proof for this purpose and calls verify.
func (p Purpose) Validate(ctx context.Context, document credential.Document, proof credential.Proof, verify VerifyFunc) Result {
	if !p.Match(proof) {
		return failed(proof, fmt.Errorf("%w: %s is not a %s proof", ErrProofMismatch, proof.Type, p))
	}
	switch p {
	case AttestationPurpose:
		if len(proof.Commitments) == 0 {
			return failed(proof, fmt.Errorf("%w: no commitments", ErrProofMismatch))
		}
	case PublicCredentialPurpose:
		if len(proof.Commitments) > 0 || len(proof.Salt) > 0 {
			return failed(proof, fmt.Errorf("%w: public credential proofs carry no commitments", ErrProofMismatch))
		}
	}
	if err := verify(ctx, document, proof); err != nil {
		return failed(proof, err)
	}
	return Result{Verified: true, Proof: proof}
}
