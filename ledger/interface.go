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

package ledger

import (
	"context"
	"errors"

	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
)

// ErrNotFound is returned when no attestation record exists for the given key.
var ErrNotFound = errors.New("attestation not found")

// ErrUnknownBlock is returned when a query references a block the ledger doesn't know.
var ErrUnknownBlock = errors.New("unknown block")

// ErrDuplicateKey is returned when anchoring a key that is already anchored.
var ErrDuplicateKey = errors.New("key already anchored")

// ErrUnknownCType is returned when anchoring against a CType that isn't registered on the ledger.
var ErrUnknownCType = errors.New("unknown CType")

// ErrUnauthorized is returned when the attester may not anchor (with the given delegation) or revoke.
var ErrUnauthorized = errors.New("attester not authorized")

// ErrAlreadyRevoked is returned when revoking an attestation that is already revoked.
var ErrAlreadyRevoked = errors.New("attestation already revoked")

// IsRejection reports whether the error is the ledger refusing a transaction, as opposed to failing to process it.
func IsRejection(err error) bool {
	return errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrUnknownCType) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrAlreadyRevoked) ||
		errors.Is(err, ErrNotFound)
}

// Kind distinguishes attestations of root digests from public credentials.
type Kind string

const (
	// AttestationKind records are keyed by the root digest of a credential.
	AttestationKind Kind = "attestation"
	// PublicCredentialKind records are keyed by the public credential identifier and carry a block number.
	PublicCredentialKind Kind = "public"
)

// AttestationRecord is the ledger state of an anchored credential.
type AttestationRecord struct {
	CTypeID      hash.Blake2b256Hash  `json:"cTypeHash"`
	Attester     did.DID              `json:"attester"`
	DelegationID *hash.Blake2b256Hash `json:"delegationId,omitempty"`
	// Revoked only ever changes from false to true.
	Revoked bool `json:"revoked"`
	// BlockNumber is set for public credentials only.
	BlockNumber *uint64 `json:"blockNumber,omitempty"`
}

// BlockRef references a block on the ledger.
type BlockRef struct {
	Number uint64              `json:"number"`
	Hash   hash.Blake2b256Hash `json:"hash"`
}

// AnchorRequest is the content of an anchoring transaction. It never contains claim contents or nonces.
type AnchorRequest struct {
	// Key is the root digest (attestations) or identifier digest (public credentials).
	Key          hash.Blake2b256Hash
	Kind         Kind
	CTypeID      hash.Blake2b256Hash
	Attester     did.DID
	DelegationID *hash.Blake2b256Hash
}

// Submitter submits transactions to the ledger.
type Submitter interface {
	// Submit anchors a key and returns the block it was included in.
	// It returns ErrDuplicateKey, ErrUnknownCType or ErrUnauthorized when the ledger rejects the transaction.
	Submit(ctx context.Context, request AnchorRequest) (BlockRef, error)
	// Revoke marks the attestation with the given key revoked.
	// It returns ErrNotFound, ErrUnauthorized or ErrAlreadyRevoked when the ledger rejects the transaction.
	Revoke(ctx context.Context, key hash.Blake2b256Hash, attester did.DID) (BlockRef, error)
}

// Querier reads ledger state.
type Querier interface {
	// GetAttestation returns the record for the given key as it was at the given block, or the latest state when atBlock is nil.
	// It returns ErrNotFound when no record exists (at that block) and ErrUnknownBlock when the block is unknown.
	GetAttestation(ctx context.Context, key hash.Blake2b256Hash, atBlock *hash.Blake2b256Hash) (*AttestationRecord, error)
}

// Ledger combines submission and queries.
type Ledger interface {
	Submitter
	Querier
}
