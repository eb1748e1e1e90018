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

package issuer

import (
	"context"
	"fmt"
	"time"

	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-anchor/anchor/log"
	"github.com/nuts-foundation/nuts-anchor/commitment"
	"github.com/nuts-foundation/nuts-anchor/core"
	"github.com/nuts-foundation/nuts-anchor/credential"
	"github.com/nuts-foundation/nuts-anchor/identifier"
	"github.com/nuts-foundation/nuts-anchor/ledger"
)

// Issuer anchors credentials on the ledger on behalf of an attester.
type Issuer struct {
	submitter ledger.Submitter
	timeout   time.Duration
}

// New creates an Issuer. Every ledger call is bounded by the given timeout.
func New(submitter ledger.Submitter, timeout time.Duration) *Issuer {
	return &Issuer{
		submitter: submitter,
		timeout:   timeout,
	}
}

// Issue checks the draft, anchors its root digest and assembles the proof.
// The returned Issuance reflects how far issuance got, also when an error is returned (except for an invalid draft).
// When the ledger rejects the transaction the error matches ErrAnchoringRejected and the issuance stays in StateCommitted.
// Submission is not retried. A draft is single-use, also after a rejection: a new attempt starts from a new draft,
// so the credential gets fresh nonces and a new root digest.
func (i *Issuer) Issue(ctx context.Context, draft Draft, attester did.DID) (*Issuance, error) {
	if err := commitment.VerifyNonces(draft.Claim, draft.NonceMap, draft.Hashes); err != nil {
		return nil, err
	}
	digests, err := commitment.Digest(draft.Claim, draft.NonceMap)
	if err != nil {
		return nil, err
	}
	if len(digests.Hashes) != len(draft.Hashes) {
		return nil, fmt.Errorf("%w: %d hashes for %d statements", commitment.ErrNonceMapMismatch, len(draft.Hashes), len(digests.Hashes))
	}
	rootDigest, err := commitment.Aggregate(digests.Hashes, draft.Legitimations, draft.DelegationID)
	if err != nil {
		return nil, err
	}

	issuance := newIssuance(draft)
	issuance.commit(digests, rootDigest)
	logger := log.Logger().
		WithField(core.LogFieldCredentialID, issuance.ID()).
		WithField(core.LogFieldCType, draft.Claim.CTypeID).
		WithField(core.LogFieldAttester, attester)

	block, err := i.submit(ctx, ledger.AnchorRequest{
		Key:          rootDigest,
		Kind:         ledger.AttestationKind,
		CTypeID:      draft.Claim.CTypeID,
		Attester:     attester,
		DelegationID: draft.DelegationID,
	})
	if err != nil {
		logger.WithError(err).Warn("Unable to anchor credential")
		return issuance, err
	}
	issuance.anchor(block)
	issuance.finalize(attester)
	logger.WithField(core.LogFieldBlockNumber, block.Number).Info("Credential anchored")
	return issuance, nil
}

// IssuePublic anchors a public credential by its derived identifier. The returned copy carries the identifier,
// the block number and a PublicCredentialProofV1 proof.
func (i *Issuer) IssuePublic(ctx context.Context, publicCredential credential.PublicCredential, attester did.DID) (*credential.PublicCredential, error) {
	publicCredential.Attester = attester
	id, err := publicCredential.DeriveID()
	if err != nil {
		return nil, err
	}
	key, err := id.Digest()
	if err != nil {
		return nil, err
	}
	block, err := i.submit(ctx, ledger.AnchorRequest{
		Key:          key,
		Kind:         ledger.PublicCredentialKind,
		CTypeID:      publicCredential.CTypeID,
		Attester:     attester,
		DelegationID: publicCredential.Delegation,
	})
	if err != nil {
		return nil, err
	}
	number := block.Number
	publicCredential.ID = id
	publicCredential.BlockNumber = &number
	publicCredential.Proof = &credential.Proof{
		Type:        credential.PublicCredentialProofType,
		AnchorBlock: block.Hash,
	}
	log.Logger().
		WithField(core.LogFieldCredentialID, id).
		WithField(core.LogFieldBlockNumber, number).
		Info("Public credential anchored")
	return &publicCredential, nil
}

// Revoke revokes the credential with the given identifier. Revocation can't be undone.
func (i *Issuer) Revoke(ctx context.Context, id identifier.ID, attester did.DID) (ledger.BlockRef, error) {
	key, err := id.Digest()
	if err != nil {
		return ledger.BlockRef{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()
	block, err := i.submitter.Revoke(ctx, key, attester)
	if err != nil {
		if ledger.IsRejection(err) {
			return ledger.BlockRef{}, core.WrapError(ErrRevocationRejected, err)
		}
		return ledger.BlockRef{}, fmt.Errorf("unable to revoke credential: %w", err)
	}
	log.Logger().
		WithField(core.LogFieldCredentialID, id).
		WithField(core.LogFieldBlockNumber, block.Number).
		Info("Credential revoked")
	return block, nil
}

func (i *Issuer) submit(ctx context.Context, request ledger.AnchorRequest) (ledger.BlockRef, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()
	block, err := i.submitter.Submit(ctx, request)
	if err != nil {
		if ledger.IsRejection(err) {
			return ledger.BlockRef{}, core.WrapError(ErrAnchoringRejected, err)
		}
		return ledger.BlockRef{}, fmt.Errorf("unable to anchor credential: %w", err)
	}
	return block, nil
}
