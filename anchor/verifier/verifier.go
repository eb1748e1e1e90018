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

package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-anchor/anchor/log"
	"github.com/nuts-foundation/nuts-anchor/commitment"
	"github.com/nuts-foundation/nuts-anchor/core"
	"github.com/nuts-foundation/nuts-anchor/credential"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/nuts-foundation/nuts-anchor/identifier"
	"github.com/nuts-foundation/nuts-anchor/ledger"
)

// Verifier checks credentials against their proof and the ledger. It never writes to the ledger.
type Verifier struct {
	querier ledger.Querier
	timeout time.Duration
}

// New creates a Verifier. Every ledger query is bounded by the given timeout.
func New(querier ledger.Querier, timeout time.Duration) *Verifier {
	return &Verifier{
		querier: querier,
		timeout: timeout,
	}
}

// expectation holds what the credential claims about its attestation.
type expectation struct {
	cTypeID      hash.Blake2b256Hash
	attester     did.DID
	delegationID *hash.Blake2b256Hash
	blockNumber  *uint64
}

// Verify checks the (possibly partially disclosed) credential, in order:
// the commitments must reproduce the credential identifier, every disclosed statement must match a commitment,
// the attestation at the anchor block must match the credential and the credential must not be revoked.
func (v *Verifier) Verify(ctx context.Context, cred credential.Credential) error {
	err := v.verify(ctx, cred)
	v.report(cred.ID, err)
	return err
}

func (v *Verifier) verify(ctx context.Context, cred credential.Credential) error {
	if cred.Proof.Type != "" && cred.Proof.Type != credential.AttestationProofType {
		return fmt.Errorf("%w: unsupported proof type %s", ErrMalformedCredential, cred.Proof.Type)
	}
	if cred.ID.Scheme() != identifier.LegacyScheme {
		return fmt.Errorf("%w: %s is not a root digest identifier", ErrMalformedCredential, cred.ID)
	}
	key, err := cred.ID.Digest()
	if err != nil {
		return core.WrapError(ErrMalformedCredential, err)
	}

	// 1. the commitments must reproduce the identifier
	rootDigest, err := commitment.Aggregate(cred.Proof.Commitments, cred.Legitimations, cred.DelegationID)
	if err != nil {
		return core.WrapError(ErrMalformedCredential, err)
	}
	if !rootDigest.Equals(key) {
		return &TamperedContentError{ID: cred.ID, Recomputed: rootDigest}
	}

	// 2. every disclosed statement must match a commitment
	mismatches, err := commitment.MatchSalted(cred.Claim, cred.Proof.Commitments, cred.Proof.Salt)
	if err != nil {
		return core.WrapError(ErrMalformedCredential, err)
	}
	if len(mismatches) > 0 {
		return &DisclosedAttributeMismatchError{Properties: mismatches}
	}

	// 3. and 4. the ledger must hold a matching, unrevoked attestation
	return v.checkLedger(ctx, key, cred.Proof.AnchorBlock, expectation{
		cTypeID:      cred.Claim.CTypeID,
		attester:     cred.Attester,
		delegationID: cred.DelegationID,
	})
}

// VerifyPublic checks a public credential: its identifier must be derived from its content,
// the attestation must match it (including the block number) and it must not be revoked.
func (v *Verifier) VerifyPublic(ctx context.Context, publicCredential credential.PublicCredential) error {
	err := v.verifyPublic(ctx, publicCredential)
	v.report(publicCredential.ID, err)
	return err
}

func (v *Verifier) verifyPublic(ctx context.Context, publicCredential credential.PublicCredential) error {
	var anchorBlock hash.Blake2b256Hash
	if publicCredential.Proof != nil {
		if publicCredential.Proof.Type != credential.PublicCredentialProofType {
			return fmt.Errorf("%w: unsupported proof type %s", ErrMalformedCredential, publicCredential.Proof.Type)
		}
		anchorBlock = publicCredential.Proof.AnchorBlock
	}
	if publicCredential.ID.Scheme() != identifier.PublicCredentialScheme {
		return fmt.Errorf("%w: %s is not a public credential identifier", ErrMalformedCredential, publicCredential.ID)
	}
	key, err := publicCredential.ID.Digest()
	if err != nil {
		return core.WrapError(ErrMalformedCredential, err)
	}
	derived, err := publicCredential.DeriveID()
	if err != nil {
		return core.WrapError(ErrMalformedCredential, err)
	}
	if derived != publicCredential.ID {
		recomputed, _ := derived.Digest()
		return &TamperedContentError{ID: publicCredential.ID, Recomputed: recomputed}
	}
	return v.checkLedger(ctx, key, anchorBlock, expectation{
		cTypeID:      publicCredential.CTypeID,
		attester:     publicCredential.Attester,
		delegationID: publicCredential.Delegation,
		blockNumber:  publicCredential.BlockNumber,
	})
}

// checkLedger compares the attestation at the anchor block (latest if empty) with the expectation,
// then checks revocation on the latest attestation.
func (v *Verifier) checkLedger(ctx context.Context, key hash.Blake2b256Hash, anchorBlock hash.Blake2b256Hash, expected expectation) error {
	var atBlock *hash.Blake2b256Hash
	if !anchorBlock.Empty() {
		atBlock = &anchorBlock
	}
	record, err := v.getAttestation(ctx, key, atBlock)
	if err != nil {
		return err
	}
	if mismatches := expected.compare(*record); len(mismatches) > 0 {
		return &AttestationDataMismatchError{Fields: mismatches}
	}
	if atBlock != nil {
		// the proof is checked at the anchor block, revocation always against the latest state
		if record, err = v.getAttestation(ctx, key, nil); err != nil {
			return err
		}
	}
	if record.Revoked {
		return ErrCredentialRevoked
	}
	return nil
}

func (v *Verifier) getAttestation(ctx context.Context, key hash.Blake2b256Hash, atBlock *hash.Blake2b256Hash) (*ledger.AttestationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	record, err := v.querier.GetAttestation(ctx, key, atBlock)
	if err == nil && record == nil {
		err = ledger.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) || errors.Is(err, ledger.ErrUnknownBlock) {
			return nil, core.WrapError(ErrAttestationNotFound, err)
		}
		return nil, core.WrapError(ErrLedgerUnavailable, err)
	}
	return record, nil
}

func (e expectation) compare(record ledger.AttestationRecord) []string {
	var result []string
	if !record.CTypeID.Equals(e.cTypeID) {
		result = append(result, "cTypeHash")
	}
	if !record.Attester.Equals(e.attester) {
		result = append(result, "attester")
	}
	if !equalOptionalHash(record.DelegationID, e.delegationID) {
		result = append(result, "delegationId")
	}
	if e.blockNumber != nil && (record.BlockNumber == nil || *record.BlockNumber != *e.blockNumber) {
		result = append(result, "blockNumber")
	}
	return result
}

func equalOptionalHash(a, b *hash.Blake2b256Hash) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(*b)
}

func (v *Verifier) report(id identifier.ID, err error) {
	status := StatusOf(err)
	verificationsCounter.WithLabelValues(string(status)).Inc()
	entry := log.Logger().
		WithField(core.LogFieldCredentialID, id).
		WithField("status", status)
	if err != nil {
		entry.WithError(err).Debug("Credential verification failed")
		return
	}
	entry.Debug("Credential verified")
}

// VerifyAttestationProof verifies the document as credential with the given attestation proof.
func (v *Verifier) VerifyAttestationProof(ctx context.Context, document credential.Document, proof credential.Proof) error {
	cred, err := document.Credential(proof)
	if err != nil {
		return core.WrapError(ErrMalformedCredential, err)
	}
	return v.Verify(ctx, *cred)
}

// VerifyPublicCredentialProof verifies the document as public credential with the given proof.
func (v *Verifier) VerifyPublicCredentialProof(ctx context.Context, document credential.Document, proof credential.Proof) error {
	publicCredential, err := document.PublicCredential(proof)
	if err != nil {
		return core.WrapError(ErrMalformedCredential, err)
	}
	return v.VerifyPublic(ctx, *publicCredential)
}
