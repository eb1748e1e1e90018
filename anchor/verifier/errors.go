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
	"errors"
	"fmt"
	"strings"

	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/nuts-foundation/nuts-anchor/identifier"
)

// ErrMalformedCredential is returned when the credential or its proof can't be checked at all.
var ErrMalformedCredential = errors.New("malformed credential")

// ErrTamperedContent is returned when the root digest recomputed from the commitments doesn't match the credential identifier.
var ErrTamperedContent = errors.New("credential content was tampered with")

// ErrDisclosedAttributeMismatch is returned when disclosed properties don't match the commitments of the proof.
var ErrDisclosedAttributeMismatch = errors.New("disclosed attributes don't match commitments")

// ErrAttestationNotFound is returned when the ledger has no attestation for the credential (at the anchor block).
var ErrAttestationNotFound = errors.New("attestation not found on ledger")

// ErrAttestationDataMismatch is returned when the attestation on the ledger doesn't match the credential.
var ErrAttestationDataMismatch = errors.New("attestation on ledger doesn't match credential")

// ErrCredentialRevoked is returned when the credential is valid but was revoked.
var ErrCredentialRevoked = errors.New("credential is revoked")

// ErrLedgerUnavailable is returned when the ledger couldn't be queried. The caller may retry.
var ErrLedgerUnavailable = errors.New("ledger unavailable")

// TamperedContentError details a root digest mismatch.
type TamperedContentError struct {
	ID         identifier.ID
	Recomputed hash.Blake2b256Hash
}

// Error implements the error interface.
func (e *TamperedContentError) Error() string {
	return fmt.Sprintf("%s: %s doesn't match recomputed digest %s", ErrTamperedContent, e.ID, e.Recomputed.Base58())
}

// Is makes TamperedContentError match ErrTamperedContent.
func (e *TamperedContentError) Is(target error) bool {
	return target == ErrTamperedContent
}

// DisclosedAttributeMismatchError lists every disclosed property that doesn't match a commitment.
type DisclosedAttributeMismatchError struct {
	Properties []string
}

// Error implements the error interface.
func (e *DisclosedAttributeMismatchError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDisclosedAttributeMismatch, strings.Join(e.Properties, ", "))
}

// Is makes DisclosedAttributeMismatchError match ErrDisclosedAttributeMismatch.
func (e *DisclosedAttributeMismatchError) Is(target error) bool {
	return target == ErrDisclosedAttributeMismatch
}

// AttestationDataMismatchError lists the fields of the attestation that differ from the credential.
type AttestationDataMismatchError struct {
	Fields []string
}

// Error implements the error interface.
func (e *AttestationDataMismatchError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAttestationDataMismatch, strings.Join(e.Fields, ", "))
}

// Is makes AttestationDataMismatchError match ErrAttestationDataMismatch.
func (e *AttestationDataMismatchError) Is(target error) bool {
	return target == ErrAttestationDataMismatch
}

// Status is the outcome of a verification, as reported to callers.
type Status string

const (
	StatusVerified    Status = "verified"
	StatusMalformed   Status = "malformed"
	StatusTampered    Status = "tampered"
	StatusNotAnchored Status = "not_anchored"
	StatusRevoked     Status = "revoked"
	StatusUnavailable Status = "unavailable"
)

// StatusOf maps the result of Verify or VerifyPublic to a Status. Tampering is kept apart from ledger state
// (not anchored, revoked), which are expected outcomes.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusVerified
	case errors.Is(err, ErrLedgerUnavailable):
		return StatusUnavailable
	case errors.Is(err, ErrCredentialRevoked):
		return StatusRevoked
	case errors.Is(err, ErrAttestationNotFound):
		return StatusNotAnchored
	case errors.Is(err, ErrTamperedContent),
		errors.Is(err, ErrDisclosedAttributeMismatch),
		errors.Is(err, ErrAttestationDataMismatch):
		return StatusTampered
	default:
		return StatusMalformed
	}
}
