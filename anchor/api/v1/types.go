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

package v1

import (
	"encoding/json"

	"github.com/nuts-foundation/nuts-anchor/anchor/issuer"
	"github.com/nuts-foundation/nuts-anchor/anchor/verifier"
	"github.com/nuts-foundation/nuts-anchor/credential"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
)

// IssueRequest is the body of the issue operation. Exactly one of Draft and PublicCredential must be set.
// A draft is single-use: its root digest is the ledger key, so once submitted (also when the ledger rejected it)
// a retry needs a new draft with fresh nonces. Submitting the same draft again fails with 409 Conflict
// when it was anchored before.
type IssueRequest struct {
	Attester         string                       `json:"attester"`
	Draft            *issuer.Draft                `json:"draft,omitempty"`
	PublicCredential *credential.PublicCredential `json:"publicCredential,omitempty"`
}

// VerificationResult is the response of the verify operation.
type VerificationResult struct {
	Verified bool            `json:"verified"`
	Status   verifier.Status `json:"status"`
	Error    string          `json:"error,omitempty"`
}

// EvaluateRequest is the body of the evaluate operation.
type EvaluateRequest struct {
	Document json.RawMessage `json:"document"`
	Policy   string          `json:"policy"`
}

// CTypeRequest is the body of the CType registration operation.
type CTypeRequest struct {
	CTypeID hash.Blake2b256Hash `json:"cTypeHash"`
	Creator string              `json:"creator"`
}

// DelegationRequest is the body of the delegation registration operation.
type DelegationRequest struct {
	DelegationID hash.Blake2b256Hash `json:"delegationId"`
	CTypeID      hash.Blake2b256Hash `json:"cTypeHash"`
	Owner        string              `json:"owner"`
}
