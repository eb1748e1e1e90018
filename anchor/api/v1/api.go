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
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-anchor/anchor/issuer"
	"github.com/nuts-foundation/nuts-anchor/anchor/proofset"
	"github.com/nuts-foundation/nuts-anchor/anchor/verifier"
	"github.com/nuts-foundation/nuts-anchor/claim"
	"github.com/nuts-foundation/nuts-anchor/commitment"
	"github.com/nuts-foundation/nuts-anchor/core"
	"github.com/nuts-foundation/nuts-anchor/credential"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/nuts-foundation/nuts-anchor/identifier"
	"github.com/nuts-foundation/nuts-anchor/ledger"
)

const moduleName = "Anchor"

// BasePath is the path all operations of this API are registered under.
const BasePath = "/internal/anchor/v1"

var _ core.ErrorStatusCodeResolver = (*Wrapper)(nil)

// Registry is the part of the ledger the API administers directly.
type Registry interface {
	ledger.Querier
	RegisterCType(ctx context.Context, cTypeID hash.Blake2b256Hash, creator did.DID) (ledger.BlockRef, error)
	RegisterDelegation(ctx context.Context, delegationID hash.Blake2b256Hash, cTypeID hash.Blake2b256Hash, owner did.DID) (ledger.BlockRef, error)
}

// Wrapper connects the anchor components to echo.
type Wrapper struct {
	Issuer   *issuer.Issuer
	Verifier *verifier.Verifier
	Registry Registry
}

// ResolveStatusCode maps errors returned by this API to specific HTTP status codes.
func (w *Wrapper) ResolveStatusCode(err error) int {
	return core.ResolveStatusCode(err, map[error]int{
		ledger.ErrNotFound:              http.StatusNotFound,
		ledger.ErrUnknownBlock:          http.StatusNotFound,
		ledger.ErrDuplicateKey:          http.StatusConflict,
		ledger.ErrAlreadyRevoked:        http.StatusConflict,
		ledger.ErrUnauthorized:          http.StatusForbidden,
		ledger.ErrUnknownCType:          http.StatusBadRequest,
		identifier.ErrInvalidID:         http.StatusBadRequest,
		claim.ErrMalformedClaim:         http.StatusBadRequest,
		commitment.ErrNonceMapMismatch:  http.StatusBadRequest,
		commitment.ErrEmptyCommitment:   http.StatusBadRequest,
		credential.ErrInvalidDocument:   http.StatusBadRequest,
		proofset.ErrUnsupportedProofSet: http.StatusBadRequest,
		proofset.ErrInvalidPolicy:       http.StatusBadRequest,
		did.ErrInvalidDID:               http.StatusBadRequest,
	})
}

// Routes registers the operations of this API.
func (w *Wrapper) Routes(router core.EchoRouter) {
	router.POST(BasePath+"/verify", w.Verify, w.operation("Verify"))
	router.POST(BasePath+"/evaluate", w.Evaluate, w.operation("Evaluate"))
	router.POST(BasePath+"/issue", w.Issue, w.operation("Issue"))
	router.POST(BasePath+"/ctype", w.RegisterCType, w.operation("RegisterCType"))
	router.POST(BasePath+"/delegation", w.RegisterDelegation, w.operation("RegisterDelegation"))
	router.GET(BasePath+"/attestation/:id", w.GetAttestation, w.operation("GetAttestation"))
	router.DELETE(BasePath+"/attestation/:id", w.Revoke, w.operation("Revoke"))
}

func (w *Wrapper) operation(operationID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(core.OperationIDContextKey, operationID)
			ctx.Set(core.ModuleNameContextKey, moduleName)
			ctx.Set(core.StatusCodeResolverContextKey, w)
			return next(ctx)
		}
	}
}

func (w *Wrapper) verifiers() map[string]proofset.VerifyFunc {
	return map[string]proofset.VerifyFunc{
		string(credential.AttestationProofType):      w.Verifier.VerifyAttestationProof,
		string(credential.PublicCredentialProofType): w.Verifier.VerifyPublicCredentialProof,
	}
}

// Verify verifies the credential document in the request body against its single proof.
// Failed verification is not an error: the outcome is reported as status.
func (w *Wrapper) Verify(ctx echo.Context) error {
	data, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return core.InvalidInputError("unable to read request body: %w", err)
	}
	document, err := credential.ParseDocument(data)
	if err != nil {
		return err
	}
	evaluation, err := proofset.Evaluate(ctx.Request().Context(), *document, w.verifiers(), proofset.PolicyAll)
	if err != nil {
		return err
	}
	result := VerificationResult{
		Verified: evaluation.Verified,
		Status:   verifier.StatusOf(evaluation.Results[0].Error),
	}
	if evaluation.Results[0].Error != nil {
		result.Error = evaluation.Results[0].Error.Error()
	}
	return ctx.JSON(http.StatusOK, result)
}

// Evaluate evaluates the proofs of a document according to a policy.
func (w *Wrapper) Evaluate(ctx echo.Context) error {
	var request EvaluateRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}
	policy, err := proofset.ParsePolicy(request.Policy)
	if err != nil {
		return err
	}
	document, err := credential.ParseDocument(request.Document)
	if err != nil {
		return err
	}
	evaluation, err := proofset.Evaluate(ctx.Request().Context(), *document, w.verifiers(), policy)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, evaluation)
}

// Issue anchors a draft (returning the finalized credential) or a public credential.
// Drafts are single-use, a rejected issuance is retried with a new draft (see IssueRequest).
func (w *Wrapper) Issue(ctx echo.Context) error {
	var request IssueRequest
	if err := json.NewDecoder(ctx.Request().Body).Decode(&request); err != nil {
		return core.InvalidInputError("invalid request body: %w", err)
	}
	attester, err := did.ParseDID(request.Attester)
	if err != nil {
		return core.InvalidInputError("invalid attester: %w", err)
	}
	switch {
	case request.Draft != nil && request.PublicCredential == nil:
		issuance, err := w.Issuer.Issue(ctx.Request().Context(), *request.Draft, *attester)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, issuance.Credential())
	case request.PublicCredential != nil && request.Draft == nil:
		result, err := w.Issuer.IssuePublic(ctx.Request().Context(), *request.PublicCredential, *attester)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, result)
	default:
		return core.InvalidInputError("exactly one of draft and publicCredential must be given")
	}
}

// RegisterCType registers a CType on the ledger.
func (w *Wrapper) RegisterCType(ctx echo.Context) error {
	var request CTypeRequest
	if err := json.NewDecoder(ctx.Request().Body).Decode(&request); err != nil {
		return core.InvalidInputError("invalid request body: %w", err)
	}
	if request.CTypeID.Empty() {
		return core.InvalidInputError("missing cTypeHash")
	}
	creator, err := did.ParseDID(request.Creator)
	if err != nil {
		return core.InvalidInputError("invalid creator: %w", err)
	}
	block, err := w.Registry.RegisterCType(ctx.Request().Context(), request.CTypeID, *creator)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, block)
}

// RegisterDelegation registers a delegation on the ledger.
func (w *Wrapper) RegisterDelegation(ctx echo.Context) error {
	var request DelegationRequest
	if err := json.NewDecoder(ctx.Request().Body).Decode(&request); err != nil {
		return core.InvalidInputError("invalid request body: %w", err)
	}
	owner, err := did.ParseDID(request.Owner)
	if err != nil {
		return core.InvalidInputError("invalid owner: %w", err)
	}
	block, err := w.Registry.RegisterDelegation(ctx.Request().Context(), request.DelegationID, request.CTypeID, *owner)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, block)
}

// GetAttestation returns the attestation of a credential, optionally at the block given by the atBlock query parameter (base58).
func (w *Wrapper) GetAttestation(ctx echo.Context) error {
	key, err := keyParam(ctx)
	if err != nil {
		return err
	}
	var atBlock *hash.Blake2b256Hash
	if raw := ctx.QueryParam("atBlock"); raw != "" {
		parsed, err := hash.ParseBase58(raw)
		if err != nil {
			return core.InvalidInputError("invalid atBlock: %w", err)
		}
		atBlock = &parsed
	}
	record, err := w.Registry.GetAttestation(ctx.Request().Context(), key, atBlock)
	if errors.Is(err, ledger.ErrNotFound) {
		return core.NotFoundError("no attestation for %s: %w", ctx.Param("id"), err)
	}
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, record)
}

// Revoke revokes a credential on behalf of the attester given by the attester query parameter.
func (w *Wrapper) Revoke(ctx echo.Context) error {
	id, err := identifier.Parse(ctx.Param("id"))
	if err != nil {
		return err
	}
	attester, err := did.ParseDID(ctx.QueryParam("attester"))
	if err != nil {
		return core.InvalidInputError("invalid attester: %w", err)
	}
	block, err := w.Issuer.Revoke(ctx.Request().Context(), id, *attester)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, block)
}

func keyParam(ctx echo.Context) (hash.Blake2b256Hash, error) {
	id, err := identifier.Parse(ctx.Param("id"))
	if err != nil {
		return hash.EmptyHash(), err
	}
	return id.Digest()
}
