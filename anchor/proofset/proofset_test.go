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
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nuts-foundation/nuts-anchor/commitment"
	"github.com/nuts-foundation/nuts-anchor/credential"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var attestationProof = credential.Proof{
	Type:        credential.AttestationProofType,
	AnchorBlock: hash.Blake2b256Sum([]byte("block")),
	Commitments: []hash.Blake2b256Hash{hash.Blake2b256Sum([]byte("commitment"))},
	Salt:        []commitment.Nonce{{1}},
}

var publicCredentialProof = credential.Proof{
	Type:        credential.PublicCredentialProofType,
	AnchorBlock: hash.Blake2b256Sum([]byte("block")),
}

func succeed(_ context.Context, _ credential.Document, _ credential.Proof) error {
	return nil
}

func fail(_ context.Context, _ credential.Document, _ credential.Proof) error {
	return errors.New("failed")
}

func documentWith(proofs ...credential.Proof) credential.Document {
	return credential.Document{ID: "cred:z123", Proofs: proofs}
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	verifiers := map[string]VerifyFunc{
		string(credential.AttestationProofType):      succeed,
		string(credential.PublicCredentialProofType): succeed,
	}

	t.Run("ok", func(t *testing.T) {
		for _, policy := range []Policy{PolicyAll, PolicyAny} {
			evaluation, err := Evaluate(ctx, documentWith(attestationProof), verifiers, policy)

			require.NoError(t, err)
			assert.True(t, evaluation.Verified)
			require.Len(t, evaluation.Results, 1)
			assert.True(t, evaluation.Results[0].Verified)
			assert.Equal(t, attestationProof, evaluation.Results[0].Proof)
		}
	})
	t.Run("public credential proof", func(t *testing.T) {
		evaluation, err := Evaluate(ctx, documentWith(publicCredentialProof), verifiers, PolicyAll)

		require.NoError(t, err)
		assert.True(t, evaluation.Verified)
	})
	t.Run("verification failed", func(t *testing.T) {
		evaluation, err := Evaluate(ctx, documentWith(attestationProof), map[string]VerifyFunc{
			string(credential.AttestationProofType): fail,
		}, PolicyAny)

		require.NoError(t, err)
		assert.False(t, evaluation.Verified)
		assert.EqualError(t, evaluation.Results[0].Error, "failed")
	})
	t.Run("verifier receives document and proof", func(t *testing.T) {
		document := documentWith(attestationProof)
		_, err := Evaluate(ctx, document, map[string]VerifyFunc{
			string(credential.AttestationProofType): func(_ context.Context, actualDocument credential.Document, proof credential.Proof) error {
				assert.Equal(t, "cred:z123", actualDocument.ID)
				assert.Equal(t, attestationProof, proof)
				return nil
			},
		}, PolicyAll)

		assert.NoError(t, err)
	})
	t.Run("no proofs", func(t *testing.T) {
		_, err := Evaluate(ctx, documentWith(), verifiers, PolicyAll)

		assert.ErrorIs(t, err, ErrUnsupportedProofSet)
	})
	t.Run("proof chain", func(t *testing.T) {
		_, err := Evaluate(ctx, documentWith(attestationProof, publicCredentialProof), verifiers, PolicyAny)

		assert.ErrorIs(t, err, ErrUnsupportedProofSet)
		assert.EqualError(t, err, "document must carry exactly one proof (got 2)")
	})
	t.Run("invalid policy", func(t *testing.T) {
		_, err := Evaluate(ctx, documentWith(attestationProof), verifiers, "some")

		assert.ErrorIs(t, err, ErrInvalidPolicy)
	})
	t.Run("unknown proof type", func(t *testing.T) {
		proof := attestationProof.Copy()
		proof.Type = "Ed25519Signature2018"

		evaluation, err := Evaluate(ctx, documentWith(proof), verifiers, PolicyAll)

		require.NoError(t, err)
		assert.False(t, evaluation.Verified)
		assert.ErrorIs(t, evaluation.Results[0].Error, ErrUnknownProofType)
	})
	t.Run("no verifier", func(t *testing.T) {
		evaluation, err := Evaluate(ctx, documentWith(attestationProof), map[string]VerifyFunc{}, PolicyAll)

		require.NoError(t, err)
		assert.ErrorIs(t, evaluation.Results[0].Error, ErrNoVerifier)
	})
	t.Run("panicking verifier", func(t *testing.T) {
		evaluation, err := Evaluate(ctx, documentWith(attestationProof), map[string]VerifyFunc{
			string(credential.AttestationProofType): func(_ context.Context, _ credential.Document, _ credential.Proof) error {
				panic("boom")
			},
		}, PolicyAll)

		require.NoError(t, err)
		assert.False(t, evaluation.Verified)
		assert.EqualError(t, evaluation.Results[0].Error, "verifier panicked: boom")
	})
}

func TestEvaluateAll(t *testing.T) {
	ctx := context.Background()

	t.Run("failures don't short-circuit", func(t *testing.T) {
		var calls atomic.Int32
		slowSuccess := func(_ context.Context, _ credential.Document, _ credential.Proof) error {
			time.Sleep(10 * time.Millisecond)
			calls.Add(1)
			return nil
		}
		failFast := func(_ context.Context, _ credential.Document, _ credential.Proof) error {
			calls.Add(1)
			return errors.New("failed")
		}
		verifiers := map[string]VerifyFunc{
			string(credential.AttestationProofType):      failFast,
			string(credential.PublicCredentialProofType): slowSuccess,
		}

		results := evaluateAll(ctx, documentWith(attestationProof, publicCredentialProof, publicCredentialProof), verifiers)

		assert.Equal(t, int32(3), calls.Load())
		require.Len(t, results, 3)
		assert.False(t, results[0].Verified)
		assert.True(t, results[1].Verified)
		assert.True(t, results[2].Verified)
		assert.False(t, fold(results, PolicyAll))
		assert.True(t, fold(results, PolicyAny))
	})
}

func TestFold(t *testing.T) {
	ok := Result{Verified: true}
	notOK := Result{}
	assert.True(t, fold([]Result{ok, ok}, PolicyAll))
	assert.False(t, fold([]Result{ok, notOK}, PolicyAll))
	assert.True(t, fold([]Result{notOK, ok}, PolicyAny))
	assert.False(t, fold([]Result{notOK, notOK}, PolicyAny))
	assert.False(t, fold(nil, PolicyAll))
	assert.False(t, fold(nil, PolicyAny))
}

func TestPurpose(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup", func(t *testing.T) {
		purpose, ok := PurposeOf(credential.AttestationProofType)
		assert.True(t, ok)
		assert.Equal(t, AttestationPurpose, purpose)
		purpose, ok = PurposeOf(credential.PublicCredentialProofType)
		assert.True(t, ok)
		assert.Equal(t, PublicCredentialPurpose, purpose)
		_, ok = PurposeOf("other")
		assert.False(t, ok)
	})
	t.Run("match", func(t *testing.T) {
		assert.True(t, AttestationPurpose.Match(attestationProof))
		assert.False(t, AttestationPurpose.Match(publicCredentialProof))
		assert.True(t, PublicCredentialPurpose.Match(publicCredentialProof))
	})
	t.Run("attestation proof without commitments", func(t *testing.T) {
		proof := attestationProof.Copy()
		proof.Commitments = nil

		result := AttestationPurpose.Validate(ctx, documentWith(proof), proof, succeed)

		assert.ErrorIs(t, result.Error, ErrProofMismatch)
	})
	t.Run("public credential proof with commitments", func(t *testing.T) {
		proof := publicCredentialProof.Copy()
		proof.Commitments = attestationProof.Commitments

		result := PublicCredentialPurpose.Validate(ctx, documentWith(proof), proof, succeed)

		assert.ErrorIs(t, result.Error, ErrProofMismatch)
	})
	t.Run("other type", func(t *testing.T) {
		result := PublicCredentialPurpose.Validate(ctx, documentWith(attestationProof), attestationProof, succeed)

		assert.ErrorIs(t, result.Error, ErrProofMismatch)
	})
	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "attestation", AttestationPurpose.String())
		assert.Equal(t, "publicCredential", PublicCredentialPurpose.String())
		assert.Equal(t, "Purpose(0)", Purpose(0).String())
	})
}

func TestResult_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Result{Error: errors.New("failed"), Proof: publicCredentialProof})
	require.NoError(t, err)

	var actual map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &actual))
	assert.Equal(t, false, actual["verified"])
	assert.Equal(t, "failed", actual["error"])
	assert.Equal(t, "PublicCredentialProofV1", actual["proof"].(map[string]interface{})["type"])
}

func TestParsePolicy(t *testing.T) {
	policy, err := ParsePolicy("any")
	assert.NoError(t, err)
	assert.Equal(t, PolicyAny, policy)
	_, err = ParsePolicy("")
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}
