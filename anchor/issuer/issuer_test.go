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
	"errors"
	"testing"
	"time"

	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-anchor/claim"
	"github.com/nuts-foundation/nuts-anchor/commitment"
	"github.com/nuts-foundation/nuts-anchor/credential"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/nuts-foundation/nuts-anchor/identifier"
	"github.com/nuts-foundation/nuts-anchor/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var attester = did.MustParseDID("did:kilt:4attester")
var cTypeID = hash.Blake2b256Sum([]byte("ctype"))
var blockRef = ledger.BlockRef{Number: 7, Hash: hash.Blake2b256Sum([]byte("block"))}

func testClaim() claim.Claim {
	return claim.Claim{
		CTypeID: cTypeID,
		Owner:   did.MustParseDID("did:kilt:4owner"),
		Contents: claim.Contents{
			"name": claim.String("John"),
			"age":  claim.Number(26),
		},
	}
}

func newTestIssuer(t *testing.T) (*Issuer, *ledger.MockSubmitter) {
	ctrl := gomock.NewController(t)
	submitter := ledger.NewMockSubmitter(ctrl)
	return New(submitter, time.Second), submitter
}

func TestNewDraft(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		draft, err := NewDraft(testClaim(), nil, nil)

		require.NoError(t, err)
		assert.Len(t, draft.Hashes, 4)
		assert.Len(t, draft.NonceMap, 4)
	})
	t.Run("malformed claim", func(t *testing.T) {
		c := testClaim()
		c.Owner = did.DID{}

		_, err := NewDraft(c, nil, nil)

		assert.ErrorIs(t, err, claim.ErrMalformedClaim)
	})
}

func TestIssuer_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		i, submitter := newTestIssuer(t)
		draft, _ := NewDraft(testClaim(), nil, nil)
		root, _ := commitment.Aggregate(draft.Hashes, nil, nil)
		submitter.EXPECT().Submit(gomock.Any(), ledger.AnchorRequest{
			Key:      root,
			Kind:     ledger.AttestationKind,
			CTypeID:  cTypeID,
			Attester: attester,
		}).Return(blockRef, nil)

		issuance, err := i.Issue(ctx, *draft, attester)

		require.NoError(t, err)
		assert.Equal(t, StateFinalized, issuance.State())
		assert.Equal(t, blockRef, issuance.AnchorBlock())
		result := issuance.Credential()
		require.NotNil(t, result)
		assert.Equal(t, identifier.FromRootDigest(root), result.ID)
		assert.Equal(t, credential.AttestationProofType, result.Proof.Type)
		assert.Equal(t, blockRef.Hash, result.Proof.AnchorBlock)
		assert.Equal(t, draft.Hashes, result.Proof.Commitments)
		require.Len(t, result.Proof.Salt, 4)
		for j, nonce := range result.Proof.Salt {
			assert.False(t, nonce.Empty())
			matches, _ := commitment.MatchSalted(testClaim(), result.Proof.Commitments[j:j+1], result.Proof.Salt[j:j+1])
			assert.Len(t, matches, 3, "salt %d should reproduce exactly one statement", j)
		}
	})
	t.Run("commitments are sorted", func(t *testing.T) {
		i, submitter := newTestIssuer(t)
		draft, _ := NewDraft(testClaim(), nil, nil)
		draft.Hashes[0], draft.Hashes[3] = draft.Hashes[3], draft.Hashes[0]
		submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(blockRef, nil)

		issuance, err := i.Issue(ctx, *draft, attester)

		require.NoError(t, err)
		commitments := issuance.Credential().Proof.Commitments
		for j := 1; j < len(commitments); j++ {
			assert.Negative(t, commitments[j-1].Compare(commitments[j]))
		}
	})
	t.Run("with delegation and legitimations", func(t *testing.T) {
		i, submitter := newTestIssuer(t)
		delegationID := hash.Blake2b256Sum([]byte("delegation"))
		legitimations := []hash.Blake2b256Hash{hash.Blake2b256Sum([]byte("legitimation"))}
		draft, _ := NewDraft(testClaim(), legitimations, &delegationID)
		root, _ := commitment.Aggregate(draft.Hashes, legitimations, &delegationID)
		submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, request ledger.AnchorRequest) (ledger.BlockRef, error) {
			assert.Equal(t, root, request.Key)
			assert.Equal(t, &delegationID, request.DelegationID)
			return blockRef, nil
		})

		issuance, err := i.Issue(ctx, *draft, attester)

		require.NoError(t, err)
		assert.Equal(t, legitimations, issuance.Credential().Legitimations)
		assert.Equal(t, &delegationID, issuance.Credential().DelegationID)
	})
	t.Run("tampered draft", func(t *testing.T) {
		i, _ := newTestIssuer(t)
		draft, _ := NewDraft(testClaim(), nil, nil)
		draft.Claim.Contents["age"] = claim.Number(27)

		issuance, err := i.Issue(ctx, *draft, attester)

		assert.ErrorIs(t, err, commitment.ErrNonceMapMismatch)
		assert.Nil(t, issuance)
	})
	t.Run("extra hash in draft", func(t *testing.T) {
		i, _ := newTestIssuer(t)
		draft, _ := NewDraft(testClaim(), nil, nil)
		draft.Hashes = append(draft.Hashes, hash.Blake2b256Sum([]byte("extra")))

		_, err := i.Issue(ctx, *draft, attester)

		assert.ErrorIs(t, err, commitment.ErrNonceMapMismatch)
	})
	t.Run("rejected by ledger", func(t *testing.T) {
		i, submitter := newTestIssuer(t)
		draft, _ := NewDraft(testClaim(), nil, nil)
		submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(ledger.BlockRef{}, ledger.ErrUnknownCType)

		issuance, err := i.Issue(ctx, *draft, attester)

		assert.ErrorIs(t, err, ErrAnchoringRejected)
		assert.ErrorIs(t, err, ledger.ErrUnknownCType)
		require.NotNil(t, issuance)
		assert.Equal(t, StateCommitted, issuance.State())
		assert.Nil(t, issuance.Credential())
		assert.NotEmpty(t, issuance.ID())
	})
	t.Run("ledger unavailable", func(t *testing.T) {
		i, submitter := newTestIssuer(t)
		draft, _ := NewDraft(testClaim(), nil, nil)
		submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(ledger.BlockRef{}, errors.New("connection refused"))

		issuance, err := i.Issue(ctx, *draft, attester)

		assert.EqualError(t, err, "unable to anchor credential: connection refused")
		assert.NotErrorIs(t, err, ErrAnchoringRejected)
		assert.Equal(t, StateCommitted, issuance.State())
	})
	t.Run("submission is time-boxed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		submitter := ledger.NewMockSubmitter(ctrl)
		i := New(submitter, 10*time.Millisecond)
		draft, _ := NewDraft(testClaim(), nil, nil)
		submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ ledger.AnchorRequest) (ledger.BlockRef, error) {
			<-ctx.Done()
			return ledger.BlockRef{}, ctx.Err()
		})

		_, err := i.Issue(ctx, *draft, attester)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestIssuer_IssuePublic(t *testing.T) {
	ctx := context.Background()
	publicCredential := credential.PublicCredential{
		CTypeID:  cTypeID,
		Subject:  "did:asset:eip155:1.erc721:0x6f9b:1",
		Claims:   claim.Contents{"name": claim.String("John")},
		Attester: did.MustParseDID("did:kilt:4someoneelse"),
	}

	t.Run("ok", func(t *testing.T) {
		i, submitter := newTestIssuer(t)
		expected := publicCredential
		expected.Attester = attester
		id, _ := expected.DeriveID()
		key, _ := id.Digest()
		submitter.EXPECT().Submit(gomock.Any(), ledger.AnchorRequest{
			Key:      key,
			Kind:     ledger.PublicCredentialKind,
			CTypeID:  cTypeID,
			Attester: attester,
		}).Return(blockRef, nil)

		result, err := i.IssuePublic(ctx, publicCredential, attester)

		require.NoError(t, err)
		assert.Equal(t, id, result.ID)
		assert.Equal(t, identifier.PublicCredentialScheme, result.ID.Scheme())
		require.NotNil(t, result.BlockNumber)
		assert.Equal(t, uint64(7), *result.BlockNumber)
		require.NotNil(t, result.Proof)
		assert.Equal(t, credential.PublicCredentialProofType, result.Proof.Type)
		assert.Nil(t, publicCredential.BlockNumber, "input must not be modified")
	})
	t.Run("rejected", func(t *testing.T) {
		i, submitter := newTestIssuer(t)
		submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(ledger.BlockRef{}, ledger.ErrDuplicateKey)

		result, err := i.IssuePublic(ctx, publicCredential, attester)

		assert.ErrorIs(t, err, ErrAnchoringRejected)
		assert.Nil(t, result)
	})
}

func TestIssuer_Revoke(t *testing.T) {
	ctx := context.Background()
	root := hash.Blake2b256Sum([]byte("root"))
	id := identifier.FromRootDigest(root)

	t.Run("ok", func(t *testing.T) {
		i, submitter := newTestIssuer(t)
		submitter.EXPECT().Revoke(gomock.Any(), root, attester).Return(blockRef, nil)

		block, err := i.Revoke(ctx, id, attester)

		assert.NoError(t, err)
		assert.Equal(t, blockRef, block)
	})
	t.Run("rejected", func(t *testing.T) {
		i, submitter := newTestIssuer(t)
		submitter.EXPECT().Revoke(gomock.Any(), root, attester).Return(ledger.BlockRef{}, ledger.ErrAlreadyRevoked)

		_, err := i.Revoke(ctx, id, attester)

		assert.ErrorIs(t, err, ErrRevocationRejected)
		assert.ErrorIs(t, err, ledger.ErrAlreadyRevoked)
	})
	t.Run("invalid identifier", func(t *testing.T) {
		i, _ := newTestIssuer(t)

		_, err := i.Revoke(ctx, identifier.ID("foo"), attester)

		assert.ErrorIs(t, err, identifier.ErrInvalidID)
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "draft", StateDraft.String())
	assert.Equal(t, "committed", StateCommitted.String())
	assert.Equal(t, "anchored", StateAnchored.String())
	assert.Equal(t, "finalized", StateFinalized.String())
	assert.Equal(t, "State(9)", State(9).String())
}
