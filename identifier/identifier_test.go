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

package identifier

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-anchor/claim"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRoot     = "02885bacd65eb95fa6782cd8360cc9de32ebec7eb5c346808813027b06bb4160"
	testLegacyID = "cred:zAtQrGE7VJkMBBdUtTEEdYumv5JJHkwTDDvx7weTHEX1"
	// Canonical encodings and identifiers below were computed with an independent CBOR encoder.
	testClaimsCBOR = "a463616765181a646e616d65644a6f686e66686569676874f93e006761646472657373a2646369747969416d7374657264616d666e756d62657222"
	testPublicID   = "pubcred:0xeb95aa9fd7681709809e8acda43b2221a348b44164fbe350c7bac5f5cbd83ed4"
	testDelegated  = "pubcred:0x1942441ea5e49fd24dd475fcb5a1f3a01ae5e6663dff58d16e01bf7138ad3537"
)

var testAttester = did.MustParseDID("did:kilt:4attester")

func testBody() PublicCredentialBody {
	return PublicCredentialBody{
		CTypeID: hash.Blake2b256Sum([]byte("ctype")),
		Subject: "did:asset:eip155:1.erc721:0x6f9b:1",
		Claims: claim.Contents{
			"name":   claim.String("John"),
			"age":    claim.Number(26),
			"height": claim.Number(1.5),
			"address": claim.Object(map[string]claim.Value{
				"city":   claim.String("Amsterdam"),
				"number": claim.Number(-3),
			}),
		},
	}
}

func TestFromRootDigest(t *testing.T) {
	root, _ := hash.ParseHex(testRoot)

	id := FromRootDigest(root)

	assert.Equal(t, testLegacyID, id.String())
	assert.Equal(t, LegacyScheme, id.Scheme())
	digest, err := id.Digest()
	require.NoError(t, err)
	assert.Equal(t, root, digest)
}

func TestDerivePublicCredentialID(t *testing.T) {
	t.Run("fixed vector", func(t *testing.T) {
		id, err := DerivePublicCredentialID(testBody(), testAttester)

		require.NoError(t, err)
		assert.Equal(t, testPublicID, id.String())
		assert.Equal(t, PublicCredentialScheme, id.Scheme())
	})
	t.Run("fixed vector with authorization", func(t *testing.T) {
		body := testBody()
		delegation := hash.Blake2b256Sum([]byte("delegation"))
		body.Authorization = &delegation

		id, err := DerivePublicCredentialID(body, testAttester)

		require.NoError(t, err)
		assert.Equal(t, testDelegated, id.String())
	})
	t.Run("integral floats encode as integers", func(t *testing.T) {
		body := testBody()
		body.Claims["age"] = claim.Number(26.0)

		id, err := DerivePublicCredentialID(body, testAttester)

		require.NoError(t, err)
		assert.Equal(t, testPublicID, id.String())
	})
	t.Run("attester is part of the identifier", func(t *testing.T) {
		id, err := DerivePublicCredentialID(testBody(), did.MustParseDID("did:kilt:4other"))

		require.NoError(t, err)
		assert.NotEqual(t, testPublicID, id.String())
	})
	t.Run("changed claim changes the identifier", func(t *testing.T) {
		body := testBody()
		body.Claims["age"] = claim.Number(27)

		id, err := DerivePublicCredentialID(body, testAttester)

		require.NoError(t, err)
		assert.NotEqual(t, testPublicID, id.String())
	})
	t.Run("error - missing attester", func(t *testing.T) {
		_, err := DerivePublicCredentialID(testBody(), did.DID{})

		assert.ErrorIs(t, err, ErrInvalidID)
	})
	t.Run("error - malformed claim", func(t *testing.T) {
		body := testBody()
		body.Claims["broken"] = claim.Value{}

		_, err := DerivePublicCredentialID(body, testAttester)

		assert.ErrorIs(t, err, claim.ErrMalformedClaim)
	})
}

func TestEncodePublicCredentialBody(t *testing.T) {
	encoded, err := EncodePublicCredentialBody(testBody())

	require.NoError(t, err)
	claimsCBOR, _ := hex.DecodeString(testClaimsCBOR)
	assert.Contains(t, string(encoded), string(claimsCBOR))
	// array(4), bstr(32)
	assert.Equal(t, []byte{0x84, 0x58, 0x20}, encoded[:3])
	// authorization null
	assert.Equal(t, byte(0xf6), encoded[len(encoded)-1])
}

func TestParse(t *testing.T) {
	t.Run("legacy round trip", func(t *testing.T) {
		id, err := Parse(testLegacyID)

		require.NoError(t, err)
		assert.Equal(t, ID(testLegacyID), id)
		again, err := Parse(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, again)
	})
	t.Run("public round trip", func(t *testing.T) {
		id, err := Parse(testPublicID)

		require.NoError(t, err)
		assert.Equal(t, ID(testPublicID), id)
	})
	t.Run("normalizes hex", func(t *testing.T) {
		id, err := Parse("pubcred:0xEB95AA9FD7681709809E8ACDA43B2221A348B44164FBE350C7BAC5F5CBD83ED4")

		require.NoError(t, err)
		assert.Equal(t, ID(testPublicID), id)
	})
	testCases := []struct {
		name  string
		input string
	}{
		{"unknown scheme", "urn:foo"},
		{"empty", ""},
		{"legacy - not multibase", "cred:%%%"},
		{"legacy - other multibase encoding", "cred:f02885bacd65eb95fa6782cd8360cc9de32ebec7eb5c346808813027b06bb4160"},
		{"legacy - short digest", "cred:z2g"},
		{"public - invalid hex", "pubcred:0xzz"},
		{"public - short digest", "pubcred:0x0102"},
		{"public - empty digest", "pubcred:0x"},
	}
	for _, tc := range testCases {
		t.Run("error - "+tc.name, func(t *testing.T) {
			_, err := Parse(tc.input)

			assert.ErrorIs(t, err, ErrInvalidID)
		})
	}
}

func TestID_Digest(t *testing.T) {
	t.Run("error - unknown scheme", func(t *testing.T) {
		_, err := ID("foo").Digest()

		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestID_JSON(t *testing.T) {
	data, err := json.Marshal(ID(testLegacyID))
	require.NoError(t, err)
	assert.Equal(t, `"`+testLegacyID+`"`, string(data))

	var id ID
	require.NoError(t, json.Unmarshal(data, &id))
	assert.Equal(t, ID(testLegacyID), id)

	t.Run("error - invalid", func(t *testing.T) {
		assert.ErrorIs(t, json.Unmarshal([]byte(`"foo"`), &id), ErrInvalidID)
	})
}

func TestMarshalCanonical(t *testing.T) {
	type record struct {
		A int
		B *string
	}
	data, err := MarshalCanonical(record{A: 1})
	require.NoError(t, err)

	var actual record
	require.NoError(t, UnmarshalCanonical(data, &actual))
	assert.Equal(t, 1, actual.A)
	assert.Nil(t, actual.B)
}
