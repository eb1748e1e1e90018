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
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-anchor/claim"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
)

// canonicalMode encodes with the RFC 8949 core deterministic encoding requirements:
// sorted map keys, smallest integer and float encodings, definite lengths.
var canonicalMode cbor.EncMode

func init() {
	var err error
	canonicalMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// MarshalCanonical encodes v as deterministic CBOR. Nil slices and pointers are encoded as null.
func MarshalCanonical(v interface{}) ([]byte, error) {
	return canonicalMode.Marshal(v)
}

// UnmarshalCanonical decodes CBOR produced by MarshalCanonical.
func UnmarshalCanonical(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}

// PublicCredentialBody is the content of a public credential, excluding its identifier.
type PublicCredentialBody struct {
	CTypeID hash.Blake2b256Hash
	// Subject identifies the asset the credential is about.
	Subject       string
	Claims        claim.Contents
	Authorization *hash.Blake2b256Hash
}

type encodedBody struct {
	_             struct{} `cbor:",toarray"`
	CTypeHash     []byte
	Subject       string
	Claims        []byte
	Authorization []byte
}

// EncodePublicCredentialBody returns the canonical encoding of the body: the array
// [cTypeHash, subject, claims, authorization] where claims is itself the canonical encoding of the contents
// and a missing authorization is null.
func EncodePublicCredentialBody(body PublicCredentialBody) ([]byte, error) {
	contents, err := canonicalContents(body.Claims)
	if err != nil {
		return nil, err
	}
	claims, err := MarshalCanonical(contents)
	if err != nil {
		return nil, err
	}
	encoded := encodedBody{
		CTypeHash: body.CTypeID.Slice(),
		Subject:   body.Subject,
		Claims:    claims,
	}
	if body.Authorization != nil {
		encoded.Authorization = body.Authorization.Slice()
	}
	return MarshalCanonical(encoded)
}

// DerivePublicCredentialID derives the identifier of a public credential:
// Blake2b256(canonical(body) ++ canonical(attester)).
func DerivePublicCredentialID(body PublicCredentialBody, attester did.DID) (ID, error) {
	if body.CTypeID.Empty() {
		return "", fmt.Errorf("%w: missing cTypeHash", claim.ErrMalformedClaim)
	}
	if attester.Empty() {
		return "", fmt.Errorf("%w: missing attester", ErrInvalidID)
	}
	bodyBytes, err := EncodePublicCredentialBody(body)
	if err != nil {
		return "", err
	}
	attesterBytes, err := MarshalCanonical(attester.String())
	if err != nil {
		return "", err
	}
	return FromPublicCredentialHash(hash.Blake2b256Sum(bodyBytes, attesterBytes)), nil
}

func canonicalContents(contents claim.Contents) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(contents))
	for _, key := range contents.Keys() {
		if key == "" {
			return nil, &claim.MalformedClaimError{Reason: "empty key"}
		}
		v, err := canonicalValue(key, contents[key])
		if err != nil {
			return nil, err
		}
		result[key] = v
	}
	return result, nil
}

// canonicalValue maps claim values onto CBOR types. Integral numbers become integers, so 26 and 26.0 encode alike.
func canonicalValue(path string, value claim.Value) (interface{}, error) {
	switch value.Kind() {
	case claim.StringKind:
		s, _ := value.AsString()
		return s, nil
	case claim.BoolKind:
		b, _ := value.AsBool()
		return b, nil
	case claim.NumberKind:
		n, _ := value.AsNumber()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, &claim.MalformedClaimError{Property: path, Reason: "number must be finite"}
		}
		if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
			return int64(n), nil
		}
		return n, nil
	case claim.ObjectKind:
		properties, _ := value.AsObject()
		result := make(map[string]interface{}, len(properties))
		for _, key := range value.Keys() {
			if key == "" {
				return nil, &claim.MalformedClaimError{Property: path, Reason: "empty key"}
			}
			v, err := canonicalValue(path+"."+key, properties[key])
			if err != nil {
				return nil, err
			}
			result[key] = v
		}
		return result, nil
	default:
		return nil, &claim.MalformedClaimError{Property: path, Reason: "value must be a string, number, boolean or object"}
	}
}
