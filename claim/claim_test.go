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

package claim

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCType = hash.Blake2b256Sum([]byte("ctype"))
var testOwner = did.MustParseDID("did:kilt:4owner")

func testClaim() Claim {
	return Claim{
		CTypeID: testCType,
		Owner:   testOwner,
		Contents: Contents{
			"name": String("John"),
			"age":  Number(26),
		},
	}
}

func TestValue_MarshalJSON(t *testing.T) {
	testCases := []struct {
		name     string
		value    Value
		expected string
	}{
		{"string", String("John"), `"John"`},
		{"no HTML escaping", String("<a&b>"), `"<a&b>"`},
		{"integral number", Number(26), `26`},
		{"fraction", Number(1.5), `1.5`},
		{"large number", Number(1e21), `1e+21`},
		{"bool", Bool(true), `true`},
		{"object with sorted keys", Object(map[string]Value{"b": Bool(false), "a": Object(map[string]Value{"z": Number(1), "y": String("x")})}), `{"a":{"y":"x","z":1},"b":false}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := tc.value.MarshalJSON()

			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(data))
		})
	}
	t.Run("error - invalid value", func(t *testing.T) {
		_, err := Value{}.MarshalJSON()

		assert.ErrorIs(t, err, ErrMalformedClaim)
	})
	t.Run("error - NaN", func(t *testing.T) {
		_, err := Number(math.NaN()).MarshalJSON()

		assert.ErrorIs(t, err, ErrMalformedClaim)
	})
}

func TestValue_UnmarshalJSON(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		var v Value
		err := json.Unmarshal([]byte(`{"a":"b","n":2.5,"t":true,"o":{"x":1}}`), &v)

		require.NoError(t, err)
		assert.Equal(t, ObjectKind, v.Kind())
		assert.True(t, v.Equal(MustValueOf(map[string]interface{}{"a": "b", "n": 2.5, "t": true, "o": map[string]interface{}{"x": 1}})))
	})
	t.Run("error - null", func(t *testing.T) {
		var v Value
		err := json.Unmarshal([]byte(`{"a":null}`), &v)

		assert.ErrorIs(t, err, ErrMalformedClaim)
		assert.EqualError(t, err, "malformed claim: property 'a': null values are not allowed")
	})
	t.Run("error - array", func(t *testing.T) {
		var v Value
		err := json.Unmarshal([]byte(`[1,2]`), &v)

		assert.ErrorIs(t, err, ErrMalformedClaim)
	})
	t.Run("error - empty key", func(t *testing.T) {
		var v Value
		err := json.Unmarshal([]byte(`{"":1}`), &v)

		assert.ErrorIs(t, err, ErrMalformedClaim)
	})
}

func TestValueOf(t *testing.T) {
	t.Run("integers become numbers", func(t *testing.T) {
		v, err := ValueOf(26)

		require.NoError(t, err)
		n, ok := v.AsNumber()
		assert.True(t, ok)
		assert.Equal(t, float64(26), n)
	})
	t.Run("error - unsupported type", func(t *testing.T) {
		_, err := ValueOf(struct{}{})

		assert.ErrorIs(t, err, ErrMalformedClaim)
	})
	t.Run("error - infinity", func(t *testing.T) {
		_, err := ValueOf(math.Inf(1))

		assert.ErrorIs(t, err, ErrMalformedClaim)
	})
	t.Run("error - integer beyond 2^53", func(t *testing.T) {
		_, err := ValueOf(int64(9007199254740993))

		assert.ErrorIs(t, err, ErrMalformedClaim)
	})
}

func TestValue_UnmarshalJSON_Integers(t *testing.T) {
	t.Run("2^53 is exact", func(t *testing.T) {
		var v Value
		require.NoError(t, json.Unmarshal([]byte(`9007199254740992`), &v))

		n, _ := v.AsNumber()
		assert.Equal(t, float64(9007199254740992), n)
	})
	t.Run("error - would be rounded", func(t *testing.T) {
		var v Value
		err := json.Unmarshal([]byte(`9007199254740993`), &v)

		assert.ErrorIs(t, err, ErrMalformedClaim)
	})
	t.Run("error - overflows int64", func(t *testing.T) {
		var v Value
		err := json.Unmarshal([]byte(`-99999999999999999999`), &v)

		assert.ErrorIs(t, err, ErrMalformedClaim)
	})
	t.Run("error - nested in claim contents", func(t *testing.T) {
		var contents Contents
		err := json.Unmarshal([]byte(`{"id":{"serial":9007199254740993}}`), &contents)

		var target *MalformedClaimError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, "id.serial", target.Property)
	})
}

func TestValue_AsObject(t *testing.T) {
	v := Object(map[string]Value{"a": Bool(true)})
	props, ok := v.AsObject()
	require.True(t, ok)
	props["b"] = Bool(false)

	assert.Equal(t, []string{"a"}, v.Keys())
	_, ok = String("x").AsObject()
	assert.False(t, ok)
}

func TestClaim_Validate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, testClaim().Validate())
	})
	t.Run("error - missing CType", func(t *testing.T) {
		c := testClaim()
		c.CTypeID = hash.EmptyHash()

		assert.EqualError(t, c.Validate(), "malformed claim: missing cTypeHash")
	})
	t.Run("error - missing owner", func(t *testing.T) {
		c := testClaim()
		c.Owner = did.DID{}

		assert.ErrorIs(t, c.Validate(), ErrMalformedClaim)
	})
	t.Run("error - invalid value kind", func(t *testing.T) {
		c := testClaim()
		c.Contents["broken"] = Value{}

		err := c.Validate()

		var target *MalformedClaimError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, "broken", target.Property)
	})
	t.Run("error - empty key", func(t *testing.T) {
		c := testClaim()
		c.Contents[""] = Bool(true)

		assert.ErrorIs(t, c.Validate(), ErrMalformedClaim)
	})
	t.Run("error - reserved key", func(t *testing.T) {
		for _, key := range []string{"@id", "@type", "@other"} {
			c := testClaim()
			c.Contents[key] = String("secret")

			err := c.Validate()

			var target *MalformedClaimError
			require.True(t, errors.As(err, &target), key)
			assert.Equal(t, key, target.Property)
		}
	})
	t.Run("nested keys may use the reserved prefix", func(t *testing.T) {
		c := testClaim()
		c.Contents["address"] = Object(map[string]Value{"@id": String("home")})

		assert.NoError(t, c.Validate())
	})
}

func TestClaim_JSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		data, err := json.Marshal(testClaim())
		require.NoError(t, err)

		var actual Claim
		require.NoError(t, json.Unmarshal(data, &actual))

		assert.Equal(t, testCType, actual.CTypeID)
		assert.True(t, testOwner.Equals(actual.Owner))
		assert.True(t, actual.Contents["name"].Equal(String("John")))
		assert.True(t, actual.Contents["age"].Equal(Number(26)))
	})
	t.Run("error - nested null reports path", func(t *testing.T) {
		var actual Claim
		err := json.Unmarshal([]byte(`{"contents":{"address":{"street":null}}}`), &actual)

		assert.EqualError(t, err, "malformed claim: property 'address.street': null values are not allowed")
	})
	t.Run("error - empty top-level key", func(t *testing.T) {
		var actual Claim
		err := json.Unmarshal([]byte(`{"contents":{"":"x"}}`), &actual)

		assert.ErrorIs(t, err, ErrMalformedClaim)
	})
}

func TestClaim_Without(t *testing.T) {
	original := testClaim()

	partial := original.Without("name")

	assert.Equal(t, []string{"age"}, partial.Contents.Keys())
	assert.Equal(t, []string{"age", "name"}, original.Contents.Keys())
	assert.Equal(t, original.CTypeID, partial.CTypeID)
}

func TestClaim_Only(t *testing.T) {
	partial := testClaim().Only("name", "unknown")

	assert.Equal(t, []string{"name"}, partial.Contents.Keys())
}

func TestPropertyURI(t *testing.T) {
	assert.Equal(t, "ctype:0x"+testCType.String()+"#age", PropertyURI(testCType, "age"))
}
