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
	"sort"
	"strings"

	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
)

// ReservedKeyPrefix prefixes the owner and CType binding statements. Top-level properties can't use it.
const ReservedKeyPrefix = "@"

// CTypeURI returns the vocabulary URI for a CType, which prefixes every property statement.
func CTypeURI(cTypeID hash.Blake2b256Hash) string {
	return "ctype:" + cTypeID.Hex()
}

// PropertyURI returns the vocabulary URI of a claim property.
func PropertyURI(cTypeID hash.Blake2b256Hash, property string) string {
	return CTypeURI(cTypeID) + "#" + property
}

// Contents holds the top-level properties of a claim.
type Contents map[string]Value

// Keys returns the property names in ascending order.
func (c Contents) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalJSON parses claim contents, rejecting empty keys, null values and arrays.
func (c *Contents) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make(Contents, len(raw))
	for k, rawValue := range raw {
		if k == "" {
			return malformed(k, "empty key")
		}
		var v Value
		if err := v.UnmarshalJSON(rawValue); err != nil {
			if m, ok := err.(*MalformedClaimError); ok {
				if m.Property == "" {
					m.Property = k
				} else {
					m.Property = k + "." + m.Property
				}
				return m
			}
			return malformed(k, "%s", err)
		}
		result[k] = v
	}
	*c = result
	return nil
}

// Claim is an assertion of property values by its owner, typed against a CType.
type Claim struct {
	CTypeID  hash.Blake2b256Hash `json:"cTypeHash"`
	Owner    did.DID             `json:"owner"`
	Contents Contents            `json:"contents"`
}

// Validate checks the claim can be digested: it needs a CType, an owner and well-formed contents.
func (c Claim) Validate() error {
	if c.CTypeID.Empty() {
		return malformed("", "missing cTypeHash")
	}
	if c.Owner.Empty() {
		return malformed("", "missing owner")
	}
	for _, k := range c.Contents.Keys() {
		if k == "" {
			return malformed(k, "empty key")
		}
		if strings.HasPrefix(k, ReservedKeyPrefix) {
			return malformed(k, "keys starting with '%s' are reserved", ReservedKeyPrefix)
		}
		if err := c.Contents[k].validate(k); err != nil {
			return err
		}
	}
	return nil
}

// Without returns a copy of the claim with the given properties removed. The claim itself is left untouched.
func (c Claim) Without(keys ...string) Claim {
	removed := make(map[string]bool, len(keys))
	for _, k := range keys {
		removed[k] = true
	}
	return c.filter(func(key string) bool {
		return !removed[key]
	})
}

// Only returns a copy of the claim that keeps just the given properties.
func (c Claim) Only(keys ...string) Claim {
	kept := make(map[string]bool, len(keys))
	for _, k := range keys {
		kept[k] = true
	}
	return c.filter(func(key string) bool {
		return kept[key]
	})
}

func (c Claim) filter(keep func(key string) bool) Claim {
	result := Claim{
		CTypeID:  c.CTypeID,
		Owner:    c.Owner,
		Contents: make(Contents, len(c.Contents)),
	}
	for k, v := range c.Contents {
		if keep(k) {
			result.Contents[k] = v
		}
	}
	return result
}
