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

package commitment

import (
	"github.com/nuts-foundation/nuts-anchor/claim"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
)

const (
	// OwnerProperty is the statement key binding the claim owner.
	OwnerProperty = "@id"
	// CTypeProperty is the statement key binding the claim CType.
	CTypeProperty = "@type"
)

// Statement is the canonical serialization of a single claim property, or of the owner or CType binding.
type Statement struct {
	// Property is the claim property name, or OwnerProperty/CTypeProperty for the bindings.
	Property string
	// Binding is set for the owner and CType bindings, which are disclosed with every view of the claim.
	Binding bool
	Data    []byte
}

// Digest returns the unsalted digest of the statement, which keys the nonce map.
func (s Statement) Digest() hash.Blake2b256Hash {
	return hash.Blake2b256Sum(s.Data)
}

// Statements serializes the claim into its statements: the owner and CType bindings followed by
// every top-level property in ascending order. Each statement is a single-member JSON object.
func Statements(c claim.Claim) ([]Statement, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	result := make([]Statement, 0, len(c.Contents)+2)
	owner, err := statement(OwnerProperty, OwnerProperty, claim.String(c.Owner.String()))
	if err != nil {
		return nil, err
	}
	cType, err := statement(CTypeProperty, CTypeProperty, claim.String(claim.CTypeURI(c.CTypeID)))
	if err != nil {
		return nil, err
	}
	owner.Binding = true
	cType.Binding = true
	result = append(result, owner, cType)
	for _, key := range c.Contents.Keys() {
		s, err := statement(key, claim.PropertyURI(c.CTypeID, key), c.Contents[key])
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

func statement(property string, key string, value claim.Value) (Statement, error) {
	data, err := claim.Object(map[string]claim.Value{key: value}).MarshalJSON()
	if err != nil {
		return Statement{}, err
	}
	return Statement{Property: property, Data: data}, nil
}

// SaltedHash computes the published hash of a statement: Blake2b256(nonce ++ digest).
func SaltedHash(nonce Nonce, digest hash.Blake2b256Hash) hash.Blake2b256Hash {
	return hash.Blake2b256Sum(nonce[:], digest[:])
}
