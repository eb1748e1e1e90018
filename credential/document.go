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

package credential

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidDocument is returned when a document can't be parsed.
var ErrInvalidDocument = errors.New("invalid credential document")

const proofMember = "proof"

// Document is a credential document as exchanged between holder and verifier: a JSON object with a proof member
// holding either a single proof or a list of proofs.
type Document struct {
	ID     string
	Proofs []Proof
	// members holds every member except the proof
	members map[string]json.RawMessage
}

// ParseDocument parses a credential document.
func ParseDocument(data []byte) (*Document, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if members == nil {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidDocument)
	}
	result := &Document{members: members}
	if rawID, ok := members["id"]; ok {
		if err := json.Unmarshal(rawID, &result.ID); err != nil {
			return nil, fmt.Errorf("%w: invalid id: %w", ErrInvalidDocument, err)
		}
	}
	if rawProof, ok := members[proofMember]; ok {
		proofs, err := parseProofs(rawProof)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		result.Proofs = proofs
		delete(members, proofMember)
	}
	return result, nil
}

// NewDocument creates a document from a credential (or any value that marshals to a JSON object).
func NewDocument(v interface{}) (*Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

func parseProofs(raw json.RawMessage) ([]Proof, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var proofs []Proof
		if err := json.Unmarshal(trimmed, &proofs); err != nil {
			return nil, err
		}
		return proofs, nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var proof Proof
	if err := json.Unmarshal(trimmed, &proof); err != nil {
		return nil, err
	}
	return []Proof{proof}, nil
}

// MarshalJSON writes the document with a single proof as object, multiple proofs as array.
func (d Document) MarshalJSON() ([]byte, error) {
	members := make(map[string]interface{}, len(d.members)+1)
	for k, v := range d.members {
		members[k] = v
	}
	switch len(d.Proofs) {
	case 0:
	case 1:
		members[proofMember] = d.Proofs[0]
	default:
		members[proofMember] = d.Proofs
	}
	return json.Marshal(members)
}

// UnmarshalJSON parses the document, see ParseDocument.
func (d *Document) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDocument(data)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

// Credential decodes the document as attested credential carrying the given proof.
func (d Document) Credential(proof Proof) (*Credential, error) {
	result := &Credential{}
	if err := d.decode(result); err != nil {
		return nil, err
	}
	result.Proof = proof
	return result, nil
}

// PublicCredential decodes the document as public credential carrying the given proof.
func (d Document) PublicCredential(proof Proof) (*PublicCredential, error) {
	result := &PublicCredential{}
	if err := d.decode(result); err != nil {
		return nil, err
	}
	result.Proof = &proof
	return result, nil
}

func (d Document) decode(target interface{}) error {
	data, err := json.Marshal(d.members)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}
