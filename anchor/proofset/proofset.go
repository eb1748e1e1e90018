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
	"fmt"

	"github.com/nuts-foundation/nuts-anchor/anchor/log"
	"github.com/nuts-foundation/nuts-anchor/core"
	"github.com/nuts-foundation/nuts-anchor/credential"
	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedProofSet is returned for documents without proof or with more than one proof.
var ErrUnsupportedProofSet = errors.New("document must carry exactly one proof")

// ErrInvalidPolicy is returned for a policy other than "any" or "all".
var ErrInvalidPolicy = errors.New("invalid proof set policy")

// ErrUnknownProofType is returned when no purpose exists for the type of a proof.
var ErrUnknownProofType = errors.New("unknown proof type")

// ErrNoVerifier is returned when no verifier is given for the type of a proof.
var ErrNoVerifier = errors.New("no verifier for proof type")

// Policy determines how the results of the proofs are folded.
type Policy string

const (
	// PolicyAll requires every proof to verify.
	PolicyAll Policy = "all"
	// PolicyAny requires at least one proof to verify.
	PolicyAny Policy = "any"
)

// ParsePolicy parses "any" or "all".
func ParsePolicy(input string) (Policy, error) {
	switch Policy(input) {
	case PolicyAll, PolicyAny:
		return Policy(input), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, input)
	}
}

// Result is the outcome of verifying one proof.
type Result struct {
	Verified bool
	Error    error
	Proof    credential.Proof
}

// MarshalJSON writes the error as string.
func (r Result) MarshalJSON() ([]byte, error) {
	result := struct {
		Verified bool             `json:"verified"`
		Error    string           `json:"error,omitempty"`
		Proof    credential.Proof `json:"proof"`
	}{
		Verified: r.Verified,
		Proof:    r.Proof,
	}
	if r.Error != nil {
		result.Error = r.Error.Error()
	}
	return json.Marshal(result)
}

func failed(proof credential.Proof, err error) Result {
	return Result{Error: err, Proof: proof}
}

// Evaluation is the folded outcome of all proofs of a document.
type Evaluation struct {
	Verified bool     `json:"verified"`
	Results  []Result `json:"results"`
}

// Evaluate verifies the proofs of the document with the verifier registered for their type and folds the results
// according to the policy. Only documents with exactly one proof are supported.
func Evaluate(ctx context.Context, document credential.Document, verifiers map[string]VerifyFunc, policy Policy) (*Evaluation, error) {
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	if len(document.Proofs) != 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrUnsupportedProofSet, len(document.Proofs))
	}
	results := evaluateAll(ctx, document, verifiers)
	return &Evaluation{
		Verified: fold(results, policy),
		Results:  results,
	}, nil
}

// evaluateAll verifies every proof in its own goroutine and waits for all of them.
// A failing (or panicking) verifier never stops the others.
func evaluateAll(ctx context.Context, document credential.Document, verifiers map[string]VerifyFunc) []Result {
	results := make([]Result, len(document.Proofs))
	var group errgroup.Group
	for i, proof := range document.Proofs {
		group.Go(func() error {
			results[i] = evaluate(ctx, document, proof, verifiers)
			return nil
		})
	}
	_ = group.Wait()
	return results
}

func evaluate(ctx context.Context, document credential.Document, proof credential.Proof, verifiers map[string]VerifyFunc) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Logger().
				WithField(core.LogFieldProofType, proof.Type).
				Errorf("Proof verifier panicked: %v", r)
			result = failed(proof, fmt.Errorf("verifier panicked: %v", r))
		}
	}()
	purpose, ok := PurposeOf(proof.Type)
	if !ok {
		return failed(proof, fmt.Errorf("%w: %q", ErrUnknownProofType, proof.Type))
	}
	verify := verifiers[string(proof.Type)]
	if verify == nil {
		return failed(proof, fmt.Errorf("%w: %s", ErrNoVerifier, proof.Type))
	}
	return purpose.Validate(ctx, document, proof, verify)
}

func fold(results []Result, policy Policy) bool {
	if len(results) == 0 {
		return false
	}
	for _, result := range results {
		if policy == PolicyAny && result.Verified {
			return true
		}
		if policy == PolicyAll && !result.Verified {
			return false
		}
	}
	return policy == PolicyAll
}
