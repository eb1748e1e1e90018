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
	"errors"
	"fmt"
	"sync"

	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-anchor/claim"
	"github.com/nuts-foundation/nuts-anchor/commitment"
	"github.com/nuts-foundation/nuts-anchor/credential"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/nuts-foundation/nuts-anchor/identifier"
	"github.com/nuts-foundation/nuts-anchor/ledger"
)

// ErrAnchoringRejected is returned when the ledger refuses the anchoring transaction. It wraps the ledger error.
var ErrAnchoringRejected = errors.New("anchoring rejected by ledger")

// ErrRevocationRejected is returned when the ledger refuses the revocation. It wraps the ledger error.
var ErrRevocationRejected = errors.New("revocation rejected by ledger")

// State is the stage an issuance is in.
type State int

const (
	// StateDraft means the claimant assembled the claim and its digests. Nothing was sent to the ledger.
	StateDraft State = iota
	// StateCommitted means the root digest was computed and submitted to the ledger.
	StateCommitted
	// StateAnchored means the ledger accepted the root digest.
	StateAnchored
	// StateFinalized means the proof was assembled and the credential can be handed to the holder.
	StateFinalized
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StateCommitted:
		return "committed"
	case StateAnchored:
		return "anchored"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Draft is what the claimant hands to the attester: the claim, its salted hashes and the nonces that produced them.
type Draft struct {
	Claim         claim.Claim           `json:"claim"`
	Hashes        []hash.Blake2b256Hash `json:"hashes"`
	NonceMap      commitment.NonceMap   `json:"nonceMap"`
	Legitimations []hash.Blake2b256Hash `json:"legitimations,omitempty"`
	DelegationID  *hash.Blake2b256Hash  `json:"delegationId,omitempty"`
}

// NewDraft digests the claim with fresh nonces.
func NewDraft(c claim.Claim, legitimations []hash.Blake2b256Hash, delegationID *hash.Blake2b256Hash) (*Draft, error) {
	digests, err := commitment.Digest(c, nil)
	if err != nil {
		return nil, err
	}
	return &Draft{
		Claim:         c,
		Hashes:        digests.Hashes,
		NonceMap:      digests.NonceMap,
		Legitimations: legitimations,
		DelegationID:  delegationID,
	}, nil
}

// Issuance tracks a draft through anchoring. It is safe for concurrent reads.
type Issuance struct {
	mux         sync.RWMutex
	state       State
	draft       Draft
	digests     *commitment.DigestSet
	rootDigest  hash.Blake2b256Hash
	anchorBlock ledger.BlockRef
	credential  *credential.Credential
}

func newIssuance(draft Draft) *Issuance {
	return &Issuance{state: StateDraft, draft: draft}
}

// State returns the current state.
func (i *Issuance) State() State {
	i.mux.RLock()
	defer i.mux.RUnlock()
	return i.state
}

// ID returns the credential identifier. It is empty while in StateDraft.
func (i *Issuance) ID() identifier.ID {
	i.mux.RLock()
	defer i.mux.RUnlock()
	if i.state == StateDraft {
		return ""
	}
	return identifier.FromRootDigest(i.rootDigest)
}

// AnchorBlock returns the block the root digest was anchored in. It is the zero reference before StateAnchored.
func (i *Issuance) AnchorBlock() ledger.BlockRef {
	i.mux.RLock()
	defer i.mux.RUnlock()
	return i.anchorBlock
}

// Credential returns the finalized credential, or nil if the issuance isn't finalized.
func (i *Issuance) Credential() *credential.Credential {
	i.mux.RLock()
	defer i.mux.RUnlock()
	return i.credential
}

func (i *Issuance) commit(digests *commitment.DigestSet, rootDigest hash.Blake2b256Hash) {
	i.mux.Lock()
	defer i.mux.Unlock()
	i.digests = digests
	i.rootDigest = rootDigest
	i.state = StateCommitted
}

func (i *Issuance) anchor(block ledger.BlockRef) {
	i.mux.Lock()
	defer i.mux.Unlock()
	i.anchorBlock = block
	i.state = StateAnchored
}

// finalize assembles the proof: commitments in ascending order and the full salt aligned with them.
func (i *Issuance) finalize(attester did.DID) *credential.Credential {
	i.mux.Lock()
	defer i.mux.Unlock()
	result := &credential.Credential{
		ID:            identifier.FromRootDigest(i.rootDigest),
		Claim:         i.draft.Claim,
		Attester:      attester,
		Legitimations: i.draft.Legitimations,
		DelegationID:  i.draft.DelegationID,
		Proof: credential.Proof{
			Type:        credential.AttestationProofType,
			AnchorBlock: i.anchorBlock.Hash,
			Commitments: i.digests.Hashes,
			Salt:        i.digests.Salt(nil),
		},
	}
	i.credential = result
	i.state = StateFinalized
	return result
}
