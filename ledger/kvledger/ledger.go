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

package kvledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/go-stoabs"
	"github.com/nuts-foundation/nuts-anchor/core"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/nuts-foundation/nuts-anchor/ledger"
	"github.com/nuts-foundation/nuts-anchor/ledger/log"
	"go.uber.org/atomic"
)

const defaultRetryDelay = 100 * time.Millisecond

var _ ledger.Ledger = (*Ledger)(nil)

// Ledger is a single node ledger on a key-value store. Every accepted transaction is appended as a block,
// attestation records are versioned per block so they can be queried at any block.
// Multiple goroutines may invoke methods on a Ledger simultaneously.
type Ledger struct {
	db         stoabs.KVStore
	retries    uint
	retryDelay time.Duration
	height     *atomic.Uint64
}

// New returns a Ledger on the given store. Writes failing on a database error are retried the given number of times.
func New(db stoabs.KVStore, retries uint) (*Ledger, error) {
	if err := registerMetrics(); err != nil {
		return nil, err
	}
	result := &Ledger{
		db:         db,
		retries:    retries,
		retryDelay: defaultRetryDelay,
		height:     atomic.NewUint64(0),
	}
	head, err := result.Head(context.Background())
	if err != nil {
		return nil, fmt.Errorf("unable to read ledger head: %w", err)
	}
	result.height.Store(head.Number)
	blockHeightGauge.Set(float64(head.Number))
	return result, nil
}

// Height returns the number of the latest block.
func (l *Ledger) Height() uint64 {
	return l.height.Load()
}

// Head returns the reference to the latest block. On an empty ledger it returns the zero reference.
func (l *Ledger) Head(ctx context.Context) (ledger.BlockRef, error) {
	var head ledger.BlockRef
	err := l.db.Read(ctx, func(tx stoabs.ReadTx) error {
		var err error
		head, err = readHead(tx)
		return err
	})
	return head, err
}

// Block returns the block with the given number, or ledger.ErrUnknownBlock if it doesn't exist.
func (l *Ledger) Block(ctx context.Context, number uint64) (*Block, error) {
	var result *Block
	err := l.db.Read(ctx, func(tx stoabs.ReadTx) error {
		var err error
		result, err = readBlock(tx, number)
		return err
	})
	return result, err
}

// Submit anchors the key of the request.
func (l *Ledger) Submit(ctx context.Context, request ledger.AnchorRequest) (ledger.BlockRef, error) {
	cTypeID := request.CTypeID
	transaction := Transaction{
		Type:         AnchorTransaction,
		Key:          request.Key,
		Kind:         request.Kind,
		CTypeID:      &cTypeID,
		Signer:       request.Attester,
		DelegationID: request.DelegationID,
	}
	return l.apply(ctx, transaction, func(tx stoabs.WriteTx, block Block) error {
		if _, exists, err := latestVersion(tx, request.Key); err != nil {
			return err
		} else if exists {
			return ledger.ErrDuplicateKey
		}
		cType, err := readRegistration(tx, cTypeShelf, request.CTypeID)
		if err != nil {
			return err
		}
		if cType == nil {
			return ledger.ErrUnknownCType
		}
		if request.DelegationID != nil {
			if err := checkDelegation(tx, *request.DelegationID, request.CTypeID, request.Attester); err != nil {
				return err
			}
		}
		record := versionedRecord{
			AttestationRecord: ledger.AttestationRecord{
				CTypeID:      request.CTypeID,
				Attester:     request.Attester,
				DelegationID: request.DelegationID,
			},
			Block: block.Number,
		}
		if request.Kind == ledger.PublicCredentialKind {
			number := block.Number
			record.BlockNumber = &number
		}
		return writeRecord(tx, request.Key, record)
	})
}

// Revoke marks the attestation revoked. Only the attester or the owner of its delegation may revoke.
func (l *Ledger) Revoke(ctx context.Context, key hash.Blake2b256Hash, attester did.DID) (ledger.BlockRef, error) {
	transaction := Transaction{
		Type:   RevokeTransaction,
		Key:    key,
		Signer: attester,
	}
	return l.apply(ctx, transaction, func(tx stoabs.WriteTx, block Block) error {
		current, err := readRecordAt(tx, key, math.MaxUint64)
		if err != nil {
			return err
		}
		if current.Revoked {
			return ledger.ErrAlreadyRevoked
		}
		if !current.Attester.Equals(attester) {
			if current.DelegationID == nil {
				return ledger.ErrUnauthorized
			}
			delegation, err := readRegistration(tx, delegationShelf, *current.DelegationID)
			if err != nil {
				return err
			}
			if delegation == nil || !delegation.Owner.Equals(attester) {
				return ledger.ErrUnauthorized
			}
		}
		next := *current
		next.Revoked = true
		next.Version = current.Version + 1
		next.Block = block.Number
		return writeRecord(tx, key, next)
	})
}

// RegisterCType registers a CType so attestations may be anchored against it.
func (l *Ledger) RegisterCType(ctx context.Context, cTypeID hash.Blake2b256Hash, creator did.DID) (ledger.BlockRef, error) {
	transaction := Transaction{
		Type:   CTypeTransaction,
		Key:    cTypeID,
		Signer: creator,
	}
	return l.apply(ctx, transaction, func(tx stoabs.WriteTx, block Block) error {
		existing, err := readRegistration(tx, cTypeShelf, cTypeID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ledger.ErrDuplicateKey
		}
		return writeRegistration(tx, cTypeShelf, cTypeID, registration{Owner: creator, Block: block.Number})
	})
}

// RegisterDelegation registers a delegation for the given CType, owned by the given DID.
// Attesters may then anchor with the delegation if they are its owner.
func (l *Ledger) RegisterDelegation(ctx context.Context, delegationID hash.Blake2b256Hash, cTypeID hash.Blake2b256Hash, owner did.DID) (ledger.BlockRef, error) {
	transaction := Transaction{
		Type:    DelegationTransaction,
		Key:     delegationID,
		CTypeID: &cTypeID,
		Signer:  owner,
	}
	return l.apply(ctx, transaction, func(tx stoabs.WriteTx, block Block) error {
		existing, err := readRegistration(tx, delegationShelf, delegationID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ledger.ErrDuplicateKey
		}
		cType, err := readRegistration(tx, cTypeShelf, cTypeID)
		if err != nil {
			return err
		}
		if cType == nil {
			return ledger.ErrUnknownCType
		}
		return writeRegistration(tx, delegationShelf, delegationID, registration{Owner: owner, CTypeID: &cTypeID, Block: block.Number})
	})
}

// GetAttestation returns the attestation record as it was at the given block, or the latest record if atBlock is nil.
func (l *Ledger) GetAttestation(ctx context.Context, key hash.Blake2b256Hash, atBlock *hash.Blake2b256Hash) (*ledger.AttestationRecord, error) {
	var result *ledger.AttestationRecord
	err := l.db.Read(ctx, func(tx stoabs.ReadTx) error {
		maxBlock := uint64(math.MaxUint64)
		if atBlock != nil {
			number, err := blockNumber(tx, *atBlock)
			if err != nil {
				return err
			}
			maxBlock = number
		}
		record, err := readRecordAt(tx, key, maxBlock)
		if err != nil {
			return err
		}
		result = &record.AttestationRecord
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Diagnostics returns the height of the ledger.
func (l *Ledger) Diagnostics() []core.DiagnosticResult {
	return []core.DiagnosticResult{
		&core.GenericDiagnosticResult{Title: "block_height", Outcome: l.Height()},
	}
}

func checkDelegation(tx stoabs.ReadTx, delegationID hash.Blake2b256Hash, cTypeID hash.Blake2b256Hash, attester did.DID) error {
	delegation, err := readRegistration(tx, delegationShelf, delegationID)
	if err != nil {
		return err
	}
	if delegation == nil {
		return fmt.Errorf("%w: unknown delegation", ledger.ErrUnauthorized)
	}
	if !delegation.Owner.Equals(attester) {
		return fmt.Errorf("%w: delegation not owned by attester", ledger.ErrUnauthorized)
	}
	if delegation.CTypeID == nil || !delegation.CTypeID.Equals(cTypeID) {
		return fmt.Errorf("%w: delegation is for another CType", ledger.ErrUnauthorized)
	}
	return nil
}

// apply appends a block with the given transaction, after fn accepted it. Database errors are retried,
// any other error (including rejections by fn) aborts without retrying.
func (l *Ledger) apply(ctx context.Context, transaction Transaction, fn func(tx stoabs.WriteTx, block Block) error) (ledger.BlockRef, error) {
	transaction.ID = uuid.NewString()
	logger := log.Logger().
		WithField(core.LogFieldTransactionID, transaction.ID).
		WithField("txType", transaction.Type)
	var block Block
	err := retry.Do(func() error {
		err := l.db.Write(ctx, func(tx stoabs.WriteTx) error {
			head, err := readHead(tx)
			if err != nil {
				return err
			}
			block, err = newBlock(head, transaction)
			if err != nil {
				return err
			}
			if err := fn(tx, block); err != nil {
				return err
			}
			return writeBlock(tx, block)
		}, stoabs.WithWriteLock(), stoabs.AfterCommit(func() {
			l.height.Store(block.Number)
			blockHeightGauge.Set(float64(block.Number))
			transactionsCounter.WithLabelValues(string(transaction.Type)).Inc()
		}))
		if err != nil && !errors.As(err, new(stoabs.ErrDatabase)) {
			return retry.Unrecoverable(err)
		}
		return err
	},
		retry.Attempts(l.retries+1),
		retry.Delay(l.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.WithError(err).Warnf("Ledger write failed, retrying (attempt=%d)", n+1)
		}),
	)
	if err != nil {
		if ledger.IsRejection(err) {
			rejectionsCounter.WithLabelValues(string(transaction.Type)).Inc()
			logger.WithError(err).Info("Transaction rejected")
		}
		return ledger.BlockRef{}, err
	}
	logger.
		WithField(core.LogFieldBlockNumber, block.Number).
		Debug("Transaction accepted")
	return block.Ref(), nil
}
