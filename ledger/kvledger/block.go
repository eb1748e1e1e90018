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
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/go-stoabs"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/nuts-foundation/nuts-anchor/ledger"
)

const (
	// blocksShelf has the block number (big endian) as key and the block as value.
	blocksShelf = "blocks"
	// blockIndexShelf has the block hash as key and the block number (big endian) as value.
	blockIndexShelf = "blockIndex"
	// metaShelf holds the reference to the head of the chain.
	metaShelf = "meta"
	headKey   = "head"
)

// TransactionType defines the kinds of transactions the ledger accepts.
type TransactionType string

const (
	// AnchorTransaction anchors an attestation or public credential.
	AnchorTransaction TransactionType = "anchor"
	// RevokeTransaction revokes an anchored attestation.
	RevokeTransaction TransactionType = "revoke"
	// CTypeTransaction registers a CType.
	CTypeTransaction TransactionType = "ctype"
	// DelegationTransaction registers a delegation for a CType.
	DelegationTransaction TransactionType = "delegation"
)

// Transaction is the payload of a block.
type Transaction struct {
	ID           string               `json:"id"`
	Type         TransactionType      `json:"type"`
	Key          hash.Blake2b256Hash  `json:"key"`
	Kind         ledger.Kind          `json:"kind,omitempty"`
	CTypeID      *hash.Blake2b256Hash `json:"cTypeHash,omitempty"`
	Signer       did.DID              `json:"signer"`
	DelegationID *hash.Blake2b256Hash `json:"delegationId,omitempty"`
}

// Block contains exactly one transaction. Its hash commits to the parent, its number and the transaction.
type Block struct {
	Number      uint64              `json:"number"`
	Hash        hash.Blake2b256Hash `json:"hash"`
	Parent      hash.Blake2b256Hash `json:"parent"`
	Timestamp   time.Time           `json:"timestamp"`
	Transaction Transaction         `json:"transaction"`
}

// Ref returns the reference to this block.
func (b Block) Ref() ledger.BlockRef {
	return ledger.BlockRef{Number: b.Number, Hash: b.Hash}
}

func newBlock(parent ledger.BlockRef, transaction Transaction) (Block, error) {
	data, err := json.Marshal(transaction)
	if err != nil {
		return Block{}, fmt.Errorf("unable to marshal transaction: %w", err)
	}
	number := parent.Number + 1
	return Block{
		Number:      number,
		Hash:        hash.Blake2b256Sum(parent.Hash.Slice(), numberKey(number), data),
		Parent:      parent.Hash,
		Timestamp:   time.Now().UTC(),
		Transaction: transaction,
	}, nil
}

func numberKey(number uint64) stoabs.BytesKey {
	result := make([]byte, 8)
	binary.BigEndian.PutUint64(result, number)
	return result
}

// readHead returns the reference to the latest block. On an empty ledger it returns the zero reference.
func readHead(tx stoabs.ReadTx) (ledger.BlockRef, error) {
	var head ledger.BlockRef
	data, err := tx.GetShelfReader(metaShelf).Get(stoabs.BytesKey(headKey))
	if err != nil && !errors.Is(err, stoabs.ErrKeyNotFound) {
		return head, err
	}
	if len(data) == 0 {
		return head, nil
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return head, fmt.Errorf("unmarshal error on head: %w", err)
	}
	return head, nil
}

func writeBlock(tx stoabs.WriteTx, block Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return err
	}
	if err := tx.GetShelfWriter(blocksShelf).Put(numberKey(block.Number), data); err != nil {
		return err
	}
	if err := tx.GetShelfWriter(blockIndexShelf).Put(stoabs.HashKey(block.Hash), numberKey(block.Number)); err != nil {
		return err
	}
	head, _ := json.Marshal(block.Ref())
	return tx.GetShelfWriter(metaShelf).Put(stoabs.BytesKey(headKey), head)
}

func readBlock(tx stoabs.ReadTx, number uint64) (*Block, error) {
	data, err := tx.GetShelfReader(blocksShelf).Get(numberKey(number))
	if err != nil && !errors.Is(err, stoabs.ErrKeyNotFound) {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ledger.ErrUnknownBlock
	}
	var block Block
	if err := json.Unmarshal(data, &block); err != nil {
		return nil, fmt.Errorf("unmarshal error on block: %w", err)
	}
	return &block, nil
}

// blockNumber looks up the number of the block with the given hash.
func blockNumber(tx stoabs.ReadTx, blockHash hash.Blake2b256Hash) (uint64, error) {
	data, err := tx.GetShelfReader(blockIndexShelf).Get(stoabs.HashKey(blockHash))
	if err != nil && !errors.Is(err, stoabs.ErrKeyNotFound) {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: %s", ledger.ErrUnknownBlock, blockHash.Base58())
	}
	return binary.BigEndian.Uint64(data), nil
}
