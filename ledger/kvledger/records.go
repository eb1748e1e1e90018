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

	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/go-stoabs"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/nuts-foundation/nuts-anchor/ledger"
)

const (
	// latestShelf has the attestation key as key and its latest version (big endian uint32) as value.
	latestShelf = "latest"
	// recordShelf has the attestation key concatenated with the version as key and the versionedRecord as value.
	recordShelf = "records"
	// cTypeShelf has the CType hash as key and the registration as value.
	cTypeShelf = "ctypes"
	// delegationShelf has the delegation ID as key and the registration as value.
	delegationShelf = "delegations"
)

// versionedRecord is the state of an attestation as of a specific block.
type versionedRecord struct {
	ledger.AttestationRecord
	Version uint32 `json:"version"`
	Block   uint64 `json:"block"`
}

type registration struct {
	Owner   did.DID              `json:"owner"`
	CTypeID *hash.Blake2b256Hash `json:"cTypeHash,omitempty"`
	Block   uint64               `json:"block"`
}

func versionKey(key hash.Blake2b256Hash, version uint32) stoabs.BytesKey {
	result := make([]byte, hash.Blake2b256HashSize+4)
	copy(result, key[:])
	binary.BigEndian.PutUint32(result[hash.Blake2b256HashSize:], version)
	return result
}

// latestVersion returns the latest version of the record with the given key, or false when there's none.
func latestVersion(tx stoabs.ReadTx, key hash.Blake2b256Hash) (uint32, bool, error) {
	data, err := tx.GetShelfReader(latestShelf).Get(stoabs.HashKey(key))
	if err != nil && !errors.Is(err, stoabs.ErrKeyNotFound) {
		return 0, false, err
	}
	if len(data) != 4 {
		return 0, false, nil
	}
	return binary.BigEndian.Uint32(data), true, nil
}

func readVersion(tx stoabs.ReadTx, key hash.Blake2b256Hash, version uint32) (*versionedRecord, error) {
	data, err := tx.GetShelfReader(recordShelf).Get(versionKey(key, version))
	if err != nil && !errors.Is(err, stoabs.ErrKeyNotFound) {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("attestation record version %d missing", version)
	}
	var result versionedRecord
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal error on attestation record: %w", err)
	}
	return &result, nil
}

// readRecordAt returns the latest version of the record that was written in or before the given block.
func readRecordAt(tx stoabs.ReadTx, key hash.Blake2b256Hash, maxBlock uint64) (*versionedRecord, error) {
	version, exists, err := latestVersion(tx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ledger.ErrNotFound
	}
	for {
		record, err := readVersion(tx, key, version)
		if err != nil {
			return nil, err
		}
		if record.Block <= maxBlock {
			return record, nil
		}
		if version == 0 {
			return nil, ledger.ErrNotFound
		}
		version--
	}
}

// writeRecord stores a new version of the record. Versions are never overwritten.
func writeRecord(tx stoabs.WriteTx, key hash.Blake2b256Hash, record versionedRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := tx.GetShelfWriter(recordShelf).Put(versionKey(key, record.Version), data); err != nil {
		return err
	}
	version := make([]byte, 4)
	binary.BigEndian.PutUint32(version, record.Version)
	return tx.GetShelfWriter(latestShelf).Put(stoabs.HashKey(key), version)
}

func readRegistration(tx stoabs.ReadTx, shelf string, key hash.Blake2b256Hash) (*registration, error) {
	data, err := tx.GetShelfReader(shelf).Get(stoabs.HashKey(key))
	if err != nil && !errors.Is(err, stoabs.ErrKeyNotFound) {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var result registration
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal error on registration: %w", err)
	}
	return &result, nil
}

func writeRegistration(tx stoabs.WriteTx, shelf string, key hash.Blake2b256Hash, value registration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return tx.GetShelfWriter(shelf).Put(stoabs.HashKey(key), data)
}
