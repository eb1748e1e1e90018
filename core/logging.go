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

package core

const (
	// LogFieldModule is the log field for the module name.
	LogFieldModule = "module"

	// LogFieldCredentialID is the log field key for the identifier of a credential.
	LogFieldCredentialID = "credentialID"
	// LogFieldCType is the log field key for the CType hash a credential conforms to.
	LogFieldCType = "cType"
	// LogFieldAttester is the log field key for the DID of the attester of a credential.
	LogFieldAttester = "attester"
	// LogFieldProofType is the log field key for the type of a proof in a credential document.
	LogFieldProofType = "proofType"

	// LogFieldBlockNumber is the log field key for the number of a ledger block.
	LogFieldBlockNumber = "blockNumber"
	// LogFieldTransactionID is the log field key for the ID of a ledger transaction.
	LogFieldTransactionID = "txID"

	// LogFieldStore is the log field key for the name of a store managed by the storage module.
	LogFieldStore = "store"
	// LogFieldStoreShelf is the log field key for the name of a shelf, in a store managed by the storage module.
	LogFieldStoreShelf = "storeShelf"
)
