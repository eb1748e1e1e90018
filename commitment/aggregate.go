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
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
)

// Aggregate computes the root digest: a single Blake2b-256 pass over the statement digests, followed by the
// legitimation root digests and the delegation id (if any), all in the order given. Changing the order changes
// the root digest, so verifiers must supply the same order (the sorted commitments of a proof).
func Aggregate(digests []hash.Blake2b256Hash, legitimations []hash.Blake2b256Hash, delegationID *hash.Blake2b256Hash) (hash.Blake2b256Hash, error) {
	if len(digests) == 0 && delegationID == nil {
		return hash.EmptyHash(), ErrEmptyCommitment
	}
	parts := make([][]byte, 0, len(digests)+len(legitimations)+1)
	for i := range digests {
		parts = append(parts, digests[i].Slice())
	}
	for i := range legitimations {
		parts = append(parts, legitimations[i].Slice())
	}
	if delegationID != nil {
		parts = append(parts, delegationID.Slice())
	}
	return hash.Blake2b256Sum(parts...), nil
}
