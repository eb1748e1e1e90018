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
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCommitment is returned when a root digest would be computed over nothing.
var ErrEmptyCommitment = errors.New("commitment over zero digests without delegation")

// ErrNonceMapMismatch is returned when a nonce map does not reproduce the expected digests.
var ErrNonceMapMismatch = errors.New("nonce map does not match digests")

// ErrSaltMisaligned is returned when the salt list of a proof doesn't line up with its commitments.
var ErrSaltMisaligned = errors.New("salt is not aligned with commitments")

// NonceMapMismatchError lists the statements whose nonce is missing or doesn't reproduce a known hash.
type NonceMapMismatchError struct {
	Properties []string
}

// Error implements the error interface.
func (e *NonceMapMismatchError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNonceMapMismatch, strings.Join(e.Properties, ", "))
}

// Is makes NonceMapMismatchError match ErrNonceMapMismatch.
func (e *NonceMapMismatchError) Is(target error) bool {
	return target == ErrNonceMapMismatch
}
