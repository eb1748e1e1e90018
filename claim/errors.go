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

package claim

import (
	"errors"
	"fmt"
)

// ErrMalformedClaim is returned when a claim does not have the shape required for digesting.
var ErrMalformedClaim = errors.New("malformed claim")

// MalformedClaimError describes which property of a claim is malformed and why.
type MalformedClaimError struct {
	// Property is the (dot separated) path of the offending property, empty for claim level problems.
	Property string
	Reason   string
}

// Error implements the error interface.
func (e *MalformedClaimError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedClaim, e.Reason)
	}
	return fmt.Sprintf("%s: property '%s': %s", ErrMalformedClaim, e.Property, e.Reason)
}

// Is makes MalformedClaimError match ErrMalformedClaim.
func (e *MalformedClaimError) Is(target error) bool {
	return target == ErrMalformedClaim
}

func malformed(property string, reason string, args ...interface{}) error {
	return &MalformedClaimError{Property: property, Reason: fmt.Sprintf(reason, args...)}
}
