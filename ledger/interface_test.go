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

package ledger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRejection(t *testing.T) {
	for _, err := range []error{ErrDuplicateKey, ErrUnknownCType, ErrUnauthorized, ErrAlreadyRevoked, ErrNotFound} {
		assert.True(t, IsRejection(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
	assert.False(t, IsRejection(ErrUnknownBlock))
	assert.False(t, IsRejection(assert.AnError))
}
