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

package anchor

import "time"

// Config contains the configuration for the anchor module.
type Config struct {
	// Timeout bounds every ledger submission and query.
	Timeout time.Duration `koanf:"timeout"`
	Ledger  LedgerConfig  `koanf:"ledger"`
}

// LedgerConfig contains the configuration of the local ledger.
type LedgerConfig struct {
	// Retries is the number of times a write failing on a database error is retried.
	Retries uint `koanf:"retries"`
	// Authority is the DID registering the configured CTypes.
	Authority string `koanf:"authority"`
	// CTypes lists the hashes (hex) of the CTypes that are registered on start.
	CTypes []string `koanf:"ctypes"`
}

// DefaultConfig returns the default configuration for the module.
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
		Ledger: LedgerConfig{
			Retries:   3,
			Authority: "did:nuts:anchor",
		},
	}
}
