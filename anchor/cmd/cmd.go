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

package cmd

import (
	"github.com/nuts-foundation/nuts-anchor/anchor"
	"github.com/spf13/pflag"
)

// FlagSet contains flags relevant for the anchor module
func FlagSet() *pflag.FlagSet {
	defs := anchor.DefaultConfig()
	flagSet := pflag.NewFlagSet("anchor", pflag.ContinueOnError)
	flagSet.Duration("anchor.timeout", defs.Timeout, "Maximum duration of a ledger submission or query, formatted as Golang duration (e.g. 10s, 1m).")
	flagSet.Uint("anchor.ledger.retries", defs.Ledger.Retries, "Number of times a ledger write that failed on a database error is retried.")
	flagSet.String("anchor.ledger.authority", defs.Ledger.Authority, "DID that registers the CTypes configured in anchor.ledger.ctypes.")
	flagSet.StringSlice("anchor.ledger.ctypes", defs.Ledger.CTypes, "Hashes (hex) of the CTypes that are registered on the ledger on start.")
	return flagSet
}
