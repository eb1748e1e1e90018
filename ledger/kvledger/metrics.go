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
	"github.com/nuts-foundation/nuts-anchor/core"
	"github.com/prometheus/client_golang/prometheus"
)

var transactionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: core.MetricsNamespace,
	Subsystem: "ledger",
	Name:      "transactions_total",
	Help:      "Number of transactions accepted by the ledger, by type.",
}, []string{"type"})

var rejectionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: core.MetricsNamespace,
	Subsystem: "ledger",
	Name:      "rejections_total",
	Help:      "Number of transactions rejected by the ledger, by type.",
}, []string{"type"})

var blockHeightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: core.MetricsNamespace,
	Subsystem: "ledger",
	Name:      "block_height",
	Help:      "Number of the latest block of the ledger.",
})

func registerMetrics() error {
	return core.RegisterCollectors(transactionsCounter, rejectionsCounter, blockHeightGauge)
}
