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

import (
	"fmt"
	"sort"
	"strings"
)

// DiagnosticResult is a named outcome of a health check, listed by /status/diagnostics.
type DiagnosticResult interface {
	// Name returns a simple and understandable name of the check
	Name() string
	// Result returns the outcome in a form that can be marshalled to JSON
	Result() interface{}
	// String returns the outcome of the check formatted as string
	String() string
}

// GenericDiagnosticResult is a DiagnosticResult holding a single value, e.g. the ledger height.
type GenericDiagnosticResult struct {
	Title   string
	Outcome interface{}
}

func (r *GenericDiagnosticResult) Name() string {
	return r.Title
}

func (r *GenericDiagnosticResult) Result() interface{} {
	return r.Outcome
}

func (r *GenericDiagnosticResult) String() string {
	return fmt.Sprintf("%v", r.Outcome)
}

// diagnosticsReport holds the diagnostics of each engine, by engine name.
type diagnosticsReport map[string][]DiagnosticResult

func collectDiagnostics(system *System) diagnosticsReport {
	report := diagnosticsReport{}
	system.VisitEngines(func(engine Engine) {
		if diagnosable, ok := engine.(Diagnosable); ok {
			report[engineName(engine)] = diagnosable.Diagnostics()
		}
	})
	return report
}

// asMap returns the report as engine name -> check name -> outcome.
func (r diagnosticsReport) asMap() map[string]map[string]interface{} {
	result := make(map[string]map[string]interface{}, len(r))
	for engine, results := range r {
		values := make(map[string]interface{}, len(results))
		for _, d := range results {
			values[d.Name()] = d.Result()
		}
		result[engine] = values
	}
	return result
}

// String lists the engines alphabetically, each followed by its indented checks.
func (r diagnosticsReport) String() string {
	engines := make([]string, 0, len(r))
	for engine := range r {
		engines = append(engines, engine)
	}
	sort.Strings(engines)
	var lines []string
	for _, engine := range engines {
		lines = append(lines, engine)
		for _, d := range r[engine] {
			lines = append(lines, fmt.Sprintf("\t%s: %s", d.Name(), d.String()))
		}
	}
	return strings.Join(lines, "\n")
}
