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
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type status struct {
	system *System
}

// NewStatusEngine creates a new Engine for viewing all engines
func NewStatusEngine(system *System) Engine {
	return &status{
		system: system,
	}
}

func (s *status) Name() string {
	return "Status"
}

func (s *status) Routes(router EchoRouter) {
	router.GET("/status/diagnostics", s.diagnosticsOverview)
	router.GET("/status", statusOK)
}

// diagnosticsOverview writes the diagnostics as text, or as JSON when the client accepts it.
func (s *status) diagnosticsOverview(ctx echo.Context) error {
	report := collectDiagnostics(s.system)
	if strings.Contains(ctx.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return ctx.JSON(http.StatusOK, report.asMap())
	}
	return ctx.String(http.StatusOK, report.String())
}

// Diagnostics lists the build version and the registered engines.
func (s *status) Diagnostics() []DiagnosticResult {
	return []DiagnosticResult{
		&GenericDiagnosticResult{Title: "Version", Outcome: Version()},
		&GenericDiagnosticResult{Title: "Registered engines", Outcome: strings.Join(s.listAllEngines(), ",")},
	}
}

func (s *status) listAllEngines() []string {
	var names []string
	s.system.VisitEngines(func(engine Engine) {
		names = append(names, engineName(engine))
	})
	return names
}

func engineName(engine Engine) string {
	if named, ok := engine.(Named); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", engine)
}

// statusOK returns 200 OK with a "OK" body
func statusOK(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "OK")
}
