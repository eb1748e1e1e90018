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

package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// StubEchoServer is an EchoServer that records the bound address and registered routes, without listening.
type StubEchoServer struct {
	BoundAddress string
	Routes       []string
}

func (s *StubEchoServer) Use(_ ...echo.MiddlewareFunc) {
}

func (s *StubEchoServer) DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return s.Add(http.MethodDelete, path, h, m...)
}

func (s *StubEchoServer) GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return s.Add(http.MethodGet, path, h, m...)
}

func (s *StubEchoServer) POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return s.Add(http.MethodPost, path, h, m...)
}

func (s *StubEchoServer) PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return s.Add(http.MethodPut, path, h, m...)
}

func (s *StubEchoServer) Add(method, path string, _ echo.HandlerFunc, _ ...echo.MiddlewareFunc) *echo.Route {
	s.Routes = append(s.Routes, method+" "+path)
	return &echo.Route{Method: method, Path: path}
}

func (s *StubEchoServer) Shutdown(_ context.Context) error {
	return nil
}

func (s *StubEchoServer) Start(address string) error {
	s.BoundAddress = address
	return nil
}
