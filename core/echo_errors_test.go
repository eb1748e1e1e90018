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
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"schneider.vip/problem"
)

type mapResolver map[error]int

func (m mapResolver) ResolveStatusCode(err error) int {
	return ResolveStatusCode(err, m)
}

func TestHttpErrorHandler(t *testing.T) {
	err1 := errors.New("error 1")
	es, err := createEchoServer(HTTPConfig{}, false)
	require.NoError(t, err)
	server := httptest.NewServer(es)
	t.Cleanup(server.Close)
	client := http.Client{}

	get := func(t *testing.T, path string, handler echo.HandlerFunc) (*http.Response, string) {
		es.GET(path, handler)
		req, _ := http.NewRequest(http.MethodGet, server.URL+path, nil)
		resp, err := client.Do(req)
		require.NoError(t, err)
		bodyBytes, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return resp, string(bodyBytes)
	}

	t.Run("is echo HTTPError", func(t *testing.T) {
		resp, body := get(t, "/echo-error", func(c echo.Context) error {
			err := errors.New("failed")
			return &echo.HTTPError{
				Code:     http.StatusForbidden,
				Message:  err.Error(),
				Internal: err,
			}
		})

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, problem.ContentTypeJSON, resp.Header.Get("Content-Type"))
		assert.Equal(t, `{"detail":"failed","status":403,"title":"Operation failed"}`, body)
	})
	t.Run("error mapping from resolver", func(t *testing.T) {
		resp, body := get(t, "/mapped", func(c echo.Context) error {
			c.Set(OperationIDContextKey, "test")
			c.Set(StatusCodeResolverContextKey, mapResolver{err1: http.StatusUnauthorized})
			return err1
		})

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, `{"detail":"error 1","status":401,"title":"test failed"}`, body)
	})
	t.Run("predefined status code", func(t *testing.T) {
		resp, body := get(t, "/predefined", func(c echo.Context) error {
			c.Set(OperationIDContextKey, "test")
			return NotFoundError("no such thing")
		})

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, `{"detail":"no such thing","status":404,"title":"test failed"}`, body)
	})
	t.Run("wrapped predefined status code", func(t *testing.T) {
		resp, body := get(t, "/wrapped", func(c echo.Context) error {
			c.Set(OperationIDContextKey, "test")
			c.Set(StatusCodeResolverContextKey, mapResolver{err1: http.StatusUnauthorized})
			return fmt.Errorf("lookup: %w", NotFoundError("no such thing: %w", err1))
		})

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, `{"detail":"lookup: no such thing: error 1","status":404,"title":"test failed"}`, body)
	})
	t.Run("unmapped", func(t *testing.T) {
		resp, body := get(t, "/unmapped", func(c echo.Context) error {
			c.Set(OperationIDContextKey, "test")
			return errors.New("other error")
		})

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, `{"detail":"other error","status":500,"title":"test failed"}`, body)
	})
}

func TestResolveStatusCode(t *testing.T) {
	sentinel := errors.New("sentinel")

	t.Run("wrapped error matches", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, ResolveStatusCode(WrapError(sentinel, errors.New("cause")), map[error]int{sentinel: http.StatusConflict}))
	})
	t.Run("no match", func(t *testing.T) {
		assert.Equal(t, 0, ResolveStatusCode(errors.New("other"), map[error]int{sentinel: http.StatusConflict}))
	})
}

func Test_NotFoundError(t *testing.T) {
	err := NotFoundError("failed: %s", "oops").(httpStatusCodeError)
	assert.EqualError(t, err, "failed: oops")
	assert.Equal(t, http.StatusNotFound, err.statusCode)
	assert.ErrorIs(t, err, NotFoundError(""))
}

func Test_InvalidInputError(t *testing.T) {
	cause := errors.New("cause")
	err := InvalidInputError("failed: %w", cause).(httpStatusCodeError)
	assert.EqualError(t, err, "failed: cause")
	assert.Equal(t, http.StatusBadRequest, err.statusCode)
	assert.ErrorIs(t, err, InvalidInputError(""))
	assert.ErrorIs(t, err, cause)
}

func TestGetHTTPStatusCode(t *testing.T) {
	ctx := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	t.Run("status carried by wrapped error", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, GetHTTPStatusCode(fmt.Errorf("outer: %w", InvalidInputError("bad")), ctx))
	})
	t.Run("wrapped echo error", func(t *testing.T) {
		assert.Equal(t, http.StatusTeapot, GetHTTPStatusCode(fmt.Errorf("outer: %w", echo.NewHTTPError(http.StatusTeapot)), ctx))
	})
	t.Run("no resolver", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, GetHTTPStatusCode(errors.New("other"), ctx))
	})
}
