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
	"net/http"
	"net/http/httptest"
	"testing"

	testhttp "github.com/nuts-foundation/nuts-anchor/test/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsEngine(t *testing.T) {
	t.Run("configure is idempotent", func(t *testing.T) {
		engine := NewMetricsEngine().(Configurable)

		require.NoError(t, engine.Configure(ServerConfig{}))
		assert.NoError(t, engine.Configure(ServerConfig{}))
	})
	t.Run("routes", func(t *testing.T) {
		router := &testhttp.StubEchoServer{}

		NewMetricsEngine().(Routable).Routes(router)

		assert.Equal(t, []string{"GET /metrics"}, router.Routes)
	})
	t.Run("serves metrics", func(t *testing.T) {
		engine := NewMetricsEngine()
		require.NoError(t, engine.(Configurable).Configure(ServerConfig{}))
		server, _ := createEchoServer(HTTPConfig{}, true)
		engine.(Routable).Routes(server)
		rec := httptest.NewRecorder()

		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})
}

func TestRegisterCollectors(t *testing.T) {
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "test_register_collectors_total",
	})

	require.NoError(t, RegisterCollectors(counter))
	assert.NoError(t, RegisterCollectors(counter))
}
