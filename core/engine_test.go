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
	"path/filepath"
	"testing"

	testhttp "github.com/nuts-foundation/nuts-anchor/test/http"
	"github.com/nuts-foundation/nuts-anchor/test/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderedEngine struct {
	name  string
	calls *[]string
}

func (o orderedEngine) Name() string {
	return o.name
}

func (o orderedEngine) Start() error {
	*o.calls = append(*o.calls, "start "+o.name)
	return nil
}

func (o orderedEngine) Shutdown() error {
	*o.calls = append(*o.calls, "shutdown "+o.name)
	return nil
}

type failingEngine struct{}

func (failingEngine) Configure(_ ServerConfig) error {
	return errors.New("configure failed")
}

func TestSystem_Start(t *testing.T) {
	t.Run("starts in registration order, shuts down in reverse", func(t *testing.T) {
		var calls []string
		system := NewSystem()
		system.RegisterEngine(orderedEngine{name: "a", calls: &calls})
		system.RegisterEngine(orderedEngine{name: "b", calls: &calls})

		require.NoError(t, system.Start())
		require.NoError(t, system.Shutdown())

		assert.Equal(t, []string{"start a", "start b", "shutdown b", "shutdown a"}, calls)
	})
	t.Run("failing engine shuts down the started ones", func(t *testing.T) {
		var calls []string
		system := NewSystem()
		system.RegisterEngine(orderedEngine{name: "a", calls: &calls})
		system.RegisterEngine(&TestEngine{StartError: true})
		system.RegisterEngine(orderedEngine{name: "c", calls: &calls})

		err := system.Start()

		assert.EqualError(t, err, "unable to start testengine: start failure")
		assert.Equal(t, []string{"start a", "shutdown a"}, calls)
	})
}

func TestSystem_Shutdown(t *testing.T) {
	t.Run("errors don't stop the other engines", func(t *testing.T) {
		var calls []string
		system := NewSystem()
		system.RegisterEngine(orderedEngine{name: "a", calls: &calls})
		system.RegisterEngine(&TestEngine{ShutdownError: true})
		system.RegisterEngine(&TestEngine{ShutdownError: true})
		require.NoError(t, system.Start())

		err := system.Shutdown()

		assert.EqualError(t, err, "failure\nfailure")
		assert.Equal(t, []string{"start a", "shutdown a"}, calls)
	})
	t.Run("only once", func(t *testing.T) {
		var calls []string
		system := NewSystem()
		system.RegisterEngine(orderedEngine{name: "a", calls: &calls})
		require.NoError(t, system.Start())

		require.NoError(t, system.Shutdown())
		require.NoError(t, system.Shutdown())

		assert.Equal(t, []string{"start a", "shutdown a"}, calls)
	})
	t.Run("engines that weren't started", func(t *testing.T) {
		system := NewSystem()
		system.RegisterEngine(&TestEngine{ShutdownError: true})

		assert.NoError(t, system.Shutdown())
	})
}

func TestSystem_Configure(t *testing.T) {
	t.Run("creates datadir", func(t *testing.T) {
		system := NewSystem()
		system.Config.Datadir = filepath.Join(io.TestDirectory(t), "data")

		err := system.Configure()

		require.NoError(t, err)
		assert.DirExists(t, system.Config.Datadir)
	})
	t.Run("engine error is returned", func(t *testing.T) {
		system := NewSystem()
		system.Config.Datadir = io.TestDirectory(t)
		system.RegisterEngine(failingEngine{})

		err := system.Configure()

		assert.EqualError(t, err, "configure failed")
	})
}

func TestSystem_Load(t *testing.T) {
	system := NewSystem()
	engine := &TestEngine{}
	system.RegisterEngine(engine)

	err := system.Load(testFlags(t, "--testengine.key", "value"))

	require.NoError(t, err)
	assert.Equal(t, "value", engine.TestConfig.Key)
}

func TestSystem_VisitEnginesE(t *testing.T) {
	system := NewSystem()
	system.RegisterEngine(&TestEngine{})
	system.RegisterEngine(&TestEngine{})
	visits := 0

	err := system.VisitEnginesE(func(engine Engine) error {
		visits++
		return errors.New("stop")
	})

	assert.EqualError(t, err, "stop")
	assert.Equal(t, 1, visits)
}

func TestSystem_Diagnostics(t *testing.T) {
	system := NewSystem()
	system.RegisterEngine(&TestEngine{})
	system.RegisterEngine(NewStatusEngine(system))

	results := system.Diagnostics()

	require.Len(t, results, 2)
	assert.Equal(t, "Version", results[0].Name())
	assert.Equal(t, "Registered engines", results[1].Name())
	assert.Equal(t, "testengine,Status", results[1].String())
}

func TestSystem_StartEchoServer(t *testing.T) {
	t.Run("binds routes and address", func(t *testing.T) {
		server := &testhttp.StubEchoServer{}
		system := NewSystem()
		system.Config.HTTP.Address = "localhost:1234"
		system.EchoCreator = func(_ HTTPConfig, _ bool) (EchoServer, error) {
			return server, nil
		}
		system.RegisterRoutes(NewStatusEngine(system).(Routable))

		shutdown, err := system.StartEchoServer()

		require.NoError(t, err)
		shutdown()
		assert.Contains(t, server.Routes, "GET /status")
		assert.Contains(t, server.Routes, "GET /status/diagnostics")
	})
	t.Run("creation fails", func(t *testing.T) {
		system := NewSystem()
		system.Config.Strictmode = true
		system.Config.HTTP.CORS.Origin = []string{"*"}

		_, err := system.StartEchoServer()

		assert.EqualError(t, err, "wildcard CORS origin is not allowed in strict mode")
	})
}
