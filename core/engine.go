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
	"net/url"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/spf13/pflag"
)

// Routable enables connecting a REST API to the echo server. The API wrappers should implement this interface
type Routable interface {
	// Routes configures the HTTP routes on the given router
	Routes(router EchoRouter)
}

// NewSystem creates a new, empty System.
func NewSystem() *System {
	result := &System{
		engines: []Engine{},
		Config:  NewServerConfig(),
		Routers: []Routable{},
	}
	result.EchoCreator = func(cfg HTTPConfig, strictmode bool) (EchoServer, error) {
		return createEchoServer(cfg, strictmode)
	}
	return result
}

// System is the control structure where engines are registered.
// Engines go through Load, Configure, Start and Shutdown in that order.
type System struct {
	// engines is the slice of all registered engines
	engines []Engine
	// started holds the engines that were started, in start order
	started []Runnable
	// Config holds the global and raw config
	Config *ServerConfig
	// Routers is used to connect API handlers to the echo server
	Routers []Routable
	// EchoCreator is the function that's used to create the echo server
	EchoCreator func(cfg HTTPConfig, strictmode bool) (EchoServer, error)
}

// Load loads the config and injects config values into engines
func (system *System) Load(flags *pflag.FlagSet) error {
	if err := system.Config.Load(flags); err != nil {
		return err
	}
	return system.VisitEnginesE(func(engine Engine) error {
		if m, ok := engine.(Injectable); ok {
			return system.Config.InjectIntoEngine(m)
		}
		return nil
	})
}

// Diagnostics returns the compound diagnostics for all engines.
func (system *System) Diagnostics() []DiagnosticResult {
	result := make([]DiagnosticResult, 0)
	system.VisitEngines(func(engine Engine) {
		if m, ok := engine.(Diagnosable); ok {
			result = append(result, m.Diagnostics()...)
		}
	})
	return result
}

// Configure creates the data directory and configures all engines in the system.
func (system *System) Configure() error {
	if err := os.MkdirAll(system.Config.Datadir, os.ModePerm); err != nil {
		return fmt.Errorf("unable to create datadir (dir=%s): %w", system.Config.Datadir, err)
	}
	return system.VisitEnginesE(func(engine Engine) error {
		if m, ok := engine.(Configurable); ok {
			return m.Configure(*system.Config)
		}
		return nil
	})
}

// Start starts all engines in order of registration. When an engine fails to start,
// the engines started before it are shut down again and the start error is returned.
func (system *System) Start() error {
	err := system.VisitEnginesE(func(engine Engine) error {
		m, ok := engine.(Runnable)
		if !ok {
			return nil
		}
		if err := m.Start(); err != nil {
			return fmt.Errorf("unable to start %s: %w", engineName(engine), err)
		}
		system.started = append(system.started, m)
		return nil
	})
	if err != nil {
		return errors.Join(err, system.Shutdown())
	}
	return nil
}

// Shutdown shuts down the started engines in reverse order. A failing engine doesn't keep
// the others from shutting down, all errors are returned joined.
func (system *System) Shutdown() error {
	var result []error
	for i := len(system.started) - 1; i >= 0; i-- {
		if err := system.started[i].Shutdown(); err != nil {
			result = append(result, err)
		}
	}
	system.started = nil
	return errors.Join(result...)
}

// VisitEngines applies the given function on all engines in the system.
func (system *System) VisitEngines(visitor func(engine Engine)) {
	_ = system.VisitEnginesE(func(engine Engine) error {
		visitor(engine)
		return nil
	})
}

// VisitEnginesE applies the given function on all engines in the system, stopping when an error is returned. The error
// is passed through.
func (system *System) VisitEnginesE(visitor func(engine Engine) error) error {
	for _, e := range system.engines {
		if err := visitor(e); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEngine adds an engine. Registration order is start order.
func (system *System) RegisterEngine(engine Engine) {
	system.engines = append(system.engines, engine)
}

// RegisterRoutes adds an API to be bound to the echo server by StartEchoServer.
func (system *System) RegisterRoutes(router Routable) {
	system.Routers = append(system.Routers, router)
}

// Runnable is implemented by engines that hold resources between Start and Shutdown.
type Runnable interface {
	Start() error
	Shutdown() error
}

// Configurable is implemented by engines that validate their config before startup.
type Configurable interface {
	Configure(config ServerConfig) error
}

// Diagnosable allows the implementer, mostly engines, to return diagnostics.
type Diagnosable interface {
	Diagnostics() []DiagnosticResult
}

// Engine is the base interface for a modular design
type Engine interface{}

// Named is the interface for all engines that have a name
type Named interface {
	// Name returns the name of the engine
	Name() string
}

// Injectable marks an engine whose config is loaded from the config key matching its name.
type Injectable interface {
	Named
	// Config returns a pointer to the struct that holds the Config.
	Config() interface{}
}

// DecodeURIPath is an echo middleware that unescapes path parameters, so credential identifiers
// may be passed URL-encoded.
func DecodeURIPath(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		values := c.ParamValues()
		for i, value := range values {
			if unescaped, err := url.PathUnescape(value); err == nil {
				values[i] = unescaped
			}
		}
		c.SetParamValues(values...)
		return next(c)
	}
}
