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

package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/nuts-foundation/go-stoabs"
	"github.com/nuts-foundation/nuts-anchor/core"
	"github.com/nuts-foundation/nuts-anchor/storage/log"
)

var storeNamePattern = regexp.MustCompile("^[a-zA-Z0-9]+$")

// New creates a new instance of the storage engine.
func New() Engine {
	return &engine{
		storesMux: &sync.Mutex{},
		stores:    map[string]stoabs.KVStore{},
		config:    DefaultConfig(),
	}
}

type engine struct {
	datadir   string
	storesMux *sync.Mutex
	stores    map[string]stoabs.KVStore
	databases []database
	config    Config
}

// Name returns the name of the storage engine.
func (e *engine) Name() string {
	return "Storage"
}

func (e *engine) Config() interface{} {
	return &e.config
}

// Start does nothing, databases are opened when configured and stores lazily when requested.
func (e *engine) Start() error {
	return nil
}

// Shutdown shuts down the storage engine, closing all stores and databases.
func (e *engine) Shutdown() error {
	e.storesMux.Lock()
	defer e.storesMux.Unlock()

	// databases first: a final backup reads from the stores
	for _, db := range e.databases {
		db.close()
	}
	e.databases = nil

	failures := false
	for storeName, store := range e.stores {
		if err := store.Close(context.Background()); err != nil {
			log.Logger().
				WithError(err).
				WithField(core.LogFieldStore, storeName).
				Error("Failed to close store")
			failures = true
		}
	}
	e.stores = map[string]stoabs.KVStore{}

	if failures {
		return errors.New("one or more stores failed to close")
	}
	return nil
}

// Configure opens the configured databases: BBolt is always available, Redis only when an address is set.
func (e *engine) Configure(config core.ServerConfig) error {
	e.datadir = config.Datadir

	bboltDB, err := createBBoltDatabase(config.Datadir, e.config.BBolt)
	if err != nil {
		return fmt.Errorf("unable to configure BBolt database: %w", err)
	}
	e.databases = append(e.databases, bboltDB)

	if e.config.Redis.isConfigured() {
		redisDB, err := createRedisDatabase(e.config.Redis)
		if err != nil {
			return fmt.Errorf("unable to configure Redis database: %w", err)
		}
		e.databases = append(e.databases, redisDB)
		log.Logger().Info("Redis database support enabled.")
	}
	return nil
}

// Diagnostics lists the stores that are currently open.
func (e *engine) Diagnostics() []core.DiagnosticResult {
	e.storesMux.Lock()
	defer e.storesMux.Unlock()
	names := make([]string, 0, len(e.stores))
	for name := range e.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return []core.DiagnosticResult{
		&core.GenericDiagnosticResult{Title: "open_stores", Outcome: strings.Join(names, ",")},
	}
}

// GetProvider returns a Provider that creates stores in the namespace of the given module.
func (e *engine) GetProvider(moduleName string) Provider {
	return &provider{
		moduleName: strings.ToLower(moduleName),
		engine:     e,
	}
}

type provider struct {
	moduleName string
	engine     *engine
}

func (p *provider) GetKVStore(name string, class Class) (stoabs.KVStore, error) {
	return p.engine.getStore(p.moduleName, name, class)
}

func (e *engine) getStore(moduleName string, name string, class Class) (stoabs.KVStore, error) {
	if !storeNamePattern.MatchString(moduleName) {
		return nil, errors.New("invalid store moduleName")
	}
	if !storeNamePattern.MatchString(name) {
		return nil, errors.New("invalid store name")
	}
	key := moduleName + "/" + name

	e.storesMux.Lock()
	defer e.storesMux.Unlock()
	if store, exists := e.stores[key]; exists {
		return store, nil
	}
	db := e.selectDatabase(class)
	if db == nil {
		return nil, errors.New("no database configured")
	}
	store, err := db.createStore(moduleName, name)
	if err != nil {
		return nil, err
	}
	e.stores[key] = store
	return store, nil
}

// selectDatabase returns the database matching the requested class.
// If there's none, it falls back to the first configured database.
func (e *engine) selectDatabase(class Class) database {
	for _, db := range e.databases {
		if db.getClass() == class {
			return db
		}
	}
	if len(e.databases) > 0 {
		return e.databases[0]
	}
	return nil
}
