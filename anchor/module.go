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

package anchor

import (
	"context"
	"errors"
	"fmt"

	"github.com/nuts-foundation/go-did/did"
	v1 "github.com/nuts-foundation/nuts-anchor/anchor/api/v1"
	"github.com/nuts-foundation/nuts-anchor/anchor/issuer"
	"github.com/nuts-foundation/nuts-anchor/anchor/log"
	"github.com/nuts-foundation/nuts-anchor/anchor/verifier"
	"github.com/nuts-foundation/nuts-anchor/core"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/nuts-foundation/nuts-anchor/ledger"
	"github.com/nuts-foundation/nuts-anchor/ledger/kvledger"
	"github.com/nuts-foundation/nuts-anchor/storage"
)

// ModuleName contains the name of this module.
const ModuleName = "Anchor"

const ledgerStoreName = "ledger"

var _ core.Named = (*Module)(nil)
var _ core.Configurable = (*Module)(nil)
var _ core.Runnable = (*Module)(nil)
var _ core.Injectable = (*Module)(nil)
var _ core.Routable = (*Module)(nil)
var _ core.Diagnosable = (*Module)(nil)

// Module wires the local ledger, the issuer and the verifier.
type Module struct {
	config        Config
	storageEngine storage.Engine
	ledger        *kvledger.Ledger
	issuer        *issuer.Issuer
	verifier      *verifier.Verifier
	authority     did.DID
	cTypes        []hash.Blake2b256Hash
	ctx           context.Context
	cancel        context.CancelFunc
}

// New creates the anchor module. Its ledger is stored through the given storage engine.
func New(storageEngine storage.Engine) *Module {
	return &Module{
		config:        DefaultConfig(),
		storageEngine: storageEngine,
	}
}

// Name returns the name of the module.
func (m *Module) Name() string {
	return ModuleName
}

// Config returns a pointer to the module configuration.
func (m *Module) Config() interface{} {
	return &m.config
}

// Configure validates the configuration and opens the ledger.
func (m *Module) Configure(_ core.ServerConfig) error {
	if m.config.Timeout <= 0 {
		return errors.New("anchor.timeout must be positive")
	}
	authority, err := did.ParseDID(m.config.Ledger.Authority)
	if err != nil {
		return fmt.Errorf("invalid anchor.ledger.authority: %w", err)
	}
	m.authority = *authority
	m.cTypes = make([]hash.Blake2b256Hash, 0, len(m.config.Ledger.CTypes))
	for _, curr := range m.config.Ledger.CTypes {
		cTypeID, err := hash.ParseHex(curr)
		if err != nil || cTypeID.Empty() {
			return fmt.Errorf("invalid CType in anchor.ledger.ctypes: %s", curr)
		}
		m.cTypes = append(m.cTypes, cTypeID)
	}

	store, err := m.storageEngine.GetProvider(ModuleName).GetKVStore(ledgerStoreName, storage.PersistentStorageClass)
	if err != nil {
		return fmt.Errorf("unable to open ledger store: %w", err)
	}
	if m.ledger, err = kvledger.New(store, m.config.Ledger.Retries); err != nil {
		return err
	}
	if err := verifier.RegisterMetrics(); err != nil {
		return err
	}
	m.issuer = issuer.New(m.ledger, m.config.Timeout)
	m.verifier = verifier.New(m.ledger, m.config.Timeout)
	return nil
}

// Start registers the configured CTypes on the ledger. CTypes that are already registered are skipped.
func (m *Module) Start() error {
	m.ctx, m.cancel = context.WithCancel(context.Background())
	for _, cTypeID := range m.cTypes {
		ctx, cancel := context.WithTimeout(m.ctx, m.config.Timeout)
		_, err := m.ledger.RegisterCType(ctx, cTypeID, m.authority)
		cancel()
		if errors.Is(err, ledger.ErrDuplicateKey) {
			continue
		}
		if err != nil {
			return fmt.Errorf("unable to register CType %s: %w", cTypeID, err)
		}
		log.Logger().
			WithField(core.LogFieldCType, cTypeID).
			Info("Registered CType")
	}
	return nil
}

// Shutdown cancels pending ledger operations. The ledger store is closed by the storage engine.
func (m *Module) Shutdown() error {
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}

// Routes registers the anchor API.
func (m *Module) Routes(router core.EchoRouter) {
	(&v1.Wrapper{
		Issuer:   m.issuer,
		Verifier: m.verifier,
		Registry: m.ledger,
	}).Routes(router)
}

// Diagnostics returns the diagnostics of the ledger.
func (m *Module) Diagnostics() []core.DiagnosticResult {
	if m.ledger == nil {
		return nil
	}
	return m.ledger.Diagnostics()
}

// Ledger returns the local ledger. It is nil until the module is configured.
func (m *Module) Ledger() *kvledger.Ledger {
	return m.ledger
}

// Issuer returns the issuer. It is nil until the module is configured.
func (m *Module) Issuer() *issuer.Issuer {
	return m.issuer
}

// Verifier returns the verifier. It is nil until the module is configured.
func (m *Module) Verifier() *verifier.Verifier {
	return m.verifier
}
