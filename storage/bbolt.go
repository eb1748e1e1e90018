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
	"os"
	"path"
	"sync"
	"time"

	"github.com/nuts-foundation/go-stoabs"
	"github.com/nuts-foundation/go-stoabs/bbolt"
	"github.com/nuts-foundation/nuts-anchor/core"
	"github.com/nuts-foundation/nuts-anchor/storage/log"
	bboltLib "go.etcd.io/bbolt"
)

const fileMode = 0640
const bboltDbExtension = ".db"

// bboltDatabase opens BBolt stores as files in the data directory.
// With backups enabled every store is copied to the backup directory at the configured interval, and once more on close.
type bboltDatabase struct {
	datadir string
	config  BBoltConfig
	ctx     context.Context
	cancel  context.CancelFunc
	backups *sync.WaitGroup
}

func createBBoltDatabase(datadir string, config BBoltConfig) (*bboltDatabase, error) {
	ctx, cancel := context.WithCancel(context.Background())
	return &bboltDatabase{
		datadir: datadir,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
		backups: &sync.WaitGroup{},
	}, nil
}

// storeFile returns the file of a store (e.g. anchor/ledger) in the given directory.
func storeFile(dir string, fullStoreName string) string {
	return path.Join(dir, fullStoreName) + bboltDbExtension
}

func (b *bboltDatabase) createStore(moduleName string, storeName string) (stoabs.KVStore, error) {
	fullStoreName := path.Join(moduleName, storeName)
	log.Logger().
		WithField(core.LogFieldStore, fullStoreName).
		Debug("Opening BBolt store")
	store, err := bbolt.CreateBBoltStore(storeFile(b.datadir, fullStoreName), stoabs.WithLockAcquireTimeout(lockAcquireTimeout))
	if err != nil {
		return nil, err
	}
	if b.config.Backup.Enabled() {
		b.scheduleBackups(&storeBackup{
			name:   fullStoreName,
			store:  store,
			target: storeFile(b.config.Backup.Directory, fullStoreName),
		})
	}
	return store, nil
}

// getClass returns VolatileStorageClass: BBolt databases live on local disk only, unless backups are configured.
func (b *bboltDatabase) getClass() Class {
	return VolatileStorageClass
}

func (b *bboltDatabase) scheduleBackups(backup *storeBackup) {
	interval := b.config.Backup.Interval
	log.Logger().
		WithField(core.LogFieldStore, backup.name).
		Infof("BBolt store will be backed up every %s", interval)
	b.backups.Add(1)
	go func() {
		defer b.backups.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.backup(b.ctx, backup)
			case <-b.ctx.Done():
				// the store is closed after the database, so it can still be read here
				b.backup(context.Background(), backup)
				return
			}
		}
	}()
}

func (b *bboltDatabase) backup(ctx context.Context, backup *storeBackup) {
	logger := log.Logger().WithField(core.LogFieldStore, backup.name)
	startTime := time.Now()
	written, err := backup.run(ctx)
	if err != nil {
		logger.WithError(err).Error("Unable to complete BBolt backup")
		return
	}
	if written {
		logger.Debugf("BBolt backup written to %s in %s", backup.target, time.Since(startTime))
	}
}

// close stops the scheduled backups, after each of them took a final backup.
func (b *bboltDatabase) close() {
	b.cancel()
	b.backups.Wait()
}

// storeBackup copies a single store to its backup file.
type storeBackup struct {
	name   string
	store  stoabs.KVStore
	target string
	// txID is the BBolt transaction ID the last backup was taken at.
	// BBolt increments it on every commit, so an unchanged ID means nothing was written since.
	txID  int
	taken bool
}

// run writes a backup, unless the store didn't change since the previous one. It reports whether a backup was written.
func (s *storeBackup) run(ctx context.Context) (bool, error) {
	written := false
	err := s.store.Read(ctx, func(tx stoabs.ReadTx) error {
		boltTx := tx.Unwrap().(*bboltLib.Tx)
		if s.taken && boltTx.ID() == s.txID {
			return nil
		}
		if err := writeSnapshot(boltTx, s.target); err != nil {
			return err
		}
		s.txID = boltTx.ID()
		s.taken = true
		written = true
		return nil
	})
	return written, err
}

// writeSnapshot writes the database as seen by the transaction to target. The snapshot is written to a work file
// first, the existing backup is kept as target.previous until the work file has been moved in place.
func writeSnapshot(tx *bboltLib.Tx, target string) error {
	dir := path.Dir(target)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}
	if stat, err := os.Stat(target); err == nil && stat.IsDir() {
		return fmt.Errorf("backup target file is a directory: %s", target)
	}
	workFile, err := os.CreateTemp(dir, path.Base(target)+".*.work")
	if err != nil {
		return err
	}
	defer func() {
		// no-op once renamed
		_ = os.Remove(workFile.Name())
	}()
	_, err = tx.WriteTo(workFile)
	if closeErr := workFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if err := os.Chmod(workFile.Name(), fileMode); err != nil {
		return err
	}
	if err := os.Rename(target, target+".previous"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.Rename(workFile.Name(), target)
}
