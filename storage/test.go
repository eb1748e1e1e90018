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
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nuts-foundation/nuts-anchor/core"
	"github.com/nuts-foundation/nuts-anchor/test/io"
)

// NewTestStorageEngine creates a storage engine backed by BBolt in a temporary directory.
// The engine is shut down when the test completes.
func NewTestStorageEngine(t *testing.T) Engine {
	result := New()
	if err := result.Configure(core.ServerConfig{Datadir: io.TestDirectory(t)}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = result.Shutdown()
	})
	return result
}

// NewTestStorageRedisEngine creates a storage engine that stores persistent data in an in-memory Redis server.
// The engine and server are shut down when the test completes.
func NewTestStorageRedisEngine(t *testing.T) (Engine, *miniredis.Miniredis) {
	redis := miniredis.RunT(t)
	result := New().(*engine)
	result.config.Redis = RedisConfig{Address: redis.Addr()}
	if err := result.Configure(core.ServerConfig{Datadir: io.TestDirectory(t)}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = result.Shutdown()
	})
	return result, redis
}
