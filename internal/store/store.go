// Package store provides the durable key/value storage that backs the
// talentdesk sync service.
//
// Each logical key (a collection name or the sync metadata key) maps to
// one serialized value. A Put replaces the whole value atomically and is
// durable once it returns. There is no multi-key transaction: callers that
// need two keys to change together must order their writes and tolerate a
// crash between them.
//
// Three backends are available:
//   - sqlite: embedded SQLite file in WAL mode (default)
//   - bolt:   single-file bolt database, one bucket
//   - memory: process-local map, used by tests and throwaway runs
package store

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by store operations.
var (
	// ErrNotFound is returned by Get when the key has never been written.
	ErrNotFound = errors.New("key not found")

	// ErrClosed is returned when operating on a closed store.
	ErrClosed = errors.New("store closed")
)

// Store is a durable key/value store with single-key atomic writes.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Path returns the backing file, or "" for in-memory stores.
	Path() string

	// Close releases the underlying resources.
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

// Open opens a store with the named driver. path is ignored for the memory
// driver.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverBolt:
		return OpenBolt(path)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q (want sqlite, bolt or memory)", driver)
	}
}
