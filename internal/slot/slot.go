// Package slot abstracts a shared durable key-value medium made of named
// slots. Every write replaces the whole slot document (last writer wins) and
// stamps it with a write token; watchers surface writes made by other
// handles of the same medium, never a handle's own writes. The notification
// carries only the slot name: consumers re-read the full document and trust
// nothing else.
package slot

import (
	"context"
	"errors"
)

// Driver identifies a concrete slot storage backend.
type Driver string

const (
	// DriverMemory is the in-process medium used by tests and the
	// cross-instance scenarios they exercise.
	DriverMemory Driver = "memory"
	// DriverFilesystem keeps one JSON document per slot on local disk.
	DriverFilesystem Driver = "fs"
	// DriverSQLite persists slots in an embedded sqlite file.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres persists slots in a PostgreSQL table.
	DriverPostgres Driver = "postgres"
	// DriverS3 maps slots to objects in an S3-compatible bucket.
	DriverS3 Driver = "s3"
)

// Event notifies that a different handle wrote the named slot. There is no
// payload: the slot must be re-read.
type Event struct {
	Slot string
}

// ErrNotFound is returned by Load when the slot has never been written.
var ErrNotFound = errors.New("slot: not found")

// Store is one handle onto the shared medium. Handles opened by different
// processes (or different Store values in tests) see each other's writes
// through Watch.
type Store interface {
	// Load returns the current slot document, or ErrNotFound.
	Load(ctx context.Context, name string) ([]byte, error)
	// Save replaces the slot document.
	Save(ctx context.Context, name string, payload []byte) error
	// Watch delivers best-effort at-least-once events for foreign writes to
	// the named slot until the stop function is called or ctx is done.
	Watch(ctx context.Context, name string) (<-chan Event, func(), error)
	Driver() Driver
	Close() error
}
