// Package sqlite implements the slot medium on an embedded sqlite file.
// Slots live in a single table keyed by name; every save rewrites the full
// document and stamps a fresh write token. Watchers poll the token column
// to spot writes from other processes sharing the file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"catalogcore/internal/slot"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

const defaultPollInterval = 250 * time.Millisecond

// Store is a sqlite-backed slot handle.
type Store struct {
	db       *sql.DB
	path     string
	interval time.Duration

	mu  sync.Mutex
	own map[string]string
}

var _ slot.Store = (*Store)(nil)

// New opens (and initializes) the slot database at path. An empty path
// selects ./catalogcore.db. pollInterval controls watcher polling; zero
// selects the default.
func New(path string, pollInterval time.Duration) (*Store, error) {
	if path == "" {
		path = "catalogcore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS slots (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		token TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create slots table: %w", err)
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Store{db: db, path: path, interval: pollInterval, own: make(map[string]string)}, nil
}

func (s *Store) Driver() slot.Driver { return slot.DriverSQLite }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Load returns the slot document.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM slots WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, slot.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select slot %s: %w", name, err)
	}
	return payload, nil
}

// Save replaces the slot document with a fresh write token.
func (s *Store) Save(ctx context.Context, name string, payload []byte) error {
	token := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO slots(name,payload,token) VALUES(?,?,?)
		 ON CONFLICT(name) DO UPDATE SET payload=excluded.payload, token=excluded.token`,
		name, payload, token); err != nil {
		return fmt.Errorf("upsert slot %s: %w", name, err)
	}
	s.mu.Lock()
	s.own[name] = token
	s.mu.Unlock()
	return nil
}

func (s *Store) readToken(ctx context.Context, name string) string {
	var token string
	if err := s.db.QueryRowContext(ctx, `SELECT token FROM slots WHERE name = ?`, name).Scan(&token); err != nil {
		return ""
	}
	return token
}

// Watch polls the write token and emits an event when it changes to a value
// this handle did not write.
func (s *Store) Watch(ctx context.Context, name string) (<-chan slot.Event, func(), error) {
	ch := make(chan slot.Event, 8)
	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	go func() {
		defer close(ch)
		lastSeen := s.readToken(ctx, name)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				token := s.readToken(ctx, name)
				if token == "" || token == lastSeen {
					continue
				}
				lastSeen = token
				s.mu.Lock()
				own := s.own[name]
				s.mu.Unlock()
				if token == own {
					continue
				}
				select {
				case ch <- slot.Event{Slot: name}:
				default:
				}
			}
		}
	}()
	return ch, stop, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
