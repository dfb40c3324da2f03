// Package postgres implements the slot medium on a PostgreSQL table,
// mirroring the sqlite driver's semantics for deployments where several
// application instances share a server instead of a file.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"catalogcore/internal/slot"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	defaultDriver       = "pgx"
	defaultDSN          = "postgres://localhost/catalogcore?sslmode=disable"
	defaultPollInterval = 250 * time.Millisecond
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store is a Postgres-backed slot handle.
type Store struct {
	db       *sql.DB
	interval time.Duration

	mu  sync.Mutex
	own map[string]string
}

var _ slot.Store = (*Store)(nil)

// New opens a Postgres-backed store using the provided DSN (falls back to
// defaultDSN) and ensures the slots table exists.
func New(dsn string, pollInterval time.Duration) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS slots (
		name TEXT PRIMARY KEY,
		payload BYTEA NOT NULL,
		token TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure slots table: %w", err)
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Store{db: db, interval: pollInterval, own: make(map[string]string)}, nil
}

func (s *Store) Driver() slot.Driver { return slot.DriverPostgres }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Load returns the slot document.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM slots WHERE name = $1`, name).Scan(&payload)
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
		`INSERT INTO slots(name,payload,token) VALUES($1,$2,$3)
		 ON CONFLICT(name) DO UPDATE SET payload=EXCLUDED.payload, token=EXCLUDED.token`,
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
	if err := s.db.QueryRowContext(ctx, `SELECT token FROM slots WHERE name = $1`, name).Scan(&token); err != nil {
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

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a
// restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
