// Package fs implements the slot medium on the local filesystem. Each slot
// is a single document file plus a sidecar (`<name>.meta`) holding the
// write token; writes go through a temp file and an atomic rename so
// concurrent readers never observe a torn document. Foreign writes are
// detected by polling the sidecar token.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"catalogcore/internal/slot"

	"github.com/google/uuid"
)

const defaultPollInterval = 250 * time.Millisecond

// Store is a filesystem-backed slot handle rooted at a shared directory.
type Store struct {
	root     string
	interval time.Duration

	mu  sync.Mutex
	own map[string]string // slot name -> token of this handle's last write
}

var _ slot.Store = (*Store)(nil)

// New returns a handle rooted at path, creating the directory if needed.
// pollInterval controls how often watchers check for foreign writes; zero
// selects the default.
func New(root string, pollInterval time.Duration) (*Store, error) {
	if root == "" {
		root = "./catalogdata"
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create slot root: %w", err)
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Store{root: root, interval: pollInterval, own: make(map[string]string)}, nil
}

func (s *Store) Driver() slot.Driver { return slot.DriverFilesystem }

func sanitizeName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty slot name")
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid slot name %q", name)
	}
	return name, nil
}

func (s *Store) pathsFor(name string) (dataPath, metaPath string, err error) {
	n, err := sanitizeName(name)
	if err != nil {
		return "", "", err
	}
	dataPath = filepath.Join(s.root, n+".json")
	metaPath = dataPath + ".meta"
	return dataPath, metaPath, nil
}

type metaFile struct {
	Token     string    `json:"token"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Load returns the slot document.
func (s *Store) Load(_ context.Context, name string) ([]byte, error) {
	dataPath, _, err := s.pathsFor(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, slot.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", name, err)
	}
	return data, nil
}

// Save atomically replaces the slot document and its sidecar.
func (s *Store) Save(_ context.Context, name string, payload []byte) error {
	dataPath, metaPath, err := s.pathsFor(name)
	if err != nil {
		return err
	}
	token := uuid.NewString()

	if err := writeAtomic(dataPath, payload); err != nil {
		return fmt.Errorf("write slot %s: %w", name, err)
	}
	meta, err := json.Marshal(metaFile{Token: token, Size: int64(len(payload)), UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := writeAtomic(metaPath, meta); err != nil {
		return fmt.Errorf("write slot meta %s: %w", name, err)
	}

	s.mu.Lock()
	s.own[name] = token
	s.mu.Unlock()
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *Store) readToken(name string) string {
	_, metaPath, err := s.pathsFor(name)
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return ""
	}
	var m metaFile
	if err := json.Unmarshal(data, &m); err != nil {
		return ""
	}
	return m.Token
}

// Watch polls the sidecar token and emits an event whenever it changes to a
// value this handle did not write.
func (s *Store) Watch(ctx context.Context, name string) (<-chan slot.Event, func(), error) {
	if _, err := sanitizeName(name); err != nil {
		return nil, nil, err
	}
	ch := make(chan slot.Event, 8)
	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	go func() {
		defer close(ch)
		lastSeen := s.readToken(name)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				token := s.readToken(name)
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

// Close is a no-op beyond contract symmetry; watchers stop via their stop
// functions or contexts.
func (s *Store) Close() error { return nil }
