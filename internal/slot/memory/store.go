// Package memory implements the slot medium in process memory. A single
// Medium can be shared by several Store handles, which stand in for
// separate application instances: a handle's save fans out events to every
// other handle watching the slot, mirroring the cross-instance notification
// contract of the durable drivers.
package memory

import (
	"context"
	"sync"

	"catalogcore/internal/slot"

	"github.com/google/uuid"
)

// Medium is the shared storage all handles read and write.
type Medium struct {
	mu      sync.Mutex
	slots   map[string][]byte
	watches map[string]map[uuid.UUID]watcher
}

type watcher struct {
	owner uuid.UUID
	ch    chan slot.Event
}

// NewMedium returns an empty shared medium.
func NewMedium() *Medium {
	return &Medium{
		slots:   make(map[string][]byte),
		watches: make(map[string]map[uuid.UUID]watcher),
	}
}

// Store is one handle onto a Medium.
type Store struct {
	medium *Medium
	id     uuid.UUID
	closed bool
	mu     sync.Mutex
}

var _ slot.Store = (*Store)(nil)

// Open returns a new handle onto the medium.
func Open(medium *Medium) *Store {
	return &Store{medium: medium, id: uuid.New()}
}

func (s *Store) Driver() slot.Driver { return slot.DriverMemory }

// Load returns a copy of the slot document.
func (s *Store) Load(_ context.Context, name string) ([]byte, error) {
	s.medium.mu.Lock()
	defer s.medium.mu.Unlock()
	data, ok := s.medium.slots[name]
	if !ok {
		return nil, slot.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save replaces the slot document and notifies watchers owned by other
// handles. Delivery is non-blocking: a watcher that is not draining its
// channel misses intermediate events, which the at-least-once re-read
// contract tolerates.
func (s *Store) Save(_ context.Context, name string, payload []byte) error {
	data := make([]byte, len(payload))
	copy(data, payload)

	s.medium.mu.Lock()
	defer s.medium.mu.Unlock()
	s.medium.slots[name] = data
	// Sends happen under the medium lock so a concurrent stop cannot close
	// a channel mid-send.
	for _, w := range s.medium.watches[name] {
		if w.owner == s.id {
			continue
		}
		select {
		case w.ch <- slot.Event{Slot: name}:
		default:
		}
	}
	return nil
}

// Watch registers a watcher for foreign writes to the slot.
func (s *Store) Watch(ctx context.Context, name string) (<-chan slot.Event, func(), error) {
	ch := make(chan slot.Event, 8)
	handle := uuid.New()

	s.medium.mu.Lock()
	if s.medium.watches[name] == nil {
		s.medium.watches[name] = make(map[uuid.UUID]watcher)
	}
	s.medium.watches[name][handle] = watcher{owner: s.id, ch: ch}
	s.medium.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.medium.mu.Lock()
			if w, ok := s.medium.watches[name][handle]; ok {
				delete(s.medium.watches[name], handle)
				close(w.ch)
			}
			s.medium.mu.Unlock()
		})
	}
	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			stop()
		}()
	}
	return ch, stop, nil
}

// Close detaches the handle's watchers from the medium.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.medium.mu.Lock()
	for name, ws := range s.medium.watches {
		for handle, w := range ws {
			if w.owner == s.id {
				delete(s.medium.watches[name], handle)
				close(w.ch)
			}
		}
	}
	s.medium.mu.Unlock()
	return nil
}
