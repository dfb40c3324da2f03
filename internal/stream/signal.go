package stream

import (
	"sync"

	"github.com/google/uuid"
)

// Signal broadcasts emissions without replaying anything to new
// subscribers. It backs streams whose initial state must stay silent, such
// as the settled output of the filter pipeline.
type Signal[T any] struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]func(T)
	closed bool
}

// NewSignal constructs an empty signal.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{subs: make(map[uuid.UUID]func(T))}
}

// Emit delivers the value to every subscriber, synchronously.
func (s *Signal[T]) Emit(val T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	listeners := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(val)
	}
}

// Subscribe registers the callback for future emissions only.
func (s *Signal[T]) Subscribe(fn func(T)) *Subscription {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return &Subscription{cancel: func() {}}
	}
	handle := uuid.New()
	s.subs[handle] = fn
	s.mu.Unlock()

	return &Subscription{cancel: func() {
		s.mu.Lock()
		delete(s.subs, handle)
		s.mu.Unlock()
	}}
}

// Len reports the number of active subscribers.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close drops every subscriber and silences further emissions.
func (s *Signal[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = make(map[uuid.UUID]func(T))
}
