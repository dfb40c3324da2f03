// Package stream provides a minimal current-value broadcast primitive: a
// Value holds the latest state, replays it to every new subscriber and
// re-delivers on each Set. It is the publish-subscribe channel underneath
// the catalog stores and the filter pipeline.
package stream

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription identifies one registered listener. Cancel is idempotent.
type Subscription struct {
	cancel func()
	once   sync.Once
}

// Cancel removes the listener. Further emissions are not delivered.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// Value is a current-value broadcast hub. Delivery is synchronous: Set
// returns only after every subscriber callback has run, which preserves the
// single-logical-thread ordering the stores rely on. Callbacks must not
// re-enter Set or Subscribe on the same Value.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	subs    map[uuid.UUID]func(T)
	closed  bool
}

// NewValue constructs a hub seeded with the initial value.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[uuid.UUID]func(T)),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set stores the value and delivers it to every subscriber.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.current = val
	listeners := make([]func(T), 0, len(v.subs))
	for _, fn := range v.subs {
		listeners = append(listeners, fn)
	}
	v.mu.Unlock()

	for _, fn := range listeners {
		fn(val)
	}
}

// Subscribe registers the callback and immediately invokes it with the
// current value. The returned subscription must be cancelled when the owner
// is torn down.
func (v *Value[T]) Subscribe(fn func(T)) *Subscription {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return &Subscription{cancel: func() {}}
	}
	handle := uuid.New()
	v.subs[handle] = fn
	current := v.current
	v.mu.Unlock()

	fn(current)

	return &Subscription{cancel: func() {
		v.mu.Lock()
		delete(v.subs, handle)
		v.mu.Unlock()
	}}
}

// Len reports the number of active subscribers.
func (v *Value[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// Close drops every subscriber and makes further Set calls no-ops.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.subs = make(map[uuid.UUID]func(T))
}
