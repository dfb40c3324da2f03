package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"catalogcore/internal/slot"
	"catalogcore/internal/stream"
	"catalogcore/pkg/domain"
)

// StoreOptions tune a ProductStore. Zero values select defaults.
type StoreOptions struct {
	SlotName string          // persisted slot name, default "products"
	Logger   *slog.Logger    // default discards
	Metrics  MetricsRecorder // default no-op
}

// ProductStore owns the authoritative product list. Every mutation updates
// local state, broadcasts to subscribers and persists the full list to the
// shared slot before returning; writes by sibling instances arrive through
// the slot watcher and fully replace local state.
//
// Subscriber callbacks run synchronously inside the mutating call and must
// not call back into the store.
type ProductStore struct {
	slotName string
	storage  slot.Store
	logger   *slog.Logger
	metrics  MetricsRecorder

	mu    sync.Mutex
	value *stream.Value[[]Product]

	catSub    *stream.Subscription
	stopWatch func()
	watchDone chan struct{}
}

// NewProductStore loads the slot (absent or unparsable data becomes an
// empty catalog), seeds example products once categories are available and
// the catalog is empty, and starts watching the slot for foreign writes.
func NewProductStore(ctx context.Context, storage slot.Store, categories *CategoryStore, opts StoreOptions) (*ProductStore, error) {
	if opts.SlotName == "" {
		opts.SlotName = "products"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	if opts.Metrics == nil {
		opts.Metrics = NoopMetricsRecorder{}
	}
	s := &ProductStore{
		slotName: opts.SlotName,
		storage:  storage,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}

	s.value = stream.NewValue(s.loadInitial(ctx))

	if categories != nil {
		s.catSub = categories.Categories().Subscribe(func(cats []Category) {
			s.maybeSeed(ctx, cats)
		})
	}

	events, stopWatch, err := storage.Watch(ctx, s.slotName)
	if err != nil {
		return nil, err
	}
	s.stopWatch = stopWatch
	s.watchDone = make(chan struct{})
	go func() {
		defer close(s.watchDone)
		for range events {
			s.refresh(ctx)
		}
	}()

	return s, nil
}

func (s *ProductStore) loadInitial(ctx context.Context) []Product {
	data, err := s.storage.Load(ctx, s.slotName)
	if errors.Is(err, slot.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("slot_load_failed", "slot", s.slotName, "error", err)
		return nil
	}
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		s.logger.Warn("slot_decode_failed", "slot", s.slotName, "error", err)
		return nil
	}
	return products
}

// Products is the live product sequence: the current list is delivered
// immediately on subscription and again after every mutation or foreign
// write.
func (s *ProductStore) Products() *stream.Value[[]Product] {
	return s.value
}

// List returns a copy of the current product list.
func (s *ProductStore) List() []Product {
	return domain.CloneProducts(s.value.Get())
}

// nextID derives the id for a new product from the last list element, or 1
// for an empty catalog. The rule assumes the list stays id-ordered; it is
// kept over a true maximum because persisted catalogs written by earlier
// versions depend on the resulting id sequence.
func nextID(products []Product) int64 {
	if len(products) == 0 {
		return 1
	}
	return products[len(products)-1].ID + 1
}

// Add assigns an id to the draft, appends it, persists and broadcasts.
func (s *ProductStore) Add(ctx context.Context, draft Draft) (Product, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.value.Get()
	product := draft.Product(nextID(current))
	next := append(domain.CloneProducts(current), product)
	err := s.commitLocked(ctx, next)
	s.metrics.Observe(ctx, "add", err == nil, time.Since(start))
	if err != nil {
		return Product{}, err
	}
	s.logger.Info("product_added", "id", product.ID, "name", product.Name)
	return product, nil
}

// Update replaces the product with a matching id. A missing id is a silent
// no-op; the list is persisted and broadcast either way.
func (s *ProductStore) Update(ctx context.Context, product Product) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	next := domain.CloneProducts(s.value.Get())
	for i := range next {
		if next[i].ID == product.ID {
			next[i] = product
			break
		}
	}
	err := s.commitLocked(ctx, next)
	s.metrics.Observe(ctx, "update", err == nil, time.Since(start))
	return err
}

// Delete removes the product with the given id. A missing id is a silent
// no-op; the list is persisted and broadcast either way.
func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.value.Get()
	next := make([]Product, 0, len(current))
	for _, p := range current {
		if p.ID != id {
			next = append(next, p)
		}
	}
	err := s.commitLocked(ctx, next)
	s.metrics.Observe(ctx, "delete", err == nil, time.Since(start))
	return err
}

// CheckExistingName reports whether any current product's name exactly
// equals name. The comparison is case sensitive.
func (s *ProductStore) CheckExistingName(name string) bool {
	for _, p := range s.value.Get() {
		if p.Name == name {
			return true
		}
	}
	return false
}

// commitLocked broadcasts the new list and writes it to the slot. Local
// state is updated first: own writes never wait for the notification echo.
func (s *ProductStore) commitLocked(ctx context.Context, products []Product) error {
	s.value.Set(products)
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	if err := s.storage.Save(ctx, s.slotName, data); err != nil {
		s.logger.Error("slot_save_failed", "slot", s.slotName, "error", err)
		return err
	}
	return nil
}

// maybeSeed commits the example catalog once categories are known and the
// catalog is still empty.
func (s *ProductStore) maybeSeed(ctx context.Context, categories []Category) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.value.Get()) > 0 {
		return
	}
	seed := seedProducts(categories)
	if seed == nil {
		return
	}
	err := s.commitLocked(ctx, seed)
	s.metrics.Observe(ctx, "seed", err == nil, time.Since(start))
	if err == nil {
		s.logger.Info("catalog_seeded", "products", len(seed))
	}
}

// refresh re-reads the slot after a foreign write and fully replaces local
// state. An unparsable document is skipped: the local list stays
// authoritative until the next readable write lands.
func (s *ProductStore) refresh(ctx context.Context) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.storage.Load(ctx, s.slotName)
	var products []Product
	switch {
	case errors.Is(err, slot.ErrNotFound):
		// slot cleared by a sibling; converge on empty
	case err != nil:
		s.logger.Warn("slot_reload_failed", "slot", s.slotName, "error", err)
		s.metrics.Observe(ctx, "refresh", false, time.Since(start))
		return
	default:
		if err := json.Unmarshal(data, &products); err != nil {
			s.logger.Warn("slot_reload_decode_failed", "slot", s.slotName, "error", err)
			s.metrics.Observe(ctx, "refresh", false, time.Since(start))
			return
		}
	}
	s.value.Set(products)
	s.metrics.Observe(ctx, "refresh", true, time.Since(start))
}

// Close stops the slot watcher, releases the category subscription and
// drops all subscribers.
func (s *ProductStore) Close() error {
	if s.stopWatch != nil {
		s.stopWatch()
		<-s.watchDone
	}
	s.catSub.Cancel()
	s.value.Close()
	return nil
}
