package core

import (
	"context"
	"sync"

	"catalogcore/internal/stream"
	"catalogcore/pkg/domain"
)

// CatalogView projects the live product list through the current filter
// criteria and a caller-driven sort. It recomputes whenever the product
// list or the settled criteria change, and forwards CRUD intents to the
// product store unchanged. Pagination is left to the consumer: the view
// always exposes the full filtered list.
type CatalogView struct {
	store *ProductStore

	mu         sync.Mutex
	source     []Product
	criteria   FilterCriteria
	projection []Product
	out        *stream.Value[[]Product]

	productSub *stream.Subscription
	filterSub  *stream.Subscription
}

// NewCatalogView wires the view to the store's product stream and the
// pipeline's settled updates. Close must be called when the consumer is
// torn down.
func NewCatalogView(store *ProductStore, pipeline *FilterPipeline) *CatalogView {
	v := &CatalogView{
		store: store,
		out:   stream.NewValue[[]Product](nil),
	}
	v.productSub = store.Products().Subscribe(func(products []Product) {
		v.mu.Lock()
		v.source = domain.CloneProducts(products)
		v.recomputeLocked()
		v.mu.Unlock()
	})
	if pipeline != nil {
		v.filterSub = pipeline.Updates().Subscribe(func(update FilterUpdate) {
			v.mu.Lock()
			v.criteria = update.Criteria
			v.recomputeLocked()
			v.mu.Unlock()
		})
	}
	return v
}

// recomputeLocked rebuilds the projection from the unsorted source. A data
// or filter change deliberately does not reapply the last sort; the
// consumer re-issues Sort if it wants the order retained.
func (v *CatalogView) recomputeLocked() {
	v.projection = domain.FilterProducts(v.source, v.criteria)
	v.out.Set(domain.CloneProducts(v.projection))
}

// Products is the live filtered (and, after Sort, ordered) projection.
func (v *CatalogView) Products() *stream.Value[[]Product] {
	return v.out
}

// List returns a copy of the current projection.
func (v *CatalogView) List() []Product {
	v.mu.Lock()
	defer v.mu.Unlock()
	return domain.CloneProducts(v.projection)
}

// MaxPrice returns the highest price among all products (not just the
// filtered ones), for presentation to bound its price inputs.
func (v *CatalogView) MaxPrice() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	max := 0.0
	for _, p := range v.source {
		if p.Price > max {
			max = p.Price
		}
	}
	return max
}

// Sort reorders the materialized projection in place and broadcasts the
// new order. An unknown column leaves the order unchanged (and stays
// silent).
func (v *CatalogView) Sort(column SortColumn, direction SortDirection) {
	v.mu.Lock()
	before := domain.CloneProducts(v.projection)
	domain.SortProducts(v.projection, column, direction)
	changed := false
	for i := range v.projection {
		if v.projection[i].ID != before[i].ID {
			changed = true
			break
		}
	}
	snapshot := domain.CloneProducts(v.projection)
	v.mu.Unlock()

	if changed {
		v.out.Set(snapshot)
	}
}

// Add forwards a creation intent to the product store.
func (v *CatalogView) Add(ctx context.Context, draft Draft) (Product, error) {
	return v.store.Add(ctx, draft)
}

// Update forwards a replacement intent to the product store.
func (v *CatalogView) Update(ctx context.Context, product Product) error {
	return v.store.Update(ctx, product)
}

// Delete forwards a deletion intent to the product store.
func (v *CatalogView) Delete(ctx context.Context, id int64) error {
	return v.store.Delete(ctx, id)
}

// Close releases the view's subscriptions and drops its subscribers.
func (v *CatalogView) Close() {
	v.productSub.Cancel()
	v.filterSub.Cancel()
	v.out.Close()
}
