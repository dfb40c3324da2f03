package core

import (
	"sync"
	"time"

	"catalogcore/internal/stream"
	"catalogcore/pkg/domain"
)

// FilterUpdate is one settled emission of the pipeline: the combined
// criteria snapshot and whether any criterion is set.
type FilterUpdate struct {
	Criteria FilterCriteria
	Active   bool
}

// FilterPipeline holds six independently settable criteria and publishes
// one combined FilterUpdate per quiescence window. Nothing is emitted until
// the first criterion changes, so the all-default initial state never fires
// a spurious update; setting and resetting criteria inside one window
// collapse into a single emission.
type FilterPipeline struct {
	window time.Duration
	out    *stream.Signal[FilterUpdate]

	mu       sync.Mutex
	criteria FilterCriteria
	timer    *time.Timer
	closed   bool
}

// NewFilterPipeline constructs a pipeline with the given quiescence window;
// zero selects the 200ms default.
func NewFilterPipeline(window time.Duration) *FilterPipeline {
	if window <= 0 {
		window = 200 * time.Millisecond
	}
	return &FilterPipeline{
		window: window,
		out:    stream.NewSignal[FilterUpdate](),
	}
}

// Updates is the settled emission stream. New subscribers receive only
// future emissions.
func (p *FilterPipeline) Updates() *stream.Signal[FilterUpdate] {
	return p.out
}

// Current returns the latest criteria snapshot, settled or not.
func (p *FilterPipeline) Current() FilterCriteria {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneCriteria(p.criteria)
}

func cloneCriteria(c FilterCriteria) FilterCriteria {
	c.Categories = domain.CloneCategories(c.Categories)
	return c
}

// SetName sets the name criterion and restarts the quiescence window.
func (p *FilterPipeline) SetName(name string) {
	p.set(func(c *FilterCriteria) { c.Name = name })
}

// SetCategories sets the category criterion.
func (p *FilterPipeline) SetCategories(categories []Category) {
	cats := domain.CloneCategories(categories)
	p.set(func(c *FilterCriteria) { c.Categories = cats })
}

// SetLowerPrice sets the lower price bound; zero clears it.
func (p *FilterPipeline) SetLowerPrice(price float64) {
	p.set(func(c *FilterCriteria) { c.LowerPrice = price })
}

// SetUpperPrice sets the upper price bound; zero clears it.
func (p *FilterPipeline) SetUpperPrice(price float64) {
	p.set(func(c *FilterCriteria) { c.UpperPrice = price })
}

// SetStock sets the stock criterion.
func (p *FilterPipeline) SetStock(stock StockFilter) {
	p.set(func(c *FilterCriteria) { c.Stock = stock })
}

// SetMinRating sets the minimum rating; zero clears it.
func (p *FilterPipeline) SetMinRating(rating float64) {
	p.set(func(c *FilterCriteria) { c.MinRating = rating })
}

// Reset clears all six criteria in one call, producing a single settled
// emission with Active=false.
func (p *FilterPipeline) Reset() {
	p.set(func(c *FilterCriteria) { *c = FilterCriteria{} })
}

// set applies the mutation and (re)arms the debounce timer. A change that
// lands before the window elapses restarts it rather than queuing a second
// emission.
func (p *FilterPipeline) set(mutate func(*FilterCriteria)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	mutate(&p.criteria)
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.window, p.fire)
}

func (p *FilterPipeline) fire() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	update := FilterUpdate{Criteria: cloneCriteria(p.criteria), Active: p.criteria.Active()}
	p.mu.Unlock()

	p.out.Emit(update)
}

// Close cancels any pending emission and drops all subscribers.
func (p *FilterPipeline) Close() {
	p.mu.Lock()
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	p.out.Close()
}
