package core

import (
	"catalogcore/internal/stream"
	"catalogcore/pkg/domain"
)

// CategoryStore holds the fixed category list and exposes it as a live
// sequence. Categories are seeded once and never mutated.
type CategoryStore struct {
	value *stream.Value[[]Category]
}

// DefaultCategories returns the seed category list. The first three back
// the generated example products.
func DefaultCategories() []Category {
	return []Category{
		{ID: 1, Name: "Electronics"},
		{ID: 2, Name: "Appliances"},
		{ID: 3, Name: "Clothing"},
		{ID: 4, Name: "Sports"},
		{ID: 5, Name: "Books"},
	}
}

// NewCategoryStore seeds the store. An empty argument list selects the
// default categories.
func NewCategoryStore(categories ...Category) *CategoryStore {
	if len(categories) == 0 {
		categories = DefaultCategories()
	}
	return &CategoryStore{value: stream.NewValue(domain.CloneCategories(categories))}
}

// Categories is the live category sequence; subscribers receive the current
// list immediately.
func (s *CategoryStore) Categories() *stream.Value[[]Category] {
	return s.value
}

// List returns a copy of the current category list.
func (s *CategoryStore) List() []Category {
	return domain.CloneCategories(s.value.Get())
}

// Find returns the category with the given id.
func (s *CategoryStore) Find(id int64) (Category, bool) {
	for _, c := range s.value.Get() {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Close drops all subscribers.
func (s *CategoryStore) Close() {
	s.value.Close()
}
