package domain

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortColumn names a sortable product column.
type SortColumn string

const (
	SortByID       SortColumn = "id"
	SortByName     SortColumn = "name"
	SortByPrice    SortColumn = "price"
	SortByCategory SortColumn = "category"
	SortByStock    SortColumn = "stock"
	SortByRating   SortColumn = "rating"
)

// SortDirection orders a sort ascending or descending.
type SortDirection int

const (
	SortAscending SortDirection = iota
	SortDescending
)

var (
	collatorOnce sync.Once
	collatorMu   sync.Mutex
	collator     *collate.Collator
)

// compareStrings applies locale-aware collation. The collator is not safe
// for concurrent use, so comparisons are serialized.
func compareStrings(a, b string) int {
	collatorOnce.Do(func() {
		collator = collate.New(language.Und)
	})
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

func numericAccessor(column SortColumn) func(Product) float64 {
	switch column {
	case SortByID:
		return func(p Product) float64 { return float64(p.ID) }
	case SortByPrice:
		return func(p Product) float64 { return p.Price }
	case SortByStock:
		return func(p Product) float64 { return float64(p.Stock) }
	case SortByRating:
		return func(p Product) float64 { return p.Rating }
	default:
		return nil
	}
}

func stringAccessor(column SortColumn) func(Product) string {
	switch column {
	case SortByName:
		return func(p Product) string { return p.Name }
	case SortByCategory:
		return func(p Product) string { return p.Category.Name }
	default:
		return nil
	}
}

// SortProducts stably sorts the slice in place by the given column and
// direction. Name and category sort with locale-aware collation, the
// remaining columns numerically. An unknown column leaves the order
// untouched.
func SortProducts(products []Product, column SortColumn, direction SortDirection) {
	asc := direction == SortAscending

	if acc := numericAccessor(column); acc != nil {
		sort.SliceStable(products, func(i, j int) bool {
			if asc {
				return acc(products[i]) < acc(products[j])
			}
			return acc(products[j]) < acc(products[i])
		})
		return
	}
	if acc := stringAccessor(column); acc != nil {
		sort.SliceStable(products, func(i, j int) bool {
			if asc {
				return compareStrings(acc(products[i]), acc(products[j])) < 0
			}
			return compareStrings(acc(products[j]), acc(products[i])) < 0
		})
	}
}
