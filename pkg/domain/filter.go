package domain

import "strings"

// StockFilter selects products by stock state.
type StockFilter int

const (
	// StockAny disables stock filtering.
	StockAny StockFilter = iota
	// StockInStock keeps products with stock greater than zero.
	StockInStock
	// StockOutOfStock keeps products with zero stock.
	StockOutOfStock
)

// FilterCriteria is the combined snapshot of all filter inputs. Zero values
// mean "criterion unset": an empty name, a nil or empty category set, a zero
// price bound, StockAny and a zero minimum rating all pass every product.
type FilterCriteria struct {
	Name       string
	Categories []Category
	LowerPrice float64
	UpperPrice float64
	Stock      StockFilter
	MinRating  float64
}

// Active reports whether at least one criterion is set.
func (c FilterCriteria) Active() bool {
	return c.Name != "" ||
		len(c.Categories) > 0 ||
		c.LowerPrice != 0 ||
		c.UpperPrice != 0 ||
		c.Stock != StockAny ||
		c.MinRating != 0
}

// Matches reports whether the product satisfies every set criterion.
func (c FilterCriteria) Matches(p Product) bool {
	return c.matchesName(p) &&
		c.matchesCategory(p) &&
		c.matchesPrice(p) &&
		c.matchesStock(p) &&
		c.matchesRating(p)
}

func (c FilterCriteria) matchesName(p Product) bool {
	if c.Name == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(c.Name))
}

func (c FilterCriteria) matchesCategory(p Product) bool {
	if len(c.Categories) == 0 {
		return true
	}
	for _, cat := range c.Categories {
		if cat.ID == p.Category.ID {
			return true
		}
	}
	return false
}

func (c FilterCriteria) matchesPrice(p Product) bool {
	if c.LowerPrice != 0 && p.Price < c.LowerPrice {
		return false
	}
	if c.UpperPrice != 0 && p.Price > c.UpperPrice {
		return false
	}
	return true
}

func (c FilterCriteria) matchesStock(p Product) bool {
	switch c.Stock {
	case StockInStock:
		return p.Stock > 0
	case StockOutOfStock:
		return p.Stock == 0
	default:
		return true
	}
}

func (c FilterCriteria) matchesRating(p Product) bool {
	if c.MinRating == 0 {
		return true
	}
	return p.Rating >= c.MinRating
}

// FilterProducts returns the products matching the criteria, preserving the
// input order.
func FilterProducts(products []Product, c FilterCriteria) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
