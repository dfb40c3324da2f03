// Package core wires the catalog's reactive data layer: the category and
// product stores, the debounced filter pipeline, the filtered/sorted view
// and the unique-name validator, all persisting through a shared slot
// medium.
package core

import "catalogcore/pkg/domain"

type (
	// Category aliases domain.Category for store operations.
	Category = domain.Category
	// Product aliases domain.Product.
	Product = domain.Product
	// Draft aliases domain.Draft, a product awaiting an id.
	Draft = domain.Draft
	// FilterCriteria aliases domain.FilterCriteria.
	FilterCriteria = domain.FilterCriteria
	// StockFilter aliases domain.StockFilter.
	StockFilter = domain.StockFilter
	// SortColumn aliases domain.SortColumn.
	SortColumn = domain.SortColumn
	// SortDirection aliases domain.SortDirection.
	SortDirection = domain.SortDirection
)

const (
	// StockAny disables stock filtering.
	StockAny = domain.StockAny
	// StockInStock keeps products with stock greater than zero.
	StockInStock = domain.StockInStock
	// StockOutOfStock keeps products with zero stock.
	StockOutOfStock = domain.StockOutOfStock
)

const (
	SortByID       = domain.SortByID
	SortByName     = domain.SortByName
	SortByPrice    = domain.SortByPrice
	SortByCategory = domain.SortByCategory
	SortByStock    = domain.SortByStock
	SortByRating   = domain.SortByRating

	SortAscending  = domain.SortAscending
	SortDescending = domain.SortDescending
)
