// Package domain defines the public catalog entities shared by the stores,
// the filter pipeline and the catalog view, together with the filter and
// sort primitives that operate on them.
package domain

// Category groups products. Categories are seeded once at process start and
// are immutable for the lifetime of the process.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is a single catalog entry. Products are mutated only by
// whole-record replacement through the product store; callers must not
// modify a product obtained from a store in place.
type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	Stock       int      `json:"stock"`
	Rating      float64  `json:"rating"`
	Description string   `json:"description"`
}

// Draft carries the fields of a product that has not been assigned an id
// yet. The product store assigns the id on Add.
type Draft struct {
	Name        string
	Price       float64
	Category    Category
	Stock       int
	Rating      float64
	Description string
}

// Product materializes the draft with the given id.
func (d Draft) Product(id int64) Product {
	return Product{
		ID:          id,
		Name:        d.Name,
		Price:       d.Price,
		Category:    d.Category,
		Stock:       d.Stock,
		Rating:      d.Rating,
		Description: d.Description,
	}
}

// CloneProducts returns a shallow copy of the slice. Product values carry no
// reference fields, so a copied slice is safe to hand to subscribers.
func CloneProducts(products []Product) []Product {
	if products == nil {
		return nil
	}
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// CloneCategories returns a copy of the slice.
func CloneCategories(categories []Category) []Category {
	if categories == nil {
		return nil
	}
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}
