package domain

import "testing"

func sampleProducts() []Product {
	electronics := Category{ID: 1, Name: "Electronics"}
	appliances := Category{ID: 2, Name: "Appliances"}
	clothing := Category{ID: 3, Name: "Clothing"}
	return []Product{
		{ID: 1, Name: "iPhone 15 Pro", Price: 89990, Category: electronics, Stock: 0, Rating: 4.8},
		{ID: 2, Name: "Samsung Galaxy S24", Price: 74990, Category: electronics, Stock: 30, Rating: 4.7},
		{ID: 3, Name: "Dyson V15 Detect", Price: 54990, Category: appliances, Stock: 20, Rating: 4.7},
		{ID: 4, Name: "Nike Air Max 270", Price: 12990, Category: clothing, Stock: 50, Rating: 4.4},
	}
}

func TestFilterCriteriaActive(t *testing.T) {
	cases := []struct {
		name     string
		criteria FilterCriteria
		want     bool
	}{
		{"default", FilterCriteria{}, false},
		{"name", FilterCriteria{Name: "phone"}, true},
		{"categories", FilterCriteria{Categories: []Category{{ID: 1}}}, true},
		{"lower price", FilterCriteria{LowerPrice: 10}, true},
		{"upper price", FilterCriteria{UpperPrice: 10}, true},
		{"stock", FilterCriteria{Stock: StockInStock}, true},
		{"rating", FilterCriteria{MinRating: 3}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.criteria.Active(); got != tc.want {
				t.Fatalf("Active() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterByNameIsCaseInsensitiveSubstring(t *testing.T) {
	got := FilterProducts(sampleProducts(), FilterCriteria{Name: "iphone"})
	if len(got) != 1 || got[0].Name != "iPhone 15 Pro" {
		t.Fatalf("expected only iPhone 15 Pro, got %v", got)
	}
}

func TestFilterByCategoryMembership(t *testing.T) {
	criteria := FilterCriteria{Categories: []Category{{ID: 2, Name: "Appliances"}, {ID: 3, Name: "Clothing"}}}
	got := FilterProducts(sampleProducts(), criteria)
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
	for _, p := range got {
		if p.Category.ID != 2 && p.Category.ID != 3 {
			t.Fatalf("unexpected category %d for %s", p.Category.ID, p.Name)
		}
	}
}

func TestFilterByPriceBounds(t *testing.T) {
	cases := []struct {
		name     string
		criteria FilterCriteria
		wantIDs  []int64
	}{
		{"lower only", FilterCriteria{LowerPrice: 60000}, []int64{1, 2}},
		{"upper only", FilterCriteria{UpperPrice: 60000}, []int64{3, 4}},
		{"both", FilterCriteria{LowerPrice: 20000, UpperPrice: 80000}, []int64{2, 3}},
		{"zero bounds pass all", FilterCriteria{}, []int64{1, 2, 3, 4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterProducts(sampleProducts(), tc.criteria)
			if len(got) != len(tc.wantIDs) {
				t.Fatalf("got %d products, want %d", len(got), len(tc.wantIDs))
			}
			for i, p := range got {
				if p.ID != tc.wantIDs[i] {
					t.Fatalf("position %d: got id %d, want %d", i, p.ID, tc.wantIDs[i])
				}
			}
		})
	}
}

func TestFilterByStockState(t *testing.T) {
	products := sampleProducts()
	inStock := FilterProducts(products, FilterCriteria{Stock: StockInStock})
	if len(inStock) != 3 {
		t.Fatalf("in stock: got %d, want 3", len(inStock))
	}
	outOfStock := FilterProducts(products, FilterCriteria{Stock: StockOutOfStock})
	if len(outOfStock) != 1 || outOfStock[0].ID != 1 {
		t.Fatalf("out of stock: got %v", outOfStock)
	}
	all := FilterProducts(products, FilterCriteria{Stock: StockAny})
	if len(all) != len(products) {
		t.Fatalf("any: got %d, want %d", len(all), len(products))
	}
}

func TestFilterByMinRating(t *testing.T) {
	got := FilterProducts(sampleProducts(), FilterCriteria{MinRating: 4.7})
	if len(got) != 3 {
		t.Fatalf("got %d products, want 3", len(got))
	}
}

func TestFilterIsConjunction(t *testing.T) {
	criteria := FilterCriteria{
		Name:      "a",
		Stock:     StockInStock,
		MinRating: 4.5,
	}
	got := FilterProducts(sampleProducts(), criteria)
	// "Samsung Galaxy S24" and "Dyson V15 Detect" contain "a", are in stock
	// and rate at least 4.5; "Nike Air Max 270" fails the rating criterion.
	if len(got) != 2 {
		t.Fatalf("got %d products, want 2: %v", len(got), got)
	}
	if got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("unexpected ids: %v", got)
	}
}
