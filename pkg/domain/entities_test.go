package domain

import (
	"encoding/json"
	"testing"
)

func TestDraftProduct(t *testing.T) {
	d := Draft{
		Name:        "Widget",
		Price:       9.5,
		Category:    Category{ID: 2, Name: "Appliances"},
		Stock:       3,
		Rating:      4.1,
		Description: "a widget",
	}
	p := d.Product(7)
	if p.ID != 7 || p.Name != "Widget" || p.Price != 9.5 || p.Category.ID != 2 || p.Stock != 3 || p.Rating != 4.1 || p.Description != "a widget" {
		t.Fatalf("unexpected product: %+v", p)
	}
}

func TestProductJSONShape(t *testing.T) {
	p := Product{ID: 1, Name: "iPhone 15 Pro", Price: 89990, Category: Category{ID: 1, Name: "Electronics"}, Stock: 0, Rating: 4.8, Description: "Smartphone"}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"id", "name", "price", "category", "stock", "rating", "description"} {
		if _, ok := m[field]; !ok {
			t.Fatalf("missing field %q in %s", field, data)
		}
	}
	cat, ok := m["category"].(map[string]any)
	if !ok {
		t.Fatalf("category not embedded: %s", data)
	}
	if _, ok := cat["id"]; !ok {
		t.Fatalf("category id missing: %s", data)
	}

	var back Product
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if back != p {
		t.Fatalf("round trip mismatch: %+v != %+v", back, p)
	}
}

func TestCloneProductsIsIndependent(t *testing.T) {
	src := []Product{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	cp := CloneProducts(src)
	cp[0].Name = "mutated"
	if src[0].Name != "a" {
		t.Fatalf("clone aliased the source slice")
	}
	if CloneProducts(nil) != nil {
		t.Fatalf("nil input should stay nil")
	}
}
