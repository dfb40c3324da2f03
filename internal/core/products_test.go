package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	slotmemory "catalogcore/internal/slot/memory"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func newMemoryStore(t *testing.T, categories *CategoryStore) (*ProductStore, *slotmemory.Medium) {
	t.Helper()
	medium := slotmemory.NewMedium()
	store, err := NewProductStore(context.Background(), slotmemory.Open(medium), categories, StoreOptions{})
	if err != nil {
		t.Fatalf("new product store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, medium
}

func TestAddAssignsSequentialUniqueIDs(t *testing.T) {
	store, _ := newMemoryStore(t, nil)
	ctx := context.Background()

	for i, name := range []string{"a", "b", "c"} {
		before := store.List()
		p, err := store.Add(ctx, Draft{Name: name, Category: Category{ID: 1}})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if p.ID != int64(i+1) {
			t.Fatalf("id = %d, want %d", p.ID, i+1)
		}
		for _, prev := range before {
			if p.ID <= prev.ID {
				t.Fatalf("new id %d not greater than existing %d", p.ID, prev.ID)
			}
		}
	}
	seen := map[int64]bool{}
	for _, p := range store.List() {
		if seen[p.ID] {
			t.Fatalf("duplicate id %d", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestAddFollowsLastElementIDRule(t *testing.T) {
	medium := slotmemory.NewMedium()
	ctx := context.Background()
	// A deliberately unordered persisted list: the rule reads the last
	// element, not the maximum.
	preset := []Product{{ID: 5, Name: "five"}, {ID: 2, Name: "two"}}
	data, _ := json.Marshal(preset)
	if err := slotmemory.Open(medium).Save(ctx, "products", data); err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	store, err := NewProductStore(ctx, slotmemory.Open(medium), nil, StoreOptions{})
	if err != nil {
		t.Fatalf("new product store: %v", err)
	}
	defer store.Close()

	p, err := store.Add(ctx, Draft{Name: "next"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if p.ID != 3 {
		t.Fatalf("id = %d, want 3 (last element id 2 + 1)", p.ID)
	}
}

func TestUpdateReplacesMatchingProduct(t *testing.T) {
	store, _ := newMemoryStore(t, nil)
	ctx := context.Background()

	added, err := store.Add(ctx, Draft{Name: "before", Price: 1})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.Add(ctx, Draft{Name: "other"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	updated := added
	updated.Name = "after"
	updated.Price = 2
	if err := store.Update(ctx, updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	list := store.List()
	if list[0] != updated {
		t.Fatalf("position 0 = %+v, want %+v", list[0], updated)
	}
	if list[1].Name != "other" {
		t.Fatalf("unrelated product touched: %+v", list[1])
	}
}

func TestUpdateMissingIDIsSilentNoop(t *testing.T) {
	store, _ := newMemoryStore(t, nil)
	ctx := context.Background()

	if _, err := store.Add(ctx, Draft{Name: "only"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	before := store.List()
	if err := store.Update(ctx, Product{ID: 99, Name: "ghost"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	after := store.List()
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatalf("list changed: %v -> %v", before, after)
	}
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	store, _ := newMemoryStore(t, nil)
	ctx := context.Background()

	a, _ := store.Add(ctx, Draft{Name: "a"})
	if _, err := store.Add(ctx, Draft{Name: "b"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := store.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list := store.List()
	if len(list) != 1 {
		t.Fatalf("length = %d, want 1", len(list))
	}
	for _, p := range list {
		if p.ID == a.ID {
			t.Fatalf("deleted id %d still present", a.ID)
		}
	}

	if err := store.Delete(ctx, 99); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
	if len(store.List()) != 1 {
		t.Fatalf("delete of absent id changed length")
	}
}

func TestCheckExistingNameIsCaseSensitiveExact(t *testing.T) {
	store, _ := newMemoryStore(t, nil)
	ctx := context.Background()
	if _, err := store.Add(ctx, Draft{Name: "iPhone 15 Pro"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if !store.CheckExistingName("iPhone 15 Pro") {
		t.Fatal("exact name should exist")
	}
	if store.CheckExistingName("iphone 15 pro") {
		t.Fatal("case-different name must not match")
	}
	if store.CheckExistingName("iPhone") {
		t.Fatal("substring must not match")
	}
}

func TestMutationsPersistFullList(t *testing.T) {
	store, medium := newMemoryStore(t, nil)
	ctx := context.Background()

	if _, err := store.Add(ctx, Draft{Name: "persisted", Category: Category{ID: 1, Name: "Electronics"}}); err != nil {
		t.Fatalf("add: %v", err)
	}

	data, err := slotmemory.Open(medium).Load(ctx, "products")
	if err != nil {
		t.Fatalf("load slot: %v", err)
	}
	var persisted []Product
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("decode slot: %v", err)
	}
	list := store.List()
	if len(persisted) != len(list) || persisted[0] != list[0] {
		t.Fatalf("persisted %v diverges from memory %v", persisted, list)
	}
}

func TestSeedsWhenSlotEmptyAndCategoriesAvailable(t *testing.T) {
	store, medium := newMemoryStore(t, NewCategoryStore())

	list := store.List()
	if len(list) != 12 {
		t.Fatalf("seeded %d products, want 12", len(list))
	}
	if list[0].Name != "iPhone 15 Pro" || list[0].ID != 1 {
		t.Fatalf("unexpected first product: %+v", list[0])
	}
	// Positional category references: 1-4, 5-8, 9-12.
	for i, p := range list {
		want := int64(i/4 + 1)
		if p.Category.ID != want {
			t.Fatalf("product %d category = %d, want %d", p.ID, p.Category.ID, want)
		}
	}
	// Seeding goes through the normal mutation path and persists.
	if _, err := slotmemory.Open(medium).Load(context.Background(), "products"); err != nil {
		t.Fatalf("seed not persisted: %v", err)
	}
}

func TestDoesNotSeedOverLoadedCatalog(t *testing.T) {
	medium := slotmemory.NewMedium()
	ctx := context.Background()
	data, _ := json.Marshal([]Product{{ID: 7, Name: "kept"}})
	if err := slotmemory.Open(medium).Save(ctx, "products", data); err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	store, err := NewProductStore(ctx, slotmemory.Open(medium), NewCategoryStore(), StoreOptions{})
	if err != nil {
		t.Fatalf("new product store: %v", err)
	}
	defer store.Close()

	list := store.List()
	if len(list) != 1 || list[0].Name != "kept" {
		t.Fatalf("loaded catalog was replaced: %v", list)
	}
}

func TestUnparsableSlotBecomesEmptyThenSeeds(t *testing.T) {
	medium := slotmemory.NewMedium()
	ctx := context.Background()
	if err := slotmemory.Open(medium).Save(ctx, "products", []byte("{not json")); err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	store, err := NewProductStore(ctx, slotmemory.Open(medium), NewCategoryStore(), StoreOptions{})
	if err != nil {
		t.Fatalf("new product store: %v", err)
	}
	defer store.Close()

	if len(store.List()) != 12 {
		t.Fatalf("expected unparsable slot treated as empty and reseeded, got %d products", len(store.List()))
	}
}

func TestSubscriberSeesMutationBeforeCallReturns(t *testing.T) {
	store, _ := newMemoryStore(t, nil)
	ctx := context.Background()

	var last []Product
	sub := store.Products().Subscribe(func(products []Product) { last = products })
	defer sub.Cancel()

	if _, err := store.Add(ctx, Draft{Name: "sync"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(last) != 1 || last[0].Name != "sync" {
		t.Fatalf("subscriber not updated synchronously: %v", last)
	}
}

func TestCrossInstanceConvergence(t *testing.T) {
	medium := slotmemory.NewMedium()
	ctx := context.Background()

	a, err := NewProductStore(ctx, slotmemory.Open(medium), nil, StoreOptions{})
	if err != nil {
		t.Fatalf("store a: %v", err)
	}
	defer a.Close()
	b, err := NewProductStore(ctx, slotmemory.Open(medium), nil, StoreOptions{})
	if err != nil {
		t.Fatalf("store b: %v", err)
	}
	defer b.Close()

	added, err := a.Add(ctx, Draft{Name: "shared", Price: 5, Category: Category{ID: 1, Name: "Electronics"}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		list := b.List()
		return len(list) == 1 && list[0] == added
	})

	// And the reverse direction.
	if err := b.Delete(ctx, added.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		return len(a.List()) == 0
	})
}

func TestCloseStopsForeignRefresh(t *testing.T) {
	medium := slotmemory.NewMedium()
	ctx := context.Background()

	a, err := NewProductStore(ctx, slotmemory.Open(medium), nil, StoreOptions{})
	if err != nil {
		t.Fatalf("store a: %v", err)
	}
	defer a.Close()
	b, err := NewProductStore(ctx, slotmemory.Open(medium), nil, StoreOptions{})
	if err != nil {
		t.Fatalf("store b: %v", err)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := a.Add(ctx, Draft{Name: "late"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if len(b.List()) != 0 {
		t.Fatalf("closed store refreshed: %v", b.List())
	}
}
