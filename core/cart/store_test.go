package cart_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/joaofortes502/E-commerce-sub000/core/cart"
	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/joaofortes502/E-commerce-sub000/core/product"
	"github.com/shopspring/decimal"
)

var decimalCmp = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func seedCatalog(products ...product.Product) *product.Memory {
	catalog := product.NewMemory()
	for _, p := range products {
		catalog.SetProduct(p)
	}
	return catalog
}

func TestAddItemCapturesPrice(t *testing.T) {
	ctx := context.Background()
	catalog := seedCatalog(product.Product{ID: 7, Name: "mug", Price: decimal.NewFromFloat(10.00), StockQuantity: 5})
	store := cart.NewStore(cart.NewMemory(), catalog)
	owner := identity.Session("s1")

	c, err := store.AddItem(ctx, owner, cart.ItemNew{ProductID: 7, Quantity: 2})
	if err != nil {
		t.Fatalf("adding item: %v", err)
	}

	it, ok := c.Find(7)
	if !ok {
		t.Fatal("expected a line for product 7")
	}
	if !it.PriceWhenAdded.Equal(decimal.NewFromFloat(10.00)) {
		t.Fatalf("captured price = %s, want 10.00", it.PriceWhenAdded)
	}

	// A later add keeps the original capture even if the catalog
	// price moved.
	catalog.SetProduct(product.Product{ID: 7, Name: "mug", Price: decimal.NewFromFloat(12.00), StockQuantity: 5})

	c, err = store.AddItem(ctx, owner, cart.ItemNew{ProductID: 7, Quantity: 3})
	if err != nil {
		t.Fatalf("re-adding item: %v", err)
	}

	it, _ = c.Find(7)
	if it.Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", it.Quantity)
	}
	if !it.PriceWhenAdded.Equal(decimal.NewFromFloat(10.00)) {
		t.Fatalf("captured price changed to %s on quantity increase", it.PriceWhenAdded)
	}
	if len(c.Items) != 1 {
		t.Fatalf("expected a single line, got %d", len(c.Items))
	}
}

func TestAddItemErrors(t *testing.T) {
	ctx := context.Background()
	catalog := seedCatalog(product.Product{ID: 1, Price: decimal.NewFromInt(5), StockQuantity: 1})
	store := cart.NewStore(cart.NewMemory(), catalog)
	owner := identity.Session("s1")

	if _, err := store.AddItem(ctx, owner, cart.ItemNew{ProductID: 1, Quantity: 0}); !errors.Is(err, cart.ErrInvalidQuantity) {
		t.Fatalf("quantity 0: got %v, want ErrInvalidQuantity", err)
	}
	if _, err := store.AddItem(ctx, owner, cart.ItemNew{ProductID: 1, Quantity: -2}); !errors.Is(err, cart.ErrInvalidQuantity) {
		t.Fatalf("negative quantity: got %v, want ErrInvalidQuantity", err)
	}
	if _, err := store.AddItem(ctx, owner, cart.ItemNew{ProductID: 99, Quantity: 1}); !errors.Is(err, product.ErrNotFound) {
		t.Fatalf("unknown product: got %v, want ErrNotFound", err)
	}

	c, err := store.Get(ctx, owner)
	if err != nil {
		t.Fatalf("getting cart: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("failed adds must not touch the cart, got %d items", len(c.Items))
	}
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	catalog := seedCatalog(product.Product{ID: 1, Price: decimal.NewFromInt(5), StockQuantity: 10})
	store := cart.NewStore(cart.NewMemory(), catalog)
	owner := identity.User("u1")

	if _, err := store.AddItem(ctx, owner, cart.ItemNew{ProductID: 1, Quantity: 2}); err != nil {
		t.Fatalf("adding item: %v", err)
	}

	c, err := store.SetQuantity(ctx, owner, 1, 7)
	if err != nil {
		t.Fatalf("setting quantity: %v", err)
	}
	if it, _ := c.Find(1); it.Quantity != 7 {
		t.Fatalf("quantity = %d, want 7", it.Quantity)
	}

	if _, err := store.SetQuantity(ctx, owner, 1, -1); !errors.Is(err, cart.ErrInvalidQuantity) {
		t.Fatalf("negative quantity: got %v, want ErrInvalidQuantity", err)
	}
	if _, err := store.SetQuantity(ctx, owner, 42, 3); !errors.Is(err, cart.ErrItemNotInCart) {
		t.Fatalf("unknown line: got %v, want ErrItemNotInCart", err)
	}

	// Zero removes the line.
	c, err = store.SetQuantity(ctx, owner, 1, 0)
	if err != nil {
		t.Fatalf("setting quantity to zero: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("expected empty cart, got %d items", len(c.Items))
	}
}

func TestRemoveItemIdempotent(t *testing.T) {
	ctx := context.Background()
	catalog := seedCatalog(product.Product{ID: 1, Price: decimal.NewFromInt(5), StockQuantity: 10})
	store := cart.NewStore(cart.NewMemory(), catalog)
	owner := identity.User("u1")

	if _, err := store.AddItem(ctx, owner, cart.ItemNew{ProductID: 1, Quantity: 2}); err != nil {
		t.Fatalf("adding item: %v", err)
	}

	before, _ := store.Get(ctx, owner)

	// Removing an absent product is a no-op returning the unchanged cart.
	c, err := store.RemoveItem(ctx, owner, 999)
	if err != nil {
		t.Fatalf("removing absent item: %v", err)
	}
	if diff := cmp.Diff(before.Items, c.Items, decimalCmp); diff != "" {
		t.Fatalf("cart changed by absent removal:\n%s", diff)
	}

	c, err = store.RemoveItem(ctx, owner, 1)
	if err != nil {
		t.Fatalf("removing item: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("expected empty cart after removal")
	}
}

func TestConcurrentAddsLoseNoIncrement(t *testing.T) {
	ctx := context.Background()
	catalog := seedCatalog(product.Product{ID: 1, Price: decimal.NewFromInt(5), StockQuantity: 1000})
	store := cart.NewStore(cart.NewMemory(), catalog)
	owner := identity.Session("racy")

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := store.AddItem(ctx, owner, cart.ItemNew{ProductID: 1, Quantity: 1}); err != nil {
				t.Errorf("concurrent add: %v", err)
			}
		}()
	}
	wg.Wait()

	c, _ := store.Get(ctx, owner)
	if len(c.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(c.Items))
	}
	if it, _ := c.Find(1); it.Quantity != workers {
		t.Fatalf("quantity = %d, want %d (lost increments)", it.Quantity, workers)
	}
}

func TestCartsAreIsolatedPerIdentity(t *testing.T) {
	ctx := context.Background()
	catalog := seedCatalog(product.Product{ID: 1, Price: decimal.NewFromInt(5), StockQuantity: 10})
	store := cart.NewStore(cart.NewMemory(), catalog)

	user := identity.User("42")
	session := identity.Session("42")

	if _, err := store.AddItem(ctx, user, cart.ItemNew{ProductID: 1, Quantity: 1}); err != nil {
		t.Fatalf("adding item: %v", err)
	}

	c, _ := store.Get(ctx, session)
	if !c.IsEmpty() {
		t.Fatal("session cart must not observe the user cart with the same raw id")
	}
}

func TestMemoryMove(t *testing.T) {
	ctx := context.Background()
	storage := cart.NewMemory()
	anon := identity.Session("s1")
	user := identity.User("u1")
	now := time.Now().UTC()

	if _, err := storage.Upsert(ctx, anon, 1, 3, decimal.NewFromFloat(9.50), now); err != nil {
		t.Fatal(err)
	}
	if _, err := storage.Upsert(ctx, user, 1, 2, decimal.NewFromFloat(8.00), now.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	// Moving folds into the existing target line, which keeps its own
	// captured price; the source line is gone.
	if err := storage.Move(ctx, anon, user, 1); err != nil {
		t.Fatalf("moving line: %v", err)
	}
	uc, _ := storage.Get(ctx, user)
	it, ok := uc.Find(1)
	if !ok || it.Quantity != 5 {
		t.Fatalf("target line = %+v, want quantity 5", it)
	}
	if !it.PriceWhenAdded.Equal(decimal.NewFromFloat(8.00)) {
		t.Fatalf("captured price = %s, want the target's 8.00", it.PriceWhenAdded)
	}
	ac, _ := storage.Get(ctx, anon)
	if !ac.IsEmpty() {
		t.Fatal("source cart must be empty after the move")
	}

	// Moving an absent line changes nothing.
	if err := storage.Move(ctx, anon, user, 1); err != nil {
		t.Fatalf("moving absent line: %v", err)
	}
	uc, _ = storage.Get(ctx, user)
	if it, _ := uc.Find(1); it.Quantity != 5 {
		t.Fatalf("quantity = %d, want 5 after a no-op move", it.Quantity)
	}
}

func TestMemorySnapshotOrdering(t *testing.T) {
	ctx := context.Background()
	storage := cart.NewMemory()
	owner := identity.Session("s")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := storage.Upsert(ctx, owner, 3, 1, decimal.NewFromInt(1), base.Add(2*time.Minute)); err != nil {
		t.Fatal(err)
	}
	if _, err := storage.Upsert(ctx, owner, 9, 1, decimal.NewFromInt(1), base); err != nil {
		t.Fatal(err)
	}
	if _, err := storage.Upsert(ctx, owner, 5, 1, decimal.NewFromInt(1), base.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	c, _ := storage.Get(ctx, owner)
	got := []int64{}
	for _, it := range c.Items {
		got = append(got, it.ProductID)
	}
	if diff := cmp.Diff([]int64{9, 5, 3}, got); diff != "" {
		t.Fatalf("items not ordered by added-at:\n%s", diff)
	}
}
