package test

import (
	"net/http"
	"testing"

	"github.com/joaofortes502/E-commerce-sub000/core/cart"
	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/joaofortes502/E-commerce-sub000/core/product"
	"github.com/shopspring/decimal"
)

func TestCartFlow(t *testing.T) {
	te := NewTestEnv(t)
	te.Catalog.SetProduct(product.Product{ID: 7, Name: "mug", Price: decimal.NewFromFloat(10.00), StockQuantity: 5})
	te.Catalog.SetProduct(product.Product{ID: 8, Name: "pot", Price: decimal.NewFromFloat(4.50), StockQuantity: 2})

	sess := asSession("flow-session")

	// An identity with no cart reads an empty one.
	var rc cart.ReconciledCart
	if code := te.do(http.MethodGet, "/cart", nil, &rc, sess); code != http.StatusOK {
		t.Fatalf("GET /cart = %d", code)
	}
	if len(rc.Items) != 0 || rc.Summary.ItemCount != 0 {
		t.Fatalf("expected an empty cart, got %+v", rc)
	}

	// Add twice: a single line with the summed quantity.
	body := map[string]interface{}{"productId": 7, "quantity": 2}
	if code := te.do(http.MethodPost, "/cart/items", body, &rc, sess); code != http.StatusOK {
		t.Fatalf("POST /cart/items = %d", code)
	}
	if code := te.do(http.MethodPost, "/cart/items", body, &rc, sess); code != http.StatusOK {
		t.Fatalf("POST /cart/items = %d", code)
	}
	if len(rc.Items) != 1 || rc.Items[0].Quantity != 4 {
		t.Fatalf("expected one line of quantity 4, got %+v", rc.Items)
	}
	if rc.Summary.TotalQuantity != 4 || !rc.Summary.Subtotal.Equal(decimal.NewFromFloat(40.00)) {
		t.Fatalf("summary mismatch: %+v", rc.Summary)
	}

	body = map[string]interface{}{"productId": 8, "quantity": 1}
	if code := te.do(http.MethodPost, "/cart/items", body, &rc, sess); code != http.StatusOK {
		t.Fatalf("POST /cart/items = %d", code)
	}
	if rc.Summary.ItemCount != 2 {
		t.Fatalf("itemCount = %d, want 2", rc.Summary.ItemCount)
	}

	// Update a line.
	if code := te.do(http.MethodPut, "/cart/items/7", map[string]int{"quantity": 1}, &rc, sess); code != http.StatusOK {
		t.Fatalf("PUT /cart/items/7 = %d", code)
	}
	if rc.Summary.TotalQuantity != 2 {
		t.Fatalf("totalQuantity = %d, want 2", rc.Summary.TotalQuantity)
	}

	// Deleting a line twice is fine.
	if code := te.do(http.MethodDelete, "/cart/items/8", nil, &rc, sess); code != http.StatusOK {
		t.Fatalf("DELETE /cart/items/8 = %d", code)
	}
	if code := te.do(http.MethodDelete, "/cart/items/8", nil, &rc, sess); code != http.StatusOK {
		t.Fatalf("second DELETE /cart/items/8 = %d", code)
	}
	if rc.Summary.ItemCount != 1 {
		t.Fatalf("itemCount = %d, want 1", rc.Summary.ItemCount)
	}

	// Flush.
	if code := te.do(http.MethodDelete, "/cart", nil, &rc, sess); code != http.StatusOK {
		t.Fatalf("DELETE /cart = %d", code)
	}
	if rc.Summary.ItemCount != 0 {
		t.Fatalf("cart not empty after flush: %+v", rc.Summary)
	}
}

func TestCartErrors(t *testing.T) {
	te := NewTestEnv(t)
	te.Catalog.SetProduct(product.Product{ID: 1, Name: "pen", Price: decimal.NewFromInt(1), StockQuantity: 5})

	sess := asSession("err-session")

	if code := te.do(http.MethodPost, "/cart/items", map[string]interface{}{"productId": 99, "quantity": 1}, nil, sess); code != http.StatusNotFound {
		t.Fatalf("unknown product = %d, want 404", code)
	}
	if code := te.do(http.MethodPost, "/cart/items", map[string]interface{}{"productId": 1, "quantity": 0}, nil, sess); code != http.StatusBadRequest {
		t.Fatalf("zero quantity = %d, want 400", code)
	}
	if code := te.do(http.MethodPost, "/cart/items", map[string]interface{}{"productId": 1, "quantity": -3}, nil, sess); code != http.StatusBadRequest {
		t.Fatalf("negative quantity = %d, want 400", code)
	}
	if code := te.do(http.MethodPut, "/cart/items/1", map[string]int{"quantity": 2}, nil, sess); code != http.StatusNotFound {
		t.Fatalf("update of absent line = %d, want 404", code)
	}
	if code := te.do(http.MethodPut, "/cart/items/abc", map[string]int{"quantity": 2}, nil, sess); code != http.StatusNotFound && code != http.StatusBadRequest {
		t.Fatalf("non-numeric product id = %d", code)
	}
}

func TestCartReconciliationSurfacesDrift(t *testing.T) {
	te := NewTestEnv(t)
	te.Catalog.SetProduct(product.Product{ID: 7, Name: "mug", Price: decimal.NewFromFloat(10.00), StockQuantity: 5})

	sess := asSession("drift-session")

	var rc cart.ReconciledCart
	if code := te.do(http.MethodPost, "/cart/items", map[string]interface{}{"productId": 7, "quantity": 2}, &rc, sess); code != http.StatusOK {
		t.Fatalf("POST /cart/items = %d", code)
	}

	// Price rises and stock drains after the add.
	te.Catalog.SetProduct(product.Product{ID: 7, Name: "mug", Price: decimal.NewFromFloat(12.00), StockQuantity: 0})

	if code := te.do(http.MethodGet, "/cart", nil, &rc, sess); code != http.StatusOK {
		t.Fatalf("GET /cart = %d", code)
	}
	it := rc.Items[0]
	if !it.PriceChanged || !it.OutOfStock {
		t.Fatalf("drift not surfaced: %+v", it)
	}
	if !it.Subtotal.Equal(decimal.NewFromFloat(20.00)) {
		t.Fatalf("subtotal = %s, want captured 20.00", it.Subtotal)
	}
	if !rc.Summary.HasIssues {
		t.Fatal("summary must flag issues")
	}
}

func TestCartMigration(t *testing.T) {
	te := NewTestEnv(t)
	te.Catalog.SetProduct(product.Product{ID: 5, Name: "pen", Price: decimal.NewFromFloat(8.00), StockQuantity: 10})

	sess := asSession("anon-1")

	// Build up an anonymous cart.
	if code := te.do(http.MethodPost, "/cart/items", map[string]interface{}{"productId": 5, "quantity": 3}, nil, sess); code != http.StatusOK {
		t.Fatalf("POST /cart/items = %d", code)
	}

	// The user already had a line for the same product.
	user := te.Login("u1", "")
	if code := te.do(http.MethodPost, "/cart/items", map[string]interface{}{"productId": 5, "quantity": 2}, nil, asUser(user)); code != http.StatusOK {
		t.Fatalf("POST /cart/items as user = %d", code)
	}

	// Anonymous callers cannot migrate.
	if code := te.do(http.MethodPost, "/cart/migrate", map[string]string{"sessionId": "anon-1"}, nil, sess); code != http.StatusUnauthorized {
		t.Fatalf("anonymous migrate = %d, want 401", code)
	}

	var resp struct {
		Migrated int `json:"migrated"`
	}
	if code := te.do(http.MethodPost, "/cart/migrate", map[string]string{"sessionId": "anon-1"}, &resp, asUser(user)); code != http.StatusOK {
		t.Fatalf("POST /cart/migrate = %d", code)
	}
	if resp.Migrated != 1 {
		t.Fatalf("migrated = %d, want 1", resp.Migrated)
	}

	var rc cart.ReconciledCart
	if code := te.do(http.MethodGet, "/cart", nil, &rc, asUser(user)); code != http.StatusOK {
		t.Fatalf("GET /cart = %d", code)
	}
	if len(rc.Items) != 1 || rc.Items[0].Quantity != 5 {
		t.Fatalf("merged cart = %+v, want single line of quantity 5", rc.Items)
	}

	// The anonymous cart is retired.
	if code := te.do(http.MethodGet, "/cart", nil, &rc, sess); code != http.StatusOK {
		t.Fatalf("GET /cart = %d", code)
	}
	if len(rc.Items) != 0 {
		t.Fatalf("anonymous cart must be empty, got %+v", rc.Items)
	}
}

func TestIdentitiesDoNotShareCarts(t *testing.T) {
	te := NewTestEnv(t)
	te.Catalog.SetProduct(product.Product{ID: 1, Name: "pen", Price: decimal.NewFromInt(1), StockQuantity: 5})

	if code := te.do(http.MethodPost, "/cart/items", map[string]interface{}{"productId": 1, "quantity": 1}, nil, asSession("a")); code != http.StatusOK {
		t.Fatalf("POST /cart/items = %d", code)
	}

	var rc cart.ReconciledCart
	if code := te.do(http.MethodGet, "/cart", nil, &rc, asSession("b")); code != http.StatusOK {
		t.Fatalf("GET /cart = %d", code)
	}
	if len(rc.Items) != 0 {
		t.Fatalf("session b sees session a's cart: %+v", rc.Items)
	}

	// Direct check on the storage key namespacing.
	if identity.Session("a").Key() == identity.User("a").Key() {
		t.Fatal("identity namespaces collide")
	}
}
