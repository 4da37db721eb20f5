package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/joaofortes502/E-commerce-sub000/core/cart"
	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/joaofortes502/E-commerce-sub000/core/product"
)

// Memory persists orders in process memory, backing tests and the dev
// server. Place decrements catalog stock, records the order and clears
// the cart while holding the store lock, giving the same atomicity the
// postgres transaction provides.
type Memory struct {
	mu      sync.Mutex
	orders  map[string]Order
	carts   *cart.Memory
	catalog *product.Memory
}

func NewMemory(carts *cart.Memory, catalog *product.Memory) *Memory {
	return &Memory{
		orders:  make(map[string]Order),
		carts:   carts,
		catalog: catalog,
	}
}

func (m *Memory) Place(ctx context.Context, ord Order, owner identity.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[int64]int, len(ord.Items))
	for _, it := range ord.Items {
		wanted[it.ProductID] = it.Quantity
	}

	if short := m.catalog.DecrementStock(wanted); len(short) > 0 {
		cerr := &ConflictError{}
		for _, id := range short {
			name := ""
			if p, err := m.catalog.GetProduct(ctx, id); err == nil {
				name = p.Name
			}
			cerr.Items = append(cerr.Items, ConflictItem{ProductID: id, ProductName: name})
		}
		return cerr
	}

	m.orders[ord.ID] = copyOrder(ord)

	return m.carts.Clear(ctx, owner)
}

func (m *Memory) Fetch(ctx context.Context, orderID string) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ord, ok := m.orders[orderID]
	if !ok {
		return Order{}, ErrNotFound
	}
	return copyOrder(ord), nil
}

func (m *Memory) ListByOwner(ctx context.Context, owner identity.Identity) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ords := []Order{}
	for _, ord := range m.orders {
		if ord.OwnerKey == owner.Key() {
			ords = append(ords, copyOrder(ord))
		}
	}
	sort.Slice(ords, func(i, j int) bool { return ords[i].CreatedAt.After(ords[j].CreatedAt) })
	return ords, nil
}

func (m *Memory) UpdateStatus(ctx context.Context, orderID string, to Status, now time.Time) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ord, ok := m.orders[orderID]
	if !ok {
		return Order{}, ErrNotFound
	}
	if !ord.Status.CanTransition(to) {
		return Order{}, ErrBadTransition
	}

	ord.Status = to
	ord.UpdatedAt = now
	m.orders[orderID] = ord

	return copyOrder(ord), nil
}

func copyOrder(ord Order) Order {
	items := make([]Item, len(ord.Items))
	copy(items, ord.Items)
	ord.Items = items
	return ord
}
