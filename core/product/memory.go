package product

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-memory catalog. It backs tests and the dev server
// and doubles as the stock ledger for the in-memory order store.
type Memory struct {
	mu       sync.RWMutex
	products map[int64]Product
}

func NewMemory() *Memory {
	return &Memory{products: make(map[int64]Product)}
}

func (m *Memory) SetProduct(p Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *Memory) DeleteProduct(productID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, productID)
}

func (m *Memory) GetProduct(ctx context.Context, productID int64) (Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[productID]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) ListProducts(ctx context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ps := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
	return ps, nil
}

// DecrementStock atomically checks and reduces stock for every item,
// or changes nothing. First pass validates, second pass commits; the
// returned slice holds the product ids with insufficient stock.
func (m *Memory) DecrementStock(items map[int64]int) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var short []int64
	for id, qty := range items {
		p, ok := m.products[id]
		if !ok || p.StockQuantity < qty {
			short = append(short, id)
		}
	}
	if len(short) > 0 {
		return short
	}

	for id, qty := range items {
		p := m.products[id]
		p.StockQuantity -= qty
		m.products[id] = p
	}
	return nil
}
