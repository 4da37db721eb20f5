package cart

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/shopspring/decimal"
)

// Memory keeps carts in process memory. Mutations for one owner are
// serialized by a per-owner lock; different owners never contend.
type Memory struct {
	mu    sync.Mutex
	carts map[string]*memCart
}

type memCart struct {
	mu    sync.Mutex
	items map[int64]Item
}

func NewMemory() *Memory {
	return &Memory{carts: make(map[string]*memCart)}
}

func (m *Memory) cart(owner identity.Identity) *memCart {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[owner.Key()]
	if !ok {
		c = &memCart{items: make(map[int64]Item)}
		m.carts[owner.Key()] = c
	}
	return c
}

func (m *Memory) Get(ctx context.Context, owner identity.Identity) (Cart, error) {
	c := m.cart(owner)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(owner), nil
}

func (m *Memory) Upsert(ctx context.Context, owner identity.Identity, productID int64, quantity int, price decimal.Decimal, addedAt time.Time) (Cart, error) {
	c := m.cart(owner)
	c.mu.Lock()
	defer c.mu.Unlock()

	if it, ok := c.items[productID]; ok {
		it.Quantity += quantity
		c.items[productID] = it
	} else {
		c.items[productID] = Item{
			ProductID:      productID,
			Quantity:       quantity,
			PriceWhenAdded: price,
			AddedAt:        addedAt,
		}
	}

	return c.snapshot(owner), nil
}

func (m *Memory) SetQuantity(ctx context.Context, owner identity.Identity, productID int64, quantity int) (Cart, error) {
	c := m.cart(owner)
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[productID]
	if !ok {
		return Cart{}, ErrItemNotInCart
	}

	if quantity == 0 {
		delete(c.items, productID)
	} else {
		it.Quantity = quantity
		c.items[productID] = it
	}

	return c.snapshot(owner), nil
}

func (m *Memory) Remove(ctx context.Context, owner identity.Identity, productID int64) (Cart, error) {
	c := m.cart(owner)
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, productID)
	return c.snapshot(owner), nil
}

func (m *Memory) Move(ctx context.Context, from, to identity.Identity, productID int64) error {
	if from.Key() == to.Key() {
		return nil
	}

	src := m.cart(from)
	dst := m.cart(to)

	// Both carts are locked for the whole move. Lock order follows the
	// owner keys so two opposing moves cannot deadlock.
	first, second := src, dst
	if from.Key() > to.Key() {
		first, second = dst, src
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	it, ok := src.items[productID]
	if !ok {
		return nil
	}

	if cur, ok := dst.items[productID]; ok {
		cur.Quantity += it.Quantity
		dst.items[productID] = cur
	} else {
		dst.items[productID] = it
	}
	delete(src.items, productID)

	return nil
}

func (m *Memory) Clear(ctx context.Context, owner identity.Identity) error {
	c := m.cart(owner)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[int64]Item)
	return nil
}

// snapshot copies the cart so callers never observe a line mid-update.
// Caller must hold the cart lock.
func (c *memCart) snapshot(owner identity.Identity) Cart {
	items := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].ProductID < items[j].ProductID
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})
	return Cart{Owner: owner, Items: items}
}
