package product

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CachedReader is a TTL read-through cache in front of a CatalogReader.
// It bounds how stale the cart page's price/stock view may be; checkout
// must keep using the wrapped reader directly. Concurrent misses for
// the same product collapse into a single upstream fetch.
type CachedReader struct {
	next CatalogReader
	ttl  time.Duration

	sfg     singleflight.Group
	mu      sync.RWMutex
	entries map[int64]cacheEntry
}

type cacheEntry struct {
	product Product
	expires time.Time
}

func NewCachedReader(next CatalogReader, ttl time.Duration) *CachedReader {
	return &CachedReader{
		next:    next,
		ttl:     ttl,
		entries: make(map[int64]cacheEntry),
	}
}

func (c *CachedReader) GetProduct(ctx context.Context, productID int64) (Product, error) {
	if p, ok := c.cached(productID); ok {
		return p, nil
	}

	v, err, _ := c.sfg.Do(strconv.FormatInt(productID, 10), func() (interface{}, error) {
		if p, ok := c.cached(productID); ok {
			return p, nil
		}

		p, err := c.next.GetProduct(ctx, productID)
		if err != nil {
			// Not-found and unavailability are never cached.
			return Product{}, err
		}

		c.mu.Lock()
		c.entries[productID] = cacheEntry{product: p, expires: time.Now().Add(c.ttl)}
		c.mu.Unlock()

		return p, nil
	})
	if err != nil {
		return Product{}, err
	}
	return v.(Product), nil
}

// ListProducts bypasses the cache: listings are not on the
// reconciliation path.
func (c *CachedReader) ListProducts(ctx context.Context) ([]Product, error) {
	return c.next.ListProducts(ctx)
}

func (c *CachedReader) cached(productID int64) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[productID]
	if !ok || time.Now().After(e.expires) {
		return Product{}, false
	}
	return e.product, true
}
