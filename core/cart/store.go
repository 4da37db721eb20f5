package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/joaofortes502/E-commerce-sub000/core/product"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrItemNotInCart   = errors.New("item is not in the cart")
)

// Storage is the persistence contract behind the cart store. Every
// mutation is atomic with respect to concurrent mutations of the same
// owner: two concurrent Upsert calls for one line must both be applied,
// never lost to a read-modify-write race.
type Storage interface {
	// Get returns the owner's cart, empty if none exists.
	Get(ctx context.Context, owner identity.Identity) (Cart, error)

	// Upsert adds quantity to the owner's line for productID, creating
	// the line with the given captured price if absent. An existing
	// line keeps its captured price and added-at (first writer wins).
	Upsert(ctx context.Context, owner identity.Identity, productID int64, quantity int, price decimal.Decimal, addedAt time.Time) (Cart, error)

	// SetQuantity replaces a line's quantity. Zero removes the line.
	// Returns ErrItemNotInCart if the product has no line.
	SetQuantity(ctx context.Context, owner identity.Identity, productID int64, quantity int) (Cart, error)

	// Remove deletes a line if present. Removing an absent line is a
	// no-op, not an error.
	Remove(ctx context.Context, owner identity.Identity, productID int64) (Cart, error)

	// Move transfers the line for productID from one owner's cart to
	// another's as a single atomic step: the quantity folds into an
	// existing target line (which keeps its captured price), and the
	// source line is deleted. Moving an absent line is a no-op. The
	// line is never observable in both carts, nor in neither.
	Move(ctx context.Context, from, to identity.Identity, productID int64) error

	// Clear deletes every line. Idempotent.
	Clear(ctx context.Context, owner identity.Identity) error
}

// Store owns the cart lifecycle: it is the only mutator of cart state.
// The checkout engine reads through it and instructs it to clear, but
// never touches lines directly.
type Store struct {
	storage Storage
	catalog product.CatalogReader
}

func NewStore(storage Storage, catalog product.CatalogReader) *Store {
	return &Store{storage: storage, catalog: catalog}
}

func (s *Store) Get(ctx context.Context, owner identity.Identity) (Cart, error) {
	return s.storage.Get(ctx, owner)
}

// AddItem appends quantity to the owner's line for the product,
// creating the line with the current catalog price if it is new.
func (s *Store) AddItem(ctx context.Context, owner identity.Identity, n ItemNew) (Cart, error) {
	if n.Quantity <= 0 {
		return Cart{}, ErrInvalidQuantity
	}

	p, err := s.catalog.GetProduct(ctx, n.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return Cart{}, product.ErrNotFound
		}
		return Cart{}, fmt.Errorf("resolving product[%d]: %w", n.ProductID, err)
	}

	return s.storage.Upsert(ctx, owner, n.ProductID, n.Quantity, p.Price, time.Now().UTC())
}

func (s *Store) SetQuantity(ctx context.Context, owner identity.Identity, productID int64, quantity int) (Cart, error) {
	if quantity < 0 {
		return Cart{}, ErrInvalidQuantity
	}
	return s.storage.SetQuantity(ctx, owner, productID, quantity)
}

func (s *Store) RemoveItem(ctx context.Context, owner identity.Identity, productID int64) (Cart, error) {
	return s.storage.Remove(ctx, owner, productID)
}

func (s *Store) Clear(ctx context.Context, owner identity.Identity) error {
	return s.storage.Clear(ctx, owner)
}
