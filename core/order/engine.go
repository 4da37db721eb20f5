package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joaofortes502/E-commerce-sub000/core/cart"
	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/joaofortes502/E-commerce-sub000/core/product"
	"github.com/joaofortes502/E-commerce-sub000/validate"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart    = errors.New("the cart is empty")
	ErrEmptyAddress = errors.New("shipping address is required")
)

// PriceChange informs the caller that a line was charged the current
// catalog price rather than the captured one. Price drift alone never
// blocks checkout; it is disclosed after the fact.
type PriceChange struct {
	ProductID       int64           `json:"productId"`
	PriceWhenAdded  decimal.Decimal `json:"priceWhenAdded"`
	PriceAtCheckout decimal.Decimal `json:"priceAtCheckout"`
}

// Engine converts a cart into an order. Catalog is the direct reader:
// validation must see live state at checkout time, never a cached
// reconciliation from an earlier page render.
type Engine struct {
	Carts   *cart.Store
	Catalog product.CatalogReader
	Orders  Store
}

// Checkout validates the identity's cart against the live catalog and,
// if every line is fulfillable, atomically creates a pending order and
// clears the cart. Any persistence failure aborts without touching the
// cart: no partial order is ever created.
func (e *Engine) Checkout(ctx context.Context, owner identity.Identity, n OrderNew) (Order, []PriceChange, error) {
	address := strings.TrimSpace(n.ShippingAddress)
	if address == "" {
		return Order{}, nil, ErrEmptyAddress
	}

	c, err := e.Carts.Get(ctx, owner)
	if err != nil {
		return Order{}, nil, fmt.Errorf("loading cart[%s]: %w", owner.Key(), err)
	}
	if c.IsEmpty() {
		return Order{}, nil, ErrEmptyCart
	}

	now := time.Now().UTC()
	ord := Order{
		ID:              validate.GenerateID(),
		OwnerKey:        owner.Key(),
		ShippingAddress: address,
		Notes:           n.Notes,
		Status:          Pending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var conflicts []ConflictItem
	var changes []PriceChange
	for _, it := range c.Items {
		p, err := e.Catalog.GetProduct(ctx, it.ProductID)
		switch {
		case errors.Is(err, product.ErrNotFound):
			conflicts = append(conflicts, ConflictItem{ProductID: it.ProductID})
			continue
		case err != nil:
			return Order{}, nil, fmt.Errorf("validating product[%d]: %w", it.ProductID, err)
		}

		if p.StockQuantity < it.Quantity {
			conflicts = append(conflicts, ConflictItem{ProductID: it.ProductID, ProductName: p.Name})
			continue
		}

		if !p.Price.Equal(it.PriceWhenAdded) {
			changes = append(changes, PriceChange{
				ProductID:       it.ProductID,
				PriceWhenAdded:  it.PriceWhenAdded,
				PriceAtCheckout: p.Price,
			})
		}

		qty := decimal.NewFromInt(int64(it.Quantity))
		ord.Items = append(ord.Items, Item{
			OrderID:   ord.ID,
			ProductID: it.ProductID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
			Subtotal:  p.Price.Mul(qty),
			CreatedAt: now,
		})
	}

	if len(conflicts) > 0 {
		return Order{}, nil, &ConflictError{Items: conflicts}
	}

	if err := e.Orders.Place(ctx, ord, owner); err != nil {
		// A concurrent checkout may have taken the stock between
		// validation and commit; that is a conflict, not a crash.
		var cerr *ConflictError
		if errors.As(err, &cerr) {
			return Order{}, nil, cerr
		}
		return Order{}, nil, fmt.Errorf("placing order[%s] for cart[%s]: %w", ord.ID, owner.Key(), err)
	}

	return ord, changes, nil
}
