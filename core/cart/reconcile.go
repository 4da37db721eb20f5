package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/joaofortes502/E-commerce-sub000/core/product"
	"github.com/shopspring/decimal"
)

// Reconcile decorates a cart with the catalog's current price and
// stock. It performs no writes and may run arbitrarily often, in
// parallel with mutations; the next read simply reflects the latest
// committed state.
//
// A product missing from the catalog is retained and surfaced as out
// of stock, never dropped: resolving it is the user's or the checkout
// engine's call. PriceChanged stays false in that case since there is
// no live price to compare against.
func Reconcile(ctx context.Context, c Cart, catalog product.CatalogReader) (ReconciledCart, error) {
	items := make([]ReconciledItem, 0, len(c.Items))
	for _, it := range c.Items {
		ri := ReconciledItem{
			Item:     it,
			Subtotal: it.PriceWhenAdded.Mul(decimal.NewFromInt(int64(it.Quantity))),
		}

		p, err := catalog.GetProduct(ctx, it.ProductID)
		switch {
		case errors.Is(err, product.ErrNotFound):
			ri.OutOfStock = true
		case err != nil:
			return ReconciledCart{}, fmt.Errorf("reconciling product[%d]: %w", it.ProductID, err)
		default:
			ri.CurrentPrice = p.Price
			ri.StockAvailable = p.StockQuantity
			ri.PriceChanged = !p.Price.Equal(it.PriceWhenAdded)
			ri.OutOfStock = p.StockQuantity == 0
		}

		items = append(items, ri)
	}

	return ReconciledCart{Items: items, Summary: Summarize(items)}, nil
}

func Summarize(items []ReconciledItem) Summary {
	s := Summary{Subtotal: decimal.Zero}
	for _, it := range items {
		s.ItemCount++
		s.TotalQuantity += it.Quantity
		s.Subtotal = s.Subtotal.Add(it.Subtotal)
		if it.OutOfStock || it.PriceChanged {
			s.HasIssues = true
		}
	}
	return s
}
