package cart

import (
	"time"

	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/shopspring/decimal"
)

// Cart is one identity's cart. Items are ordered by the time they
// were first added; at most one line exists per product.
type Cart struct {
	Owner identity.Identity `json:"-"`
	Items []Item            `json:"items"`
}

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

func (c Cart) Find(productID int64) (Item, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return Item{}, false
}

type Item struct {
	ProductID int64 `json:"productId" db:"product_id"`
	Quantity  int   `json:"quantity" db:"quantity"`

	// PriceWhenAdded is the catalog price captured when the line was
	// created. Quantity increases keep the original capture; the
	// reconciler reports drift against the live price instead.
	PriceWhenAdded decimal.Decimal `json:"priceWhenAdded" db:"price_when_added"`
	AddedAt        time.Time       `json:"addedAt" db:"added_at"`
}

type ItemNew struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type ItemUp struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

type MigrateNew struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// ReconciledItem decorates a line with the catalog's current view. It
// is computed at read time and never persisted. Subtotal is always
// quantity times the captured price: the cart honors the price shown
// when the item was added, until checkout recomputes.
type ReconciledItem struct {
	Item
	CurrentPrice   decimal.Decimal `json:"currentPrice"`
	StockAvailable int             `json:"stockAvailable"`
	PriceChanged   bool            `json:"priceChanged"`
	OutOfStock     bool            `json:"outOfStock"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// Summary is derived from the reconciled items on demand. Persisting
// it would create a second source of truth that could drift from the
// item list.
type Summary struct {
	ItemCount     int             `json:"itemCount"`
	TotalQuantity int             `json:"totalQuantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	HasIssues     bool            `json:"hasIssues"`
}

type ReconciledCart struct {
	Items   []ReconciledItem `json:"items"`
	Summary Summary          `json:"summary"`
}
