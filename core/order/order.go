package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	Pending   Status = "pending"
	Confirmed Status = "confirmed"
	Shipped   Status = "shipped"
	Delivered Status = "delivered"
	Cancelled Status = "cancelled"
)

// CanTransition reports whether moving to the given status is allowed.
// The only paths are the linear pending → confirmed → shipped →
// delivered chain and the pending → cancelled branch; delivered and
// cancelled are terminal.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case Pending:
		return to == Confirmed || to == Cancelled
	case Confirmed:
		return to == Shipped
	case Shipped:
		return to == Delivered
	default:
		return false
	}
}

func (s Status) Valid() bool {
	switch s {
	case Pending, Confirmed, Shipped, Delivered, Cancelled:
		return true
	}
	return false
}

// Order is the immutable snapshot checkout produces. Line items never
// change after creation; only the status transitions.
type Order struct {
	ID              string    `json:"id" db:"order_id"`
	OwnerKey        string    `json:"-" db:"owner_key"`
	ShippingAddress string    `json:"shippingAddress" db:"shipping_address"`
	Notes           string    `json:"notes" db:"notes"`
	Status          Status    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
	Items           []Item    `json:"items" db:"-"`
}

type Item struct {
	OrderID   string          `json:"-" db:"order_id"`
	ProductID int64           `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPriceAtCheckout" db:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal" db:"subtotal"`
	CreatedAt time.Time       `json:"-" db:"created_at"`
}

func (o Order) Total() decimal.Decimal {
	tot := decimal.Zero
	for _, it := range o.Items {
		tot = tot.Add(it.Subtotal)
	}
	return tot
}

type OrderNew struct {
	ShippingAddress string `json:"shippingAddress" validate:"required"`
	Notes           string `json:"notes"`
}

type StatusUp struct {
	Status Status `json:"status" validate:"required"`
}
