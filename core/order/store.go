package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joaofortes502/E-commerce-sub000/core/identity"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrBadTransition = errors.New("status transition not allowed")
)

// ConflictItem names a cart line that blocked checkout. The name may
// be empty when the product has vanished from the catalog entirely.
type ConflictItem struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
}

// ConflictError reports the full set of lines that cannot be
// fulfilled. The cart is left untouched so the caller can adjust
// quantities or remove items; checkout never truncates an order.
type ConflictError struct {
	Items []ConflictItem
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		ids = append(ids, fmt.Sprintf("%d", it.ProductID))
	}
	return fmt.Sprintf("insufficient stock for products [%s]", strings.Join(ids, ", "))
}

// Store persists orders. Place writes the order and clears the owning
// cart as one atomic step: the cart is never left non-empty once an
// order exists, and never cleared when order creation fails. A stock
// rejection detected at persistence time surfaces as *ConflictError.
type Store interface {
	Place(ctx context.Context, ord Order, owner identity.Identity) error
	Fetch(ctx context.Context, orderID string) (Order, error)
	ListByOwner(ctx context.Context, owner identity.Identity) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, to Status, now time.Time) (Order, error)
}
