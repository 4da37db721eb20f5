package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joaofortes502/E-commerce-sub000/core/cart"
	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/joaofortes502/E-commerce-sub000/database"
)

// Postgres persists orders. Place runs the order insert, the stock
// decrement and the cart flush in one transaction; any rejection rolls
// the whole step back, leaving the cart intact.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Place(ctx context.Context, ord Order, owner identity.Identity) error {
	err := database.Transaction(s.db, func(tx sqlx.ExtContext) error {
		const insOrder = `
		INSERT INTO orders (order_id, owner_key, shipping_address, notes, status, created_at, updated_at)
		VALUES (:order_id, :owner_key, :shipping_address, :notes, :status, :created_at, :updated_at)`

		if _, err := sqlx.NamedExecContext(ctx, tx, insOrder, ord); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		const insItem = `
		INSERT INTO order_item (order_id, product_id, name, quantity, unit_price, subtotal, created_at)
		VALUES (:order_id, :product_id, :name, :quantity, :unit_price, :subtotal, :created_at)`

		// Conditional decrement: zero rows means a concurrent checkout
		// took the stock after validation.
		const decStock = `
		UPDATE product SET stock_quantity = stock_quantity - $2, updated_at = $3
		WHERE product_id = $1 AND stock_quantity >= $2`

		for _, it := range ord.Items {
			if _, err := sqlx.NamedExecContext(ctx, tx, insItem, it); err != nil {
				return fmt.Errorf("creating order item[%d]: %w", it.ProductID, err)
			}

			res, err := tx.ExecContext(ctx, decStock, it.ProductID, it.Quantity, ord.CreatedAt)
			if err != nil {
				return fmt.Errorf("decrementing stock for product[%d]: %w", it.ProductID, err)
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return &ConflictError{Items: []ConflictItem{{ProductID: it.ProductID, ProductName: it.Name}}}
			}
		}

		if err := cart.DeleteAll(ctx, tx, owner); err != nil {
			return fmt.Errorf("flushing cart: %w", err)
		}

		return nil
	})

	if err != nil {
		var cerr *ConflictError
		if errors.As(err, &cerr) {
			return cerr
		}
		return fmt.Errorf("placing order[%s]: %w", ord.ID, err)
	}
	return nil
}

func (s *Postgres) Fetch(ctx context.Context, orderID string) (Order, error) {
	const q = `
	SELECT order_id, owner_key, shipping_address, notes, status, created_at, updated_at
	FROM orders
	WHERE order_id = $1`

	var ord Order
	if err := sqlx.GetContext(ctx, s.db, &ord, q, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("fetching order[%s]: %w", orderID, err)
	}

	items, err := s.fetchItems(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	ord.Items = items

	return ord, nil
}

func (s *Postgres) ListByOwner(ctx context.Context, owner identity.Identity) ([]Order, error) {
	const q = `
	SELECT order_id, owner_key, shipping_address, notes, status, created_at, updated_at
	FROM orders
	WHERE owner_key = $1
	ORDER BY created_at DESC`

	ords := []Order{}
	if err := sqlx.SelectContext(ctx, s.db, &ords, q, owner.Key()); err != nil {
		return nil, fmt.Errorf("listing orders for %s: %w", owner.Key(), err)
	}

	for i := range ords {
		items, err := s.fetchItems(ctx, ords[i].ID)
		if err != nil {
			return nil, err
		}
		ords[i].Items = items
	}

	return ords, nil
}

// UpdateStatus applies a transition with a conditional update: the
// current status is part of the predicate, so a concurrent transition
// cannot be overwritten unobserved.
func (s *Postgres) UpdateStatus(ctx context.Context, orderID string, to Status, now time.Time) (Order, error) {
	ord, err := s.Fetch(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if !ord.Status.CanTransition(to) {
		return Order{}, ErrBadTransition
	}

	const q = `
	UPDATE orders SET status = $3, updated_at = $4
	WHERE order_id = $1 AND status = $2`

	res, err := s.db.ExecContext(ctx, q, orderID, ord.Status, to, now)
	if err != nil {
		return Order{}, fmt.Errorf("updating status of order[%s]: %w", orderID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Order{}, ErrBadTransition
	}

	ord.Status = to
	ord.UpdatedAt = now
	return ord, nil
}

func (s *Postgres) fetchItems(ctx context.Context, orderID string) ([]Item, error) {
	const q = `
	SELECT order_id, product_id, name, quantity, unit_price, subtotal, created_at
	FROM order_item
	WHERE order_id = $1
	ORDER BY product_id`

	items := []Item{}
	if err := sqlx.SelectContext(ctx, s.db, &items, q, orderID); err != nil {
		return nil, fmt.Errorf("fetching items of order[%s]: %w", orderID, err)
	}
	return items, nil
}
