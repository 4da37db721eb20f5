package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/joaofortes502/E-commerce-sub000/database"
	"github.com/shopspring/decimal"
)

// Postgres persists carts in the cart_item table. Per-owner
// serialization comes from the storage layer itself: increments and
// conditional updates are single atomic statements, so concurrent
// mutations of one line cannot lose writes.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Get(ctx context.Context, owner identity.Identity) (Cart, error) {
	c, err := fetch(ctx, s.db, owner)
	if err != nil {
		return Cart{}, fmt.Errorf("fetching cart[%s]: %w", owner.Key(), err)
	}
	return c, nil
}

func (s *Postgres) Upsert(ctx context.Context, owner identity.Identity, productID int64, quantity int, price decimal.Decimal, addedAt time.Time) (Cart, error) {
	const q = `
	INSERT INTO cart_item (owner_key, product_id, quantity, price_when_added, added_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (owner_key, product_id)
	DO UPDATE SET quantity = cart_item.quantity + EXCLUDED.quantity`

	if _, err := s.db.ExecContext(ctx, q, owner.Key(), productID, quantity, price, addedAt); err != nil {
		return Cart{}, fmt.Errorf("upserting cart item[%d] for %s: %w", productID, owner.Key(), err)
	}

	return s.Get(ctx, owner)
}

func (s *Postgres) SetQuantity(ctx context.Context, owner identity.Identity, productID int64, quantity int) (Cart, error) {
	if quantity == 0 {
		const q = `DELETE FROM cart_item WHERE owner_key = $1 AND product_id = $2`

		res, err := s.db.ExecContext(ctx, q, owner.Key(), productID)
		if err != nil {
			return Cart{}, fmt.Errorf("removing cart item[%d] for %s: %w", productID, owner.Key(), err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return Cart{}, ErrItemNotInCart
		}

		return s.Get(ctx, owner)
	}

	const q = `UPDATE cart_item SET quantity = $3 WHERE owner_key = $1 AND product_id = $2`

	res, err := s.db.ExecContext(ctx, q, owner.Key(), productID, quantity)
	if err != nil {
		return Cart{}, fmt.Errorf("updating cart item[%d] for %s: %w", productID, owner.Key(), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Cart{}, ErrItemNotInCart
	}

	return s.Get(ctx, owner)
}

func (s *Postgres) Remove(ctx context.Context, owner identity.Identity, productID int64) (Cart, error) {
	const q = `DELETE FROM cart_item WHERE owner_key = $1 AND product_id = $2`

	if _, err := s.db.ExecContext(ctx, q, owner.Key(), productID); err != nil {
		return Cart{}, fmt.Errorf("removing cart item[%d] for %s: %w", productID, owner.Key(), err)
	}

	return s.Get(ctx, owner)
}

// Move runs the attach and the detach in one transaction, so a crash
// mid-move can never leave the line in both carts.
func (s *Postgres) Move(ctx context.Context, from, to identity.Identity, productID int64) error {
	err := database.Transaction(s.db, func(tx sqlx.ExtContext) error {
		const sel = `
		SELECT product_id, quantity, price_when_added, added_at
		FROM cart_item
		WHERE owner_key = $1 AND product_id = $2`

		var it Item
		if err := sqlx.GetContext(ctx, tx, &it, sel, from.Key(), productID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}

		const ins = `
		INSERT INTO cart_item (owner_key, product_id, quantity, price_when_added, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_key, product_id)
		DO UPDATE SET quantity = cart_item.quantity + EXCLUDED.quantity`

		if _, err := tx.ExecContext(ctx, ins, to.Key(), it.ProductID, it.Quantity, it.PriceWhenAdded, it.AddedAt); err != nil {
			return err
		}

		const del = `DELETE FROM cart_item WHERE owner_key = $1 AND product_id = $2`

		_, err := tx.ExecContext(ctx, del, from.Key(), productID)
		return err
	})

	if err != nil {
		return fmt.Errorf("moving cart item[%d] from %s to %s: %w", productID, from.Key(), to.Key(), err)
	}
	return nil
}

func (s *Postgres) Clear(ctx context.Context, owner identity.Identity) error {
	if err := DeleteAll(ctx, s.db, owner); err != nil {
		return fmt.Errorf("clearing cart[%s]: %w", owner.Key(), err)
	}
	return nil
}

func fetch(ctx context.Context, ext sqlx.ExtContext, owner identity.Identity) (Cart, error) {
	const q = `
	SELECT product_id, quantity, price_when_added, added_at
	FROM cart_item
	WHERE owner_key = $1
	ORDER BY added_at, product_id`

	items := []Item{}
	if err := sqlx.SelectContext(ctx, ext, &items, q, owner.Key()); err != nil {
		return Cart{}, err
	}
	return Cart{Owner: owner, Items: items}, nil
}

// DeleteAll flushes an owner's cart. Exposed at the statement level so
// the order store can run it inside the checkout transaction.
func DeleteAll(ctx context.Context, ext sqlx.ExtContext, owner identity.Identity) error {
	const q = `DELETE FROM cart_item WHERE owner_key = $1`

	_, err := ext.ExecContext(ctx, q, owner.Key())
	return err
}
