package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store reads the catalog from postgres.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetProduct(ctx context.Context, productID int64) (Product, error) {
	const q = `
	SELECT product_id, name, description, price, stock_quantity, created_at, updated_at
	FROM product
	WHERE product_id = $1`

	var p Product
	if err := sqlx.GetContext(ctx, s.db, &p, q, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("fetching product[%d]: %w", productID, err)
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	const q = `
	SELECT product_id, name, description, price, stock_quantity, created_at, updated_at
	FROM product
	ORDER BY product_id`

	ps := []Product{}
	if err := sqlx.SelectContext(ctx, s.db, &ps, q); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return ps, nil
}
