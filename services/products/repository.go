package main

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProductNotFound is returned for unknown product ids.
var ErrProductNotFound = errors.New("product not found")

// Repository defines catalog reads.
type Repository interface {
	// ListProducts returns the whole catalog ordered by category, then name.
	ListProducts(ctx context.Context) ([]Product, error)

	// GetProduct returns one product by id.
	GetProduct(ctx context.Context, productID int64) (*Product, error)
}

// ProductRepository implements Repository on PostgreSQL.
type ProductRepository struct {
	db *pgxpool.Pool
}

// NewProductRepository builds the repository.
func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, price, category
		FROM products ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, price, category
		FROM products WHERE id = $1
	`, productID).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
