package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

// Repository define a interface para operações de banco de dados do catálogo
type Repository interface {
	// ListProducts retorna todos os produtos do catálogo
	ListProducts(ctx context.Context) ([]Product, error)

	// GetProduct busca um produto pelo ID
	GetProduct(ctx context.Context, productID string) (*Product, error)
}

// PostgresRepository implementa Repository usando PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository cria uma nova instância de PostgresRepository
func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{
		db: db,
	}
}

// ListProducts retorna todos os produtos do catálogo
func (r *PostgresRepository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, price_cents, stock, created_at, updated_at
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

// GetProduct busca um produto pelo ID
func (r *PostgresRepository) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, price_cents, stock, created_at, updated_at
		FROM products WHERE id = $1
	`, productID).Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &p, nil
}
