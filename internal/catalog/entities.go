package catalog

import "time"

// Product representa um produto do catálogo. Preços são armazenados em
// centavos para evitar aritmética de ponto flutuante com dinheiro.
type Product struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	PriceCents  int64     `json:"price_cents" db:"price_cents"`
	Stock       int       `json:"stock" db:"stock"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
