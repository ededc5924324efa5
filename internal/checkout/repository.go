package checkout

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductPricing é o retrato de preço e estoque de um produto, lido dentro
// da transação de checkout
type ProductPricing struct {
	ProductID  string
	PriceCents int64
	Stock      int
}

// Repository define a interface para as operações de banco de dados do checkout
type Repository interface {
	// BeginTx inicia a transação que delimita o checkout
	BeginTx(ctx context.Context) (Tx, error)

	// GetProductsForPricing lê preço e estoque atuais dos produtos solicitados
	GetProductsForPricing(ctx context.Context, tx Tx, productIDs []string) (map[string]ProductPricing, error)

	// InsertOrder persiste o pedido
	InsertOrder(ctx context.Context, tx Tx, order *Order) error

	// InsertLineItems persiste os itens do pedido
	InsertLineItems(ctx context.Context, tx Tx, items []*LineItem) error

	// DecrementStock decrementa o estoque somente se houver saldo suficiente
	DecrementStock(ctx context.Context, tx Tx, productID string, quantity int) error
}

// Tx interface para transações
type Tx interface {
	Commit() error
	Rollback() error
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

// PostgresTx implementa a interface Tx
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit() error {
	return t.tx.Commit(context.Background())
}

func (t *PostgresTx) Rollback() error {
	return t.tx.Rollback(context.Background())
}

// BeginTx inicia uma nova transação
func (r *PostgresRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &PostgresTx{tx: tx}, nil
}

// GetProductsForPricing lê preço e estoque atuais dos produtos solicitados
// em uma única consulta. Produtos inexistentes simplesmente não aparecem no
// mapa retornado.
func (r *PostgresRepository) GetProductsForPricing(ctx context.Context, tx Tx, productIDs []string) (map[string]ProductPricing, error) {
	pgTx := tx.(*PostgresTx).tx

	rows, err := pgTx.Query(ctx, `
		SELECT id, price_cents, stock
		FROM products
		WHERE id = ANY($1)
	`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to read product pricing: %w", err)
	}
	defer rows.Close()

	pricing := make(map[string]ProductPricing, len(productIDs))
	for rows.Next() {
		var p ProductPricing
		if err := rows.Scan(&p.ProductID, &p.PriceCents, &p.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan product pricing: %w", err)
		}
		pricing[p.ProductID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product pricing: %w", err)
	}

	return pricing, nil
}

// InsertOrder persiste o pedido dentro da transação
func (r *PostgresRepository) InsertOrder(ctx context.Context, tx Tx, order *Order) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, `
		INSERT INTO orders (id, user_id, total_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, order.ID, order.UserID, order.TotalCents, order.Status, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// InsertLineItems persiste os itens do pedido dentro da transação
func (r *PostgresRepository) InsertLineItems(ctx context.Context, tx Tx, items []*LineItem) error {
	pgTx := tx.(*PostgresTx).tx

	for _, item := range items {
		_, err := pgTx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, position, quantity, unit_price_cents, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.ID, item.OrderID, item.ProductID, item.Position, item.Quantity, item.UnitPriceCents, item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}

	return nil
}

// DecrementStock decrementa o estoque com um UPDATE condicional. A condição
// stock >= quantity é avaliada pelo banco sob o lock da linha; zero linhas
// afetadas significa estoque insuficiente.
func (r *PostgresRepository) DecrementStock(ctx context.Context, tx Tx, productID string, quantity int) error {
	pgTx := tx.(*PostgresTx).tx

	tag, err := pgTx.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2,
		    updated_at = NOW()
		WHERE id = $1
		  AND stock >= $2
	`, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", ErrInsufficientStock, productID)
	}

	return nil
}
