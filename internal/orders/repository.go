package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrOrderNotFound = errors.New("order not found")

// Repository define a interface para as consultas de leitura de pedidos
type Repository interface {
	// ListOrdersByUser retorna os pedidos do usuário, do mais recente para
	// o mais antigo
	ListOrdersByUser(ctx context.Context, userID string) ([]Order, error)

	// GetOrderByIDAndUser busca um pedido pelo ID, restrito ao dono
	GetOrderByIDAndUser(ctx context.Context, orderID, userID string) (*Order, error)

	// ListOrderItems retorna os itens de um pedido com o nome do produto
	ListOrderItems(ctx context.Context, orderID string) ([]OrderDetailItem, error)
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

// ListOrdersByUser retorna os pedidos do usuário ordenados por data de
// criação decrescente
func (r *PostgresRepository) ListOrdersByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, total_cents, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// GetOrderByIDAndUser busca um pedido pelo ID restrito ao dono. O dono faz
// parte do predicado: pedidos de outros usuários são indistinguíveis de
// pedidos inexistentes.
func (r *PostgresRepository) GetOrderByIDAndUser(ctx context.Context, orderID, userID string) (*Order, error) {
	var o Order
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, total_cents, status, created_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`, orderID, userID).Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Status, &o.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &o, nil
}

// ListOrderItems retorna os itens do pedido com o nome atual do produto,
// na ordem em que apareceram na requisição de checkout
func (r *PostgresRepository) ListOrderItems(ctx context.Context, orderID string) ([]OrderDetailItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT oi.id, oi.product_id, p.name, oi.quantity, oi.unit_price_cents
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.position
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []OrderDetailItem{}
	for rows.Next() {
		var item OrderDetailItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Name, &item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}

	return items, nil
}
