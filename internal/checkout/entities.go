package checkout

import (
	"time"

	"github.com/google/uuid"
)

// Order representa um pedido confirmado no sistema
type Order struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	TotalCents int64     `json:"total_cents" db:"total_cents"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// NewOrder cria uma nova instância de Order com o total já calculado
func NewOrder(userID string, totalCents int64) *Order {
	return &Order{
		ID:         uuid.New().String(),
		UserID:     userID,
		TotalCents: totalCents,
		Status:     OrderStatusConfirmed,
		CreatedAt:  time.Now(),
	}
}

// LineItem representa um item do pedido com o preço unitário capturado no
// momento da venda. Alterações futuras no catálogo não afetam pedidos já
// confirmados.
type LineItem struct {
	ID             string    `json:"id" db:"id"`
	OrderID        string    `json:"order_id" db:"order_id"`
	ProductID      string    `json:"product_id" db:"product_id"`
	Position       int       `json:"position" db:"position"`
	Quantity       int       `json:"quantity" db:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents" db:"unit_price_cents"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// NewLineItem cria uma nova instância de LineItem
func NewLineItem(orderID, productID string, position, quantity int, unitPriceCents int64) *LineItem {
	return &LineItem{
		ID:             uuid.New().String(),
		OrderID:        orderID,
		ProductID:      productID,
		Position:       position,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
		CreatedAt:      time.Now(),
	}
}

// LineTotalCents retorna o subtotal do item
func (li *LineItem) LineTotalCents() int64 {
	return int64(li.Quantity) * li.UnitPriceCents
}

// OrderStatus representa os possíveis status de um pedido
const (
	OrderStatusConfirmed = "confirmed"
)

// CheckoutItem representa um item solicitado no checkout. O cliente informa
// apenas produto e quantidade; o preço é sempre lido do catálogo.
type CheckoutItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// CheckoutRequest representa a requisição de checkout
type CheckoutRequest struct {
	Items []CheckoutItem `json:"items" binding:"required,min=1,dive"`
}
