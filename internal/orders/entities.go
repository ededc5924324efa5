package orders

import "time"

// Order representa a visão de leitura de um pedido
type Order struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	TotalCents int64     `json:"total_cents" db:"total_cents"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// OrderDetailItem é um item do pedido acompanhado do nome atual do produto.
// O preço unitário é o capturado no momento da venda, não o preço atual.
type OrderDetailItem struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// OrderDetail é o pedido com os itens embutidos
type OrderDetail struct {
	Order
	Items []OrderDetailItem `json:"items"`
}
