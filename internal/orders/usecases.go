package orders

import (
	"context"
	"fmt"
)

// OrderQueryUseCase contém as consultas de leitura sobre pedidos
type OrderQueryUseCase struct {
	repository Repository
}

// NewOrderQueryUseCase cria uma nova instância de OrderQueryUseCase
func NewOrderQueryUseCase(repository Repository) *OrderQueryUseCase {
	return &OrderQueryUseCase{
		repository: repository,
	}
}

// ListOrders retorna os pedidos do usuário, do mais recente para o mais antigo
func (uc *OrderQueryUseCase) ListOrders(ctx context.Context, userID string) ([]Order, error) {
	return uc.repository.ListOrdersByUser(ctx, userID)
}

// GetOrderDetail retorna o pedido com seus itens. Pedido de outro usuário
// retorna ErrOrderNotFound, nunca um erro de autorização.
func (uc *OrderQueryUseCase) GetOrderDetail(ctx context.Context, userID, orderID string) (*OrderDetail, error) {
	order, err := uc.repository.GetOrderByIDAndUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	items, err := uc.repository.ListOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	return &OrderDetail{
		Order: *order,
		Items: items,
	}, nil
}
