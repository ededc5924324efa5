package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrEmptyItems         = errors.New("checkout requires at least one item")
	ErrInvalidQuantity    = errors.New("item quantity must be greater than zero")
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrTransactionAborted = errors.New("checkout transaction aborted")
)

// CheckoutUseCase contém a lógica de negócio do checkout: a transação que
// valida estoque, calcula o total com os preços atuais do catálogo e
// persiste pedido, itens e decrementos como uma unidade atômica.
type CheckoutUseCase struct {
	repository      Repository
	checkoutCounter metric.Int64Counter
}

// NewCheckoutUseCase cria uma nova instância de CheckoutUseCase
func NewCheckoutUseCase(repository Repository) *CheckoutUseCase {
	meter := otel.Meter("checkout")
	counter, err := meter.Int64Counter("checkout.total",
		metric.WithDescription("Total de checkouts por resultado"))
	if err != nil {
		log.Printf("❌ Failed to create checkout counter: %v", err)
	}

	return &CheckoutUseCase{
		repository:      repository,
		checkoutCounter: counter,
	}
}

// Checkout executa a transação de checkout. Ou todos os efeitos ficam
// visíveis juntos (pedido, itens e decrementos de estoque) ou nenhum deles.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, userID string, items []CheckoutItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s", ErrInvalidQuantity, item.ProductID)
		}
	}

	log.Printf("➡️ [CHECKOUT] UserID: %s | Items: %d", userID, len(items))

	// 1. Inicia a transação; Rollback após Commit é um no-op, então o defer
	// garante a liberação da transação em qualquer caminho de saída
	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		uc.countOutcome(ctx, "aborted")
		return nil, fmt.Errorf("%w: %v", ErrTransactionAborted, err)
	}
	defer tx.Rollback()

	// 2. Lê preço e estoque atuais de todos os produtos solicitados, dentro
	// da transação. O preço que o cliente viu na vitrine não participa.
	pricing, err := uc.repository.GetProductsForPricing(ctx, tx, productIDs(items))
	if err != nil {
		uc.countOutcome(ctx, "aborted")
		return nil, fmt.Errorf("%w: %v", ErrTransactionAborted, err)
	}

	// 3. Valida item a item, na ordem da requisição: produto existente e
	// estoque suficiente. A primeira violação aborta a operação inteira.
	for _, item := range items {
		product, ok := pricing[item.ProductID]
		if !ok {
			log.Printf("❌ [CHECKOUT] Product not found: %s", item.ProductID)
			uc.countOutcome(ctx, "product_not_found")
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		if product.Stock < item.Quantity {
			log.Printf("❌ [CHECKOUT] Insufficient stock: ProductID=%s Stock=%d Requested=%d",
				item.ProductID, product.Stock, item.Quantity)
			uc.countOutcome(ctx, "insufficient_stock")
			return nil, fmt.Errorf("%w: product %s", ErrInsufficientStock, item.ProductID)
		}
	}

	// 4. Calcula o total com os preços lidos no passo 2
	var totalCents int64
	for _, item := range items {
		totalCents += int64(item.Quantity) * pricing[item.ProductID].PriceCents
	}

	// 5. Persiste o pedido já com o total calculado
	order := NewOrder(userID, totalCents)
	if err := uc.repository.InsertOrder(ctx, tx, order); err != nil {
		uc.countOutcome(ctx, "aborted")
		return nil, fmt.Errorf("%w: %v", ErrTransactionAborted, err)
	}

	// 6. Persiste os itens capturando o preço unitário do momento da venda
	lineItems := make([]*LineItem, 0, len(items))
	for i, item := range items {
		lineItems = append(lineItems, NewLineItem(order.ID, item.ProductID, i, item.Quantity, pricing[item.ProductID].PriceCents))
	}
	if err := uc.repository.InsertLineItems(ctx, tx, lineItems); err != nil {
		uc.countOutcome(ctx, "aborted")
		return nil, fmt.Errorf("%w: %v", ErrTransactionAborted, err)
	}

	// 7. Decrementa o estoque de cada item com o UPDATE condicional. Uma
	// corrida perdida para um checkout concorrente aparece aqui como
	// estoque insuficiente, mesmo tendo passado na validação do passo 3.
	for _, item := range items {
		if err := uc.repository.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, ErrInsufficientStock) {
				log.Printf("❌ [CHECKOUT] Lost stock race: ProductID=%s", item.ProductID)
				uc.countOutcome(ctx, "insufficient_stock")
				return nil, err
			}
			uc.countOutcome(ctx, "aborted")
			return nil, fmt.Errorf("%w: %v", ErrTransactionAborted, err)
		}
	}

	// 8. Commit da transação
	if err := tx.Commit(); err != nil {
		uc.countOutcome(ctx, "aborted")
		return nil, fmt.Errorf("%w: %v", ErrTransactionAborted, err)
	}

	log.Printf("✅ [CHECKOUT] Success: OrderID=%s | Total=%d", order.ID, order.TotalCents)
	uc.countOutcome(ctx, "confirmed")
	return order, nil
}

// countOutcome registra o resultado do checkout na métrica
func (uc *CheckoutUseCase) countOutcome(ctx context.Context, outcome string) {
	if uc.checkoutCounter == nil {
		return
	}
	uc.checkoutCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// productIDs coleta os IDs distintos preservando a ordem da requisição
func productIDs(items []CheckoutItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
