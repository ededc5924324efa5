package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeStore implementa Repository em memória com a mesma semântica de
// decremento condicional do banco. Os decrementos são aplicados na hora,
// sob mutex, e desfeitos no Rollback; pedido e itens só ficam visíveis
// no Commit. Serve para exercitar checkouts completos, inclusive
// concorrentes, sem PostgreSQL.
type fakeStore struct {
	mu     sync.Mutex
	prices map[string]int64
	stock  map[string]int
	orders map[string]*Order
	items  map[string][]*LineItem
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		prices: map[string]int64{},
		stock:  map[string]int{},
		orders: map[string]*Order{},
		items:  map[string][]*LineItem{},
	}
}

func (s *fakeStore) addProduct(productID string, priceCents int64, stock int) {
	s.prices[productID] = priceCents
	s.stock[productID] = stock
}

func (s *fakeStore) stockOf(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[productID]
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type fakeDecrement struct {
	productID string
	quantity  int
}

type fakeTx struct {
	store      *fakeStore
	order      *Order
	lineItems  []*LineItem
	decrements []fakeDecrement
	done       bool
}

func (t *fakeTx) Commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return errors.New("tx is closed")
	}
	t.done = true
	if t.order != nil {
		t.store.orders[t.order.ID] = t.order
		t.store.items[t.order.ID] = t.lineItems
	}
	return nil
}

func (t *fakeTx) Rollback() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return errors.New("tx is closed")
	}
	t.done = true
	for _, d := range t.decrements {
		t.store.stock[d.productID] += d.quantity
	}
	return nil
}

func (s *fakeStore) BeginTx(ctx context.Context) (Tx, error) {
	return &fakeTx{store: s}, nil
}

func (s *fakeStore) GetProductsForPricing(ctx context.Context, tx Tx, productIDs []string) (map[string]ProductPricing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pricing := make(map[string]ProductPricing, len(productIDs))
	for _, id := range productIDs {
		stock, ok := s.stock[id]
		if !ok {
			continue
		}
		pricing[id] = ProductPricing{ProductID: id, PriceCents: s.prices[id], Stock: stock}
	}
	return pricing, nil
}

func (s *fakeStore) InsertOrder(ctx context.Context, tx Tx, order *Order) error {
	tx.(*fakeTx).order = order
	return nil
}

func (s *fakeStore) InsertLineItems(ctx context.Context, tx Tx, items []*LineItem) error {
	tx.(*fakeTx).lineItems = items
	return nil
}

func (s *fakeStore) DecrementStock(ctx context.Context, tx Tx, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stock[productID] < quantity {
		return fmt.Errorf("%w: product %s", ErrInsufficientStock, productID)
	}
	s.stock[productID] -= quantity
	t := tx.(*fakeTx)
	t.decrements = append(t.decrements, fakeDecrement{productID: productID, quantity: quantity})
	return nil
}

func TestCheckout_SequentialStockExhaustion(t *testing.T) {
	// Arrange: produto a 1000 centavos com 5 unidades em estoque
	store := newFakeStore()
	store.addProduct("product-1", 1000, 5)
	useCase := NewCheckoutUseCase(store)
	ctx := context.Background()

	// Act: primeira compra de 3 unidades
	first, err := useCase.Checkout(ctx, "user-1", []CheckoutItem{
		{ProductID: "product-1", Quantity: 3},
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(3000), first.TotalCents)
	assert.Equal(t, 2, store.stockOf("product-1"))

	// Act: segunda compra de 3 unidades com apenas 2 restantes
	second, err := useCase.Checkout(ctx, "user-2", []CheckoutItem{
		{ProductID: "product-1", Quantity: 3},
	})

	// Assert: falha sem consumir nada
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, second)
	assert.Equal(t, 2, store.stockOf("product-1"))
	assert.Equal(t, 1, store.orderCount())
}

func TestCheckout_NonexistentProductLeavesNoTrace(t *testing.T) {
	// Arrange
	store := newFakeStore()
	store.addProduct("product-1", 1000, 5)
	useCase := NewCheckoutUseCase(store)

	// Act: um item válido e um produto inexistente na mesma requisição
	order, err := useCase.Checkout(context.Background(), "user-1", []CheckoutItem{
		{ProductID: "product-1", Quantity: 1},
		{ProductID: "ghost-product", Quantity: 1},
	})

	// Assert: nada foi persistido nem decrementado
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, order)
	assert.Equal(t, 5, store.stockOf("product-1"))
	assert.Equal(t, 0, store.orderCount())
}

func TestCheckout_PartialDecrementIsRolledBack(t *testing.T) {
	// Arrange: o mesmo produto em duas linhas de 3 com estoque 5. A
	// validação por linha passa, o primeiro decremento consome 3 e o
	// segundo falha; o rollback precisa devolver as 3 primeiras.
	store := newFakeStore()
	store.addProduct("product-1", 1000, 5)
	useCase := NewCheckoutUseCase(store)

	// Act
	order, err := useCase.Checkout(context.Background(), "user-1", []CheckoutItem{
		{ProductID: "product-1", Quantity: 3},
		{ProductID: "product-1", Quantity: 3},
	})

	// Assert
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, order)
	assert.Equal(t, 5, store.stockOf("product-1"))
	assert.Equal(t, 0, store.orderCount())
}

func TestCheckout_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	// Arrange: 8 compradores disputam 10 unidades, 3 por compra. No
	// máximo 3 compras podem confirmar; as demais precisam falhar com
	// estoque insuficiente, sem nunca deixar o estoque negativo.
	store := newFakeStore()
	store.addProduct("product-1", 1000, 10)
	useCase := NewCheckoutUseCase(store)

	const buyers = 8
	const perOrder = 3

	var wg sync.WaitGroup
	results := make([]error, buyers)
	orders := make([]*Order, buyers)

	// Act
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := useCase.Checkout(context.Background(), fmt.Sprintf("user-%d", i), []CheckoutItem{
				{ProductID: "product-1", Quantity: perOrder},
			})
			results[i] = err
			orders[i] = order
		}(i)
	}
	wg.Wait()

	// Assert
	confirmed := 0
	for i, err := range results {
		if err == nil {
			confirmed++
			assert.Equal(t, int64(perOrder*1000), orders[i].TotalCents)
			continue
		}
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Nil(t, orders[i])
	}

	// 10 unidades com 3 por compra comportam exatamente 3 confirmações
	assert.Equal(t, 3, confirmed)
	assert.Equal(t, 1, store.stockOf("product-1"))
	assert.Equal(t, confirmed, store.orderCount())

	// Cada pedido confirmado mantém a soma dos subtotais igual ao total
	store.mu.Lock()
	defer store.mu.Unlock()
	for orderID, order := range store.orders {
		var sum int64
		for _, item := range store.items[orderID] {
			sum += item.LineTotalCents()
		}
		assert.Equal(t, order.TotalCents, sum)
	}
}
