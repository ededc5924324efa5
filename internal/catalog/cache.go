package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// ProductCache abstrai o cache de leitura do catálogo
type ProductCache interface {
	GetProducts(ctx context.Context) ([]Product, error)
	SetProducts(ctx context.Context, products []Product) error
	GetProduct(ctx context.Context, productID string) (*Product, error)
	SetProduct(ctx context.Context, product *Product) error
}

// RedisCache implementa ProductCache sobre Redis. O TTL curto limita a
// janela em que a vitrine pode exibir estoque desatualizado; o checkout
// nunca lê preço ou estoque daqui.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

// NewRedisCache cria uma nova instância de RedisCache
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 30 * time.Second,
	}
}

// GetProducts busca a listagem completa do catálogo no cache
func (r *RedisCache) GetProducts(ctx context.Context) ([]Product, error) {
	data, err := r.client.Get(ctx, productListKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal products failed: %w", err)
	}

	return products, nil
}

// SetProducts grava a listagem completa do catálogo no cache
func (r *RedisCache) SetProducts(ctx context.Context, products []Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products failed: %w", err)
	}

	if err := r.client.Set(ctx, productListKey(), data, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// GetProduct busca um produto no cache
func (r *RedisCache) GetProduct(ctx context.Context, productID string) (*Product, error) {
	data, err := r.client.Get(ctx, productKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var product Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err)
	}

	return &product, nil
}

// SetProduct grava um produto no cache
func (r *RedisCache) SetProduct(ctx context.Context, product *Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	if err := r.client.Set(ctx, productKey(product.ID), data, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// ttl adiciona jitter ao TTL base para espalhar as expirações
func (r *RedisCache) ttl() time.Duration {
	jitter := time.Duration(rand.Intn(10)) * time.Second
	return r.baseTTL + jitter
}

func productListKey() string {
	return "catalog:products"
}

func productKey(productID string) string {
	return fmt.Sprintf("catalog:product:%s", productID)
}
