package catalog

import (
	"context"
	"errors"
	"log"
)

// CatalogUseCase contém a lógica de leitura do catálogo. O cache é melhor
// esforço: falhas de cache nunca derrubam a leitura, apenas a encaminham
// para o banco.
type CatalogUseCase struct {
	repository Repository
	cache      ProductCache
}

// NewCatalogUseCase cria uma nova instância de CatalogUseCase
func NewCatalogUseCase(repository Repository, cache ProductCache) *CatalogUseCase {
	return &CatalogUseCase{
		repository: repository,
		cache:      cache,
	}
}

// ListProducts retorna o catálogo, preferindo o cache quando disponível
func (uc *CatalogUseCase) ListProducts(ctx context.Context) ([]Product, error) {
	products, err := uc.cache.GetProducts(ctx)
	if err == nil {
		return products, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Printf("ℹ️ [CATALOG] Cache read failed, falling back to database: %v", err)
	}

	products, err = uc.repository.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.SetProducts(ctx, products); err != nil {
		log.Printf("ℹ️ [CATALOG] Cache refresh failed: %v", err)
	}

	return products, nil
}

// GetProduct retorna um produto do catálogo, preferindo o cache
func (uc *CatalogUseCase) GetProduct(ctx context.Context, productID string) (*Product, error) {
	product, err := uc.cache.GetProduct(ctx, productID)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Printf("ℹ️ [CATALOG] Cache read failed, falling back to database: %v", err)
	}

	product, err = uc.repository.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.SetProduct(ctx, product); err != nil {
		log.Printf("ℹ️ [CATALOG] Cache refresh failed: %v", err)
	}

	return product, nil
}
