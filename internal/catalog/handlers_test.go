package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
)

type stubUseCase struct {
	products []Product
	product  *Product
	err      error
}

func (s *stubUseCase) ListProducts(ctx context.Context) ([]Product, error) {
	return s.products, s.err
}

func (s *stubUseCase) GetProduct(ctx context.Context, productID string) (*Product, error) {
	return s.product, s.err
}

func setupCatalogRouter(uc *stubUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewHandler(uc, otel.Tracer("test"))

	r := gin.New()
	r.GET("/products", handler.ListProducts)
	r.GET("/products/:id", handler.GetProduct)
	return r
}

func TestListProductsHandler_Success(t *testing.T) {
	// Arrange
	uc := &stubUseCase{products: []Product{
		{ID: "product-1", Name: "Teclado", PriceCents: 15000, Stock: 10},
		{ID: "product-2", Name: "Mouse", PriceCents: 8000, Stock: 25},
	}}
	router := setupCatalogRouter(uc)

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/products", nil)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Teclado")
	assert.Contains(t, w.Body.String(), `"price_cents":15000`)
}

func TestListProductsHandler_EmptyCatalog(t *testing.T) {
	// Arrange
	uc := &stubUseCase{products: []Product{}}
	router := setupCatalogRouter(uc)

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/products", nil)
	router.ServeHTTP(w, req)

	// Assert: catálogo vazio responde uma lista vazia, nunca null
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestListProductsHandler_Failure(t *testing.T) {
	// Arrange
	uc := &stubUseCase{err: errors.New("connection refused")}
	router := setupCatalogRouter(uc)

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/products", nil)
	router.ServeHTTP(w, req)

	// Assert: falha interna responde 500, nunca 200 com corpo de erro
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to list products")
}

func TestGetProductHandler_Success(t *testing.T) {
	// Arrange
	uc := &stubUseCase{product: &Product{ID: "product-1", Name: "Teclado", PriceCents: 15000, Stock: 10}}
	router := setupCatalogRouter(uc)

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/products/product-1", nil)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "product-1")
	assert.Contains(t, w.Body.String(), `"stock":10`)
}

func TestGetProductHandler_NotFound(t *testing.T) {
	// Arrange
	uc := &stubUseCase{err: ErrProductNotFound}
	router := setupCatalogRouter(uc)

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/products/ghost", nil)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProductHandler_Failure(t *testing.T) {
	// Arrange
	uc := &stubUseCase{err: errors.New("connection refused")}
	router := setupCatalogRouter(uc)

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/products/product-1", nil)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
