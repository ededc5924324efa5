package catalog

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// UseCase define a interface consumida pelos handlers do catálogo
type UseCase interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
}

// Handler contém os handlers HTTP do catálogo
type Handler struct {
	useCase UseCase
	tracer  trace.Tracer
}

// NewHandler cria uma nova instância de Handler
func NewHandler(useCase UseCase, tracer trace.Tracer) *Handler {
	return &Handler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// ListProducts é o endpoint público de listagem do catálogo
func (h *Handler) ListProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_products")
	defer span.End()

	products, err := h.useCase.ListProducts(ctx)
	if err != nil {
		log.Printf("❌ [CATALOG] Failed to list products: %v", err)
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	span.SetAttributes(attribute.Int("products", len(products)))

	c.JSON(http.StatusOK, products)
}

// GetProduct é o endpoint público de detalhe de produto
func (h *Handler) GetProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_product")
	defer span.End()

	productID := c.Param("id")
	span.SetAttributes(attribute.String("product_id", productID))

	product, err := h.useCase.GetProduct(ctx, productID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Printf("❌ [CATALOG] Failed to get product %s: %v", productID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}
