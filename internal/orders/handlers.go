package orders

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/order-fulfillment-api/internal/identity"
)

// UseCase define a interface consumida pelos handlers de pedidos
type UseCase interface {
	ListOrders(ctx context.Context, userID string) ([]Order, error)
	GetOrderDetail(ctx context.Context, userID, orderID string) (*OrderDetail, error)
}

// Handler contém os handlers HTTP de consulta de pedidos
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

// ListOrders é o endpoint autenticado de listagem de pedidos do usuário
func (h *Handler) ListOrders(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_orders")
	defer span.End()

	userID := c.GetString(identity.CtxUserID)
	span.SetAttributes(attribute.String("user_id", userID))

	orders, err := h.useCase.ListOrders(ctx, userID)
	if err != nil {
		log.Printf("❌ [ORDERS] Failed to list orders for UserID=%s: %v", userID, err)
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	span.SetAttributes(attribute.Int("orders", len(orders)))

	c.JSON(http.StatusOK, orders)
}

// GetOrder é o endpoint autenticado de detalhe de pedido
func (h *Handler) GetOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_order")
	defer span.End()

	userID := c.GetString(identity.CtxUserID)
	orderID := c.Param("id")
	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("order_id", orderID),
	)

	detail, err := h.useCase.GetOrderDetail(ctx, userID, orderID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Printf("❌ [ORDERS] Failed to get order %s for UserID=%s: %v", orderID, userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get order"})
		return
	}

	c.JSON(http.StatusOK, detail)
}
