package checkout

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

// UseCase define a interface consumida pelo handler de checkout
type UseCase interface {
	Checkout(ctx context.Context, userID string, items []CheckoutItem) (*Order, error)
}

// Handler contém os handlers HTTP do checkout
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

// Checkout é o endpoint autenticado que converte a lista de itens em um
// pedido confirmado
func (h *Handler) Checkout(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "checkout")
	defer span.End()

	userID := c.GetString(identity.CtxUserID)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("items", len(req.Items)),
	)

	order, err := h.useCase.Checkout(ctx, userID, req.Items)
	if err != nil {
		log.Printf("ℹ️ [CHECKOUT] FAILED for UserID=%s : %s", userID, err)
		span.RecordError(err)
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.String("order_id", order.ID))

	c.JSON(http.StatusCreated, gin.H{
		"message":     "order placed successfully",
		"order_id":    order.ID,
		"total_cents": order.TotalCents,
	})
}

// statusForError mapeia os erros do checkout para códigos HTTP
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrEmptyItems), errors.Is(err, ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
