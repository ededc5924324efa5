package identity

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SignupRequest representa a requisição de cadastro
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest representa a requisição de login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UseCase define a interface consumida pelos handlers de identidade
type UseCase interface {
	SignUp(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
}

// Handler contém os handlers HTTP de identidade
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

// Signup é o endpoint de criação de conta
func (h *Handler) Signup(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "signup")
	defer span.End()

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := h.useCase.SignUp(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	span.SetAttributes(attribute.String("user_id", userID))

	c.JSON(http.StatusCreated, gin.H{"user_id": userID})
}

// Login é o endpoint de autenticação; retorna a credencial portadora e os
// dados públicos do usuário
func (h *Handler) Login(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "login")
	defer span.End()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.useCase.Login(ctx, req.Email, req.Password)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrInvalidLogin) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate"})
		return
	}

	span.SetAttributes(attribute.String("user_id", user.ID))

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}
