package identity

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Chaves do contexto gin preenchidas pelo middleware de autenticação
const (
	CtxUserID    = "user_id"
	CtxUserEmail = "user_email"
)

// AuthRequired valida a credencial portadora do header Authorization antes
// de liberar o acesso às rotas protegidas. A verificação é pré-condição da
// operação, nunca parte da transação que ela dispara.
func AuthRequired(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidCredential.Error()})
			return
		}

		claims, err := issuer.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidCredential.Error()})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserEmail, claims.Email)
		c.Next()
	}
}
