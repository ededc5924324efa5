package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCredential = errors.New("invalid credential")

// TokenLifetime é a validade fixa das credenciais emitidas
const TokenLifetime = time.Hour

// Claims é o conteúdo assinado de uma credencial portadora
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer emite e verifica credenciais portadoras (JWT HS256). O segredo
// de assinatura é configuração do processo: carregado uma vez na
// inicialização e nunca alterado depois.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenIssuer cria uma nova instância de TokenIssuer
func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	return &TokenIssuer{
		secret:   []byte(secret),
		lifetime: TokenLifetime,
	}, nil
}

// Issue emite uma credencial para o usuário, válida por TokenLifetime
func (ti *TokenIssuer) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}

	return signed, nil
}

// Verify valida assinatura e expiração e retorna as claims da credencial.
// Qualquer falha vira ErrInvalidCredential; o chamador não distingue
// credencial expirada de adulterada.
func (ti *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ti.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredential
	}
	if claims.UserID == "" {
		return nil, ErrInvalidCredential
	}

	return claims, nil
}
