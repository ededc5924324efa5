package identity

import (
	"time"

	"github.com/google/uuid"
)

// User representa um usuário registrado no sistema. O hash da senha nunca
// é serializado em respostas HTTP.
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// NewUser cria uma nova instância de User com o hash da senha já calculado
func NewUser(name, email, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
}
