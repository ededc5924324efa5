package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository define a interface para operações de banco de dados de usuários
type Repository interface {
	// CreateUser insere um novo usuário
	CreateUser(ctx context.Context, user *User) error

	// GetUserByEmail busca um usuário pelo e-mail
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// PostgresRepository implementa Repository usando PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository cria uma nova instância de PostgresRepository
func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{
		db: db,
	}
}

// uniqueViolation é o código do PostgreSQL para violação de constraint UNIQUE
const uniqueViolation = "23505"

// CreateUser insere um novo usuário; e-mail duplicado vira ErrEmailTaken
func (r *PostgresRepository) CreateUser(ctx context.Context, user *User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail busca um usuário pelo e-mail
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}
