package identity

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidLogin = errors.New("invalid email or password")
)

// UserUseCase contém a lógica de negócio de cadastro e autenticação
type UserUseCase struct {
	repository Repository
	issuer     *TokenIssuer
}

// NewUserUseCase cria uma nova instância de UserUseCase
func NewUserUseCase(repository Repository, issuer *TokenIssuer) *UserUseCase {
	return &UserUseCase{
		repository: repository,
		issuer:     issuer,
	}
}

// SignUp registra um novo usuário. A senha nunca é persistida em claro.
func (uc *UserUseCase) SignUp(ctx context.Context, name, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := NewUser(name, email, string(hash))
	if err := uc.repository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			log.Printf("ℹ️ [SIGNUP] Email already taken: %s", email)
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("✅ [SIGNUP] Success: UserID=%s", user.ID)
	return user.ID, nil
}

// Login autentica por e-mail e senha e emite uma credencial portadora.
// E-mail desconhecido e senha incorreta produzem o mesmo erro, para não
// revelar quais contas existem.
func (uc *UserUseCase) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := uc.repository.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidLogin
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidLogin
	}

	token, err := uc.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	log.Printf("✅ [LOGIN] Success: UserID=%s", user.ID)
	return token, user, nil
}
