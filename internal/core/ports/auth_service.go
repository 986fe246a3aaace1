package ports

import (
	"context"
	"time"

	"github.com/stockroom/inventory-api/internal/core/domain"
)

// RegisterInput carries the self-service registration form.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// TokenVerifier resolves a bearer token into the claims it carries.
type TokenVerifier interface {
	Verify(token string) (domain.Claims, error)
}
