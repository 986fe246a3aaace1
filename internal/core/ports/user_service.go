package ports

import (
	"context"

	"github.com/stockroom/inventory-api/internal/core/domain"
)

// CreateUserInput is the administrative account creation form.
// An empty Role defaults to domain.RoleUser.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// UpdateUserInput carries a partial user update. A non-nil Password is
// re-hashed before it is stored.
type UpdateUserInput struct {
	Username  *string
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Role      *domain.Role
	IsActive  *bool
}

type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
