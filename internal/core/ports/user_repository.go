package ports

import (
	"context"
	"time"

	"github.com/stockroom/inventory-api/internal/core/domain"
)

// UserPatch lists the user fields to overwrite. Nil fields are left as is.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	Role         *domain.Role
	IsActive     *bool
	UpdatedAt    time.Time
}

// UserRepository is the credential store.
type UserRepository interface {
	// Create persists a new user and returns it with its assigned ID.
	// A uniqueness violation on username or email yields domain.ErrDuplicateAccount.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByUsernameOrEmail returns the first user matching either value.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	// TouchLogin stamps lastLogin and updatedAt with at.
	TouchLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
