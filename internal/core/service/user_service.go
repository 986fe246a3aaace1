package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-api/internal/core/domain"
	"github.com/stockroom/inventory-api/internal/core/ports"
)

// UserService implements administrative account management.
type UserService struct {
	users  ports.UserRepository
	hasher Hasher
	log    zerolog.Logger
}

func NewUserService(users ports.UserRepository, hasher Hasher, log zerolog.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, log: log}
}

func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, domain.NewValidationError("all required fields must be provided")
	}

	user, err := newAccount(ctx, s.users, s.hasher, accountFields{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// Update applies a partial change. Username and email uniqueness is enforced
// by the store.
func (s *UserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	patch := ports.UserPatch{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsActive:  in.IsActive,
		UpdatedAt: time.Now().UTC(),
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, domain.NewValidationError("username cannot be empty")
		}
		patch.Username = &username
	}
	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if email == "" {
			return nil, domain.NewValidationError("email cannot be empty")
		}
		patch.Email = &email
	}
	if in.Role != nil && !in.Role.Valid() {
		return nil, domain.NewValidationError("role must be one of: user admin")
	}
	patch.Role = in.Role

	if in.Password != nil {
		if *in.Password == "" {
			return nil, domain.NewValidationError("password cannot be empty")
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", id).Msg("user updated")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
