package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-api/internal/core/domain"
	"github.com/stockroom/inventory-api/internal/core/ports"
)

// Hasher abstracts the password hashing algorithm.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenIssuer abstracts bearer token creation.
type TokenIssuer interface {
	Issue(c domain.Claims) (string, time.Time, error)
}

// AccountService implements registration and login.
type AccountService struct {
	users  ports.UserRepository
	hasher Hasher
	tokens TokenIssuer
	log    zerolog.Logger
	// adminEmail is the bootstrap administrator set by BootstrapAdmin.
	adminEmail string
}

func NewAccountService(users ports.UserRepository, hasher Hasher, tokens TokenIssuer, log zerolog.Logger) *AccountService {
	return &AccountService{users: users, hasher: hasher, tokens: tokens, log: log}
}

// BootstrapAdmin makes the account with email an administrator. An existing
// account is promoted now; otherwise the account registering with that email
// later gets the admin role.
func (s *AccountService) BootstrapAdmin(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.NewValidationError("admin email cannot be empty")
	}
	s.adminEmail = email

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.log.Info().Str("email", email).Msg("admin account not registered yet, it will be promoted on registration")
		return nil
	}
	if err != nil {
		return err
	}
	if user.Role == domain.RoleAdmin {
		return nil
	}

	role := domain.RoleAdmin
	if _, err := s.users.Update(ctx, user.ID, ports.UserPatch{Role: &role, UpdatedAt: time.Now().UTC()}); err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.ID).Msg("account promoted to admin")
	return nil
}

// Register creates a regular, active account. Nothing is written when the
// username or email is already taken.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	role := domain.RoleUser
	if s.adminEmail != "" && domain.NormalizeEmail(in.Email) == s.adminEmail {
		role = domain.RoleAdmin
	}

	user, err := newAccount(ctx, s.users, s.hasher, accountFields{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      role,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

// Login authenticates by email and password and issues a token. Unknown
// email and wrong password fail identically.
func (s *AccountService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	user.UpdatedAt = now

	token, exp, err := s.tokens.Issue(domain.Claims{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// Me returns the account behind an authenticated request.
func (s *AccountService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

type accountFields struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// newAccount validates f, rejects taken usernames or emails, hashes the
// password and persists the user. Shared by self-registration and admin
// creation.
func newAccount(ctx context.Context, users ports.UserRepository, hasher Hasher, f accountFields) (*domain.User, error) {
	username := strings.TrimSpace(f.Username)
	email := domain.NormalizeEmail(f.Email)
	if username == "" || email == "" || f.Password == "" {
		return nil, domain.NewValidationError("username, email and password are required")
	}
	if f.Role == "" {
		f.Role = domain.RoleUser
	}
	if !f.Role.Valid() {
		return nil, domain.NewValidationError("role must be one of: user admin")
	}

	existing, err := users.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrDuplicateAccount
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hash, err := hasher.Hash(f.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(f.FirstName),
		LastName:     strings.TrimSpace(f.LastName),
		Role:         f.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
