package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-api/internal/api/middleware"
	"github.com/stockroom/inventory-api/internal/core/domain"
	"github.com/stockroom/inventory-api/internal/core/ports"
)

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.Email != "Alice@Example.com" || in.FirstName != "Alice" || in.LastName != "Liddell" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{
				ID: "u1", Username: in.Username, Email: "alice@example.com",
				PasswordHash: "$2a$10$secret", Role: domain.RoleUser, IsActive: true,
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newRequest(e, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"Alice@Example.com","password":"pw","firstName":"Alice","lastName":"Liddell"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "$2a$") || strings.Contains(strings.ToLower(rec.Body.String()), "password") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	var resp struct {
		User map[string]any `json:"user"`
	}
	decode(t, rec, &resp)
	if resp.User["username"] != "alice" || resp.User["role"] != "user" || resp.User["isActive"] != true {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
}

func TestAuthHandler_Register_DuplicateAccount(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrDuplicateAccount
		},
	})

	c, _ := newRequest(e, http.MethodPost, "/api/auth/register", `{"username":"bob","email":"b@x.com","password":"pw"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestAuthHandler_Register_BadInput(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	})

	cases := map[string]struct {
		body string
		want int
	}{
		"not json":    {"not-json", http.StatusBadRequest},
		"bad email":   {`{"username":"bob","email":"nope","password":"pw"}`, http.StatusUnprocessableEntity},
		"wrong types": {`{"username":42}`, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newRequest(e, http.MethodPost, "/api/auth/register", tc.body)
			if got := httpStatus(h.Register(c)); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	expires := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	h := NewAuthHandler(&stubAccountService{
		loginFn: func(_ context.Context, email, password string) (*ports.LoginResult, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.LoginResult{
				Token:     "token123",
				ExpiresAt: expires,
				User:      &domain.User{ID: "u1", Username: "alice", Role: domain.RoleAdmin, PasswordHash: "hash"},
			}, nil
		},
	})

	c, rec := newRequest(e, http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"secret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	decode(t, rec, &resp)
	if resp.Token != "token123" || !resp.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected token payload: %+v", resp)
	}
	if resp.User.Username != "alice" || resp.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrAccountDisabled} {
		e := newEcho()
		h := NewAuthHandler(&stubAccountService{
			loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
				return nil, want
			},
		})

		c, rec := newRequest(e, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"bad"}`)
		if err := h.Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
		if rec.Body.Len() != 0 {
			t.Fatalf("no body expected before the error handler runs, got %s", rec.Body.String())
		}
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAccountService{
		meFn: func(_ context.Context, id string) (*domain.User, error) {
			if id != "u1" {
				t.Fatalf("unexpected id %q", id)
			}
			return &domain.User{ID: "u1", Username: "alice", Email: "alice@example.com"}, nil
		},
	})
	protected := middleware.Auth(stubVerifier{claims: domain.Claims{UserID: "u1", Role: domain.RoleUser}})(h.Me)

	c, rec := newRequest(e, http.MethodGet, "/api/auth/me", "")
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer good")
	if err := protected(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp userResponse
	decode(t, rec, &resp)
	if resp.User.ID != "u1" || resp.User.Email != "alice@example.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	c, _ = newRequest(e, http.MethodGet, "/api/auth/me", "")
	if got := httpStatus(h.Me(c)); got != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", got)
	}
}
