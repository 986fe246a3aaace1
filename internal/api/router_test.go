package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-api/internal/api/handler"
	"github.com/stockroom/inventory-api/internal/core/domain"
	"github.com/stockroom/inventory-api/internal/core/ports"
	"github.com/stockroom/inventory-api/internal/core/service"
)

type listProducts struct{ ports.ProductService }

func (listProducts) List(context.Context) ([]*domain.Product, error) {
	return []*domain.Product{}, nil
}

type listUsers struct{ ports.UserService }

func (listUsers) List(context.Context) ([]*domain.User, error) {
	return []*domain.User{}, nil
}

func newTestRouter(t *testing.T, ready error) (http.Handler, *service.TokenService) {
	t.Helper()
	tokens, err := service.NewTokenService(service.TokenConfig{Secret: "router-test-secret", TTL: time.Hour})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	e := NewRouter(Deps{
		Products: listProducts{},
		Users:    listUsers{},
		Tokens:   tokens,
		HealthChecks: map[string]handler.Check{
			"mongodb": func(context.Context) error { return ready },
		},
		CORSOrigins: []string{"*"},
		Log:         zerolog.Nop(),
		Registerer:  prometheus.NewRegistry(),
	})
	return e, tokens
}

func issue(t *testing.T, tokens *service.TokenService, role domain.Role) string {
	t.Helper()
	token, _, err := tokens.Issue(domain.Claims{UserID: "u1", Email: "u1@example.com", Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestRouter_Access(t *testing.T) {
	h, tokens := newTestRouter(t, nil)
	user := issue(t, tokens, domain.RoleUser)
	admin := issue(t, tokens, domain.RoleAdmin)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"liveness is public", http.MethodGet, "/health", "", http.StatusOK},
		{"readiness is public", http.MethodGet, "/health/ready", "", http.StatusOK},
		{"products need a token", http.MethodGet, "/api/products", "", http.StatusUnauthorized},
		{"products with a token", http.MethodGet, "/api/products", user, http.StatusOK},
		{"me needs a token", http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized},
		{"users forbidden to plain users", http.MethodGet, "/api/users", user, http.StatusForbidden},
		{"users open to admins", http.MethodGet, "/api/users", admin, http.StatusOK},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_ReadinessDegraded(t *testing.T) {
	h, _ := newTestRouter(t, errors.New("no primary"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRouter_CORSAllowsIdempotencyKey(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/transactions", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", handler.HeaderIdempotencyKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Fatalf("missing Access-Control-Allow-Headers")
	}
}
