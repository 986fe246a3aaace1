package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusUnprocessableEntity, "name is required"), 422, "name is required"},
		{"validation", domain.NewValidationError("quantity must be greater than 0"), 400, "quantity must be greater than 0"},
		{"wrapped validation", fmt.Errorf("update: %w", domain.NewValidationError("bad date")), 400, "bad date"},
		{"duplicate account", domain.ErrDuplicateAccount, 409, "username or email already registered"},
		{"duplicate category", domain.ErrCategoryExists, 409, "category name already exists"},
		{"idempotency in flight", domain.ErrDuplicateRequest, 409, "request with this idempotency key is already in progress"},
		{"bad credentials", domain.ErrInvalidCredentials, 401, "invalid email or password"},
		{"disabled", domain.ErrAccountDisabled, 403, "account is deactivated"},
		{"unauthorized", domain.ErrUnauthorized, 401, "unauthorized"},
		{"forbidden", domain.ErrForbidden, 403, "access forbidden"},
		{"product missing", fmt.Errorf("record transaction: %w", domain.ErrProductNotFound), 404, "product not found"},
		{"transaction missing", domain.ErrTransactionNotFound, 404, "transaction not found"},
		{"store fault", fmt.Errorf("insert: %w", domain.ErrStoreFault), 500, "internal server error"},
		{"unknown", errors.New("boom"), 500, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			e := echo.New()
			h := NewHTTPErrorHandler(zerolog.New(&logs))

			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/products", nil), rec)
			h(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, body.Error)
			}
			if logged := logs.Len() > 0; logged != (tc.code == 500) {
				t.Fatalf("only unexpected errors are logged, got %q", logs.String())
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)
	if rec.Body.String() != "done" {
		t.Fatalf("committed response was rewritten: %q", rec.Body.String())
	}
}
