package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-api/internal/core/domain"
	"github.com/stockroom/inventory-api/internal/core/ports"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
}

// httpStatus returns the status an *echo.HTTPError carries, or 0.
func httpStatus(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}

type stubAccountService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	meFn       func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAccountService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.meFn(ctx, userID)
}

type stubVerifier struct {
	claims domain.Claims
}

func (v stubVerifier) Verify(token string) (domain.Claims, error) {
	if token != "good" {
		return domain.Claims{}, domain.ErrUnauthorized
	}
	return v.claims, nil
}

type stubTransactionService struct {
	recordFn func(ctx context.Context, in ports.RecordTransactionInput) (*ports.RecordTransactionResult, error)
	listFn   func(ctx context.Context) ([]ports.TransactionDetail, error)
	getFn    func(ctx context.Context, id string) (*ports.TransactionDetail, error)
	updateFn func(ctx context.Context, id string, patch ports.TransactionPatch) (*domain.Transaction, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubTransactionService) Record(ctx context.Context, in ports.RecordTransactionInput) (*ports.RecordTransactionResult, error) {
	return s.recordFn(ctx, in)
}

func (s *stubTransactionService) List(ctx context.Context) ([]ports.TransactionDetail, error) {
	return s.listFn(ctx)
}

func (s *stubTransactionService) Get(ctx context.Context, id string) (*ports.TransactionDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubTransactionService) Update(ctx context.Context, id string, patch ports.TransactionPatch) (*domain.Transaction, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *stubTransactionService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
