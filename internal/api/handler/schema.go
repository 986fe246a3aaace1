package handler

import (
	"strings"
	"time"

	"github.com/stockroom/inventory-api/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- auth / users ---

type registerRequest struct {
	Username  string `json:"username"  validate:"omitempty,max=64"`
	Email     string `json:"email"     validate:"omitempty,email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Message string            `json:"message,omitempty"`
	User    domain.PublicUser `json:"user"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      domain.PublicUser `json:"user"`
}

type createUserRequest struct {
	Username  string `json:"username"  validate:"omitempty,max=64"`
	Email     string `json:"email"     validate:"omitempty,email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"      validate:"omitempty,oneof=user admin"`
}

type updateUserRequest struct {
	Username  *string `json:"username"  validate:"omitempty,max=64"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Password  *string `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Role      *string `json:"role"      validate:"omitempty,oneof=user admin"`
	IsActive  *bool   `json:"isActive"`
}

// --- catalog ---

type createProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Stock       *int64   `json:"stock" validate:"omitempty,gte=0"`
	Supplier    string   `json:"supplier"`
	SKU         string   `json:"sku"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Stock       *int64   `json:"stock"`
	Supplier    *string  `json:"supplier"`
	SKU         *string  `json:"sku"`
}

type productResponse struct {
	Message string          `json:"message"`
	Product *domain.Product `json:"product"`
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type categoryResponse struct {
	Message  string           `json:"message"`
	Category *domain.Category `json:"category"`
}

type createSupplierRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"   validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type updateSupplierRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type supplierResponse struct {
	Message  string           `json:"message"`
	Supplier *domain.Supplier `json:"supplier"`
}

// --- transactions ---

type createTransactionRequest struct {
	ProductID string `json:"productId"`
	Type      string `json:"type"     validate:"omitempty,oneof=in out"`
	Quantity  int64  `json:"quantity"`
	// Date accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
	Date  string `json:"date"`
	Notes string `json:"notes"`
}

type updateTransactionRequest struct {
	Type     *string `json:"type"     validate:"omitempty,oneof=in out"`
	Quantity *int64  `json:"quantity"`
	Date     *string `json:"date"`
	Notes    *string `json:"notes"`
}

// transactionView is a transaction with its product resolved. Product is
// omitted when the product no longer exists.
type transactionView struct {
	*domain.Transaction
	Product *domain.Product `json:"product,omitempty"`
}

type transactionResponse struct {
	Message     string              `json:"message"`
	Transaction *domain.Transaction `json:"transaction"`
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseDate returns the zero time for an empty string.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewValidationError("date must be an RFC 3339 timestamp or YYYY-MM-DD")
}
