package ports

import (
	"context"

	"github.com/stockroom/inventory-api/internal/core/domain"
)

// CreateProductInput carries a new product. Price and Stock are required.
type CreateProductInput struct {
	Name        string
	Description string
	Category    string
	Price       *float64
	Stock       *int64
	Supplier    string
	SKU         string
}

type ProductService interface {
	Create(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CategoryService interface {
	Create(ctx context.Context, name, description string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
	Update(ctx context.Context, id string, patch CategoryPatch) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

// CreateSupplierInput carries a new supplier. Name and Email are required.
type CreateSupplierInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type SupplierService interface {
	Create(ctx context.Context, in CreateSupplierInput) (*domain.Supplier, error)
	List(ctx context.Context) ([]*domain.Supplier, error)
	Get(ctx context.Context, id string) (*domain.Supplier, error)
	Update(ctx context.Context, id string, patch SupplierPatch) (*domain.Supplier, error)
	Delete(ctx context.Context, id string) error
}
