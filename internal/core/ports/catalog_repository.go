package ports

import (
	"context"
	"time"

	"github.com/stockroom/inventory-api/internal/core/domain"
)

// ProductPatch lists the product fields to overwrite. Nil fields are left as is.
type ProductPatch struct {
	Name        *string
	Description *string
	Category    *string
	Price       *float64
	Stock       *int64
	Supplier    *string
	SKU         *string
	UpdatedAt   time.Time
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil && p.Price == nil &&
		p.Stock == nil && p.Supplier == nil && p.SKU == nil
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// FindMany returns the products among ids that exist, keyed by ID.
	FindMany(ctx context.Context, ids []string) (map[string]*domain.Product, error)
	// List returns all products, newest first.
	List(ctx context.Context) ([]*domain.Product, error)
	Update(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	// IncrementStock adds delta to the product's stock in a single atomic
	// store operation. Returns domain.ErrProductNotFound when no product matches.
	IncrementStock(ctx context.Context, id string, delta int64) error
}

// CategoryPatch lists the category fields to overwrite.
type CategoryPatch struct {
	Name        *string
	Description *string
	UpdatedAt   time.Time
}

type CategoryRepository interface {
	// Create returns domain.ErrCategoryExists when the name is taken.
	Create(ctx context.Context, c *domain.Category) (*domain.Category, error)
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Update(ctx context.Context, id string, patch CategoryPatch) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

// SupplierPatch lists the supplier fields to overwrite.
type SupplierPatch struct {
	Name      *string
	Email     *string
	Phone     *string
	Address   *string
	UpdatedAt time.Time
}

type SupplierRepository interface {
	Create(ctx context.Context, s *domain.Supplier) (*domain.Supplier, error)
	FindByID(ctx context.Context, id string) (*domain.Supplier, error)
	List(ctx context.Context) ([]*domain.Supplier, error)
	Update(ctx context.Context, id string, patch SupplierPatch) (*domain.Supplier, error)
	Delete(ctx context.Context, id string) error
}
