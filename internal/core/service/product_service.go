package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-api/internal/core/domain"
	"github.com/stockroom/inventory-api/internal/core/ports"
)

type ProductService struct {
	repo ports.ProductRepository
	log  zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, log zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, log: log}
}

// Create stores a new product with its opening stock. Later stock changes
// go through inventory transactions.
func (s *ProductService) Create(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if name == "" || category == "" || in.Price == nil || in.Stock == nil {
		return nil, domain.NewValidationError("all required fields (name, category, price, stock) must be provided")
	}
	if *in.Price < 0 {
		return nil, domain.NewValidationError("price cannot be negative")
	}
	if *in.Stock < 0 {
		return nil, domain.NewValidationError("stock cannot be negative")
	}

	now := time.Now().UTC()
	p, err := s.repo.Create(ctx, &domain.Product{
		Name:        name,
		Description: in.Description,
		Category:    category,
		Price:       *in.Price,
		Stock:       *in.Stock,
		Supplier:    in.Supplier,
		SKU:         in.SKU,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("product_id", p.ID).Int64("stock", p.Stock).Msg("product created")
	return p, nil
}

func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) Update(ctx context.Context, id string, patch ports.ProductPatch) (*domain.Product, error) {
	if patch.Empty() {
		return nil, domain.NewValidationError("at least one field must be provided to update")
	}
	if patch.Stock != nil {
		return nil, domain.NewValidationError("stock is adjusted through inventory transactions")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, domain.NewValidationError("name cannot be empty")
	}
	if patch.Category != nil && strings.TrimSpace(*patch.Category) == "" {
		return nil, domain.NewValidationError("category cannot be empty")
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, domain.NewValidationError("price cannot be negative")
	}
	patch.UpdatedAt = time.Now().UTC()

	return s.repo.Update(ctx, id, patch)
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("product_id", id).Msg("product deleted")
	return nil
}
