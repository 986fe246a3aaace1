package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-api/internal/core/domain"
	"github.com/stockroom/inventory-api/internal/core/ports"
)

type SupplierService struct {
	repo ports.SupplierRepository
	log  zerolog.Logger
}

func NewSupplierService(repo ports.SupplierRepository, log zerolog.Logger) *SupplierService {
	return &SupplierService{repo: repo, log: log}
}

func (s *SupplierService) Create(ctx context.Context, in ports.CreateSupplierInput) (*domain.Supplier, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, domain.NewValidationError("name and email are required")
	}

	now := time.Now().UTC()
	sup, err := s.repo.Create(ctx, &domain.Supplier{
		Name:      name,
		Email:     email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("supplier_id", sup.ID).Msg("supplier created")
	return sup, nil
}

func (s *SupplierService) List(ctx context.Context) ([]*domain.Supplier, error) {
	return s.repo.List(ctx)
}

func (s *SupplierService) Get(ctx context.Context, id string) (*domain.Supplier, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *SupplierService) Update(ctx context.Context, id string, patch ports.SupplierPatch) (*domain.Supplier, error) {
	if patch.Name == nil && patch.Email == nil && patch.Phone == nil && patch.Address == nil {
		return nil, domain.NewValidationError("at least one field must be provided to update")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, domain.NewValidationError("name cannot be empty")
	}
	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		if email == "" {
			return nil, domain.NewValidationError("email cannot be empty")
		}
		patch.Email = &email
	}
	patch.UpdatedAt = time.Now().UTC()

	return s.repo.Update(ctx, id, patch)
}

func (s *SupplierService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
