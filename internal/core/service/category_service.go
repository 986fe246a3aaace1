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

type CategoryService struct {
	repo ports.CategoryRepository
	log  zerolog.Logger
}

func NewCategoryService(repo ports.CategoryRepository, log zerolog.Logger) *CategoryService {
	return &CategoryService{repo: repo, log: log}
}

func (s *CategoryService) Create(ctx context.Context, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("category name is required")
	}

	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrCategoryExists
	case err != nil && !errors.Is(err, domain.ErrCategoryNotFound):
		return nil, err
	}

	now := time.Now().UTC()
	c, err := s.repo.Create(ctx, &domain.Category{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("category_id", c.ID).Str("name", c.Name).Msg("category created")
	return c, nil
}

func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CategoryService) Update(ctx context.Context, id string, patch ports.CategoryPatch) (*domain.Category, error) {
	if patch.Name == nil && patch.Description == nil {
		return nil, domain.NewValidationError("at least one field must be provided to update")
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.NewValidationError("category name cannot be empty")
		}
		patch.Name = &name
	}
	patch.UpdatedAt = time.Now().UTC()

	return s.repo.Update(ctx, id, patch)
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
