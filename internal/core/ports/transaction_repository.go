package ports

import (
	"context"
	"time"

	"github.com/stockroom/inventory-api/internal/core/domain"
)

// TransactionPatch lists the transaction fields to overwrite.
type TransactionPatch struct {
	Type      *domain.TransactionType
	Quantity  *int64
	Date      *time.Time
	Notes     *string
	UpdatedAt time.Time
}

// TransactionRepository persists stock movements. It never touches product
// stock itself; see ProductRepository.IncrementStock.
type TransactionRepository interface {
	// Create persists t. A non-empty t.ID is kept, otherwise one is assigned.
	Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error)
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	// List returns all transactions, newest first.
	List(ctx context.Context) ([]*domain.Transaction, error)
	// Update applies patch atomically and returns the document as it was
	// before the change.
	Update(ctx context.Context, id string, patch TransactionPatch) (*domain.Transaction, error)
	// Delete removes the transaction atomically and returns it.
	Delete(ctx context.Context, id string) (*domain.Transaction, error)
}

// UnitOfWork runs fn so that its store writes commit or abort together when
// the backing store supports multi-document transactions. Otherwise fn runs
// as is and callers compensate on partial failure.
type UnitOfWork interface {
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

// IdempotencyStore remembers which client request keys were already applied.
type IdempotencyStore interface {
	// Claim reserves key for an in-flight request. It returns false when the
	// key is already reserved or completed. A reservation that is neither
	// completed nor released lapses after a short while.
	Claim(ctx context.Context, key string) (bool, error)
	// Result returns the resource ID a completed key produced, or "" while
	// the key is still in flight.
	Result(ctx context.Context, key string) (string, error)
	// Complete records the resource ID produced for key.
	Complete(ctx context.Context, key, resourceID string) error
	// Release forgets key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// Apply returns a copy of t with the patch applied.
func (p TransactionPatch) Apply(t domain.Transaction) domain.Transaction {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Quantity != nil {
		t.Quantity = *p.Quantity
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if !p.UpdatedAt.IsZero() {
		t.UpdatedAt = p.UpdatedAt
	}
	return t
}

// Empty reports whether the patch changes nothing.
func (p TransactionPatch) Empty() bool {
	return p.Type == nil && p.Quantity == nil && p.Date == nil && p.Notes == nil
}
