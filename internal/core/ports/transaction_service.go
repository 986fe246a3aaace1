package ports

import (
	"context"
	"time"

	"github.com/stockroom/inventory-api/internal/core/domain"
)

// RecordTransactionInput is the DTO passed from the transport layer to
// TransactionService.Record.
type RecordTransactionInput struct {
	ProductID string
	Type      string
	Quantity  int64
	Date      time.Time
	Notes     string
	// IdempotencyKey is optional. Requests sharing a key move stock once.
	IdempotencyKey string
}

// RecordTransactionResult is returned by Record.
type RecordTransactionResult struct {
	Transaction *domain.Transaction
	// Replayed is true when the idempotency key matched a completed request
	// and no stock was moved by this call.
	Replayed bool
}

// TransactionDetail is a transaction with its product resolved. Product is
// nil when the product no longer exists.
type TransactionDetail struct {
	Transaction *domain.Transaction
	Product     *domain.Product
}

type TransactionService interface {
	Record(ctx context.Context, in RecordTransactionInput) (*RecordTransactionResult, error)
	List(ctx context.Context) ([]TransactionDetail, error)
	Get(ctx context.Context, id string) (*TransactionDetail, error)
	Update(ctx context.Context, id string, patch TransactionPatch) (*domain.Transaction, error)
	Delete(ctx context.Context, id string) error
}
