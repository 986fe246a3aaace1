package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-api/internal/core/domain"
	"github.com/stockroom/inventory-api/internal/core/ports"
)

// cleanupTimeout bounds compensation and idempotency bookkeeping, which run
// even after the request context is cancelled.
const cleanupTimeout = 5 * time.Second

// detached returns a context that keeps ctx's values but not its
// cancellation, so cleanup still reaches the store after a client
// disconnect or deadline.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}

// TransactionService records stock movements and keeps product stock in
// step with them.
//
// Each write pairs a transaction change with an atomic stock increment
// inside a UnitOfWork. When the store cannot run them as one transaction
// and the increment fails, the transaction change is undone explicitly.
type TransactionService struct {
	transactions ports.TransactionRepository
	products     ports.ProductRepository
	uow          ports.UnitOfWork
	idempotency  ports.IdempotencyStore // optional
	log          zerolog.Logger
}

func NewTransactionService(
	transactions ports.TransactionRepository,
	products ports.ProductRepository,
	uow ports.UnitOfWork,
	idempotency ports.IdempotencyStore,
	log zerolog.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		products:     products,
		uow:          uow,
		idempotency:  idempotency,
		log:          log,
	}
}

// Record persists a transaction and moves the product's stock by its delta.
// With an idempotency key, a repeated request returns the first result
// without moving stock again.
func (s *TransactionService) Record(ctx context.Context, in ports.RecordTransactionInput) (*ports.RecordTransactionResult, error) {
	tx, err := newTransaction(in)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	claimed := false
	if key != "" && s.idempotency != nil {
		ok, err := s.idempotency.Claim(ctx, key)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency store unavailable, recording without key")
		case ok:
			claimed = true
		default:
			return s.replay(ctx, key)
		}
	}

	created, err := s.create(ctx, tx)
	if err != nil {
		if claimed {
			s.releaseKey(ctx, key)
		}
		return nil, err
	}

	if claimed {
		s.completeKey(ctx, key, created.ID)
	}

	s.log.Info().
		Str("transaction_id", created.ID).
		Str("product_id", created.ProductID).
		Str("type", string(created.Type)).
		Int64("delta", created.StockDelta()).
		Msg("transaction recorded")

	return &ports.RecordTransactionResult{Transaction: created}, nil
}

func (s *TransactionService) create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	var created *domain.Transaction
	err := s.uow.Atomic(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.transactions.Create(ctx, tx)
		if err != nil {
			return err
		}
		return s.products.IncrementStock(ctx, tx.ProductID, tx.StockDelta())
	})
	if err != nil {
		if created != nil {
			s.undoCreate(ctx, created.ID)
		}
		return nil, fmt.Errorf("record transaction: %w", err)
	}
	return created, nil
}

func (s *TransactionService) releaseKey(ctx context.Context, key string) {
	ctx, cancel := detached(ctx)
	defer cancel()
	if err := s.idempotency.Release(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
	}
}

func (s *TransactionService) completeKey(ctx context.Context, key, id string) {
	ctx, cancel := detached(ctx)
	defer cancel()
	if err := s.idempotency.Complete(ctx, key, id); err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to complete idempotency key")
	}
}

func (s *TransactionService) replay(ctx context.Context, key string) (*ports.RecordTransactionResult, error) {
	id, err := s.idempotency.Result(ctx, key)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.ErrDuplicateRequest
	}

	tx, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("idempotency_key", key).Str("transaction_id", id).Msg("idempotent replay")
	return &ports.RecordTransactionResult{Transaction: tx, Replayed: true}, nil
}

// List returns all transactions, newest first, with their products resolved.
func (s *TransactionService) List(ctx context.Context) ([]ports.TransactionDetail, error) {
	txs, err := s.transactions.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(txs))
	seen := make(map[string]struct{}, len(txs))
	for _, t := range txs {
		if _, ok := seen[t.ProductID]; ok {
			continue
		}
		seen[t.ProductID] = struct{}{}
		ids = append(ids, t.ProductID)
	}

	products, err := s.products.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ports.TransactionDetail, len(txs))
	for i, t := range txs {
		out[i] = ports.TransactionDetail{Transaction: t, Product: products[t.ProductID]}
	}
	return out, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (*ports.TransactionDetail, error) {
	tx, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, tx.ProductID)
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
		return nil, err
	}
	return &ports.TransactionDetail{Transaction: tx, Product: product}, nil
}

// Update changes a transaction and moves the product's stock by the
// difference between the new and the old delta.
func (s *TransactionService) Update(ctx context.Context, id string, patch ports.TransactionPatch) (*domain.Transaction, error) {
	if patch.Empty() {
		return nil, domain.NewValidationError("at least one field must be provided to update")
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return nil, domain.NewValidationError("type must be one of: in out")
	}
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity must be greater than 0")
	}
	if patch.Date != nil && patch.Date.IsZero() {
		return nil, domain.NewValidationError("date cannot be empty")
	}
	patch.UpdatedAt = time.Now().UTC()

	var previous *domain.Transaction
	err := s.uow.Atomic(ctx, func(ctx context.Context) error {
		var err error
		previous, err = s.transactions.Update(ctx, id, patch)
		if err != nil {
			return err
		}
		updated := patch.Apply(*previous)
		if diff := updated.StockDelta() - previous.StockDelta(); diff != 0 {
			return s.products.IncrementStock(ctx, previous.ProductID, diff)
		}
		return nil
	})
	if err != nil {
		if previous != nil {
			s.undoUpdate(ctx, previous)
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	updated := patch.Apply(*previous)
	s.log.Info().Str("transaction_id", id).Int64("delta", updated.StockDelta()).Msg("transaction updated")
	return &updated, nil
}

// Delete removes a transaction and reverses its stock effect. A product that
// no longer exists has nothing to reverse.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	var deleted *domain.Transaction
	err := s.uow.Atomic(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = s.transactions.Delete(ctx, id)
		if err != nil {
			return err
		}
		err = s.products.IncrementStock(ctx, deleted.ProductID, -deleted.StockDelta())
		if errors.Is(err, domain.ErrProductNotFound) {
			s.log.Warn().Str("transaction_id", id).Str("product_id", deleted.ProductID).Msg("product gone, no stock to reverse")
			return nil
		}
		return err
	})
	if err != nil {
		if deleted != nil {
			s.undoDelete(ctx, deleted)
		}
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.log.Info().Str("transaction_id", id).Int64("reversed", -deleted.StockDelta()).Msg("transaction deleted")
	return nil
}

// undoCreate removes a transaction whose stock increment failed. After a
// rolled-back store transaction there is nothing left to remove.
func (s *TransactionService) undoCreate(ctx context.Context, id string) {
	ctx, cancel := detached(ctx)
	defer cancel()

	_, err := s.transactions.Delete(ctx, id)
	switch {
	case err == nil:
		s.log.Warn().Str("transaction_id", id).Msg("stock increment failed, transaction removed")
	case !errors.Is(err, domain.ErrTransactionNotFound):
		s.log.Error().Err(err).Str("transaction_id", id).Msg("compensation failed: transaction persisted without stock movement")
	}
}

// undoUpdate restores the fields a failed update overwrote.
func (s *TransactionService) undoUpdate(ctx context.Context, previous *domain.Transaction) {
	ctx, cancel := detached(ctx)
	defer cancel()

	restore := ports.TransactionPatch{
		Type:      &previous.Type,
		Quantity:  &previous.Quantity,
		Date:      &previous.Date,
		Notes:     &previous.Notes,
		UpdatedAt: previous.UpdatedAt,
	}
	if _, err := s.transactions.Update(ctx, previous.ID, restore); err != nil {
		s.log.Error().Err(err).Str("transaction_id", previous.ID).Msg("compensation failed: transaction updated without stock movement")
	}
}

// undoDelete re-inserts a transaction whose stock reversal failed, unless a
// rolled-back store transaction already kept it.
func (s *TransactionService) undoDelete(ctx context.Context, deleted *domain.Transaction) {
	ctx, cancel := detached(ctx)
	defer cancel()

	if _, err := s.transactions.FindByID(ctx, deleted.ID); err == nil {
		return
	}
	if _, err := s.transactions.Create(ctx, deleted); err != nil {
		s.log.Error().Err(err).Str("transaction_id", deleted.ID).Msg("compensation failed: transaction deleted without stock reversal")
		return
	}
	s.log.Warn().Str("transaction_id", deleted.ID).Msg("stock reversal failed, transaction restored")
}

func newTransaction(in ports.RecordTransactionInput) (*domain.Transaction, error) {
	productID := strings.TrimSpace(in.ProductID)
	typ := domain.TransactionType(strings.TrimSpace(in.Type))
	if productID == "" || typ == "" || in.Quantity == 0 || in.Date.IsZero() {
		return nil, domain.NewValidationError("all required fields (productId, type, quantity, date) must be provided")
	}
	if !typ.Valid() {
		return nil, domain.NewValidationError("type must be one of: in out")
	}
	if in.Quantity < 0 {
		return nil, domain.NewValidationError("quantity must be greater than 0")
	}

	now := time.Now().UTC()
	return &domain.Transaction{
		ProductID: productID,
		Type:      typ,
		Quantity:  in.Quantity,
		Date:      in.Date.UTC(),
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
