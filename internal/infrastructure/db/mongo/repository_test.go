package mongo

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stockroom/inventory-api/internal/core/domain"
	"github.com/stockroom/inventory-api/internal/core/ports"
)

// testDatabase connects to MONGO_TEST_URI and returns a throwaway database
// that is dropped when the test ends.
func testDatabase(t *testing.T) (*mongo.Client, *mongo.Database) {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	name := fmt.Sprintf("inventory_test_%d", time.Now().UnixNano())
	client, db, err := Connect(ctx, Config{URI: uri, Database: name})
	require.NoError(t, err)
	require.NoError(t, EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return client, db
}

func TestUserRepository_UniqueAndTouch(t *testing.T) {
	_, db := testDatabase(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	u, err := repo.Create(ctx, &domain.User{
		Username: "alice", Email: "alice@example.com", PasswordHash: "h",
		Role: domain.RoleUser, IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	_, err = repo.Create(ctx, &domain.User{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)
	_, err = repo.Create(ctx, &domain.User{Username: "other", Email: "alice@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)

	found, err := repo.FindByUsernameOrEmail(ctx, "nobody", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Nil(t, found.LastLogin)

	at := now.Add(time.Minute)
	require.NoError(t, repo.TouchLogin(ctx, u.ID, at))
	found, err = repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, found.LastLogin)
	assert.True(t, found.LastLogin.Equal(at))

	_, err = repo.FindByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestProductRepository_ConcurrentIncrements(t *testing.T) {
	_, db := testDatabase(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p, err := repo.Create(ctx, &domain.Product{Name: "bolt", Category: "hardware", Price: 0.1, Stock: 10})
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.IncrementStock(ctx, p.ID, 1))
		}()
	}
	wg.Wait()

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10+n), got.Stock)

	assert.ErrorIs(t, repo.IncrementStock(ctx, "64b7f0c2a1b2c3d4e5f60718", 1), domain.ErrProductNotFound)
}

func TestTransactionRepository_UpdateReturnsPrevious(t *testing.T) {
	_, db := testDatabase(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	productID := "64b7f0c2a1b2c3d4e5f60718"

	created, err := repo.Create(ctx, &domain.Transaction{
		ProductID: productID, Type: domain.TransactionIn, Quantity: 5, Date: time.Now().UTC(),
	})
	require.NoError(t, err)

	qty := int64(9)
	previous, err := repo.Update(ctx, created.ID, ports.TransactionPatch{Quantity: &qty, UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, int64(5), previous.Quantity)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), deleted.Quantity)
	assert.Equal(t, productID, deleted.ProductID)

	restored, err := repo.Create(ctx, deleted)
	require.NoError(t, err)
	assert.Equal(t, created.ID, restored.ID)
}

func TestUnitOfWork_Direct(t *testing.T) {
	client, _ := testDatabase(t)
	uow := NewUnitOfWork(client, false)

	called := false
	err := uow.Atomic(context.Background(), func(context.Context) error {
		called = true
		return domain.ErrProductNotFound
	})
	assert.True(t, called)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

// Multi-document transactions need a replica set, so this runs only when
// MONGO_TEST_REPLICA_SET is set alongside MONGO_TEST_URI.
func TestUnitOfWork_Transactional(t *testing.T) {
	if os.Getenv("MONGO_TEST_REPLICA_SET") == "" {
		t.Skip("MONGO_TEST_REPLICA_SET not set")
	}
	client, db := testDatabase(t)
	uow := NewUnitOfWork(client, true)
	txs := NewTransactionRepository(db)
	products := NewProductRepository(db)
	ctx := context.Background()

	p, err := products.Create(ctx, &domain.Product{Name: "nut", Category: "hardware", Price: 0.05, Stock: 10})
	require.NoError(t, err)

	record := func(productID string, qty int64) error {
		return uow.Atomic(ctx, func(ctx context.Context) error {
			now := time.Now().UTC()
			if _, err := txs.Create(ctx, &domain.Transaction{
				ProductID: productID, Type: domain.TransactionIn, Quantity: qty,
				Date: now, CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return err
			}
			return products.IncrementStock(ctx, productID, qty)
		})
	}

	require.NoError(t, record(p.ID, 5))

	err = record("64b7f0c2a1b2c3d4e5f60718", 3)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	list, err := txs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1, "failed increment must roll back its insert")
	assert.Equal(t, p.ID, list[0].ProductID)

	got, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), got.Stock)
}
