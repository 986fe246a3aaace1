package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// UnitOfWork runs a group of repository calls in a multi-document
// transaction. Transactions need a replica set or sharded cluster; with
// transactional false the calls run one by one and the caller compensates.
type UnitOfWork struct {
	client        *mongo.Client
	transactional bool
}

func NewUnitOfWork(client *mongo.Client, transactional bool) *UnitOfWork {
	return &UnitOfWork{client: client, transactional: transactional}
}

func (u *UnitOfWork) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if !u.transactional {
		return fn(ctx)
	}

	sess, err := u.client.StartSession()
	if err != nil {
		return storeFault("start session", err)
	}
	defer sess.EndSession(ctx)

	// Repositories derive their timeouts from sc, which keeps the session
	// attached, so every call joins the transaction.
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		return fmt.Errorf("mongo transaction: %w", err)
	}
	return nil
}
