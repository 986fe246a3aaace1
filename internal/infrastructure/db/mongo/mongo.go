package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stockroom/inventory-api/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers        = "users"
	collectionProducts     = "products"
	collectionCategories   = "categories"
	collectionSuppliers    = "suppliers"
	collectionTransactions = "transactions"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the unique and listing indexes of every collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	byCreated := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}

	indexes := map[string][]mongo.IndexModel{
		collectionUsers:      {unique("username"), unique("email"), byCreated},
		collectionProducts:   {byCreated, {Keys: bson.D{{Key: "sku", Value: 1}}}},
		collectionCategories: {unique("name"), byCreated},
		collectionSuppliers:  {byCreated},
		collectionTransactions: {
			byCreated,
			{Keys: bson.D{{Key: "productId", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

// objectID parses a hex id. Ids that cannot name a document resolve to
// notFound so callers see the same error as for a well-formed unknown id.
func objectID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}

// storeFault tags a driver error so it maps to a 500 while keeping the cause.
func storeFault(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreFault, err)
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
}

// setString adds field to set when v is non-nil.
func setString(set bson.M, field string, v *string) {
	if v != nil {
		set[field] = *v
	}
}
