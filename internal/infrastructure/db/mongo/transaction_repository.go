package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stockroom/inventory-api/internal/core/domain"
	"github.com/stockroom/inventory-api/internal/core/ports"
)

// TransactionRepository stores stock movements. productId is kept as an
// ObjectID reference to the products collection.
type TransactionRepository struct {
	coll *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{coll: db.Collection(collectionTransactions)}
}

type transactionDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ProductID primitive.ObjectID `bson:"productId"`
	Type      string             `bson:"type"`
	Quantity  int64              `bson:"quantity"`
	Date      time.Time          `bson:"date"`
	Notes     string             `bson:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *transactionDocument) toDomain() *domain.Transaction {
	return &domain.Transaction{
		ID:        d.ID.Hex(),
		ProductID: d.ProductID.Hex(),
		Type:      domain.TransactionType(d.Type),
		Quantity:  d.Quantity,
		Date:      d.Date,
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// Create inserts t. A transaction that already carries an ID (a restored
// one) keeps it and is upserted, so restoring twice is harmless.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	productID, err := objectID(t.ProductID, domain.ErrProductNotFound)
	if err != nil {
		return nil, err
	}

	id := primitive.NewObjectID()
	restore := t.ID != ""
	if restore {
		if id, err = objectID(t.ID, domain.ErrTransactionNotFound); err != nil {
			return nil, err
		}
	}

	doc := transactionDocument{
		ID:        id,
		ProductID: productID,
		Type:      string(t.Type),
		Quantity:  t.Quantity,
		Date:      t.Date,
		Notes:     t.Notes,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if restore {
		_, err = r.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	} else {
		_, err = r.coll.InsertOne(ctx, doc)
	}
	if err != nil {
		return nil, storeFault("insert transaction", err)
	}
	return doc.toDomain(), nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	oid, err := objectID(id, domain.ErrTransactionNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc transactionDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, storeFault("find transaction", err)
	}
	return doc.toDomain(), nil
}

func (r *TransactionRepository) List(ctx context.Context) ([]*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		return nil, storeFault("list transactions", err)
	}
	var docs []transactionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeFault("decode transactions", err)
	}

	out := make([]*domain.Transaction, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

// Update returns the transaction as it was before patch, read and written in
// one server-side step.
func (r *TransactionRepository) Update(ctx context.Context, id string, patch ports.TransactionPatch) (*domain.Transaction, error) {
	oid, err := objectID(id, domain.ErrTransactionNotFound)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": patch.UpdatedAt}
	if patch.Type != nil {
		set["type"] = string(*patch.Type)
	}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}
	if patch.Date != nil {
		set["date"] = patch.Date.UTC()
	}
	setString(set, "notes", patch.Notes)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc transactionDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, storeFault("update transaction", err)
	}
	return doc.toDomain(), nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) (*domain.Transaction, error) {
	oid, err := objectID(id, domain.ErrTransactionNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc transactionDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, storeFault("delete transaction", err)
	}
	return doc.toDomain(), nil
}
