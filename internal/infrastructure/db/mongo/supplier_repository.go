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

type SupplierRepository struct {
	coll *mongo.Collection
}

func NewSupplierRepository(db *mongo.Database) *SupplierRepository {
	return &SupplierRepository{coll: db.Collection(collectionSuppliers)}
}

type supplierDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Phone     string             `bson:"phone,omitempty"`
	Address   string             `bson:"address,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *supplierDocument) toDomain() *domain.Supplier {
	return &domain.Supplier{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Address:   d.Address,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *SupplierRepository) Create(ctx context.Context, s *domain.Supplier) (*domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := supplierDocument{
		ID:        primitive.NewObjectID(),
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, storeFault("insert supplier", err)
	}
	return doc.toDomain(), nil
}

func (r *SupplierRepository) FindByID(ctx context.Context, id string) (*domain.Supplier, error) {
	oid, err := objectID(id, domain.ErrSupplierNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc supplierDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSupplierNotFound
		}
		return nil, storeFault("find supplier", err)
	}
	return doc.toDomain(), nil
}

func (r *SupplierRepository) List(ctx context.Context) ([]*domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		return nil, storeFault("list suppliers", err)
	}
	var docs []supplierDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeFault("decode suppliers", err)
	}

	out := make([]*domain.Supplier, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *SupplierRepository) Update(ctx context.Context, id string, patch ports.SupplierPatch) (*domain.Supplier, error) {
	oid, err := objectID(id, domain.ErrSupplierNotFound)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": patch.UpdatedAt}
	setString(set, "name", patch.Name)
	setString(set, "email", patch.Email)
	setString(set, "phone", patch.Phone)
	setString(set, "address", patch.Address)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc supplierDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSupplierNotFound
		}
		return nil, storeFault("update supplier", err)
	}
	return doc.toDomain(), nil
}

func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrSupplierNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storeFault("delete supplier", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSupplierNotFound
	}
	return nil
}
