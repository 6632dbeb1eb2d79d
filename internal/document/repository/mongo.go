package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docschema/docschema/internal/apperr"
	"github.com/docschema/docschema/internal/document"
)

// MongoRepo implements Repository on a MongoDB collection.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

// EnsureIndexes creates the tenant listing index and a templateId index used
// when resolving documents by template.
func EnsureIndexes(ctx context.Context, col *mongo.Collection) error {
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("customer_created"),
		},
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "templateId", Value: 1}},
			Options: options.Index().SetName("customer_template"),
		},
	})
	if err != nil {
		return fmt.Errorf("create indexes on %s: %w", col.Name(), err)
	}
	return nil
}

func ownedFilter(customerID, id string) (bson.M, bool) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, false
	}
	return bson.M{"_id": id, "customerId": customerID}, true
}

func (m *MongoRepo) Create(ctx context.Context, d *document.Document) (*document.Document, error) {
	stored := d.Clone()
	stored.ID = primitive.NewObjectID().Hex()
	stored.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	stored.UpdatedAt = stored.CreatedAt
	if _, err := m.col.InsertOne(ctx, stored); err != nil {
		return nil, apperr.Internal("insert document", err)
	}
	return stored, nil
}

func (m *MongoRepo) GetByID(ctx context.Context, customerID, id string) (*document.Document, error) {
	filter, ok := ownedFilter(customerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	var d document.Document
	if err := m.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, apperr.Internal("find document", err)
	}
	return &d, nil
}

func (m *MongoRepo) List(ctx context.Context, customerID string) ([]*document.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"customerId": customerID}, opts)
	if err != nil {
		return nil, apperr.Internal("list documents", err)
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Internal("decode documents", err)
	}
	return out, nil
}

func patchSet(p document.Patch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.TemplateID != nil {
		set["templateId"] = *p.TemplateID
	}
	if p.ObjectVariables != nil {
		set["objectVariables"] = p.ObjectVariables
	}
	if p.ContactVariables != nil {
		set["contactVariables"] = p.ContactVariables
	}
	if p.LineItemVariables != nil {
		set["lineItemVariables"] = p.LineItemVariables
	}
	return set
}

func (m *MongoRepo) Update(ctx context.Context, customerID, id string, p document.Patch) (*document.Document, error) {
	filter, ok := ownedFilter(customerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	set := patchSet(p, time.Now().UTC().Truncate(time.Millisecond))
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d document.Document
	if err := m.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, apperr.Internal("update document", err)
	}
	return &d, nil
}

func (m *MongoRepo) Delete(ctx context.Context, customerID, id string) error {
	filter, ok := ownedFilter(customerID, id)
	if !ok {
		return ErrNotFound
	}
	res, err := m.col.DeleteOne(ctx, filter)
	if err != nil {
		return apperr.Internal("delete document", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
