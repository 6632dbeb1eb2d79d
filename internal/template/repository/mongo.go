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
	"github.com/docschema/docschema/internal/template"
)

// MongoRepo implements Repository on a MongoDB collection. Ids are ObjectID
// hex strings stored in _id.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

// EnsureIndexes creates the tenant listing index. Safe to call on every start.
func EnsureIndexes(ctx context.Context, col *mongo.Collection) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("customer_created"),
	}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return fmt.Errorf("create index on %s: %w", col.Name(), err)
	}
	return nil
}

// ownedFilter returns false when id cannot be a stored id.
func ownedFilter(customerID, id string) (bson.M, bool) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, false
	}
	return bson.M{"_id": id, "customerId": customerID}, true
}

func (m *MongoRepo) Create(ctx context.Context, t *template.Template) (*template.Template, error) {
	stored := t.Clone()
	stored.ID = primitive.NewObjectID().Hex()
	stored.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	stored.UpdatedAt = stored.CreatedAt
	if _, err := m.col.InsertOne(ctx, stored); err != nil {
		return nil, apperr.Internal("insert template", err)
	}
	return stored, nil
}

func (m *MongoRepo) GetByID(ctx context.Context, customerID, id string) (*template.Template, error) {
	filter, ok := ownedFilter(customerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	var t template.Template
	if err := m.col.FindOne(ctx, filter).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, apperr.Internal("find template", err)
	}
	return &t, nil
}

func (m *MongoRepo) List(ctx context.Context, customerID string) ([]*template.Template, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"customerId": customerID}, opts)
	if err != nil {
		return nil, apperr.Internal("list templates", err)
	}
	defer cur.Close(ctx)
	out := []*template.Template{}
	for cur.Next(ctx) {
		var t template.Template
		if err := cur.Decode(&t); err != nil {
			return nil, apperr.Internal("decode template", err)
		}
		out = append(out, &t)
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Internal("list templates", err)
	}
	return out, nil
}

// patchSet renders p as a $set document. Groups are normalized exactly as
// Patch.Apply does for in-memory templates.
func patchSet(p template.Patch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.ConnectionID != nil {
		set["connectionId"] = *p.ConnectionID
	}
	if p.ObjectFields != nil {
		set["objectFields"] = template.NormalizeFields(p.ObjectFields)
	}
	if p.ContactFields != nil {
		set["contactFields"] = template.NormalizeFields(p.ContactFields)
	}
	if p.LineItemFields != nil {
		set["lineItemFields"] = template.NormalizeFields(p.LineItemFields)
	}
	return set
}

func (m *MongoRepo) Update(ctx context.Context, customerID, id string, p template.Patch) (*template.Template, error) {
	filter, ok := ownedFilter(customerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	set := patchSet(p, time.Now().UTC().Truncate(time.Millisecond))
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t template.Template
	if err := m.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, apperr.Internal("update template", err)
	}
	return &t, nil
}

func (m *MongoRepo) Delete(ctx context.Context, customerID, id string) error {
	filter, ok := ownedFilter(customerID, id)
	if !ok {
		return ErrNotFound
	}
	res, err := m.col.DeleteOne(ctx, filter)
	if err != nil {
		return apperr.Internal("delete template", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
