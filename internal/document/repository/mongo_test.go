package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/docschema/docschema/internal/apperr"
	"github.com/docschema/docschema/internal/document"
)

func TestMongoRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID().Hex()

	mt.Run("list decodes variables", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: id},
				{Key: "name", Value: "INV-1"},
				{Key: "customerId", Value: "c1"},
				{Key: "objectVariables", Value: bson.D{{Key: "amount", Value: 12.5}, {Key: "paid", Value: true}}},
				{Key: "lineItemVariables", Value: bson.A{bson.D{{Key: "sku", Value: "A"}}}},
			},
		))
		list, err := NewMongoRepo(mt.Coll).List(context.Background(), "c1")
		require.NoError(mt, err)
		require.Len(mt, list, 1)
		assert.Equal(mt, 12.5, list[0].ObjectVariables["amount"])
		assert.Equal(mt, true, list[0].ObjectVariables["paid"])
		require.Len(mt, list[0].LineItemVariables, 1)
		assert.Equal(mt, "A", list[0].LineItemVariables[0]["sku"])
	})

	mt.Run("update of a foreign document is not found", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})
		name := "x"
		_, err := NewMongoRepo(mt.Coll).Update(context.Background(), "c2", id, document.Patch{Name: &name})
		assert.True(mt, apperr.IsNotFound(err))
	})

	mt.Run("malformed id is not found", func(mt *mtest.T) {
		_, err := NewMongoRepo(mt.Coll).GetByID(context.Background(), "c1", "42")
		assert.True(mt, apperr.IsNotFound(err))
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		r := NewMongoRepo(mt.Coll)
		require.NoError(mt, r.Delete(context.Background(), "c1", id))
		assert.True(mt, apperr.IsNotFound(r.Delete(context.Background(), "c1", id)))
	})
}

func TestPatchSetLeavesAbsentGroups(t *testing.T) {
	set := patchSet(document.Patch{LineItemVariables: []document.Variables{}}, primitive.NewObjectID().Timestamp())
	assert.Contains(t, set, "lineItemVariables")
	assert.NotContains(t, set, "objectVariables")
	assert.NotContains(t, set, "name")
}
