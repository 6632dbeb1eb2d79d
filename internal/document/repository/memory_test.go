package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docschema/docschema/internal/apperr"
	"github.com/docschema/docschema/internal/document"
)

func TestMemoryRepoCRUD(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	r.now = func() time.Time { n++; return start.Add(time.Duration(n) * time.Minute) }

	created, err := r.Create(ctx, &document.Document{
		Name:            "INV-1",
		TemplateID:      "tpl-1",
		CustomerID:      "c1",
		ObjectVariables: document.Variables{"amount": 12.5},
		LineItemVariables: []document.Variables{
			{"sku": "A", "qty": 1.0},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := r.GetByID(ctx, "c1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got.ObjectVariables["amount"])

	got.LineItemVariables[0]["qty"] = 99.0
	again, _ := r.GetByID(ctx, "c1", created.ID)
	assert.Equal(t, 1.0, again.LineItemVariables[0]["qty"], "reads return copies")

	vars := document.Variables{"amount": 20.0}
	updated, err := r.Update(ctx, "c1", created.ID, document.Patch{ObjectVariables: vars})
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.ObjectVariables["amount"])
	assert.Equal(t, "INV-1", updated.Name)
	assert.Len(t, updated.LineItemVariables, 1)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	vars["amount"] = 0.0
	stored, _ := r.GetByID(ctx, "c1", created.ID)
	assert.Equal(t, 20.0, stored.ObjectVariables["amount"], "patch maps are copied in")

	require.NoError(t, r.Delete(ctx, "c1", created.ID))
	assert.ErrorIs(t, r.Delete(ctx, "c1", created.ID), apperr.ErrNotFound)
}

func TestMemoryRepoTenantIsolation(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	d, err := r.Create(ctx, &document.Document{Name: "mine", CustomerID: "c1"})
	require.NoError(t, err)
	_, err = r.Create(ctx, &document.Document{Name: "theirs", CustomerID: "c2"})
	require.NoError(t, err)

	_, err = r.GetByID(ctx, "c2", d.ID)
	assert.True(t, apperr.IsNotFound(err))
	_, err = r.Update(ctx, "c2", d.ID, document.Patch{})
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(r.Delete(ctx, "c2", d.ID)))

	list, err := r.List(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "mine", list[0].Name)
}
