package repository

import (
	"context"

	"github.com/docschema/docschema/internal/apperr"
	"github.com/docschema/docschema/internal/document"
)

// ErrNotFound is returned for absent documents and for documents owned by
// another tenant.
var ErrNotFound = apperr.NotFound("document")

// Repository stores documents scoped by customer id. Values handed to Create
// and Update are expected to be validated already.
type Repository interface {
	Create(ctx context.Context, d *document.Document) (*document.Document, error)
	GetByID(ctx context.Context, customerID, id string) (*document.Document, error)
	List(ctx context.Context, customerID string) ([]*document.Document, error)
	Update(ctx context.Context, customerID, id string, p document.Patch) (*document.Document, error)
	Delete(ctx context.Context, customerID, id string) error
}
