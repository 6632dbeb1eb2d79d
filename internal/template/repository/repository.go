package repository

import (
	"context"

	"github.com/docschema/docschema/internal/apperr"
	"github.com/docschema/docschema/internal/template"
)

// ErrNotFound is returned for absent templates and for templates owned by
// another tenant.
var ErrNotFound = apperr.NotFound("template")

// Repository stores templates scoped by customer id.
type Repository interface {
	Create(ctx context.Context, t *template.Template) (*template.Template, error)
	GetByID(ctx context.Context, customerID, id string) (*template.Template, error)
	List(ctx context.Context, customerID string) ([]*template.Template, error)
	Update(ctx context.Context, customerID, id string, p template.Patch) (*template.Template, error)
	Delete(ctx context.Context, customerID, id string) error
}
