package service

import (
	"context"
	"encoding/json"

	"github.com/docschema/docschema/internal/apperr"
	"github.com/docschema/docschema/internal/document"
	"github.com/docschema/docschema/internal/document/repository"
	"github.com/docschema/docschema/internal/events"
	"github.com/docschema/docschema/internal/schema"
	"github.com/docschema/docschema/internal/template"
	"github.com/docschema/docschema/pkg/metrics"
)

// Service defines the document business operations used by the handler layer.
type Service interface {
	Create(ctx context.Context, customerID string, in Input) (*document.Document, error)
	Get(ctx context.Context, customerID, id string) (*document.Document, error)
	List(ctx context.Context, customerID string) ([]*document.Document, error)
	Update(ctx context.Context, customerID, id string, p document.Patch) (*document.Document, error)
	Delete(ctx context.Context, customerID, id string) error
	View(ctx context.Context, customerID, id string) (*View, error)
}

// Templates resolves the template a document refers to. The template
// service satisfies it.
type Templates interface {
	Get(ctx context.Context, customerID, id string) (*template.Template, error)
	Schema(ctx context.Context, customerID, id string, opts ...schema.Option) ([]byte, error)
}

// View is a document together with the schema of its template. Schema is
// empty and TemplateMissing set when the template no longer resolves.
type View struct {
	Document        *document.Document `json:"document"`
	Schema          json.RawMessage    `json:"schema,omitempty"`
	TemplateMissing bool               `json:"templateMissing"`
}

// Option configures optional collaborators.
type Option func(*documentService)

func WithMode(m schema.Mode) Option { return func(s *documentService) { s.validator.Mode = m } }

func WithPublisher(p events.Publisher) Option { return func(s *documentService) { s.events = p } }

// New returns a Service storing documents in repo and resolving templates through templates.
func New(repo repository.Repository, templates Templates, opts ...Option) Service {
	s := &documentService{
		repo:      repo,
		templates: templates,
		validator: Validator{Mode: schema.ModeLenient},
		events:    events.Nop{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService(templates Templates, opts ...Option) Service {
	return New(repository.NewMemoryRepo(), templates, opts...)
}

type documentService struct {
	repo      repository.Repository
	templates Templates
	validator Validator
	events    events.Publisher
}

func record(op string, err error) {
	metrics.DocumentOps.WithLabelValues(op, metrics.Outcome(err, apperr.IsNotFound)).Inc()
}

func (s *documentService) emit(ctx context.Context, action string, d *document.Document) {
	events.Emit(ctx, s.events, events.Event{
		Kind:       events.KindDocument,
		Action:     action,
		ID:         d.ID,
		CustomerID: d.CustomerID,
		TemplateID: d.TemplateID,
	})
}

// resolve looks up the referenced template. A missing template is not an
// error here; Prepare decides what it means for the current mode.
func (s *documentService) resolve(ctx context.Context, customerID, templateID string) (*template.Template, error) {
	if templateID == "" {
		return nil, nil
	}
	t, err := s.templates.Get(ctx, customerID, templateID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (s *documentService) Create(ctx context.Context, customerID string, in Input) (out *document.Document, err error) {
	defer func() { record("create", err) }()
	if customerID == "" {
		return nil, apperr.ErrUnauthorized
	}
	t, err := s.resolve(ctx, customerID, in.TemplateID)
	if err != nil {
		return nil, err
	}
	d, err := s.validator.Prepare(t, in)
	if err != nil {
		return nil, err
	}
	d.CustomerID = customerID
	out, err = s.repo.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.ActionCreated, out)
	return out, nil
}

func (s *documentService) Get(ctx context.Context, customerID, id string) (d *document.Document, err error) {
	defer func() { record("get", err) }()
	return s.repo.GetByID(ctx, customerID, id)
}

func (s *documentService) List(ctx context.Context, customerID string) (list []*document.Document, err error) {
	defer func() { record("list", err) }()
	return s.repo.List(ctx, customerID)
}

// Update merges p onto the stored document and runs the merged result
// through Prepare, so a partial update is held to the same rules as Create.
func (s *documentService) Update(ctx context.Context, customerID, id string, p document.Patch) (out *document.Document, err error) {
	defer func() { record("update", err) }()
	current, err := s.repo.GetByID(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	p.Apply(current)

	in := Input{
		Name:              current.Name,
		TemplateID:        current.TemplateID,
		ObjectVariables:   current.ObjectVariables,
		ContactVariables:  current.ContactVariables,
		LineItemVariables: make([]map[string]interface{}, len(current.LineItemVariables)),
	}
	for i, li := range current.LineItemVariables {
		in.LineItemVariables[i] = li
	}
	t, err := s.resolve(ctx, customerID, in.TemplateID)
	if err != nil {
		return nil, err
	}
	d, err := s.validator.Prepare(t, in)
	if err != nil {
		return nil, err
	}
	out, err = s.repo.Update(ctx, customerID, id, document.Patch{
		Name:              &d.Name,
		TemplateID:        &d.TemplateID,
		ObjectVariables:   d.ObjectVariables,
		ContactVariables:  d.ContactVariables,
		LineItemVariables: d.LineItemVariables,
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.ActionUpdated, out)
	return out, nil
}

func (s *documentService) Delete(ctx context.Context, customerID, id string) (err error) {
	defer func() { record("delete", err) }()
	if err = s.repo.Delete(ctx, customerID, id); err != nil {
		return err
	}
	s.emit(ctx, events.ActionDeleted, &document.Document{ID: id, CustomerID: customerID})
	return nil
}

// View returns the document and its template schema. A dangling template
// reference degrades to TemplateMissing instead of failing.
func (s *documentService) View(ctx context.Context, customerID, id string) (*View, error) {
	d, err := s.Get(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	v := &View{Document: d}
	if d.TemplateID == "" {
		v.TemplateMissing = true
		return v, nil
	}
	b, err := s.templates.Schema(ctx, customerID, d.TemplateID)
	switch {
	case apperr.IsNotFound(err):
		v.TemplateMissing = true
	case err != nil:
		return nil, err
	default:
		v.Schema = b
	}
	return v, nil
}
