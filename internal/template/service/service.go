package service

import (
	"context"
	"errors"
	"strings"

	"github.com/docschema/docschema/internal/apperr"
	"github.com/docschema/docschema/internal/events"
	"github.com/docschema/docschema/internal/schema"
	"github.com/docschema/docschema/internal/schemacache"
	"github.com/docschema/docschema/internal/template"
	"github.com/docschema/docschema/internal/template/repository"
	"github.com/docschema/docschema/pkg/logger"
	"github.com/docschema/docschema/pkg/metrics"
)

// ErrExportDisabled is returned by ExportSchema when no object store is configured.
var ErrExportDisabled = errors.New("schema export is not configured")

// Service defines the template operations used by the handler layer.
type Service interface {
	Create(ctx context.Context, customerID string, t *template.Template) (*template.Template, []template.Warning, error)
	Get(ctx context.Context, customerID, id string) (*template.Template, error)
	List(ctx context.Context, customerID string) ([]*template.Template, error)
	Update(ctx context.Context, customerID, id string, p template.Patch) (*template.Template, []template.Warning, error)
	Delete(ctx context.Context, customerID, id string) error
	Schema(ctx context.Context, customerID, id string, opts ...schema.Option) ([]byte, error)
	ExportSchema(ctx context.Context, customerID, id string, opts ...schema.Option) (*Export, error)
}

// Exporter uploads a compiled schema and returns its key and a download URL.
type Exporter interface {
	ExportSchema(ctx context.Context, customerID, templateID string, schema []byte) (key, url string, err error)
}

// Export describes an uploaded schema snapshot.
type Export struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Option configures optional collaborators.
type Option func(*templateService)

func WithCache(c schemacache.Cache) Option { return func(s *templateService) { s.cache = c } }

func WithExporter(e Exporter) Option { return func(s *templateService) { s.exporter = e } }

func WithPublisher(p events.Publisher) Option { return func(s *templateService) { s.events = p } }

// New returns a Service over repo.
func New(repo repository.Repository, opts ...Option) Service {
	s := &templateService{repo: repo, events: events.Nop{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService(opts ...Option) Service {
	return New(repository.NewMemoryRepo(), opts...)
}

type templateService struct {
	repo     repository.Repository
	cache    schemacache.Cache
	exporter Exporter
	events   events.Publisher
}

func record(op string, err error) {
	metrics.TemplateOps.WithLabelValues(op, metrics.Outcome(err, apperr.IsNotFound)).Inc()
}

func logWarnings(id string, ws []template.Warning) {
	for _, w := range ws {
		logger.Warnw("template lint", "template", id, "warning", w.String())
	}
}

func (s *templateService) emit(ctx context.Context, action string, t *template.Template) {
	events.Emit(ctx, s.events, events.Event{Kind: events.KindTemplate, Action: action, ID: t.ID, CustomerID: t.CustomerID})
}

func (s *templateService) Create(ctx context.Context, customerID string, t *template.Template) (out *template.Template, warnings []template.Warning, err error) {
	defer func() { record("create", err) }()
	if customerID == "" {
		return nil, nil, apperr.ErrUnauthorized
	}
	if strings.TrimSpace(t.Name) == "" {
		return nil, nil, apperr.Invalid("name", "is required")
	}
	in := t.Clone()
	in.ID = ""
	in.CustomerID = customerID
	template.Normalize(in)
	warnings = template.Lint(in)

	out, err = s.repo.Create(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	logWarnings(out.ID, warnings)
	s.emit(ctx, events.ActionCreated, out)
	return out, warnings, nil
}

func (s *templateService) Get(ctx context.Context, customerID, id string) (t *template.Template, err error) {
	defer func() { record("get", err) }()
	return s.repo.GetByID(ctx, customerID, id)
}

func (s *templateService) List(ctx context.Context, customerID string) (list []*template.Template, err error) {
	defer func() { record("list", err) }()
	return s.repo.List(ctx, customerID)
}

func (s *templateService) Update(ctx context.Context, customerID, id string, p template.Patch) (out *template.Template, warnings []template.Warning, err error) {
	defer func() { record("update", err) }()
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, nil, apperr.Invalid("name", "must not be empty")
	}
	out, err = s.repo.Update(ctx, customerID, id, p)
	if err != nil {
		return nil, nil, err
	}
	warnings = template.Lint(out)
	logWarnings(out.ID, warnings)
	s.emit(ctx, events.ActionUpdated, out)
	return out, warnings, nil
}

func (s *templateService) Delete(ctx context.Context, customerID, id string) (err error) {
	defer func() { record("delete", err) }()
	if err = s.repo.Delete(ctx, customerID, id); err != nil {
		return err
	}
	if s.cache != nil {
		if cerr := s.cache.Invalidate(ctx, customerID, id); cerr != nil {
			logger.Warnw("schema cache invalidate failed", "template", id, "err", cerr)
		}
	}
	s.emit(ctx, events.ActionDeleted, &template.Template{ID: id, CustomerID: customerID})
	return nil
}

// Schema compiles the template, serving repeated requests from the cache
// when one is configured. Cache failures fall back to compiling.
func (s *templateService) Schema(ctx context.Context, customerID, id string, opts ...schema.Option) ([]byte, error) {
	t, err := s.Get(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	variant := schema.Variant(opts...)
	key := schemacache.Key(customerID, id, t.UpdatedAt, variant)
	if s.cache != nil {
		b, ok, cerr := s.cache.Get(ctx, key)
		if cerr != nil {
			logger.Warnw("schema cache read failed", "key", key, "err", cerr)
		}
		if ok {
			return b, nil
		}
	}

	b, err := compile(t, opts...)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if cerr := s.cache.Set(ctx, key, b); cerr != nil {
			logger.Warnw("schema cache write failed", "key", key, "err", cerr)
		}
	}
	return b, nil
}

func compile(t *template.Template, opts ...schema.Option) ([]byte, error) {
	metrics.SchemaCompiles.WithLabelValues(schema.Variant(opts...)).Inc()
	b, err := schema.Compile(t, opts...).Bytes()
	if err != nil {
		return nil, apperr.Internal("marshal schema", err)
	}
	return b, nil
}

func (s *templateService) ExportSchema(ctx context.Context, customerID, id string, opts ...schema.Option) (*Export, error) {
	if s.exporter == nil {
		return nil, ErrExportDisabled
	}
	b, err := s.Schema(ctx, customerID, id, opts...)
	if err != nil {
		return nil, err
	}
	key, url, err := s.exporter.ExportSchema(ctx, customerID, id, b)
	if err != nil {
		return nil, apperr.Internal("export schema", err)
	}
	return &Export{Key: key, URL: url}, nil
}
