package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docschema/docschema/internal/document"
)

// MemoryRepo keeps documents in process memory. Used by tests and when no
// MongoDB URI is configured.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*document.Document
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*document.Document), now: time.Now}
}

func (m *MemoryRepo) Create(_ context.Context, d *document.Document) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := d.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = m.now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	m.store[stored.ID] = stored
	return stored.Clone(), nil
}

func (m *MemoryRepo) owned(customerID, id string) (*document.Document, bool) {
	d, ok := m.store[id]
	if !ok || d.CustomerID != customerID {
		return nil, false
	}
	return d, true
}

func (m *MemoryRepo) GetByID(_ context.Context, customerID, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.owned(customerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	return d.Clone(), nil
}

func (m *MemoryRepo) List(_ context.Context, customerID string) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*document.Document, 0)
	for _, d := range m.store {
		if d.CustomerID == customerID {
			out = append(out, d.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepo) Update(_ context.Context, customerID, id string, p document.Patch) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.owned(customerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	p.Apply(d)
	// the patch maps now belong to the store
	*d = *d.Clone()
	d.UpdatedAt = m.now().UTC()
	return d.Clone(), nil
}

func (m *MemoryRepo) Delete(_ context.Context, customerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.owned(customerID, id); !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}
