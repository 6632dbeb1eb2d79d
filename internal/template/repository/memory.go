package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docschema/docschema/internal/template"
)

// MemoryRepo keeps templates in process memory. Used by tests and when no
// MongoDB URI is configured.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*template.Template
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*template.Template), now: time.Now}
}

func (m *MemoryRepo) Create(_ context.Context, t *template.Template) (*template.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := t.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = m.now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	m.store[stored.ID] = stored
	return stored.Clone(), nil
}

// owned returns the stored template when it belongs to customerID. Caller holds the lock.
func (m *MemoryRepo) owned(customerID, id string) (*template.Template, bool) {
	t, ok := m.store[id]
	if !ok || t.CustomerID != customerID {
		return nil, false
	}
	return t, true
}

func (m *MemoryRepo) GetByID(_ context.Context, customerID, id string) (*template.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.owned(customerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (m *MemoryRepo) List(_ context.Context, customerID string) ([]*template.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*template.Template, 0)
	for _, t := range m.store {
		if t.CustomerID == customerID {
			out = append(out, t.Clone())
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

func (m *MemoryRepo) Update(_ context.Context, customerID, id string, p template.Patch) (*template.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.owned(customerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	p.Apply(t)
	t.UpdatedAt = m.now().UTC()
	return t.Clone(), nil
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
