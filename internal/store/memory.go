// ABOUTME: In-memory template store seeded with demo contracts
// ABOUTME: Values are cloned on the way in and out so callers never share state with the store

package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/mauromedda/contract-editor-go/internal/template"
)

// ErrEmptyName is returned by Create for a blank name.
var ErrEmptyName = errors.New("template name is required")

// Seed returns the demo contracts a fresh store starts with.
func Seed() []template.Document {
	return []template.Document{
		{
			ID:           1,
			Name:         "Contract A",
			Content:      "Content A",
			ClientName:   "Client A",
			ContractDate: "2025-12-01",
			ContractType: "NDA",
			Tags:         []string{"Urgent", "Optional"},
			IsActive:     true,
		},
		{
			ID:           2,
			Name:         "Contract B",
			Content:      "Content B",
			ClientName:   "Client B",
			ContractDate: "2025-12-05",
			ContractType: "Service",
			Tags:         []string{"Important"},
			IsActive:     false,
		},
	}
}

// Memory is a goroutine-safe template.Store held in a map.
type Memory struct {
	mu     sync.RWMutex
	docs   map[int64]template.Document
	nextID int64
}

var _ template.Store = (*Memory)(nil)

// NewMemory creates a store holding docs. Ids of later creates continue
// after the largest seeded id.
func NewMemory(docs ...template.Document) *Memory {
	m := &Memory{docs: make(map[int64]template.Document), nextID: 1}
	for _, d := range docs {
		m.docs[d.ID] = d.Clone()
		m.nextID = max(m.nextID, d.ID+1)
	}
	return m
}

// Fetch returns a copy of template id.
func (m *Memory) Fetch(ctx context.Context, id int64) (template.Document, error) {
	if err := ctx.Err(); err != nil {
		return template.Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		return template.Document{}, fmt.Errorf("fetch %d: %w", id, template.ErrNotFound)
	}
	return d.Clone(), nil
}

// Persist applies the changed fields of u to template id.
func (m *Memory) Persist(ctx context.Context, id int64, u template.Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("persist %d: %w", id, template.ErrNotFound)
	}
	m.docs[id] = u.Apply(d)
	return nil
}

// List returns every template ordered by id.
func (m *Memory) List(ctx context.Context) ([]template.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := slices.Sorted(maps.Keys(m.docs))
	out := make([]template.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.docs[id].Clone())
	}
	return out, nil
}

// Create adds an empty inactive template called name.
func (m *Memory) Create(ctx context.Context, name string) (template.Document, error) {
	if err := ctx.Err(); err != nil {
		return template.Document{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return template.Document{}, ErrEmptyName
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := template.Document{
		ID:     m.nextID,
		Name:   name,
		Tags:   []string{},
		Fields: map[string]any{},
	}
	m.nextID++
	m.docs[d.ID] = d
	return d.Clone(), nil
}

// Delete removes template id.
func (m *Memory) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("delete %d: %w", id, template.ErrNotFound)
	}
	delete(m.docs, id)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
