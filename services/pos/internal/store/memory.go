package store

import (
	"context"
	"errors"
	"sync"

	"github.com/appetiteclub/pos/pkg/order"
)

// MemoryStore keeps state in process memory. It is the default when no
// database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	drafts   map[string]order.Draft
	products map[string]Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts:   make(map[string]order.Draft),
		products: make(map[string]Product),
	}
}

func (s *MemoryStore) Draft(ctx context.Context, session string) (order.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[session]
	if !ok {
		return order.Draft{}, ErrNotFound
	}
	return cloneDraft(d), nil
}

func (s *MemoryStore) SaveDraft(ctx context.Context, session string, d order.Draft) error {
	if session == "" {
		return errors.New("session is required")
	}
	d.EnsureKey()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[session] = cloneDraft(d)
	return nil
}

func (s *MemoryStore) DeleteDraft(ctx context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, session)
	return nil
}

func (s *MemoryStore) Products(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sortProducts(out)
	return out, nil
}

func (s *MemoryStore) Product(ctx context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) SaveProduct(ctx context.Context, p Product) error {
	if p.ID == "" {
		return errors.New("product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	return nil
}

func cloneDraft(d order.Draft) order.Draft {
	items := make([]order.OrderItem, len(d.Items))
	copy(items, d.Items)
	d.Items = items
	return d
}
