// Package memstore provides in-memory implementations of the
// repositories, with the same per-record serialization guarantees as
// the Postgres stores: every write goes through an optimistic version
// check, and reads return copies so callers never alias stored state.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/gcpanel/costcore/internal/budget"
)

type BudgetStore struct {
	mu     sync.RWMutex
	items  map[int64]budget.BudgetItem
	order  []int64
	nextID int64
}

func NewBudgetStore() *BudgetStore {
	return &BudgetStore{items: make(map[int64]budget.BudgetItem)}
}

func cloneItem(item budget.BudgetItem) *budget.BudgetItem {
	if item.RemovedAt != nil {
		at := *item.RemovedAt
		item.RemovedAt = &at
	}

	return &item
}

func (s *BudgetStore) CreateItem(_ context.Context, item *budget.BudgetItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	item.ID = s.nextID
	item.Version = 1

	s.items[item.ID] = *cloneItem(*item)
	s.order = append(s.order, item.ID)

	return nil
}

func (s *BudgetStore) GetItem(_ context.Context, id int64) (*budget.BudgetItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, budget.ErrNotFound
	}

	return cloneItem(item), nil
}

func (s *BudgetStore) UpdateItem(_ context.Context, item *budget.BudgetItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.items[item.ID]
	if !ok || stored.Removed() {
		return budget.ErrNotFound
	}

	if stored.Version != item.Version {
		return budget.ErrConflict
	}

	item.Version++
	s.items[item.ID] = *cloneItem(*item)

	return nil
}

func (s *BudgetStore) ListItems(_ context.Context, filter budget.ListFilter) ([]*budget.BudgetItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []*budget.BudgetItem

	for _, id := range s.order {
		item := s.items[id]

		if item.Removed() && !filter.IncludeRemoved {
			continue
		}

		if filter.Category != nil && item.Category != *filter.Category {
			continue
		}

		items = append(items, cloneItem(item))
	}

	return items, nil
}

func (s *BudgetStore) RemoveItem(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok || item.Removed() {
		return budget.ErrNotFound
	}

	item.RemovedAt = &at
	item.Version++
	s.items[id] = item

	return nil
}
