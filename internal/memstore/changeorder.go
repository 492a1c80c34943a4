package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gcpanel/costcore/internal/changeorder"
)

type ChangeOrderStore struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]changeorder.ChangeOrder
	order  []uuid.UUID
}

func NewChangeOrderStore() *ChangeOrderStore {
	return &ChangeOrderStore{orders: make(map[uuid.UUID]changeorder.ChangeOrder)}
}

func cloneOrder(co changeorder.ChangeOrder) *changeorder.ChangeOrder {
	co.ApprovedDate = cloneTime(co.ApprovedDate)
	co.RejectedDate = cloneTime(co.RejectedDate)

	return &co
}

func (s *ChangeOrderStore) Create(_ context.Context, co *changeorder.ChangeOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	co.Version = 1
	s.orders[co.ID] = *cloneOrder(*co)
	s.order = append(s.order, co.ID)

	return nil
}

func (s *ChangeOrderStore) Get(_ context.Context, id uuid.UUID) (*changeorder.ChangeOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	co, ok := s.orders[id]
	if !ok {
		return nil, changeorder.ErrNotFound
	}

	return cloneOrder(co), nil
}

func (s *ChangeOrderStore) Update(_ context.Context, co *changeorder.ChangeOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[co.ID]
	if !ok {
		return changeorder.ErrNotFound
	}

	if stored.Version != co.Version {
		return changeorder.ErrConflict
	}

	co.Version++
	s.orders[co.ID] = *cloneOrder(*co)

	return nil
}

func (s *ChangeOrderStore) List(_ context.Context, contractID *uuid.UUID) ([]*changeorder.ChangeOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cos []*changeorder.ChangeOrder

	for _, id := range s.order {
		co := s.orders[id]

		if contractID != nil && co.ContractID != *contractID {
			continue
		}

		cos = append(cos, cloneOrder(co))
	}

	return cos, nil
}
