package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gcpanel/costcore/internal/contracts"
)

type ContractStore struct {
	mu    sync.RWMutex
	cs    map[uuid.UUID]contracts.Contract
	order []uuid.UUID
}

func NewContractStore() *ContractStore {
	return &ContractStore{cs: make(map[uuid.UUID]contracts.Contract)}
}

func (s *ContractStore) Create(_ context.Context, c *contracts.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cs[c.ID] = *c
	s.order = append(s.order, c.ID)

	return nil
}

func (s *ContractStore) Get(_ context.Context, id uuid.UUID) (*contracts.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cs[id]
	if !ok {
		return nil, contracts.ErrNotFound
	}

	return &c, nil
}

// AddValue applies the delta under the write lock, so concurrent
// deltas are never lost.
func (s *ContractStore) AddValue(_ context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cs[id]
	if !ok {
		return decimal.Zero, contracts.ErrNotFound
	}

	c.ContractValue = c.ContractValue.Add(delta)
	s.cs[id] = c

	return c.ContractValue, nil
}

func (s *ContractStore) List(_ context.Context) ([]*contracts.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs := make([]*contracts.Contract, 0, len(s.order))

	for _, id := range s.order {
		c := s.cs[id]
		cs = append(cs, &c)
	}

	return cs, nil
}
