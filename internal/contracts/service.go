package contracts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, c *Contract) error
	Get(ctx context.Context, id uuid.UUID) (*Contract, error)

	// AddValue atomically adds delta to the contract's value and
	// returns the new value.
	AddValue(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)

	List(ctx context.Context) ([]*Contract, error)
}

// Service owns contract records. It satisfies the Contracts dependency
// of the change-order ledger.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name          string
	Contractor    string
	ContractValue decimal.Decimal
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Contract, error) {
	if params.ContractValue.IsNegative() {
		return nil, fmt.Errorf("%w: contract value cannot be negative, got %s", ErrInvalidAmount, params.ContractValue)
	}

	c := &Contract{
		ID:            uuid.New(),
		Name:          params.Name,
		Contractor:    params.Contractor,
		ContractValue: params.ContractValue,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating contract: %w", err)
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Contract, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Contract, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetContractValue(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}

	return c.ContractValue, nil
}

func (s *Service) AddToContractValue(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	return s.repo.AddValue(ctx, id, delta)
}
