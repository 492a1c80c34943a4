package changeorder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, co *ChangeOrder) error
	Get(ctx context.Context, id uuid.UUID) (*ChangeOrder, error)

	// Update persists co if its Version still matches, then bumps it.
	// Returns ErrConflict on a version mismatch.
	Update(ctx context.Context, co *ChangeOrder) error

	// List returns change orders for a contract; a nil id means all.
	List(ctx context.Context, contractID *uuid.UUID) ([]*ChangeOrder, error)
}

// Contracts is the injected collaborator owning contract values. The
// ledger never reads or writes contract state any other way.
type Contracts interface {
	GetContractValue(ctx context.Context, contractID uuid.UUID) (decimal.Decimal, error)
	AddToContractValue(ctx context.Context, contractID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}

// Service is the contract-value mutation gate. Approvals are
// serialized per change-order id so the status transition and the
// contract increment form one atomic unit, ordered change order first,
// contract second.
type Service struct {
	repo      Repository
	contracts Contracts

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewService(repo Repository, contracts Contracts) *Service {
	return &Service{
		repo:      repo,
		contracts: contracts,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// lock returns the per-order mutex, creating it on first use. Locks
// are never removed; the set of in-flight change orders is small.
func (s *Service) lock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}

	return l
}

type SubmitParams struct {
	ContractID  uuid.UUID
	Amount      decimal.Decimal
	Type        Type
	Reason      string
	SubmittedBy string
}

func (s *Service) Submit(ctx context.Context, params SubmitParams) (*ChangeOrder, error) {
	if params.Amount.IsZero() {
		return nil, fmt.Errorf("%w: amount cannot be zero", ErrInvalidAmount)
	}

	if !params.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, params.Type)
	}

	// The contract must exist before anything can amend it.
	if _, err := s.contracts.GetContractValue(ctx, params.ContractID); err != nil {
		return nil, fmt.Errorf("resolving contract %s: %w", params.ContractID, err)
	}

	co := &ChangeOrder{
		ID:            uuid.New(),
		ContractID:    params.ContractID,
		Amount:        params.Amount,
		Type:          params.Type,
		Reason:        params.Reason,
		Status:        StatusSubmitted,
		SubmittedBy:   params.SubmittedBy,
		SubmittedDate: time.Now(),
	}

	if err := s.repo.Create(ctx, co); err != nil {
		return nil, fmt.Errorf("creating change order: %w", err)
	}

	return co, nil
}

// MarkUnderReview moves a submitted change order into review.
func (s *Service) MarkUnderReview(ctx context.Context, id uuid.UUID) (*ChangeOrder, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	co, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if co.Status != StatusSubmitted {
		return nil, fmt.Errorf("%w: change order %s is %s", ErrAlreadyFinal, id, co.Status)
	}

	co.Status = StatusUnderReview

	if err := s.repo.Update(ctx, co); err != nil {
		return nil, fmt.Errorf("updating change order %s: %w", id, err)
	}

	return co, nil
}

// Approve transitions the change order to Approved and adds its amount
// to the owning contract's value, exactly once. A repeated call is an
// idempotent no-op: it returns the prior result wrapped in
// ErrAlreadyApproved and leaves the contract untouched.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, approver string) (*ApprovalResult, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	co, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch co.Status {
	case StatusApproved:
		value, err := s.contracts.GetContractValue(ctx, co.ContractID)
		if err != nil {
			return nil, fmt.Errorf("reading contract %s: %w", co.ContractID, err)
		}

		return &ApprovalResult{Order: co, NewContractValue: value}, ErrAlreadyApproved
	case StatusRejected:
		return nil, fmt.Errorf("%w: change order %s is rejected", ErrAlreadyFinal, id)
	}

	now := time.Now()
	co.Status = StatusApproved
	co.ApprovedBy = approver
	co.ApprovedDate = &now

	// The version check makes the transition itself apply-once even if
	// another process raced past our lock.
	if err := s.repo.Update(ctx, co); err != nil {
		return nil, fmt.Errorf("approving change order %s: %w", id, err)
	}

	newValue, err := s.contracts.AddToContractValue(ctx, co.ContractID, co.Amount)
	if err != nil {
		return nil, fmt.Errorf("applying change order %s to contract %s: %w", id, co.ContractID, err)
	}

	return &ApprovalResult{Order: co, NewContractValue: newValue}, nil
}

// Reject terminates the change order without touching the contract.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) (*ChangeOrder, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	co, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch co.Status {
	case StatusApproved:
		return nil, fmt.Errorf("%w: change order %s is approved", ErrAlreadyFinal, id)
	case StatusRejected:
		return nil, fmt.Errorf("%w: change order %s is already rejected", ErrAlreadyFinal, id)
	}

	now := time.Now()
	co.Status = StatusRejected
	co.RejectedDate = &now
	co.RejectionReason = reason

	if err := s.repo.Update(ctx, co); err != nil {
		return nil, fmt.Errorf("rejecting change order %s: %w", id, err)
	}

	return co, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ChangeOrder, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, contractID *uuid.UUID) ([]*ChangeOrder, error) {
	return s.repo.List(ctx, contractID)
}
