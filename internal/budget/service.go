package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	CreateItem(ctx context.Context, item *BudgetItem) error
	GetItem(ctx context.Context, id int64) (*BudgetItem, error)

	// UpdateItem persists item if its Version still matches the stored
	// one, then bumps it. Returns ErrConflict on a version mismatch.
	UpdateItem(ctx context.Context, item *BudgetItem) error

	ListItems(ctx context.Context, filter ListFilter) ([]*BudgetItem, error)
	RemoveItem(ctx context.Context, id int64, at time.Time) error
}

type ListFilter struct {
	Category       *Category
	IncludeRemoved bool
}

// Service is the budget ledger: it owns all budget items of a project
// and guarantees every read returns consistent derived fields.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Category           Category
	Description        string
	CostCode           string
	ResponsibleManager string
	BudgetedAmount     decimal.Decimal
	CommittedAmount    decimal.Decimal
}

func (s *Service) AddItem(ctx context.Context, params CreateParams) (*BudgetItem, error) {
	if !params.Category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, params.Category)
	}

	if !params.BudgetedAmount.IsPositive() {
		return nil, fmt.Errorf("%w: budgeted amount must be positive, got %s", ErrInvalidAmount, params.BudgetedAmount)
	}

	if params.CommittedAmount.IsNegative() {
		return nil, fmt.Errorf("%w: committed amount cannot be negative, got %s", ErrInvalidAmount, params.CommittedAmount)
	}

	now := time.Now()

	item := &BudgetItem{
		Category:           params.Category,
		Description:        params.Description,
		CostCode:           params.CostCode,
		ResponsibleManager: params.ResponsibleManager,
		BudgetedAmount:     params.BudgetedAmount,
		CommittedAmount:    params.CommittedAmount,
		ActualSpent:        decimal.Zero,
		CompletionPercent:  decimal.Zero,
		CreatedAt:          now,
		LastUpdated:        now,
	}
	item.Derive()

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("creating budget item: %w", err)
	}

	return item, nil
}

// RecordActualSpend sets the item's spend-to-date and re-derives
// forecast and variance.
func (s *Service) RecordActualSpend(ctx context.Context, id int64, actualSpent decimal.Decimal) (*BudgetItem, error) {
	if actualSpent.IsNegative() {
		return nil, fmt.Errorf("%w: actual spend cannot be negative, got %s", ErrInvalidAmount, actualSpent)
	}

	return s.mutate(ctx, id, func(item *BudgetItem) error {
		item.ActualSpent = actualSpent
		return nil
	})
}

// RecordCommitment sets the item's committed amount.
func (s *Service) RecordCommitment(ctx context.Context, id int64, committed decimal.Decimal) (*BudgetItem, error) {
	if committed.IsNegative() {
		return nil, fmt.Errorf("%w: committed amount cannot be negative, got %s", ErrInvalidAmount, committed)
	}

	return s.mutate(ctx, id, func(item *BudgetItem) error {
		item.CommittedAmount = committed
		return nil
	})
}

// UpdateCompletion sets the item's completion percentage, in [0, 100].
func (s *Service) UpdateCompletion(ctx context.Context, id int64, percent decimal.Decimal) (*BudgetItem, error) {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: got %s", ErrOutOfRange, percent)
	}

	return s.mutate(ctx, id, func(item *BudgetItem) error {
		item.CompletionPercent = percent
		return nil
	})
}

// mutate loads the item, applies fn, re-derives and writes it back
// under the repository's version check. Removed items cannot be
// mutated.
func (s *Service) mutate(ctx context.Context, id int64, fn func(*BudgetItem) error) (*BudgetItem, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.Removed() {
		return nil, fmt.Errorf("%w: item %d is removed", ErrNotFound, id)
	}

	if err := fn(item); err != nil {
		return nil, err
	}

	item.Derive()
	item.LastUpdated = time.Now()

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("updating budget item %d: %w", id, err)
	}

	return item, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*BudgetItem, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*BudgetItem, error) {
	return s.repo.ListItems(ctx, filter)
}

// Remove soft-removes an item. Removed items are excluded from Totals
// but remain readable for audit queries.
func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.repo.RemoveItem(ctx, id, time.Now())
}

// Totals sums the monetary fields across all non-removed items. Items
// are summed at full precision and rounded once at the end.
func (s *Service) Totals(ctx context.Context) (Totals, error) {
	items, err := s.repo.ListItems(ctx, ListFilter{})
	if err != nil {
		return Totals{}, fmt.Errorf("listing budget items: %w", err)
	}

	var t Totals
	for _, item := range items {
		t.Budgeted = t.Budgeted.Add(item.BudgetedAmount)
		t.Committed = t.Committed.Add(item.CommittedAmount)
		t.Spent = t.Spent.Add(item.ActualSpent)
		t.Forecast = t.Forecast.Add(item.ForecastFinal)
	}

	t.Budgeted = t.Budgeted.Round(2)
	t.Committed = t.Committed.Round(2)
	t.Spent = t.Spent.Round(2)
	t.Forecast = t.Forecast.Round(2)

	return t, nil
}
