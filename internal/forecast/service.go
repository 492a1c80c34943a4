package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gcpanel/costcore/internal/budget"
)

type Repository interface {
	// Append stores the forecast and assigns its insertion-ordered id.
	Append(ctx context.Context, f *CostForecast) error

	// Latest returns the most recently appended forecast in O(1);
	// insertion order is authoritative, not ForecastDate.
	Latest(ctx context.Context) (*CostForecast, error)

	// List returns all forecasts, newest insertion first.
	List(ctx context.Context) ([]*CostForecast, error)
}

// BudgetTotals is the slice of the budget ledger the engine needs to
// snapshot variance at recording time.
type BudgetTotals interface {
	Totals(ctx context.Context) (budget.Totals, error)
}

// Service keeps the append-only forecast history for a project.
type Service struct {
	repo    Repository
	budgets BudgetTotals
}

func NewService(repo Repository, budgets BudgetTotals) *Service {
	return &Service{repo: repo, budgets: budgets}
}

type RecordParams struct {
	ForecastDate          time.Time
	ProjectCompletionDate time.Time
	TotalForecast         decimal.Decimal
	Confidence            Confidence
	Method                Method
	CreatedBy             string
	RiskFactors           []string
	Assumptions           []string
}

func (s *Service) Record(ctx context.Context, params RecordParams) (*CostForecast, error) {
	if params.TotalForecast.IsNegative() {
		return nil, fmt.Errorf("%w: total forecast cannot be negative, got %s", ErrInvalidAmount, params.TotalForecast)
	}

	if !params.Method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, params.Method)
	}

	if !params.Confidence.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidConfidence, params.Confidence)
	}

	totals, err := s.budgets.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading budget totals: %w", err)
	}

	f := &CostForecast{
		ForecastDate:          params.ForecastDate,
		ProjectCompletionDate: params.ProjectCompletionDate,
		TotalForecast:         params.TotalForecast,
		Confidence:            params.Confidence,
		Method:                params.Method,
		CreatedBy:             params.CreatedBy,
		RiskFactors:           params.RiskFactors,
		Assumptions:           params.Assumptions,
		VarianceFromBudget:    params.TotalForecast.Sub(totals.Budgeted).Round(2),
		CreatedAt:             time.Now(),
	}

	if err := s.repo.Append(ctx, f); err != nil {
		return nil, fmt.Errorf("appending forecast: %w", err)
	}

	return f, nil
}

func (s *Service) Latest(ctx context.Context) (*CostForecast, error) {
	return s.repo.Latest(ctx)
}

func (s *Service) History(ctx context.Context) ([]*CostForecast, error) {
	return s.repo.List(ctx)
}
