package summary

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gcpanel/costcore/internal/budget"
	"github.com/gcpanel/costcore/internal/forecast"
	"github.com/gcpanel/costcore/internal/payapp"
)

// ProjectSummary is the cross-component financial snapshot reporting
// collaborators read.
type ProjectSummary struct {
	TotalBudget         decimal.Decimal
	TotalSpent          decimal.Decimal
	TotalCommitted      decimal.Decimal
	LatestForecastTotal decimal.Decimal
	PendingPaymentCount int
	TotalPaidToDate     decimal.Decimal
}

// Service composes the cost components for read-only reporting. It
// owns no state and never caches; every call reflects the components
// as they are now.
type Service struct {
	budgets   *budget.Service
	forecasts *forecast.Service
	payapps   *payapp.Service
}

func NewService(budgets *budget.Service, forecasts *forecast.Service, payapps *payapp.Service) *Service {
	return &Service{budgets: budgets, forecasts: forecasts, payapps: payapps}
}

func (s *Service) ProjectSummary(ctx context.Context) (*ProjectSummary, error) {
	totals, err := s.budgets.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading budget totals: %w", err)
	}

	out := &ProjectSummary{
		TotalBudget:    totals.Budgeted,
		TotalSpent:     totals.Spent,
		TotalCommitted: totals.Committed,
	}

	latest, err := s.forecasts.Latest(ctx)

	switch {
	case err == nil:
		out.LatestForecastTotal = latest.TotalForecast
	case errors.Is(err, forecast.ErrNoForecast):
		// No forecast yet; the total stays zero.
	default:
		return nil, fmt.Errorf("reading latest forecast: %w", err)
	}

	pending, err := s.payapps.ByStatus(ctx, payapp.StatusSubmitted)
	if err != nil {
		return nil, fmt.Errorf("listing pending payment applications: %w", err)
	}

	out.PendingPaymentCount = len(pending)

	paid, err := s.payapps.ByStatus(ctx, payapp.StatusPaid)
	if err != nil {
		return nil, fmt.Errorf("listing paid applications: %w", err)
	}

	// Paid-to-date is the cash that actually went out: net of retention.
	for _, app := range paid {
		out.TotalPaidToDate = out.TotalPaidToDate.Add(app.NetPayment)
	}

	out.TotalPaidToDate = out.TotalPaidToDate.Round(2)

	return out, nil
}
