package forecast_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcpanel/costcore/internal/budget"
	"github.com/gcpanel/costcore/internal/forecast"
	"github.com/gcpanel/costcore/internal/memstore"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

func newEngine(t *testing.T) (*forecast.Service, *budget.Service) {
	t.Helper()

	budgets := budget.NewService(memstore.NewBudgetStore())

	return forecast.NewService(memstore.NewForecastStore(), budgets), budgets
}

func TestService_RecordSnapshotsVariance(t *testing.T) {
	svc, budgets := newEngine(t)
	ctx := context.Background()

	_, err := budgets.AddItem(ctx, budget.CreateParams{
		Category:       budget.CategoryMaterials,
		Description:    "Structure",
		BudgetedAmount: dec("8500000"),
	})
	require.NoError(t, err)

	f, err := svc.Record(ctx, forecast.RecordParams{
		ForecastDate:  time.Now(),
		TotalForecast: dec("9000000"),
		Confidence:    forecast.ConfidenceMedium,
		Method:        forecast.MethodBottomUp,
		CreatedBy:     "Cost Engineer",
		RiskFactors:   []string{"Steel price escalation", "Weather delays"},
	})
	require.NoError(t, err)
	assert.True(t, f.VarianceFromBudget.Equal(dec("500000")), "variance %s", f.VarianceFromBudget)

	// Growing the budget afterwards must not move the recorded snapshot.
	_, err = budgets.AddItem(ctx, budget.CreateParams{
		Category:       budget.CategoryLabor,
		BudgetedAmount: dec("1000000"),
	})
	require.NoError(t, err)

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, latest.VarianceFromBudget.Equal(dec("500000")))

	// A new forecast snapshots the new total.
	f2, err := svc.Record(ctx, forecast.RecordParams{
		ForecastDate:  time.Now(),
		TotalForecast: dec("9000000"),
		Confidence:    forecast.ConfidenceMedium,
		Method:        forecast.MethodBottomUp,
		CreatedBy:     "Cost Engineer",
	})
	require.NoError(t, err)
	assert.True(t, f2.VarianceFromBudget.Equal(dec("-500000")), "variance %s", f2.VarianceFromBudget)
}

func TestService_RecordValidation(t *testing.T) {
	svc, _ := newEngine(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, forecast.RecordParams{
		TotalForecast: dec("-1"),
		Confidence:    forecast.ConfidenceLow,
		Method:        forecast.MethodParametric,
	})
	assert.ErrorIs(t, err, forecast.ErrInvalidAmount)

	_, err = svc.Record(ctx, forecast.RecordParams{
		TotalForecast: dec("1"),
		Confidence:    forecast.ConfidenceLow,
		Method:        forecast.Method("Guesswork"),
	})
	assert.ErrorIs(t, err, forecast.ErrInvalidMethod)

	_, err = svc.Record(ctx, forecast.RecordParams{
		TotalForecast: dec("1"),
		Confidence:    forecast.Confidence("Certain"),
		Method:        forecast.MethodExpertJudgment,
	})
	assert.ErrorIs(t, err, forecast.ErrInvalidConfidence)
}

func TestService_LatestFollowsInsertionOrder(t *testing.T) {
	svc, _ := newEngine(t)
	ctx := context.Background()

	_, err := svc.Latest(ctx)
	assert.ErrorIs(t, err, forecast.ErrNoForecast)

	// Record a forecast dated later than the one that follows it:
	// "latest" still means last inserted, not max forecast_date.
	_, err = svc.Record(ctx, forecast.RecordParams{
		ForecastDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		TotalForecast: dec("100"),
		Confidence:    forecast.ConfidenceHigh,
		Method:        forecast.MethodEarnedValue,
	})
	require.NoError(t, err)

	_, err = svc.Record(ctx, forecast.RecordParams{
		ForecastDate:  time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		TotalForecast: dec("200"),
		Confidence:    forecast.ConfidenceHigh,
		Method:        forecast.MethodEarnedValue,
	})
	require.NoError(t, err)

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, latest.TotalForecast.Equal(dec("200")))

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].TotalForecast.Equal(dec("200")))
	assert.True(t, history[1].TotalForecast.Equal(dec("100")))
}
