package summary_test

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
	"github.com/gcpanel/costcore/internal/payapp"
	"github.com/gcpanel/costcore/internal/summary"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

func TestService_ProjectSummary(t *testing.T) {
	ctx := context.Background()

	budgets := budget.NewService(memstore.NewBudgetStore())
	forecasts := forecast.NewService(memstore.NewForecastStore(), budgets)
	payapps := payapp.NewService(memstore.NewPayAppStore())

	svc := summary.NewService(budgets, forecasts, payapps)

	// Empty project: everything zero.
	got, err := svc.ProjectSummary(ctx)
	require.NoError(t, err)
	assert.True(t, got.TotalBudget.IsZero())
	assert.True(t, got.LatestForecastTotal.IsZero())
	assert.Zero(t, got.PendingPaymentCount)

	item, err := budgets.AddItem(ctx, budget.CreateParams{
		Category:       budget.CategoryLabor,
		Description:    "General labor",
		BudgetedAmount: dec("6800000"),
	})
	require.NoError(t, err)

	_, err = budgets.AddItem(ctx, budget.CreateParams{
		Category:        budget.CategorySubcontractors,
		Description:     "MEP systems",
		BudgetedAmount:  dec("5200000"),
		CommittedAmount: dec("4800000"),
	})
	require.NoError(t, err)

	_, err = budgets.RecordActualSpend(ctx, item.ID, dec("5950000"))
	require.NoError(t, err)

	_, err = forecasts.Record(ctx, forecast.RecordParams{
		ForecastDate:  time.Now(),
		TotalForecast: dec("11500000"),
		Confidence:    forecast.ConfidenceHigh,
		Method:        forecast.MethodEarnedValue,
		CreatedBy:     "Cost Engineer",
	})
	require.NoError(t, err)

	// Two applications: one pending, one fully paid.
	_, err = payapps.Create(ctx, payapp.CreateParams{
		ApplicationNumber: 7,
		AmountRequested:   dec("2000000"),
		RetentionRate:     dec("5"),
	})
	require.NoError(t, err)

	_, err = payapps.Submit(ctx, 7)
	require.NoError(t, err)

	_, err = payapps.Create(ctx, payapp.CreateParams{
		ApplicationNumber: 8,
		AmountRequested:   dec("2847500"),
		RetentionRate:     dec("5"),
	})
	require.NoError(t, err)

	for _, step := range []func(context.Context, int64) (*payapp.PaymentApplication, error){
		payapps.Submit, payapps.Approve, payapps.MarkPaid,
	} {
		_, err = step(ctx, 8)
		require.NoError(t, err)
	}

	got, err = svc.ProjectSummary(ctx)
	require.NoError(t, err)

	assert.True(t, got.TotalBudget.Equal(dec("12000000")), "budget %s", got.TotalBudget)
	assert.True(t, got.TotalSpent.Equal(dec("5950000")), "spent %s", got.TotalSpent)
	assert.True(t, got.TotalCommitted.Equal(dec("4800000")), "committed %s", got.TotalCommitted)
	assert.True(t, got.LatestForecastTotal.Equal(dec("11500000")))
	assert.Equal(t, 1, got.PendingPaymentCount)
	assert.True(t, got.TotalPaidToDate.Equal(dec("2705125.00")), "paid %s", got.TotalPaidToDate)
}

func TestService_ProjectSummary_NoCaching(t *testing.T) {
	ctx := context.Background()

	budgets := budget.NewService(memstore.NewBudgetStore())
	forecasts := forecast.NewService(memstore.NewForecastStore(), budgets)
	payapps := payapp.NewService(memstore.NewPayAppStore())

	svc := summary.NewService(budgets, forecasts, payapps)

	item, err := budgets.AddItem(ctx, budget.CreateParams{
		Category:       budget.CategoryEquipment,
		BudgetedAmount: dec("950000"),
	})
	require.NoError(t, err)

	before, err := svc.ProjectSummary(ctx)
	require.NoError(t, err)
	assert.True(t, before.TotalSpent.IsZero())

	_, err = budgets.RecordActualSpend(ctx, item.ID, dec("820000"))
	require.NoError(t, err)

	after, err := svc.ProjectSummary(ctx)
	require.NoError(t, err)
	assert.True(t, after.TotalSpent.Equal(dec("820000")), "summary must reflect current state")

	// Removing the item drops it from the totals too.
	require.NoError(t, budgets.Remove(ctx, item.ID))

	final, err := svc.ProjectSummary(ctx)
	require.NoError(t, err)
	assert.True(t, final.TotalBudget.IsZero())
	assert.True(t, final.TotalSpent.IsZero())
}
