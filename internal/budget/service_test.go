package budget_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gcpanel/costcore/internal/budget"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

func TestService_AddItem(t *testing.T) {
	type testCase struct {
		name      string
		params    budget.CreateParams
		setupMock func(m *budget.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: budget.CreateParams{
				Category:       budget.CategoryLabor,
				Description:    "Level 15 structural crew",
				CostCode:       "03-100",
				BudgetedAmount: dec("100000"),
			},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().
					CreateItem(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, item *budget.BudgetItem) error {
						item.ID = 1
						item.Version = 1
						return nil
					})
			},
		},
		{
			name: "ZeroBudget",
			params: budget.CreateParams{
				Category:       budget.CategoryMaterials,
				BudgetedAmount: decimal.Zero,
			},
			wantErr: budget.ErrInvalidAmount,
		},
		{
			name: "NegativeBudget",
			params: budget.CreateParams{
				Category:       budget.CategoryMaterials,
				BudgetedAmount: dec("-500"),
			},
			wantErr: budget.ErrInvalidAmount,
		},
		{
			name: "UnknownCategory",
			params: budget.CreateParams{
				Category:       budget.Category("Misc"),
				BudgetedAmount: dec("1000"),
			},
			wantErr: budget.ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := budget.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := budget.NewService(repo)
			got, err := svc.AddItem(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)

			// A fresh item forecasts at its full budget.
			assert.True(t, got.ForecastFinal.Equal(tt.params.BudgetedAmount),
				"forecast %s, want %s", got.ForecastFinal, tt.params.BudgetedAmount)
			assert.True(t, got.Variance.IsZero())
		})
	}
}

func TestService_DerivedFields(t *testing.T) {
	// The worked scenario: budget 100000, spend 60000, 75% complete.
	// forecast_final = 60000 + (100000-60000) * 25/100 = 70000
	// variance       = 70000 - 100000 = -30000
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stored := &budget.BudgetItem{
		ID:             7,
		Category:       budget.CategoryLabor,
		BudgetedAmount: dec("100000"),
		Version:        1,
	}
	stored.Derive()

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().GetItem(gomock.Any(), int64(7)).Return(stored, nil).Times(2)
	repo.EXPECT().UpdateItem(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	svc := budget.NewService(repo)

	item, err := svc.RecordActualSpend(context.Background(), 7, dec("60000"))
	require.NoError(t, err)
	assert.True(t, item.ForecastFinal.Equal(dec("100000")),
		"spend alone does not change a 0%% complete forecast, got %s", item.ForecastFinal)

	item, err = svc.UpdateCompletion(context.Background(), 7, dec("75"))
	require.NoError(t, err)

	assert.True(t, item.ForecastFinal.Equal(dec("70000")), "forecast %s", item.ForecastFinal)
	assert.True(t, item.Variance.Equal(dec("-30000")), "variance %s", item.Variance)

	// The invariant holds exactly.
	want := item.ActualSpent.Add(
		item.BudgetedAmount.Sub(item.ActualSpent).
			Mul(dec("100").Sub(item.CompletionPercent)).
			Div(dec("100")),
	).Round(2)
	assert.True(t, item.ForecastFinal.Equal(want))
	assert.True(t, item.Variance.Equal(item.ForecastFinal.Sub(item.BudgetedAmount)))
}

func TestService_RecordActualSpend_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	svc := budget.NewService(repo)

	_, err := svc.RecordActualSpend(context.Background(), 1, dec("-1"))
	assert.ErrorIs(t, err, budget.ErrInvalidAmount)

	repo.EXPECT().GetItem(gomock.Any(), int64(99)).Return(nil, budget.ErrNotFound)

	_, err = svc.RecordActualSpend(context.Background(), 99, dec("10"))
	assert.ErrorIs(t, err, budget.ErrNotFound)
}

func TestService_UpdateCompletion_OutOfRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	svc := budget.NewService(repo)

	for _, pct := range []string{"-1", "100.01", "200"} {
		_, err := svc.UpdateCompletion(context.Background(), 1, dec(pct))
		assert.ErrorIs(t, err, budget.ErrOutOfRange, "pct %s", pct)
	}
}

func TestService_ConflictPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stored := &budget.BudgetItem{ID: 3, BudgetedAmount: dec("500"), Version: 2}
	stored.Derive()

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().GetItem(gomock.Any(), int64(3)).Return(stored, nil)
	repo.EXPECT().UpdateItem(gomock.Any(), gomock.Any()).Return(budget.ErrConflict)

	svc := budget.NewService(repo)

	_, err := svc.UpdateCompletion(context.Background(), 3, dec("50"))
	assert.ErrorIs(t, err, budget.ErrConflict)
}

func TestService_Totals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	items := []*budget.BudgetItem{
		{BudgetedAmount: dec("8500000"), CommittedAmount: dec("7200000"), ActualSpent: dec("6850000")},
		{BudgetedAmount: dec("5200000"), CommittedAmount: dec("4800000"), ActualSpent: dec("4650000")},
		{BudgetedAmount: dec("950000"), CommittedAmount: dec("850000"), ActualSpent: dec("820000")},
	}
	for _, item := range items {
		item.Derive()
	}

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().ListItems(gomock.Any(), budget.ListFilter{}).Return(items, nil)

	svc := budget.NewService(repo)

	totals, err := svc.Totals(context.Background())
	require.NoError(t, err)

	assert.True(t, totals.Budgeted.Equal(dec("14650000")), "budgeted %s", totals.Budgeted)
	assert.True(t, totals.Committed.Equal(dec("12850000")), "committed %s", totals.Committed)
	assert.True(t, totals.Spent.Equal(dec("12320000")), "spent %s", totals.Spent)

	var wantForecast decimal.Decimal
	for _, item := range items {
		wantForecast = wantForecast.Add(item.ForecastFinal)
	}
	assert.True(t, totals.Forecast.Equal(wantForecast.Round(2)))
}

func TestService_Totals_SumThenRound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Three thirds of a cent: rounding each item first would lose the
	// cent, summing first keeps it.
	items := []*budget.BudgetItem{
		{BudgetedAmount: dec("0.00333"), ActualSpent: dec("0.00333")},
		{BudgetedAmount: dec("0.00333"), ActualSpent: dec("0.00333")},
		{BudgetedAmount: dec("0.00334"), ActualSpent: dec("0.00334")},
	}

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().ListItems(gomock.Any(), budget.ListFilter{}).Return(items, nil)

	svc := budget.NewService(repo)

	totals, err := svc.Totals(context.Background())
	require.NoError(t, err)
	assert.True(t, totals.Spent.Equal(dec("0.01")), "spent %s", totals.Spent)
}

func TestService_Remove(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().RemoveItem(gomock.Any(), int64(4), gomock.Any()).Return(nil)
	repo.EXPECT().RemoveItem(gomock.Any(), int64(5), gomock.Any()).Return(budget.ErrNotFound)

	svc := budget.NewService(repo)

	assert.NoError(t, svc.Remove(context.Background(), 4))
	assert.ErrorIs(t, svc.Remove(context.Background(), 5), budget.ErrNotFound)
}

func TestService_List_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().ListItems(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

	svc := budget.NewService(repo)

	_, err := svc.Totals(context.Background())
	assert.Error(t, err)
}
