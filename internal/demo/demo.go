// Package demo seeds an empty store with a worked example project so
// the API and TUI have data to show on first run.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gcpanel/costcore/internal/budget"
	"github.com/gcpanel/costcore/internal/changeorder"
	"github.com/gcpanel/costcore/internal/contracts"
	"github.com/gcpanel/costcore/internal/forecast"
	"github.com/gcpanel/costcore/internal/payapp"
)

type Services struct {
	Budgets      *budget.Service
	Forecasts    *forecast.Service
	PayApps      *payapp.Service
	Contracts    *contracts.Service
	ChangeOrders *changeorder.Service
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Seed loads the Highland Tower development project: a budget across
// every category, recorded spend and completion, one forecast, payment
// applications in several states, and an approved change order.
func Seed(ctx context.Context, svcs Services) error {
	type line struct {
		category   budget.Category
		desc       string
		code       string
		manager    string
		budgeted   string
		committed  string
		spent      string
		completion string
	}

	lines := []line{
		{budget.CategoryLabor, "Structural steel erection crew", "CC-3100", "M. Reyes", "4850000", "4200000", "3120000", "65"},
		{budget.CategoryMaterials, "Concrete and rebar, levels 1-15", "CC-2200", "M. Reyes", "6200000", "5900000", "4710000", "78"},
		{budget.CategoryEquipment, "Tower crane lease and operation", "CC-4400", "D. Okafor", "1480000", "1480000", "940000", "60"},
		{budget.CategorySubcontractors, "Mechanical, electrical, plumbing", "CC-5600", "D. Okafor", "9750000", "8100000", "3890000", "40"},
		{budget.CategoryOverhead, "Site office and supervision", "CC-1100", "S. Whitfield", "2100000", "1750000", "1310000", "62"},
		{budget.CategoryContingency, "Owner contingency reserve", "CC-9900", "S. Whitfield", "1500000", "0", "185000", "12"},
	}

	for _, l := range lines {
		item, err := svcs.Budgets.AddItem(ctx, budget.CreateParams{
			Category:           l.category,
			Description:        l.desc,
			CostCode:           l.code,
			ResponsibleManager: l.manager,
			BudgetedAmount:     dec(l.budgeted),
			CommittedAmount:    dec(l.committed),
		})
		if err != nil {
			return fmt.Errorf("seeding budget item %q: %w", l.desc, err)
		}

		if _, err := svcs.Budgets.RecordActualSpend(ctx, item.ID, dec(l.spent)); err != nil {
			return fmt.Errorf("seeding spend for %q: %w", l.desc, err)
		}

		if _, err := svcs.Budgets.UpdateCompletion(ctx, item.ID, dec(l.completion)); err != nil {
			return fmt.Errorf("seeding completion for %q: %w", l.desc, err)
		}
	}

	now := time.Now()

	_, err := svcs.Forecasts.Record(ctx, forecast.RecordParams{
		ForecastDate:          now,
		ProjectCompletionDate: now.AddDate(1, 2, 0),
		TotalForecast:         dec("26400000"),
		Confidence:            forecast.ConfidenceMedium,
		Method:                forecast.MethodEarnedValue,
		CreatedBy:             "S. Whitfield",
		RiskFactors:           []string{"steel price escalation", "winter weather window"},
		Assumptions:           []string{"MEP rough-in starts on schedule", "no further design revisions"},
	})
	if err != nil {
		return fmt.Errorf("seeding forecast: %w", err)
	}

	type app struct {
		number    int64
		amount    string
		completed string
		events    []func(context.Context, int64) (*payapp.PaymentApplication, error)
	}

	apps := []app{
		{1, "1850000", "1850000", []func(context.Context, int64) (*payapp.PaymentApplication, error){
			svcs.PayApps.Submit, svcs.PayApps.Approve, svcs.PayApps.MarkPaid,
		}},
		{2, "2140000", "3990000", []func(context.Context, int64) (*payapp.PaymentApplication, error){
			svcs.PayApps.Submit, svcs.PayApps.Approve,
		}},
		{3, "2847500", "6837500", []func(context.Context, int64) (*payapp.PaymentApplication, error){
			svcs.PayApps.Submit,
		}},
	}

	for i, a := range apps {
		_, err := svcs.PayApps.Create(ctx, payapp.CreateParams{
			ApplicationNumber:   a.number,
			PeriodEnding:        now.AddDate(0, i-3, 0),
			ApplicationDate:     now.AddDate(0, i-3, 5),
			AmountRequested:     dec(a.amount),
			WorkCompletedToDate: dec(a.completed),
			RetentionRate:       dec("5"),
		})
		if err != nil {
			return fmt.Errorf("seeding payment application %d: %w", a.number, err)
		}

		for _, ev := range a.events {
			if _, err := ev(ctx, a.number); err != nil {
				return fmt.Errorf("advancing payment application %d: %w", a.number, err)
			}
		}
	}

	contract, err := svcs.Contracts.Create(ctx, contracts.CreateParams{
		Name:          "Highland Tower GMP Contract",
		Contractor:    "Meridian Construction Group",
		ContractValue: dec("45500000"),
	})
	if err != nil {
		return fmt.Errorf("seeding contract: %w", err)
	}

	co, err := svcs.ChangeOrders.Submit(ctx, changeorder.SubmitParams{
		ContractID:  contract.ID,
		Amount:      dec("125000"),
		Type:        changeorder.TypeAddition,
		Reason:      "Owner-requested lobby finish upgrade",
		SubmittedBy: "M. Reyes",
	})
	if err != nil {
		return fmt.Errorf("seeding change order: %w", err)
	}

	if _, err := svcs.ChangeOrders.Approve(ctx, co.ID, "S. Whitfield"); err != nil {
		return fmt.Errorf("approving seeded change order: %w", err)
	}

	pending, err := svcs.ChangeOrders.Submit(ctx, changeorder.SubmitParams{
		ContractID:  contract.ID,
		Amount:      dec("-48000"),
		Type:        changeorder.TypeDeduction,
		Reason:      "Deleted scope: plaza water feature",
		SubmittedBy: "D. Okafor",
	})
	if err != nil {
		return fmt.Errorf("seeding pending change order: %w", err)
	}

	if _, err := svcs.ChangeOrders.MarkUnderReview(ctx, pending.ID); err != nil {
		return fmt.Errorf("marking seeded change order under review: %w", err)
	}

	return nil
}
