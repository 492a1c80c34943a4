package budget

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies a budget line item.
type Category string

const (
	CategoryLabor          Category = "Labor"
	CategoryMaterials      Category = "Materials"
	CategoryEquipment      Category = "Equipment"
	CategorySubcontractors Category = "Subcontractors"
	CategoryOverhead       Category = "Overhead"
	CategoryContingency    Category = "Contingency"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryLabor, CategoryMaterials, CategoryEquipment,
		CategorySubcontractors, CategoryOverhead, CategoryContingency:
		return true
	}

	return false
}

var (
	ErrNotFound        = errors.New("budget item not found")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrOutOfRange      = errors.New("completion percentage out of range")
	ErrConflict        = errors.New("budget item was modified concurrently")
)

// BudgetItem is a single budget line for a project. ForecastFinal and
// Variance are derived; callers never set them directly.
type BudgetItem struct {
	ID                 int64
	Category           Category
	Description        string
	CostCode           string
	ResponsibleManager string

	BudgetedAmount  decimal.Decimal
	CommittedAmount decimal.Decimal
	ActualSpent     decimal.Decimal

	CompletionPercent decimal.Decimal // 0-100
	ForecastFinal     decimal.Decimal
	Variance          decimal.Decimal

	CreatedAt   time.Time
	LastUpdated time.Time
	RemovedAt   *time.Time

	// Version is bumped on every write and checked on update.
	Version int64
}

var hundred = decimal.NewFromInt(100)

// Derive recomputes ForecastFinal and Variance from the item's inputs.
// This is the single source of truth for the straight-line estimate:
//
//	forecast_final = spent + (budgeted - spent) * (100 - completion) / 100
//	variance       = forecast_final - budgeted
//
// A positive variance is a projected overrun.
func (i *BudgetItem) Derive() {
	remaining := i.BudgetedAmount.Sub(i.ActualSpent)
	weight := hundred.Sub(i.CompletionPercent).Div(hundred)

	i.ForecastFinal = i.ActualSpent.Add(remaining.Mul(weight)).Round(2)
	i.Variance = i.ForecastFinal.Sub(i.BudgetedAmount).Round(2)
}

// Removed reports whether the item has been soft-removed.
func (i *BudgetItem) Removed() bool {
	return i.RemovedAt != nil
}

// Totals aggregates the monetary fields over all non-removed items.
type Totals struct {
	Budgeted  decimal.Decimal
	Committed decimal.Decimal
	Spent     decimal.Decimal
	Forecast  decimal.Decimal
}
