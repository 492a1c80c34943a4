package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gcpanel/costcore/internal/budget"
)

type itemResponse struct {
	ID                 int64           `json:"id"`
	Category           budget.Category `json:"category"`
	Description        string          `json:"description"`
	CostCode           string          `json:"cost_code"`
	ResponsibleManager string          `json:"responsible_manager"`
	BudgetedAmount     decimal.Decimal `json:"budgeted_amount"`
	CommittedAmount    decimal.Decimal `json:"committed_amount"`
	ActualSpent        decimal.Decimal `json:"actual_spent"`
	CompletionPercent  decimal.Decimal `json:"completion_percentage"`
	ForecastFinal      decimal.Decimal `json:"forecast_final"`
	Variance           decimal.Decimal `json:"variance"`
	LastUpdated        time.Time       `json:"last_updated"`
	Removed            bool            `json:"removed,omitempty"`
}

type totalsResponse struct {
	Budgeted  decimal.Decimal `json:"budgeted"`
	Committed decimal.Decimal `json:"committed"`
	Spent     decimal.Decimal `json:"spent"`
	Forecast  decimal.Decimal `json:"forecast"`
}

func toResponse(item *budget.BudgetItem) itemResponse {
	return itemResponse{
		ID:                 item.ID,
		Category:           item.Category,
		Description:        item.Description,
		CostCode:           item.CostCode,
		ResponsibleManager: item.ResponsibleManager,
		BudgetedAmount:     item.BudgetedAmount,
		CommittedAmount:    item.CommittedAmount,
		ActualSpent:        item.ActualSpent,
		CompletionPercent:  item.CompletionPercent,
		ForecastFinal:      item.ForecastFinal,
		Variance:           item.Variance,
		LastUpdated:        item.LastUpdated,
		Removed:            item.Removed(),
	}
}

func toResponseList(items []*budget.BudgetItem) []itemResponse {
	out := make([]itemResponse, len(items))
	for i, item := range items {
		out[i] = toResponse(item)
	}

	return out
}
