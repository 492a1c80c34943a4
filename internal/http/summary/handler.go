package summary

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gcpanel/costcore/internal/summary"
)

type Handler struct {
	svc *summary.Service
}

func NewHandler(svc *summary.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.projectSummary)
}

type summaryResponse struct {
	TotalBudget         decimal.Decimal `json:"total_budget"`
	TotalSpent          decimal.Decimal `json:"total_spent"`
	TotalCommitted      decimal.Decimal `json:"total_committed"`
	LatestForecastTotal decimal.Decimal `json:"latest_forecast_total"`
	PendingPaymentCount int             `json:"pending_payment_count"`
	TotalPaidToDate     decimal.Decimal `json:"total_paid_to_date"`
}

func (h *Handler) projectSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.ProjectSummary(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		TotalBudget:         sum.TotalBudget,
		TotalSpent:          sum.TotalSpent,
		TotalCommitted:      sum.TotalCommitted,
		LatestForecastTotal: sum.LatestForecastTotal,
		PendingPaymentCount: sum.PendingPaymentCount,
		TotalPaidToDate:     sum.TotalPaidToDate,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
