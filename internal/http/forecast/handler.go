package forecast

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gcpanel/costcore/internal/forecast"
)

type Handler struct {
	svc *forecast.Service
}

func NewHandler(svc *forecast.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.record)
	r.Get("/", h.history)
	r.Get("/latest", h.latest)
}

type recordRequest struct {
	ForecastDate          time.Time           `json:"forecast_date"`
	ProjectCompletionDate time.Time           `json:"project_completion_date"`
	TotalForecast         decimal.Decimal     `json:"total_forecast"`
	Confidence            forecast.Confidence `json:"confidence_level"`
	Method                forecast.Method     `json:"forecast_method"`
	CreatedBy             string              `json:"created_by"`
	RiskFactors           []string            `json:"risk_factors"`
	Assumptions           []string            `json:"assumptions"`
}

type forecastResponse struct {
	ID                    int64               `json:"id"`
	ForecastDate          time.Time           `json:"forecast_date"`
	ProjectCompletionDate time.Time           `json:"project_completion_date"`
	TotalForecast         decimal.Decimal     `json:"total_forecast"`
	Confidence            forecast.Confidence `json:"confidence_level"`
	Method                forecast.Method     `json:"forecast_method"`
	CreatedBy             string              `json:"created_by"`
	RiskFactors           []string            `json:"risk_factors"`
	Assumptions           []string            `json:"assumptions"`
	VarianceFromBudget    decimal.Decimal     `json:"variance_from_budget"`
	CreatedAt             time.Time           `json:"created_at"`
}

func toResponse(f *forecast.CostForecast) forecastResponse {
	return forecastResponse{
		ID:                    f.ID,
		ForecastDate:          f.ForecastDate,
		ProjectCompletionDate: f.ProjectCompletionDate,
		TotalForecast:         f.TotalForecast,
		Confidence:            f.Confidence,
		Method:                f.Method,
		CreatedBy:             f.CreatedBy,
		RiskFactors:           f.RiskFactors,
		Assumptions:           f.Assumptions,
		VarianceFromBudget:    f.VarianceFromBudget,
		CreatedAt:             f.CreatedAt,
	}
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := h.svc.Record(r.Context(), forecast.RecordParams{
		ForecastDate:          req.ForecastDate,
		ProjectCompletionDate: req.ProjectCompletionDate,
		TotalForecast:         req.TotalForecast,
		Confidence:            req.Confidence,
		Method:                req.Method,
		CreatedBy:             req.CreatedBy,
		RiskFactors:           req.RiskFactors,
		Assumptions:           req.Assumptions,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(f))
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Latest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(f))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	fs, err := h.svc.History(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]forecastResponse, len(fs))
	for i, f := range fs {
		out[i] = toResponse(f)
	}

	writeJSON(w, http.StatusOK, out)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, forecast.ErrNoForecast):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, forecast.ErrInvalidAmount),
		errors.Is(err, forecast.ErrInvalidMethod),
		errors.Is(err, forecast.ErrInvalidConfidence):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
