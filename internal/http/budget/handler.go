package budget

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gcpanel/costcore/internal/budget"
)

type Handler struct {
	svc *budget.Service
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/totals", h.totals)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.remove)
	r.Patch("/{id}/spend", h.recordSpend)
	r.Patch("/{id}/commitment", h.recordCommitment)
	r.Patch("/{id}/completion", h.updateCompletion)
}

type createItemRequest struct {
	Category           budget.Category `json:"category"`
	Description        string          `json:"description"`
	CostCode           string          `json:"cost_code"`
	ResponsibleManager string          `json:"responsible_manager"`
	BudgetedAmount     decimal.Decimal `json:"budgeted_amount"`
	CommittedAmount    decimal.Decimal `json:"committed_amount"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.svc.AddItem(r.Context(), budget.CreateParams{
		Category:           req.Category,
		Description:        req.Description,
		CostCode:           req.CostCode,
		ResponsibleManager: req.ResponsibleManager,
		BudgetedAmount:     req.BudgetedAmount,
		CommittedAmount:    req.CommittedAmount,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(item))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := budget.ListFilter{}

	if c := r.URL.Query().Get("category"); c != "" {
		cat := budget.Category(c)
		filter.Category = &cat
	}

	if r.URL.Query().Get("include_removed") == "true" {
		filter.IncludeRemoved = true
	}

	items, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(items))
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.Totals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, totalsResponse{
		Budgeted:  totals.Budgeted,
		Committed: totals.Committed,
		Spent:     totals.Spent,
		Forecast:  totals.Forecast,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(item))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Remove(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) recordSpend(w http.ResponseWriter, r *http.Request) {
	h.patchAmount(w, r, h.svc.RecordActualSpend)
}

func (h *Handler) recordCommitment(w http.ResponseWriter, r *http.Request) {
	h.patchAmount(w, r, h.svc.RecordCommitment)
}

func (h *Handler) updateCompletion(w http.ResponseWriter, r *http.Request) {
	h.patchAmount(w, r, h.svc.UpdateCompletion)
}

// patchAmount is shared by the single-decimal mutations; they differ
// only in which service method applies the value.
func (h *Handler) patchAmount(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, id int64, amount decimal.Decimal) (*budget.BudgetItem, error),
) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := apply(r.Context(), id, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(item))
}

func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}

	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, budget.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, budget.ErrInvalidAmount),
		errors.Is(err, budget.ErrOutOfRange),
		errors.Is(err, budget.ErrInvalidCategory):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, budget.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
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
