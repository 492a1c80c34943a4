package changeorder

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gcpanel/costcore/internal/changeorder"
	"github.com/gcpanel/costcore/internal/contracts"
)

type Handler struct {
	svc *changeorder.Service
}

func NewHandler(svc *changeorder.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.submit)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/review", h.markUnderReview)
	r.Post("/{id}/approve", h.approve)
	r.Post("/{id}/reject", h.reject)
}

type submitRequest struct {
	ContractID  uuid.UUID        `json:"contract_id"`
	Amount      decimal.Decimal  `json:"amount"`
	Type        changeorder.Type `json:"type"`
	Reason      string           `json:"reason"`
	SubmittedBy string           `json:"submitted_by"`
}

type orderResponse struct {
	ID              uuid.UUID          `json:"id"`
	ContractID      uuid.UUID          `json:"contract_id"`
	Amount          decimal.Decimal    `json:"amount"`
	Type            changeorder.Type   `json:"type"`
	Reason          string             `json:"reason"`
	Status          changeorder.Status `json:"status"`
	SubmittedBy     string             `json:"submitted_by"`
	SubmittedDate   time.Time          `json:"submitted_date"`
	ApprovedBy      string             `json:"approved_by,omitempty"`
	ApprovedDate    *time.Time         `json:"approved_date,omitempty"`
	RejectedDate    *time.Time         `json:"rejected_date,omitempty"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
}

type approvalResponse struct {
	Order            orderResponse   `json:"change_order"`
	NewContractValue decimal.Decimal `json:"new_contract_value"`
	AlreadyApproved  bool            `json:"already_approved,omitempty"`
}

func toResponse(co *changeorder.ChangeOrder) orderResponse {
	return orderResponse{
		ID:              co.ID,
		ContractID:      co.ContractID,
		Amount:          co.Amount,
		Type:            co.Type,
		Reason:          co.Reason,
		Status:          co.Status,
		SubmittedBy:     co.SubmittedBy,
		SubmittedDate:   co.SubmittedDate,
		ApprovedBy:      co.ApprovedBy,
		ApprovedDate:    co.ApprovedDate,
		RejectedDate:    co.RejectedDate,
		RejectionReason: co.RejectionReason,
	}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	co, err := h.svc.Submit(r.Context(), changeorder.SubmitParams{
		ContractID:  req.ContractID,
		Amount:      req.Amount,
		Type:        req.Type,
		Reason:      req.Reason,
		SubmittedBy: req.SubmittedBy,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(co))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var contractID *uuid.UUID

	if s := r.URL.Query().Get("contract_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid contract id", http.StatusBadRequest)
			return
		}

		contractID = &id
	}

	cos, err := h.svc.List(r.Context(), contractID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]orderResponse, len(cos))
	for i, co := range cos {
		out[i] = toResponse(co)
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	co, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(co))
}

func (h *Handler) markUnderReview(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	co, err := h.svc.MarkUnderReview(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(co))
}

type approveRequest struct {
	Approver string `json:"approver"`
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.svc.Approve(r.Context(), id, req.Approver)
	if err != nil && !errors.Is(err, changeorder.ErrAlreadyApproved) {
		writeError(w, err)
		return
	}

	// A repeated approval is a no-op, not a failure: same result, flagged.
	writeJSON(w, http.StatusOK, approvalResponse{
		Order:            toResponse(res.Order),
		NewContractValue: res.NewContractValue,
		AlreadyApproved:  errors.Is(err, changeorder.ErrAlreadyApproved),
	})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	co, err := h.svc.Reject(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(co))
}

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, changeorder.ErrNotFound), errors.Is(err, contracts.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, changeorder.ErrInvalidAmount), errors.Is(err, changeorder.ErrInvalidType):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, changeorder.ErrAlreadyFinal), errors.Is(err, changeorder.ErrConflict):
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
