package contracts

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gcpanel/costcore/internal/contracts"
)

type Handler struct {
	svc *contracts.Service
}

func NewHandler(svc *contracts.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

type createRequest struct {
	Name          string          `json:"name"`
	Contractor    string          `json:"contractor"`
	ContractValue decimal.Decimal `json:"contract_value"`
}

type contractResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Contractor    string          `json:"contractor"`
	ContractValue decimal.Decimal `json:"contract_value"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toResponse(c *contracts.Contract) contractResponse {
	return contractResponse{
		ID:            c.ID,
		Name:          c.Name,
		Contractor:    c.Contractor,
		ContractValue: c.ContractValue,
		CreatedAt:     c.CreatedAt,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), contracts.CreateParams{
		Name:          req.Name,
		Contractor:    req.Contractor,
		ContractValue: req.ContractValue,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]contractResponse, len(cs))
	for i, c := range cs {
		out[i] = toResponse(c)
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(c))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, contracts.ErrInvalidAmount):
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
