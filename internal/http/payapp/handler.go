package payapp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gcpanel/costcore/internal/payapp"
)

type Handler struct {
	svc *payapp.Service
}

func NewHandler(svc *payapp.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{number}", h.get)
	r.Put("/{number}", h.updateDraft)
	r.Post("/{number}/submit", h.submit)
	r.Post("/{number}/approve", h.approve)
	r.Post("/{number}/pay", h.markPaid)
	r.Post("/{number}/reject", h.reject)
}

type createRequest struct {
	ApplicationNumber   int64           `json:"application_number"`
	PeriodEnding        time.Time       `json:"period_ending"`
	ApplicationDate     time.Time       `json:"application_date"`
	AmountRequested     decimal.Decimal `json:"amount_requested"`
	WorkCompletedToDate decimal.Decimal `json:"work_completed_to_date"`
	RetentionRate       decimal.Decimal `json:"retention_rate"`
}

type appResponse struct {
	ApplicationNumber   int64           `json:"application_number"`
	PeriodEnding        time.Time       `json:"period_ending"`
	ApplicationDate     time.Time       `json:"application_date"`
	AmountRequested     decimal.Decimal `json:"amount_requested"`
	WorkCompletedToDate decimal.Decimal `json:"work_completed_to_date"`
	RetentionRate       decimal.Decimal `json:"retention_rate"`
	RetentionAmount     decimal.Decimal `json:"retention_amount"`
	NetPayment          decimal.Decimal `json:"net_payment"`
	Status              payapp.Status   `json:"status"`
	SubmittedDate       *time.Time      `json:"submitted_date,omitempty"`
	ApprovedDate        *time.Time      `json:"approved_date,omitempty"`
	PaidDate            *time.Time      `json:"paid_date,omitempty"`
	RejectedDate        *time.Time      `json:"rejected_date,omitempty"`
}

func toResponse(app *payapp.PaymentApplication) appResponse {
	return appResponse{
		ApplicationNumber:   app.ApplicationNumber,
		PeriodEnding:        app.PeriodEnding,
		ApplicationDate:     app.ApplicationDate,
		AmountRequested:     app.AmountRequested,
		WorkCompletedToDate: app.WorkCompletedToDate,
		RetentionRate:       app.RetentionRate,
		RetentionAmount:     app.RetentionAmount,
		NetPayment:          app.NetPayment,
		Status:              app.Status,
		SubmittedDate:       app.SubmittedDate,
		ApprovedDate:        app.ApprovedDate,
		PaidDate:            app.PaidDate,
		RejectedDate:        app.RejectedDate,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	app, err := h.svc.Create(r.Context(), payapp.CreateParams{
		ApplicationNumber:   req.ApplicationNumber,
		PeriodEnding:        req.PeriodEnding,
		ApplicationDate:     req.ApplicationDate,
		AmountRequested:     req.AmountRequested,
		WorkCompletedToDate: req.WorkCompletedToDate,
		RetentionRate:       req.RetentionRate,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(app))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		apps []*payapp.PaymentApplication
		err  error
	)

	if s := r.URL.Query().Get("status"); s != "" {
		apps, err = h.svc.ByStatus(r.Context(), payapp.Status(s))
	} else {
		apps, err = h.svc.List(r.Context())
	}

	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]appResponse, len(apps))
	for i, app := range apps {
		out[i] = toResponse(app)
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	number, ok := appNumber(w, r)
	if !ok {
		return
	}

	app, err := h.svc.Get(r.Context(), number)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(app))
}

type updateRequest struct {
	PeriodEnding        time.Time       `json:"period_ending"`
	AmountRequested     decimal.Decimal `json:"amount_requested"`
	WorkCompletedToDate decimal.Decimal `json:"work_completed_to_date"`
	RetentionRate       decimal.Decimal `json:"retention_rate"`
}

func (h *Handler) updateDraft(w http.ResponseWriter, r *http.Request) {
	number, ok := appNumber(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	app, err := h.svc.UpdateDraft(r.Context(), number, payapp.UpdateParams{
		PeriodEnding:        req.PeriodEnding,
		AmountRequested:     req.AmountRequested,
		WorkCompletedToDate: req.WorkCompletedToDate,
		RetentionRate:       req.RetentionRate,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(app))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Submit)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Approve)
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.MarkPaid)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Reject)
}

func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, number int64) (*payapp.PaymentApplication, error),
) {
	number, ok := appNumber(w, r)
	if !ok {
		return
	}

	app, err := apply(r.Context(), number)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(app))
}

func appNumber(w http.ResponseWriter, r *http.Request) (int64, bool) {
	number, err := strconv.ParseInt(chi.URLParam(r, "number"), 10, 64)
	if err != nil {
		http.Error(w, "invalid application number", http.StatusBadRequest)
		return 0, false
	}

	return number, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payapp.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, payapp.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, payapp.ErrIllegalTransition),
		errors.Is(err, payapp.ErrImmutable),
		errors.Is(err, payapp.ErrDuplicateNumber),
		errors.Is(err, payapp.ErrConflict):
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
