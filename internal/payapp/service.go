package payapp

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payapp
type Repository interface {
	// Create stores a new application. A reused application number
	// returns ErrDuplicateNumber.
	Create(ctx context.Context, app *PaymentApplication) error

	Get(ctx context.Context, applicationNumber int64) (*PaymentApplication, error)

	// Update persists app if its Version still matches, then bumps it.
	// Returns ErrConflict on a version mismatch.
	Update(ctx context.Context, app *PaymentApplication) error

	// List returns applications ordered by application number; a nil
	// status means all.
	List(ctx context.Context, status *Status) ([]*PaymentApplication, error)
}

// Service enforces the Draft -> Submitted -> Approved -> Paid workflow
// and the once-only derivation of retention and net payment.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ApplicationNumber   int64
	PeriodEnding        time.Time
	ApplicationDate     time.Time
	AmountRequested     decimal.Decimal
	WorkCompletedToDate decimal.Decimal
	RetentionRate       decimal.Decimal
}

func validateAmounts(amount, rate decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount requested must be positive, got %s", ErrInvalidAmount, amount)
	}

	if rate.IsNegative() || rate.GreaterThan(maxRetentionRate) {
		return fmt.Errorf("%w: retention rate must be within [0, %s], got %s", ErrInvalidAmount, maxRetentionRate, rate)
	}

	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*PaymentApplication, error) {
	if err := validateAmounts(params.AmountRequested, params.RetentionRate); err != nil {
		return nil, err
	}

	app := &PaymentApplication{
		ApplicationNumber:   params.ApplicationNumber,
		PeriodEnding:        params.PeriodEnding,
		ApplicationDate:     params.ApplicationDate,
		AmountRequested:     params.AmountRequested,
		WorkCompletedToDate: params.WorkCompletedToDate,
		RetentionRate:       params.RetentionRate,
		Status:              StatusDraft,
		CreatedAt:           time.Now(),
	}
	app.deriveRetention()

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("creating payment application %d: %w", params.ApplicationNumber, err)
	}

	return app, nil
}

type UpdateParams struct {
	PeriodEnding        time.Time
	AmountRequested     decimal.Decimal
	WorkCompletedToDate decimal.Decimal
	RetentionRate       decimal.Decimal
}

// UpdateDraft re-edits a Draft application and re-derives its
// retention. Applications that have left Draft are immutable.
func (s *Service) UpdateDraft(ctx context.Context, applicationNumber int64, params UpdateParams) (*PaymentApplication, error) {
	if err := validateAmounts(params.AmountRequested, params.RetentionRate); err != nil {
		return nil, err
	}

	app, err := s.repo.Get(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}

	if app.Status != StatusDraft {
		return nil, fmt.Errorf("%w: application %d is %s", ErrImmutable, applicationNumber, app.Status)
	}

	app.PeriodEnding = params.PeriodEnding
	app.AmountRequested = params.AmountRequested
	app.WorkCompletedToDate = params.WorkCompletedToDate
	app.RetentionRate = params.RetentionRate
	app.deriveRetention()

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("updating payment application %d: %w", applicationNumber, err)
	}

	return app, nil
}

// Submit moves a Draft application into review.
func (s *Service) Submit(ctx context.Context, applicationNumber int64) (*PaymentApplication, error) {
	return s.transition(ctx, applicationNumber, EventSubmit)
}

// Approve certifies a submitted application for payment.
func (s *Service) Approve(ctx context.Context, applicationNumber int64) (*PaymentApplication, error) {
	return s.transition(ctx, applicationNumber, EventApprove)
}

// MarkPaid records payment of an approved application.
func (s *Service) MarkPaid(ctx context.Context, applicationNumber int64) (*PaymentApplication, error) {
	return s.transition(ctx, applicationNumber, EventMarkPaid)
}

// Reject terminates a submitted or approved application.
func (s *Service) Reject(ctx context.Context, applicationNumber int64) (*PaymentApplication, error) {
	return s.transition(ctx, applicationNumber, EventReject)
}

// transition applies one state-machine event. An illegal move leaves
// the application untouched and reports the offending pair.
func (s *Service) transition(ctx context.Context, applicationNumber int64, event Event) (*PaymentApplication, error) {
	app, err := s.repo.Get(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}

	next, ok := transitions[transitionKey{from: app.Status, event: event}]
	if !ok {
		return nil, &IllegalTransitionError{Current: app.Status, Event: event}
	}

	now := time.Now()
	app.Status = next

	switch next {
	case StatusSubmitted:
		app.SubmittedDate = &now
	case StatusApproved:
		app.ApprovedDate = &now
	case StatusPaid:
		app.PaidDate = &now
	case StatusRejected:
		app.RejectedDate = &now
	}

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("transitioning payment application %d: %w", applicationNumber, err)
	}

	return app, nil
}

func (s *Service) Get(ctx context.Context, applicationNumber int64) (*PaymentApplication, error) {
	return s.repo.Get(ctx, applicationNumber)
}

// ByStatus lists applications in the given state, e.g. Submitted for
// "pending approval".
func (s *Service) ByStatus(ctx context.Context, status Status) ([]*PaymentApplication, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	return s.repo.List(ctx, &status)
}

func (s *Service) List(ctx context.Context) ([]*PaymentApplication, error) {
	return s.repo.List(ctx, nil)
}
