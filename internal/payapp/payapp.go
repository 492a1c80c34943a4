package payapp

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a payment application. Paid and
// Rejected are terminal.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusSubmitted Status = "Submitted"
	StatusApproved  Status = "Approved"
	StatusPaid      Status = "Paid"
	StatusRejected  Status = "Rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusPaid, StatusRejected:
		return true
	}

	return false
}

// Event is a requested state-machine move.
type Event string

const (
	EventSubmit   Event = "submit"
	EventApprove  Event = "approve"
	EventMarkPaid Event = "mark_paid"
	EventReject   Event = "reject"
)

type transitionKey struct {
	from  Status
	event Event
}

// transitions is the closed set of legal moves. Anything not in this
// table is an illegal transition, including every backward move and
// Submitted straight to Paid.
var transitions = map[transitionKey]Status{
	{StatusDraft, EventSubmit}:      StatusSubmitted,
	{StatusSubmitted, EventApprove}: StatusApproved,
	{StatusApproved, EventMarkPaid}: StatusPaid,
	{StatusSubmitted, EventReject}:  StatusRejected,
	{StatusApproved, EventReject}:   StatusRejected,
}

var (
	ErrNotFound          = errors.New("payment application not found")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrImmutable         = errors.New("payment application is no longer editable")
	ErrDuplicateNumber   = errors.New("application number already used")
	ErrConflict          = errors.New("payment application was modified concurrently")
)

// IllegalTransitionError reports the state the application was in and
// the move that was requested. It wraps ErrIllegalTransition.
type IllegalTransitionError struct {
	Current Status
	Event   Event
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition: cannot %s from %s", e.Event, e.Current)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// maxRetentionRate is the contractual ceiling on retention, percent.
var maxRetentionRate = decimal.NewFromInt(15)

var hundred = decimal.NewFromInt(100)

// PaymentApplication is a periodic bill to the owner. RetentionAmount
// and NetPayment are computed once at creation (or a Draft re-edit)
// and are immutable afterwards.
type PaymentApplication struct {
	ApplicationNumber int64
	PeriodEnding      time.Time
	ApplicationDate   time.Time

	AmountRequested     decimal.Decimal
	WorkCompletedToDate decimal.Decimal
	RetentionRate       decimal.Decimal // percent, 0-15
	RetentionAmount     decimal.Decimal
	NetPayment          decimal.Decimal

	Status        Status
	SubmittedDate *time.Time
	ApprovedDate  *time.Time
	PaidDate      *time.Time
	RejectedDate  *time.Time

	CreatedAt time.Time
	Version   int64
}

// deriveRetention computes RetentionAmount and NetPayment so that
// retention + net == requested to the cent.
func (a *PaymentApplication) deriveRetention() {
	a.RetentionAmount = a.AmountRequested.Mul(a.RetentionRate).Div(hundred).Round(2)
	a.NetPayment = a.AmountRequested.Sub(a.RetentionAmount)
}
