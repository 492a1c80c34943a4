package changeorder

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type classifies the contract impact of a change order.
type Type string

const (
	TypeAddition  Type = "Addition"
	TypeDeduction Type = "Deduction"
	TypeCredit    Type = "Credit"
)

func (t Type) Valid() bool {
	switch t {
	case TypeAddition, TypeDeduction, TypeCredit:
		return true
	}

	return false
}

// Status is the review state of a change order. Approved and Rejected
// are terminal.
type Status string

const (
	StatusSubmitted   Status = "Submitted"
	StatusUnderReview Status = "UnderReview"
	StatusApproved    Status = "Approved"
	StatusRejected    Status = "Rejected"
)

var (
	ErrNotFound        = errors.New("change order not found")
	ErrInvalidAmount   = errors.New("invalid change order amount")
	ErrInvalidType     = errors.New("invalid change order type")
	ErrAlreadyApproved = errors.New("change order already approved")
	ErrAlreadyFinal    = errors.New("change order is in a terminal state")
	ErrConflict        = errors.New("change order was modified concurrently")
)

// ChangeOrder amends a contract's value. Approving it is the only
// operation in the cost core allowed to mutate the contract value, and
// it does so exactly once.
type ChangeOrder struct {
	ID         uuid.UUID
	ContractID uuid.UUID

	// Amount is signed: positive adds to the contract, negative
	// deducts from it.
	Amount decimal.Decimal
	Type   Type
	Reason string

	Status          Status
	SubmittedBy     string
	SubmittedDate   time.Time
	ApprovedBy      string
	ApprovedDate    *time.Time
	RejectedDate    *time.Time
	RejectionReason string

	Version int64
}

// ApprovalResult pairs the approved order with the contract value it
// produced. A repeated approval returns the same result again.
type ApprovalResult struct {
	Order            *ChangeOrder
	NewContractValue decimal.Decimal
}
