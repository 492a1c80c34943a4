package contracts

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("contract not found")
	ErrInvalidAmount = errors.New("invalid contract value")
)

// Contract is the prime-contract record the change-order ledger amends.
// The cost core only ever touches ContractValue, and only through
// AddToContractValue.
type Contract struct {
	ID            uuid.UUID
	Name          string
	Contractor    string
	ContractValue decimal.Decimal
	CreatedAt     time.Time
}
