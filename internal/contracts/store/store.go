package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gcpanel/costcore/internal/contracts"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, c *contracts.Contract) error {
	query := `
		INSERT INTO contracts (id, name, contractor, contract_value, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := s.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Contractor, c.ContractValue, c.CreatedAt,
	); err != nil {
		return fmt.Errorf("creating contract: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*contracts.Contract, error) {
	query := `SELECT id, name, contractor, contract_value, created_at FROM contracts WHERE id = $1`

	var c contracts.Contract

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Contractor, &c.ContractValue, &c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contracts.ErrNotFound
		}

		return nil, fmt.Errorf("getting contract: %w", err)
	}

	return &c, nil
}

// AddValue is a single atomic UPDATE so concurrent deltas never lose
// each other.
func (s *Store) AddValue(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE contracts
		SET contract_value = contract_value + $1
		WHERE id = $2
		RETURNING contract_value
	`

	var value decimal.Decimal

	err := s.db.QueryRowContext(ctx, query, delta, id).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, contracts.ErrNotFound
		}

		return decimal.Zero, fmt.Errorf("adding to contract value: %w", err)
	}

	return value, nil
}

func (s *Store) List(ctx context.Context) ([]*contracts.Contract, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, contractor, contract_value, created_at FROM contracts ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing contracts: %w", err)
	}
	defer rows.Close()

	var cs []*contracts.Contract

	for rows.Next() {
		var c contracts.Contract
		if err := rows.Scan(&c.ID, &c.Name, &c.Contractor, &c.ContractValue, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning contract: %w", err)
		}

		cs = append(cs, &c)
	}

	return cs, rows.Err()
}
