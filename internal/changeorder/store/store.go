package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/gcpanel/costcore/internal/changeorder"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectOrderColumns = `
	id, contract_id, amount, type, reason, status,
	submitted_by, submitted_date, approved_by, approved_date,
	rejected_date, rejection_reason, version
`

func scanOrder(s scanner) (*changeorder.ChangeOrder, error) {
	var co changeorder.ChangeOrder

	var coType, status string

	var approvedBy, rejectionReason sql.NullString

	var approvedDate, rejectedDate sql.NullTime

	if err := s.Scan(
		&co.ID, &co.ContractID, &co.Amount, &coType, &co.Reason, &status,
		&co.SubmittedBy, &co.SubmittedDate, &approvedBy, &approvedDate,
		&rejectedDate, &rejectionReason, &co.Version,
	); err != nil {
		return nil, err
	}

	co.Type = changeorder.Type(coType)
	co.Status = changeorder.Status(status)
	co.ApprovedBy = approvedBy.String
	co.RejectionReason = rejectionReason.String

	if approvedDate.Valid {
		co.ApprovedDate = &approvedDate.Time
	}

	if rejectedDate.Valid {
		co.RejectedDate = &rejectedDate.Time
	}

	return &co, nil
}

func (s *Store) Create(ctx context.Context, co *changeorder.ChangeOrder) error {
	query := `
		INSERT INTO change_orders (
			id, contract_id, amount, type, reason, status,
			submitted_by, submitted_date, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
		RETURNING version
	`

	err := s.db.QueryRowContext(ctx, query,
		co.ID,
		co.ContractID,
		co.Amount,
		co.Type,
		co.Reason,
		co.Status,
		co.SubmittedBy,
		co.SubmittedDate,
	).Scan(&co.Version)
	if err != nil {
		return fmt.Errorf("creating change order: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*changeorder.ChangeOrder, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM change_orders WHERE id = $1`

	co, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, changeorder.ErrNotFound
		}

		return nil, fmt.Errorf("getting change order: %w", err)
	}

	return co, nil
}

func (s *Store) Update(ctx context.Context, co *changeorder.ChangeOrder) error {
	query := `
		UPDATE change_orders
		SET status = $1, approved_by = $2, approved_date = $3,
			rejected_date = $4, rejection_reason = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	err := s.db.QueryRowContext(ctx, query,
		co.Status,
		co.ApprovedBy,
		co.ApprovedDate,
		co.RejectedDate,
		co.RejectionReason,
		co.ID,
		co.Version,
	).Scan(&co.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return s.updateMissReason(ctx, co.ID)
		}

		return fmt.Errorf("updating change order: %w", err)
	}

	return nil
}

func (s *Store) updateMissReason(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM change_orders WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking change order: %w", err)
	}

	if !exists {
		return changeorder.ErrNotFound
	}

	return changeorder.ErrConflict
}

func (s *Store) List(ctx context.Context, contractID *uuid.UUID) ([]*changeorder.ChangeOrder, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM change_orders`

	var args []any

	if contractID != nil {
		query += ` WHERE contract_id = $1`

		args = append(args, *contractID)
	}

	rows, err := s.db.QueryContext(ctx, query+` ORDER BY submitted_date`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing change orders: %w", err)
	}
	defer rows.Close()

	var cos []*changeorder.ChangeOrder

	for rows.Next() {
		co, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning change order: %w", err)
		}

		cos = append(cos, co)
	}

	return cos, rows.Err()
}
