package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gcpanel/costcore/internal/budget"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectItemColumns = `
	id, category, description, cost_code, responsible_manager,
	budgeted_amount, committed_amount, actual_spent,
	completion_percent, forecast_final, variance,
	created_at, last_updated, removed_at, version
`

func scanItem(s scanner) (*budget.BudgetItem, error) {
	var item budget.BudgetItem

	var category string

	var removedAt sql.NullTime

	if err := s.Scan(
		&item.ID, &category, &item.Description, &item.CostCode, &item.ResponsibleManager,
		&item.BudgetedAmount, &item.CommittedAmount, &item.ActualSpent,
		&item.CompletionPercent, &item.ForecastFinal, &item.Variance,
		&item.CreatedAt, &item.LastUpdated, &removedAt, &item.Version,
	); err != nil {
		return nil, err
	}

	item.Category = budget.Category(category)

	if removedAt.Valid {
		item.RemovedAt = &removedAt.Time
	}

	return &item, nil
}

func (s *Store) CreateItem(ctx context.Context, item *budget.BudgetItem) error {
	query := `
		INSERT INTO budget_items (
			category, description, cost_code, responsible_manager,
			budgeted_amount, committed_amount, actual_spent,
			completion_percent, forecast_final, variance,
			created_at, last_updated, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1)
		RETURNING id, version
	`

	err := s.db.QueryRowContext(ctx, query,
		item.Category,
		item.Description,
		item.CostCode,
		item.ResponsibleManager,
		item.BudgetedAmount,
		item.CommittedAmount,
		item.ActualSpent,
		item.CompletionPercent,
		item.ForecastFinal,
		item.Variance,
		item.CreatedAt,
		item.LastUpdated,
	).Scan(&item.ID, &item.Version)
	if err != nil {
		return fmt.Errorf("creating budget item: %w", err)
	}

	return nil
}

func (s *Store) GetItem(ctx context.Context, id int64) (*budget.BudgetItem, error) {
	query := `SELECT ` + selectItemColumns + ` FROM budget_items WHERE id = $1`

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting budget item: %w", err)
	}

	return item, nil
}

// UpdateItem writes the item back with an optimistic version check. A
// concurrent writer that got there first makes the WHERE clause miss,
// which surfaces as budget.ErrConflict.
func (s *Store) UpdateItem(ctx context.Context, item *budget.BudgetItem) error {
	query := `
		UPDATE budget_items
		SET committed_amount = $1, actual_spent = $2, completion_percent = $3,
			forecast_final = $4, variance = $5, last_updated = $6,
			version = version + 1
		WHERE id = $7 AND version = $8 AND removed_at IS NULL
		RETURNING version
	`

	err := s.db.QueryRowContext(ctx, query,
		item.CommittedAmount,
		item.ActualSpent,
		item.CompletionPercent,
		item.ForecastFinal,
		item.Variance,
		item.LastUpdated,
		item.ID,
		item.Version,
	).Scan(&item.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return s.updateMissReason(ctx, item.ID)
		}

		return fmt.Errorf("updating budget item: %w", err)
	}

	return nil
}

// updateMissReason distinguishes a missing row from a stale version.
func (s *Store) updateMissReason(ctx context.Context, id int64) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM budget_items WHERE id = $1 AND removed_at IS NULL)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking budget item: %w", err)
	}

	if !exists {
		return budget.ErrNotFound
	}

	return budget.ErrConflict
}

func (s *Store) ListItems(ctx context.Context, filter budget.ListFilter) ([]*budget.BudgetItem, error) {
	query := `SELECT ` + selectItemColumns + ` FROM budget_items`

	var args []any

	where := ""
	if !filter.IncludeRemoved {
		where = ` WHERE removed_at IS NULL`
	}

	if filter.Category != nil {
		if where == "" {
			where = ` WHERE category = $1`
		} else {
			where += ` AND category = $1`
		}

		args = append(args, *filter.Category)
	}

	rows, err := s.db.QueryContext(ctx, query+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing budget items: %w", err)
	}
	defer rows.Close()

	var items []*budget.BudgetItem

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning budget item: %w", err)
		}

		items = append(items, item)
	}

	return items, rows.Err()
}

func (s *Store) RemoveItem(ctx context.Context, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE budget_items SET removed_at = $1, version = version + 1 WHERE id = $2 AND removed_at IS NULL`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("removing budget item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("removing budget item: %w", err)
	}

	if affected == 0 {
		return budget.ErrNotFound
	}

	return nil
}
