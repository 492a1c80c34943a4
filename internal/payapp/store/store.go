package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gcpanel/costcore/internal/payapp"
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

const selectAppColumns = `
	application_number, period_ending, application_date,
	amount_requested, work_completed_to_date, retention_rate,
	retention_amount, net_payment, status,
	submitted_date, approved_date, paid_date, rejected_date,
	created_at, version
`

func scanApp(s scanner) (*payapp.PaymentApplication, error) {
	var app payapp.PaymentApplication

	var status string

	var submitted, approved, paid, rejected sql.NullTime

	if err := s.Scan(
		&app.ApplicationNumber, &app.PeriodEnding, &app.ApplicationDate,
		&app.AmountRequested, &app.WorkCompletedToDate, &app.RetentionRate,
		&app.RetentionAmount, &app.NetPayment, &status,
		&submitted, &approved, &paid, &rejected,
		&app.CreatedAt, &app.Version,
	); err != nil {
		return nil, err
	}

	app.Status = payapp.Status(status)

	if submitted.Valid {
		app.SubmittedDate = &submitted.Time
	}

	if approved.Valid {
		app.ApprovedDate = &approved.Time
	}

	if paid.Valid {
		app.PaidDate = &paid.Time
	}

	if rejected.Valid {
		app.RejectedDate = &rejected.Time
	}

	return &app, nil
}

func (s *Store) Create(ctx context.Context, app *payapp.PaymentApplication) error {
	query := `
		INSERT INTO payment_applications (
			application_number, period_ending, application_date,
			amount_requested, work_completed_to_date, retention_rate,
			retention_amount, net_payment, status, created_at, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
		RETURNING version
	`

	err := s.db.QueryRowContext(ctx, query,
		app.ApplicationNumber,
		app.PeriodEnding,
		app.ApplicationDate,
		app.AmountRequested,
		app.WorkCompletedToDate,
		app.RetentionRate,
		app.RetentionAmount,
		app.NetPayment,
		app.Status,
		app.CreatedAt,
	).Scan(&app.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return payapp.ErrDuplicateNumber
		}

		return fmt.Errorf("creating payment application: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, applicationNumber int64) (*payapp.PaymentApplication, error) {
	query := `SELECT ` + selectAppColumns + ` FROM payment_applications WHERE application_number = $1`

	app, err := scanApp(s.db.QueryRowContext(ctx, query, applicationNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payapp.ErrNotFound
		}

		return nil, fmt.Errorf("getting payment application: %w", err)
	}

	return app, nil
}

func (s *Store) Update(ctx context.Context, app *payapp.PaymentApplication) error {
	query := `
		UPDATE payment_applications
		SET period_ending = $1, amount_requested = $2, work_completed_to_date = $3,
			retention_rate = $4, retention_amount = $5, net_payment = $6,
			status = $7, submitted_date = $8, approved_date = $9,
			paid_date = $10, rejected_date = $11,
			version = version + 1
		WHERE application_number = $12 AND version = $13
		RETURNING version
	`

	err := s.db.QueryRowContext(ctx, query,
		app.PeriodEnding,
		app.AmountRequested,
		app.WorkCompletedToDate,
		app.RetentionRate,
		app.RetentionAmount,
		app.NetPayment,
		app.Status,
		app.SubmittedDate,
		app.ApprovedDate,
		app.PaidDate,
		app.RejectedDate,
		app.ApplicationNumber,
		app.Version,
	).Scan(&app.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return s.updateMissReason(ctx, app.ApplicationNumber)
		}

		return fmt.Errorf("updating payment application: %w", err)
	}

	return nil
}

func (s *Store) updateMissReason(ctx context.Context, applicationNumber int64) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payment_applications WHERE application_number = $1)`, applicationNumber,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking payment application: %w", err)
	}

	if !exists {
		return payapp.ErrNotFound
	}

	return payapp.ErrConflict
}

func (s *Store) List(ctx context.Context, status *payapp.Status) ([]*payapp.PaymentApplication, error) {
	query := `SELECT ` + selectAppColumns + ` FROM payment_applications`

	var args []any

	if status != nil {
		query += ` WHERE status = $1`

		args = append(args, *status)
	}

	rows, err := s.db.QueryContext(ctx, query+` ORDER BY application_number`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payment applications: %w", err)
	}
	defer rows.Close()

	var apps []*payapp.PaymentApplication

	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment application: %w", err)
		}

		apps = append(apps, app)
	}

	return apps, rows.Err()
}
