package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func New(connStr string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS budget_items (
		id BIGSERIAL PRIMARY KEY,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		cost_code TEXT NOT NULL,
		responsible_manager TEXT NOT NULL,
		budgeted_amount NUMERIC(14,2) NOT NULL,
		committed_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		actual_spent NUMERIC(14,2) NOT NULL DEFAULT 0,
		completion_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
		forecast_final NUMERIC(14,2) NOT NULL DEFAULT 0,
		variance NUMERIC(14,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		last_updated TIMESTAMPTZ NOT NULL,
		removed_at TIMESTAMPTZ,
		version BIGINT NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS cost_forecasts (
		id BIGSERIAL PRIMARY KEY,
		forecast_date TIMESTAMPTZ NOT NULL,
		project_completion_date TIMESTAMPTZ NOT NULL,
		total_forecast NUMERIC(14,2) NOT NULL,
		confidence_level TEXT NOT NULL,
		forecast_method TEXT NOT NULL,
		created_by TEXT NOT NULL,
		risk_factors JSONB NOT NULL DEFAULT '[]',
		assumptions JSONB NOT NULL DEFAULT '[]',
		variance_from_budget NUMERIC(14,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		contractor TEXT NOT NULL,
		contract_value NUMERIC(14,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS change_orders (
		id UUID PRIMARY KEY,
		contract_id UUID NOT NULL REFERENCES contracts (id),
		amount NUMERIC(14,2) NOT NULL,
		type TEXT NOT NULL,
		reason TEXT NOT NULL,
		status TEXT NOT NULL,
		submitted_by TEXT NOT NULL,
		submitted_date TIMESTAMPTZ NOT NULL,
		approved_by TEXT NOT NULL DEFAULT '',
		approved_date TIMESTAMPTZ,
		rejected_date TIMESTAMPTZ,
		rejection_reason TEXT NOT NULL DEFAULT '',
		version BIGINT NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS payment_applications (
		application_number BIGINT PRIMARY KEY,
		period_ending TIMESTAMPTZ NOT NULL,
		application_date TIMESTAMPTZ NOT NULL,
		amount_requested NUMERIC(14,2) NOT NULL,
		work_completed_to_date NUMERIC(14,2) NOT NULL,
		retention_rate NUMERIC(5,2) NOT NULL,
		retention_amount NUMERIC(14,2) NOT NULL,
		net_payment NUMERIC(14,2) NOT NULL,
		status TEXT NOT NULL,
		submitted_date TIMESTAMPTZ,
		approved_date TIMESTAMPTZ,
		paid_date TIMESTAMPTZ,
		rejected_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		version BIGINT NOT NULL DEFAULT 1
	)`,
}

// EnsureSchema creates the tables on first run. Statements are
// idempotent so repeated startups are safe.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	return nil
}
