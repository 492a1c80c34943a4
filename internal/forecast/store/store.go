package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/gcpanel/costcore/internal/forecast"
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

const selectForecastColumns = `
	id, forecast_date, project_completion_date, total_forecast,
	confidence_level, forecast_method, created_by,
	risk_factors, assumptions, variance_from_budget, created_at
`

func scanForecast(s scanner) (*forecast.CostForecast, error) {
	var f forecast.CostForecast

	var confidence, method string

	var risks, assumptions []byte

	if err := s.Scan(
		&f.ID, &f.ForecastDate, &f.ProjectCompletionDate, &f.TotalForecast,
		&confidence, &method, &f.CreatedBy,
		&risks, &assumptions, &f.VarianceFromBudget, &f.CreatedAt,
	); err != nil {
		return nil, err
	}

	f.Confidence = forecast.Confidence(confidence)
	f.Method = forecast.Method(method)

	if err := json.Unmarshal(risks, &f.RiskFactors); err != nil {
		return nil, fmt.Errorf("decoding risk factors: %w", err)
	}

	if err := json.Unmarshal(assumptions, &f.Assumptions); err != nil {
		return nil, fmt.Errorf("decoding assumptions: %w", err)
	}

	return &f, nil
}

func (s *Store) Append(ctx context.Context, f *forecast.CostForecast) error {
	risks, err := json.Marshal(f.RiskFactors)
	if err != nil {
		return fmt.Errorf("encoding risk factors: %w", err)
	}

	assumptions, err := json.Marshal(f.Assumptions)
	if err != nil {
		return fmt.Errorf("encoding assumptions: %w", err)
	}

	query := `
		INSERT INTO cost_forecasts (
			forecast_date, project_completion_date, total_forecast,
			confidence_level, forecast_method, created_by,
			risk_factors, assumptions, variance_from_budget, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err = s.db.QueryRowContext(ctx, query,
		f.ForecastDate,
		f.ProjectCompletionDate,
		f.TotalForecast,
		f.Confidence,
		f.Method,
		f.CreatedBy,
		risks,
		assumptions,
		f.VarianceFromBudget,
		f.CreatedAt,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("appending forecast: %w", err)
	}

	return nil
}

// Latest relies on the serial id preserving insertion order.
func (s *Store) Latest(ctx context.Context) (*forecast.CostForecast, error) {
	query := `SELECT ` + selectForecastColumns + ` FROM cost_forecasts ORDER BY id DESC LIMIT 1`

	f, err := scanForecast(s.db.QueryRowContext(ctx, query))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, forecast.ErrNoForecast
		}

		return nil, fmt.Errorf("getting latest forecast: %w", err)
	}

	return f, nil
}

func (s *Store) List(ctx context.Context) ([]*forecast.CostForecast, error) {
	query := `SELECT ` + selectForecastColumns + ` FROM cost_forecasts ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing forecasts: %w", err)
	}
	defer rows.Close()

	var fs []*forecast.CostForecast

	for rows.Next() {
		f, err := scanForecast(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning forecast: %w", err)
		}

		fs = append(fs, f)
	}

	return fs, rows.Err()
}
