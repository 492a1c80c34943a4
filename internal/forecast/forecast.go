package forecast

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Confidence expresses how much weight to give a forecast.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}

	return false
}

// Method is the estimation technique behind a forecast.
type Method string

const (
	MethodEarnedValue    Method = "EarnedValue"
	MethodBottomUp       Method = "BottomUp"
	MethodParametric     Method = "Parametric"
	MethodExpertJudgment Method = "ExpertJudgment"
)

func (m Method) Valid() bool {
	switch m {
	case MethodEarnedValue, MethodBottomUp, MethodParametric, MethodExpertJudgment:
		return true
	}

	return false
}

var (
	ErrInvalidAmount     = errors.New("invalid forecast amount")
	ErrInvalidMethod     = errors.New("invalid forecast method")
	ErrInvalidConfidence = errors.New("invalid confidence level")
	ErrNoForecast        = errors.New("no forecast recorded")
)

// CostForecast is a point-in-time snapshot. It is immutable once
// recorded; VarianceFromBudget is fixed against the budget total at
// recording time, never recomputed.
type CostForecast struct {
	ID                    int64
	ForecastDate          time.Time
	ProjectCompletionDate time.Time
	TotalForecast         decimal.Decimal
	Confidence            Confidence
	Method                Method
	CreatedBy             string
	RiskFactors           []string
	Assumptions           []string
	VarianceFromBudget    decimal.Decimal
	CreatedAt             time.Time
}
