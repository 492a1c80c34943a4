package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/gcpanel/costcore/internal/forecast"
)

// ForecastStore is append-only; the slice tail is the latest forecast,
// so Latest is O(1) regardless of forecast dates.
type ForecastStore struct {
	mu  sync.RWMutex
	log []forecast.CostForecast
}

func NewForecastStore() *ForecastStore {
	return &ForecastStore{}
}

func cloneForecast(f forecast.CostForecast) *forecast.CostForecast {
	f.RiskFactors = slices.Clone(f.RiskFactors)
	f.Assumptions = slices.Clone(f.Assumptions)

	return &f
}

func (s *ForecastStore) Append(_ context.Context, f *forecast.CostForecast) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.ID = int64(len(s.log) + 1)
	s.log = append(s.log, *cloneForecast(*f))

	return nil
}

func (s *ForecastStore) Latest(_ context.Context) (*forecast.CostForecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.log) == 0 {
		return nil, forecast.ErrNoForecast
	}

	return cloneForecast(s.log[len(s.log)-1]), nil
}

func (s *ForecastStore) List(_ context.Context) ([]*forecast.CostForecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fs := make([]*forecast.CostForecast, 0, len(s.log))
	for i := len(s.log) - 1; i >= 0; i-- {
		fs = append(fs, cloneForecast(s.log[i]))
	}

	return fs, nil
}
