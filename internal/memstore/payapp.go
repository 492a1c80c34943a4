package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/gcpanel/costcore/internal/payapp"
)

type PayAppStore struct {
	mu    sync.RWMutex
	apps  map[int64]payapp.PaymentApplication
	order []int64
}

func NewPayAppStore() *PayAppStore {
	return &PayAppStore{apps: make(map[int64]payapp.PaymentApplication)}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	c := *t

	return &c
}

func cloneApp(app payapp.PaymentApplication) *payapp.PaymentApplication {
	app.SubmittedDate = cloneTime(app.SubmittedDate)
	app.ApprovedDate = cloneTime(app.ApprovedDate)
	app.PaidDate = cloneTime(app.PaidDate)
	app.RejectedDate = cloneTime(app.RejectedDate)

	return &app
}

func (s *PayAppStore) Create(_ context.Context, app *payapp.PaymentApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.apps[app.ApplicationNumber]; ok {
		return payapp.ErrDuplicateNumber
	}

	app.Version = 1
	s.apps[app.ApplicationNumber] = *cloneApp(*app)
	s.order = append(s.order, app.ApplicationNumber)

	return nil
}

func (s *PayAppStore) Get(_ context.Context, applicationNumber int64) (*payapp.PaymentApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[applicationNumber]
	if !ok {
		return nil, payapp.ErrNotFound
	}

	return cloneApp(app), nil
}

func (s *PayAppStore) Update(_ context.Context, app *payapp.PaymentApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.apps[app.ApplicationNumber]
	if !ok {
		return payapp.ErrNotFound
	}

	if stored.Version != app.Version {
		return payapp.ErrConflict
	}

	app.Version++
	s.apps[app.ApplicationNumber] = *cloneApp(*app)

	return nil
}

func (s *PayAppStore) List(_ context.Context, status *payapp.Status) ([]*payapp.PaymentApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var apps []*payapp.PaymentApplication

	for _, number := range s.order {
		app := s.apps[number]

		if status != nil && app.Status != *status {
			continue
		}

		apps = append(apps, cloneApp(app))
	}

	slices.SortFunc(apps, func(a, b *payapp.PaymentApplication) int {
		return int(a.ApplicationNumber - b.ApplicationNumber)
	})

	return apps, nil
}
