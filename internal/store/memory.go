// Package store holds the record store implementations: an in-memory store
// for local runs and tests, and a Postgres store.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobby-s-dev/trip-planner/internal/models"
)

// MemoryStore keeps records in insertion order. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	trips    []models.TripRecord
	expenses []models.ExpenseRecord
	flights  []models.FlightBooking
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// CreateTrip stores t, assigning an id, creation time and default trip type
// when they are missing.
func (s *MemoryStore) CreateTrip(_ context.Context, t models.TripRecord) (models.TripRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.TripType == "" {
		t.TripType = models.DefaultTripType
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	s.trips = append(s.trips, t)
	return t, nil
}

func (s *MemoryStore) CreateExpense(_ context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *MemoryStore) CreateFlight(_ context.Context, f models.FlightBooking) (models.FlightBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	s.flights = append(s.flights, f)
	return f, nil
}

func (s *MemoryStore) FindTripsByOwner(_ context.Context, ownerID string) ([]models.TripRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.TripRecord
	for _, t := range s.trips {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) FindExpenses(_ context.Context, q models.ExpenseQuery) ([]models.ExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ExpenseRecord
	for _, e := range s.expenses {
		if q.OwnerID != "" && e.OwnerID != q.OwnerID {
			continue
		}
		if q.TripIDs != nil && !slices.Contains(q.TripIDs, e.TripID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *MemoryStore) FindFlights(_ context.Context, ownerID string) ([]models.FlightBooking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.FlightBooking
	for _, f := range s.flights {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *MemoryStore) FindTripByID(_ context.Context, id string) (*models.TripRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.trips {
		if t.ID == id {
			found := t
			return &found, nil
		}
	}
	return nil, models.ErrRecordNotFound
}

func (s *MemoryStore) DeleteTrip(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.trips)
	s.trips = slices.DeleteFunc(s.trips, func(t models.TripRecord) bool { return t.ID == id })
	if len(s.trips) == before {
		return models.ErrRecordNotFound
	}
	return nil
}

func (s *MemoryStore) DeleteExpensesByTrip(_ context.Context, tripID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.expenses)
	s.expenses = slices.DeleteFunc(s.expenses, func(e models.ExpenseRecord) bool { return e.TripID == tripID })
	return int64(before - len(s.expenses)), nil
}
