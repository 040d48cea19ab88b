package services_test

import (
	"context"
	"sync"

	"github.com/bobby-s-dev/trip-planner/internal/models"
	"github.com/bobby-s-dev/trip-planner/internal/services"
)

// fakeStore is a hand-written RecordStore. Unset funcs return empty results.
type fakeStore struct {
	findTripsByOwner     func(ctx context.Context, ownerID string) ([]models.TripRecord, error)
	findExpenses         func(ctx context.Context, q models.ExpenseQuery) ([]models.ExpenseRecord, error)
	findFlights          func(ctx context.Context, ownerID string) ([]models.FlightBooking, error)
	findTripByID         func(ctx context.Context, id string) (*models.TripRecord, error)
	deleteTrip           func(ctx context.Context, id string) error
	deleteExpensesByTrip func(ctx context.Context, tripID string) (int64, error)

	mu      sync.Mutex
	queries []models.ExpenseQuery
}

var _ services.RecordStore = (*fakeStore)(nil)

func (f *fakeStore) FindTripsByOwner(ctx context.Context, ownerID string) ([]models.TripRecord, error) {
	if f.findTripsByOwner == nil {
		return nil, nil
	}
	return f.findTripsByOwner(ctx, ownerID)
}

func (f *fakeStore) FindExpenses(ctx context.Context, q models.ExpenseQuery) ([]models.ExpenseRecord, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.findExpenses == nil {
		return nil, nil
	}
	return f.findExpenses(ctx, q)
}

func (f *fakeStore) FindFlights(ctx context.Context, ownerID string) ([]models.FlightBooking, error) {
	if f.findFlights == nil {
		return nil, nil
	}
	return f.findFlights(ctx, ownerID)
}

func (f *fakeStore) FindTripByID(ctx context.Context, id string) (*models.TripRecord, error) {
	if f.findTripByID == nil {
		return nil, models.ErrRecordNotFound
	}
	return f.findTripByID(ctx, id)
}

func (f *fakeStore) DeleteTrip(ctx context.Context, id string) error {
	if f.deleteTrip == nil {
		return nil
	}
	return f.deleteTrip(ctx, id)
}

func (f *fakeStore) DeleteExpensesByTrip(ctx context.Context, tripID string) (int64, error) {
	if f.deleteExpensesByTrip == nil {
		return 0, nil
	}
	return f.deleteExpensesByTrip(ctx, tripID)
}

// fakeWeather implements services.WeatherProvider and counts calls.
type fakeWeather struct {
	mu       sync.Mutex
	calls    []string
	snapshot *models.WeatherSnapshot
	err      error
}

func (f *fakeWeather) CurrentWeather(_ context.Context, place string) (*models.WeatherSnapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, place)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s := *f.snapshot
	return &s, nil
}

// fakeRates implements services.RateProvider and counts calls.
type fakeRates struct {
	mu    sync.Mutex
	bases []string
	table *models.RateTable
	err   error
}

func (f *fakeRates) Rates(_ context.Context, base string) (*models.RateTable, error) {
	f.mu.Lock()
	f.bases = append(f.bases, base)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
}

func (f *fakeRates) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bases)
}

// fakeRecorder captures metric increments.
type fakeRecorder struct {
	mu       sync.Mutex
	builds   []string
	sections []string
}

func (f *fakeRecorder) IncDashboardBuild(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds = append(f.builds, result)
}

func (f *fakeRecorder) IncReportSection(section string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sections = append(f.sections, section)
}

func dhakaWeather() *models.WeatherSnapshot {
	return &models.WeatherSnapshot{
		Place:       "Dhaka",
		Country:     "BD",
		Temperature: 31.2,
		FeelsLike:   36.4,
		Humidity:    74,
		WindSpeed:   3.1,
		Description: "haze",
		Icon:        "50d",
		Source:      "openweathermap",
	}
}

func usdRates() *models.RateTable {
	return &models.RateTable{
		Base:     "USD",
		Rates:    map[string]float64{"USD": 1, "BDT": 110.5, "EUR": 0.92},
		Provider: "exchangerate-api",
	}
}

func bdtRates() *models.RateTable {
	return &models.RateTable{
		Base:     "BDT",
		Rates:    map[string]float64{"BDT": 1, "USD": 0.0091},
		Provider: "exchangerate-api",
	}
}
