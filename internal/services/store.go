package services

import (
	"context"

	"github.com/bobby-s-dev/trip-planner/internal/models"
)

// RecordStore is the persistence the dashboard, report and trip services read from.
type RecordStore interface {
	FindTripsByOwner(ctx context.Context, ownerID string) ([]models.TripRecord, error)
	FindExpenses(ctx context.Context, query models.ExpenseQuery) ([]models.ExpenseRecord, error)
	FindFlights(ctx context.Context, ownerID string) ([]models.FlightBooking, error)

	// FindTripByID returns models.ErrRecordNotFound when no trip has id.
	FindTripByID(ctx context.Context, id string) (*models.TripRecord, error)

	DeleteTrip(ctx context.Context, id string) error
	DeleteExpensesByTrip(ctx context.Context, tripID string) (int64, error)
}

// WeatherFetcher is satisfied by *WeatherService.
type WeatherFetcher interface {
	Fetch(ctx context.Context, place string) (models.WeatherSnapshot, error)
}

// Converter is satisfied by *CurrencyConverter.
type Converter interface {
	Convert(ctx context.Context, from, to string, amount float64) (models.CurrencySnapshot, error)
}

// Recorder receives service-level metrics. *metrics.Metrics implements it.
type Recorder interface {
	IncDashboardBuild(result string)
	IncReportSection(section string)
}

type nopRecorder struct{}

func (nopRecorder) IncDashboardBuild(string) {}
func (nopRecorder) IncReportSection(string)  {}

func orNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
