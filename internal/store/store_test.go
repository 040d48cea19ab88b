package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobby-s-dev/trip-planner/internal/models"
	"github.com/bobby-s-dev/trip-planner/internal/services"
)

// recordStore is the write side both implementations share plus the read
// side the services consume.
type recordStore interface {
	services.RecordStore
	CreateTrip(ctx context.Context, t models.TripRecord) (models.TripRecord, error)
	CreateExpense(ctx context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error)
	CreateFlight(ctx context.Context, f models.FlightBooking) (models.FlightBooking, error)
}

// runStoreSuite checks the behaviour every record store must share.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) recordStore) {
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }

	seed := func(t *testing.T) (recordStore, models.TripRecord, models.TripRecord) {
		t.Helper()
		s := newStore(t)
		a, err := s.CreateTrip(ctx, models.TripRecord{OwnerID: "owner-1", Title: "Spring", Destination: "Prague", StartDate: day(1), EndDate: day(5)})
		require.NoError(t, err)
		b, err := s.CreateTrip(ctx, models.TripRecord{OwnerID: "owner-1", Title: "Work", Destination: "London", StartDate: day(10), EndDate: day(12), TripType: "Business"})
		require.NoError(t, err)
		_, err = s.CreateTrip(ctx, models.TripRecord{OwnerID: "owner-2", Title: "Other", StartDate: day(2)})
		require.NoError(t, err)

		for _, e := range []models.ExpenseRecord{
			{OwnerID: "owner-1", TripID: a.ID, Category: "Food", Amount: 12.5, Date: day(2)},
			{OwnerID: "owner-1", TripID: a.ID, Category: "Hotel", Amount: 80, Date: day(3)},
			{OwnerID: "owner-1", TripID: b.ID, Category: "Taxi", Amount: 20, Date: day(11)},
			{OwnerID: "owner-1", Category: "Visa", Amount: 50, Date: day(1)},
			{OwnerID: "owner-2", Category: "Food", Amount: 9, Date: day(2)},
		} {
			_, err := s.CreateExpense(ctx, e)
			require.NoError(t, err)
		}
		_, err = s.CreateFlight(ctx, models.FlightBooking{OwnerID: "owner-1", Origin: "PRG", Destination: "LHR", Date: day(10), Price: 120, Airline: "CSA", BookingRef: "X1Y2Z3"})
		require.NoError(t, err)
		return s, a, b
	}

	t.Run("create assigns id and default type", func(t *testing.T) {
		_, a, b := seed(t)
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, models.DefaultTripType, a.TripType)
		assert.Equal(t, "Business", b.TripType)
		assert.False(t, a.CreatedAt.IsZero())
	})

	t.Run("trips by owner", func(t *testing.T) {
		s, a, b := seed(t)
		trips, err := s.FindTripsByOwner(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, trips, 2)
		assert.Equal(t, a.ID, trips[0].ID)
		assert.Equal(t, b.ID, trips[1].ID)
		assert.True(t, trips[0].StartDate.Equal(day(1)))

		none, err := s.FindTripsByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("expenses by owner", func(t *testing.T) {
		s, _, _ := seed(t)
		got, err := s.FindExpenses(ctx, models.ExpenseQuery{OwnerID: "owner-1"})
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})

	t.Run("expenses by trip ids", func(t *testing.T) {
		s, a, _ := seed(t)
		got, err := s.FindExpenses(ctx, models.ExpenseQuery{TripIDs: []string{a.ID}})
		require.NoError(t, err)
		require.Len(t, got, 2)
		total := 0.0
		for _, e := range got {
			assert.Equal(t, a.ID, e.TripID)
			total += e.Amount
		}
		assert.Equal(t, 92.5, total)
	})

	t.Run("empty trip id filter matches nothing", func(t *testing.T) {
		s, _, _ := seed(t)
		got, err := s.FindExpenses(ctx, models.ExpenseQuery{TripIDs: []string{}})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("flights by owner", func(t *testing.T) {
		s, _, _ := seed(t)
		got, err := s.FindFlights(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "X1Y2Z3", got[0].BookingRef)
		assert.Equal(t, 120.0, got[0].Price)
	})

	t.Run("trip by id", func(t *testing.T) {
		s, a, _ := seed(t)
		got, err := s.FindTripByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Prague", got.Destination)

		_, err = s.FindTripByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
	})

	t.Run("cascade delete", func(t *testing.T) {
		s, a, b := seed(t)
		removed, err := s.DeleteExpensesByTrip(ctx, a.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, removed)
		require.NoError(t, s.DeleteTrip(ctx, a.ID))

		_, err = s.FindTripByID(ctx, a.ID)
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
		assert.ErrorIs(t, s.DeleteTrip(ctx, a.ID), models.ErrRecordNotFound)

		left, err := s.FindExpenses(ctx, models.ExpenseQuery{TripIDs: []string{a.ID, b.ID}})
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, b.ID, left[0].TripID)
	})
}
