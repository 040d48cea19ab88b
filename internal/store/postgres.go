package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"github.com/bobby-s-dev/trip-planner/internal/models"
	"github.com/bobby-s-dev/trip-planner/migrations"
)

// db is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx, so tests can run
// against a transaction that is rolled back afterwards.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads and writes records in Postgres.
type PostgresStore struct {
	db db
}

func NewPostgresStore(db db) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate applies all pending migrations. sqlDB must use the pgx stdlib driver.
func Migrate(ctx context.Context, sqlDB *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("store.Migrate: provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("store.Migrate: up: %w", err)
	}
	return nil
}

const tripColumns = `id, owner_id, title, destination, start_date, end_date, trip_type, created_at`

func (s *PostgresStore) CreateTrip(ctx context.Context, t models.TripRecord) (models.TripRecord, error) {
	const q = `
		INSERT INTO trips (id, owner_id, title, destination, start_date, end_date, trip_type)
		VALUES (@id, @owner_id, @title, @destination, @start_date, @end_date, @trip_type)
		RETURNING ` + tripColumns

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.TripType == "" {
		t.TripType = models.DefaultTripType
	}

	row := s.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":          t.ID,
		"owner_id":    t.OwnerID,
		"title":       t.Title,
		"destination": t.Destination,
		"start_date":  nullDate(t.StartDate),
		"end_date":    nullDate(t.EndDate),
		"trip_type":   t.TripType,
	})
	created, err := scanTrip(row)
	if err != nil {
		return models.TripRecord{}, fmt.Errorf("store.PostgresStore.CreateTrip: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) CreateExpense(ctx context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
	const q = `
		INSERT INTO expenses (id, owner_id, trip_id, category, amount, spent_on)
		VALUES (@id, @owner_id, @trip_id, @category, @amount, @spent_on)`

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, q, pgx.NamedArgs{
		"id":       e.ID,
		"owner_id": e.OwnerID,
		"trip_id":  e.TripID,
		"category": e.Category,
		"amount":   decimal.NewFromFloat(e.Amount).String(),
		"spent_on": nullDate(e.Date),
	})
	if err != nil {
		return models.ExpenseRecord{}, fmt.Errorf("store.PostgresStore.CreateExpense: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) CreateFlight(ctx context.Context, f models.FlightBooking) (models.FlightBooking, error) {
	const q = `
		INSERT INTO flights (id, owner_id, origin, destination, flight_date, price, airline, booking_ref)
		VALUES (@id, @owner_id, @origin, @destination, @flight_date, @price, @airline, @booking_ref)`

	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, q, pgx.NamedArgs{
		"id":          f.ID,
		"owner_id":    f.OwnerID,
		"origin":      f.Origin,
		"destination": f.Destination,
		"flight_date": nullDate(f.Date),
		"price":       decimal.NewFromFloat(f.Price).String(),
		"airline":     f.Airline,
		"booking_ref": f.BookingRef,
	})
	if err != nil {
		return models.FlightBooking{}, fmt.Errorf("store.PostgresStore.CreateFlight: %w", err)
	}
	return f, nil
}

func (s *PostgresStore) FindTripsByOwner(ctx context.Context, ownerID string) ([]models.TripRecord, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE owner_id = @owner_id ORDER BY start_date, created_at`

	rows, err := s.db.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("store.PostgresStore.FindTripsByOwner: %w", err)
	}
	defer rows.Close()

	var trips []models.TripRecord
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("store.PostgresStore.FindTripsByOwner: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store.PostgresStore.FindTripsByOwner: rows: %w", err)
	}
	return trips, nil
}

func (s *PostgresStore) FindExpenses(ctx context.Context, query models.ExpenseQuery) ([]models.ExpenseRecord, error) {
	if query.TripIDs != nil && len(query.TripIDs) == 0 {
		return nil, nil
	}

	q := `SELECT id, owner_id, trip_id, category, amount, spent_on FROM expenses WHERE true`
	args := pgx.NamedArgs{}
	if query.OwnerID != "" {
		q += ` AND owner_id = @owner_id`
		args["owner_id"] = query.OwnerID
	}
	if query.TripIDs != nil {
		q += ` AND trip_id = ANY(@trip_ids)`
		args["trip_ids"] = query.TripIDs
	}
	q += ` ORDER BY spent_on, id`

	rows, err := s.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("store.PostgresStore.FindExpenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.ExpenseRecord
	for rows.Next() {
		var (
			e      models.ExpenseRecord
			amount decimal.Decimal
			date   pgtype.Date
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.TripID, &e.Category, &amount, &date); err != nil {
			return nil, fmt.Errorf("store.PostgresStore.FindExpenses: scan: %w", err)
		}
		e.Amount = amount.InexactFloat64()
		e.Date = date.Time
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store.PostgresStore.FindExpenses: rows: %w", err)
	}
	return expenses, nil
}

func (s *PostgresStore) FindFlights(ctx context.Context, ownerID string) ([]models.FlightBooking, error) {
	const q = `
		SELECT id, owner_id, origin, destination, flight_date, price, airline, booking_ref
		FROM flights
		WHERE owner_id = @owner_id
		ORDER BY flight_date, id`

	rows, err := s.db.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("store.PostgresStore.FindFlights: %w", err)
	}
	defer rows.Close()

	var flights []models.FlightBooking
	for rows.Next() {
		var (
			f     models.FlightBooking
			price decimal.Decimal
			date  pgtype.Date
		)
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Origin, &f.Destination, &date, &price, &f.Airline, &f.BookingRef); err != nil {
			return nil, fmt.Errorf("store.PostgresStore.FindFlights: scan: %w", err)
		}
		f.Price = price.InexactFloat64()
		f.Date = date.Time
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store.PostgresStore.FindFlights: rows: %w", err)
	}
	return flights, nil
}

func (s *PostgresStore) FindTripByID(ctx context.Context, id string) (*models.TripRecord, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	t, err := scanTrip(s.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("store.PostgresStore.FindTripByID: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) DeleteTrip(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("store.PostgresStore.DeleteTrip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("store.PostgresStore.DeleteTrip: %w", models.ErrRecordNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteExpensesByTrip(ctx context.Context, tripID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM expenses WHERE trip_id = @trip_id`, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return 0, fmt.Errorf("store.PostgresStore.DeleteExpensesByTrip: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanner is satisfied by pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTrip(s scanner) (models.TripRecord, error) {
	var (
		t          models.TripRecord
		start, end pgtype.Date
	)
	err := s.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Destination, &start, &end, &t.TripType, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TripRecord{}, models.ErrRecordNotFound
		}
		return models.TripRecord{}, err
	}
	t.StartDate = start.Time
	t.EndDate = end.Time
	return t, nil
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
