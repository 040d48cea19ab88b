package models

import (
	"errors"
	"time"
)

// DefaultTripType is applied to trips stored without a type.
const DefaultTripType = "Leisure"

// TripRecord is a stored trip. OwnerID is empty for anonymous trips.
type TripRecord struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id,omitempty"`
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TripType    string    `json:"trip_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpenseRecord is a stored expense. TripID is a soft reference and may be empty.
// Amount is in the trip's local settlement currency.
type ExpenseRecord struct {
	ID       string    `json:"id"`
	OwnerID  string    `json:"owner_id"`
	TripID   string    `json:"trip_id,omitempty"`
	Category string    `json:"category"`
	Amount   float64   `json:"amount"`
	Date     time.Time `json:"date"`
}

// FlightBooking is a stored flight booking.
type FlightBooking struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Date        time.Time `json:"date"`
	Price       float64   `json:"price"`
	Airline     string    `json:"airline"`
	BookingRef  string    `json:"booking_ref"`
}

// ExpenseQuery selects expenses. An empty OwnerID matches any owner.
// A nil TripIDs applies no trip filter; a non-nil empty TripIDs matches nothing.
type ExpenseQuery struct {
	OwnerID string
	TripIDs []string
}

// ErrRecordNotFound is returned by record stores when a lookup by id matches nothing.
var ErrRecordNotFound = errors.New("record not found")
