package models

// SpendingSummary is the per-trip and overall expense total.
type SpendingSummary struct {
	ByTrip map[string]float64 `json:"by_trip"`
	Total  float64            `json:"total"`
}

// AggregateResult is the consolidated dashboard response.
type AggregateResult struct {
	OwnerID  string                    `json:"owner_id,omitempty"`
	Trips    []TripRecord              `json:"trips"`
	Expenses []ExpenseRecord           `json:"expenses"`
	Flights  []FlightBooking           `json:"flights"`
	Spending SpendingSummary           `json:"spending"`
	Weather  Outcome[WeatherSnapshot]  `json:"weather"`
	Currency Outcome[CurrencySnapshot] `json:"currency"`
}
