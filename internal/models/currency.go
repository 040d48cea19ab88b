package models

import "time"

// LocalProvider labels conversions that never left the process.
const LocalProvider = "local"

// CurrencySnapshot is the result of one conversion.
type CurrencySnapshot struct {
	From       string     `json:"from"`
	To         string     `json:"to"`
	Amount     float64    `json:"amount"`
	Rate       float64    `json:"rate"`
	Result     float64    `json:"result"`
	Provider   string     `json:"provider"`
	LastUpdate *time.Time `json:"last_update,omitempty"`
}

// RateTable is what a rate provider returns for one base currency.
type RateTable struct {
	Base       string
	Rates      map[string]float64
	LastUpdate *time.Time
	Provider   string
}
