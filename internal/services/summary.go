package services

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/bobby-s-dev/trip-planner/internal/models"
)

// Summarize totals expenses per trip and overall. The overall total also
// counts expenses without a trip, so it can exceed the sum of ByTrip.
// Non-finite amounts count as zero.
func Summarize(expenses []models.ExpenseRecord) models.SpendingSummary {
	byTrip := make(map[string]decimal.Decimal)
	total := decimal.Zero

	for _, e := range expenses {
		amount := decimalAmount(e.Amount)
		total = total.Add(amount)
		if e.TripID == "" {
			continue
		}
		byTrip[e.TripID] = byTrip[e.TripID].Add(amount)
	}

	summary := models.SpendingSummary{
		ByTrip: make(map[string]float64, len(byTrip)),
		Total:  total.InexactFloat64(),
	}
	for id, sum := range byTrip {
		summary.ByTrip[id] = sum.InexactFloat64()
	}
	return summary
}

func decimalAmount(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
