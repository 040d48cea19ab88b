package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/trip-planner/internal/apperr"
	"github.com/bobby-s-dev/trip-planner/internal/models"
)

// RateProvider returns the rate table for a base currency.
type RateProvider interface {
	Rates(ctx context.Context, base string) (*models.RateTable, error)
}

// CurrencyConverter converts amounts between currencies.
type CurrencyConverter struct {
	rates  RateProvider
	logger *zap.Logger
}

func NewCurrencyConverter(rates RateProvider, logger *zap.Logger) *CurrencyConverter {
	return &CurrencyConverter{rates: rates, logger: logger}
}

// Convert converts amount from one currency into another. Identical codes
// are answered locally without consulting the rate provider.
func (c *CurrencyConverter) Convert(ctx context.Context, from, to string, amount float64) (models.CurrencySnapshot, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == "" || to == "" {
		return models.CurrencySnapshot{}, apperr.Validation("currency code is required")
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return models.CurrencySnapshot{}, apperr.Validation("invalid amount")
	}

	if from == to {
		return models.CurrencySnapshot{
			From:     from,
			To:       to,
			Amount:   amount,
			Rate:     1,
			Result:   amount,
			Provider: models.LocalProvider,
		}, nil
	}

	table, err := c.rates.Rates(ctx, from)
	if err != nil {
		c.logger.Warn("Currency rate lookup failed",
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err))
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return models.CurrencySnapshot{}, err
		}
		return models.CurrencySnapshot{}, apperr.Provider("currency", "failed to fetch currency rate", "", err)
	}

	rate, ok := table.Rates[to]
	if !ok {
		return models.CurrencySnapshot{}, apperr.Validation(fmt.Sprintf("unsupported currency code: %s", to))
	}

	result := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate))

	return models.CurrencySnapshot{
		From:       from,
		To:         to,
		Amount:     amount,
		Rate:       rate,
		Result:     result.InexactFloat64(),
		Provider:   table.Provider,
		LastUpdate: table.LastUpdate,
	}, nil
}
