package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bobby-s-dev/trip-planner/internal/apperr"
	"github.com/bobby-s-dev/trip-planner/internal/models"
	"go.uber.org/zap"
)

const exchangeRateSource = "exchangerate-api"

// ExchangeRateClient reads rate tables from an ExchangeRate-API compatible
// endpoint (open.er-api.com or v6.exchangerate-api.com/v6/<key>).
type ExchangeRateClient struct {
	*BaseClient
	baseURL string
}

type ExchangeRateResponse struct {
	Result             string             `json:"result"`
	ErrorType          string             `json:"error-type"`
	BaseCode           string             `json:"base_code"`
	Rates              map[string]float64 `json:"rates"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
}

func NewExchangeRateClient(baseURL string, config ClientConfig, logger *zap.Logger) *ExchangeRateClient {
	if baseURL == "" {
		baseURL = "https://open.er-api.com/v6"
	}
	return &ExchangeRateClient{
		BaseClient: NewBaseClient(exchangeRateSource, config, logger),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Rates returns the rate table for base. A provider-level "error" result is
// reported with the provider's error-type as category, whether it arrived
// with a 2xx or a 4xx status.
func (c *ExchangeRateClient) Rates(ctx context.Context, base string) (*models.RateTable, error) {
	endpoint := fmt.Sprintf("%s/latest/%s", c.baseURL, url.PathEscape(base))

	data, err := c.Get(ctx, endpoint)
	if err != nil {
		if resp, ok := decodeErrorBody(err); ok {
			return nil, apperr.Provider(exchangeRateSource, "currency provider error", resp.ErrorType, err)
		}
		return nil, apperr.Provider(exchangeRateSource, "failed to fetch currency rate", "", err)
	}

	var response ExchangeRateResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, apperr.Provider(exchangeRateSource, "failed to fetch currency rate", "bad_data", err)
	}

	if response.Result != "success" {
		return nil, apperr.Provider(exchangeRateSource, "currency provider error", response.ErrorType, nil)
	}

	rates := response.Rates
	if rates == nil {
		rates = response.ConversionRates
	}
	if rates == nil {
		return nil, apperr.Provider(exchangeRateSource, "failed to fetch currency rate", "bad_data", nil)
	}

	table := &models.RateTable{
		Base:     response.BaseCode,
		Rates:    rates,
		Provider: exchangeRateSource,
	}
	if response.TimeLastUpdateUnix > 0 {
		ts := time.Unix(response.TimeLastUpdateUnix, 0).UTC()
		table.LastUpdate = &ts
	}

	return table, nil
}

func decodeErrorBody(err error) (ExchangeRateResponse, bool) {
	var resp ExchangeRateResponse
	var se *StatusError
	if !errors.As(err, &se) || len(se.Body) == 0 {
		return resp, false
	}
	if json.Unmarshal(se.Body, &resp) != nil || resp.Result != "error" {
		return resp, false
	}
	return resp, true
}
