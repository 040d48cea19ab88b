package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives one call per outbound request attempt sequence.
// outcome is "ok", "client_error", "server_error", "breaker_open", "canceled"
// or "transport_error".
type Observer interface {
	ObserveProviderCall(provider, outcome string, elapsed time.Duration)
}

// StatusError is returned when the upstream answered with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

type BaseClient struct {
	name           string
	client         HTTPClient
	logger         *zap.Logger
	observer       Observer
	circuitBreaker *gobreaker.CircuitBreaker
	maxRetries     int
	retryDelay     time.Duration
	multiplier     float64
}

type ClientConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	Multiplier     float64
	Threshold      int
	BreakerTimeout time.Duration
	Observer       Observer
	HTTPClient     HTTPClient // overrides the default *http.Client when set
}

func NewBaseClient(name string, config ClientConfig, logger *zap.Logger) *BaseClient {
	var httpClient HTTPClient = &http.Client{
		Timeout: config.Timeout,
	}
	if config.HTTPClient != nil {
		httpClient = config.HTTPClient
	}

	threshold := config.Threshold
	if threshold <= 0 {
		threshold = 3
	}

	breakerSettings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= uint32(threshold) && failureRatio >= 0.6
		},
		// A 4xx answer means the upstream is healthy, and a cancelled caller
		// says nothing about it; only outages trip the breaker.
		IsSuccessful: func(err error) bool {
			code := StatusCode(err)
			return err == nil ||
				errors.Is(err, context.Canceled) ||
				(code >= 400 && code < 500 && code != http.StatusTooManyRequests)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BaseClient{
		name:           name,
		client:         httpClient,
		logger:         logger,
		observer:       config.Observer,
		circuitBreaker: gobreaker.NewCircuitBreaker(breakerSettings),
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
		multiplier:     config.Multiplier,
	}
}

// Name returns the provider label used in logs and metrics.
func (c *BaseClient) Name() string {
	return c.name
}

// Get performs a GET through the circuit breaker. Non-2xx answers are
// returned as *StatusError so callers can map them to domain errors.
func (c *BaseClient) Get(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()

	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.doGetWithRetry(ctx, rawURL)
	})
	c.observe(err, time.Since(start))
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

func (c *BaseClient) observe(err error, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	outcome := "ok"
	switch code := StatusCode(err); {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "breaker_open"
	case errors.Is(err, context.Canceled):
		outcome = "canceled"
	case code >= 400 && code < 500:
		outcome = "client_error"
	case code >= 500:
		outcome = "server_error"
	default:
		outcome = "transport_error"
	}
	c.observer.ObserveProviderCall(c.name, outcome, elapsed)
}

func (c *BaseClient) doGetWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(c.retryDelay) * math.Pow(c.multiplier, float64(attempt-1)))
			c.logger.Debug("Retrying request",
				zap.String("client", c.name),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request failed: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = stripURL(err)
			c.logger.Warn("HTTP request failed",
				zap.String("client", c.name),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				lastErr = readErr
				continue
			}

			c.logger.Debug("Request successful",
				zap.String("client", c.name),
				zap.Int("status", resp.StatusCode),
				zap.Int("body_size", len(body)))

			return body, nil
		}

		lastErr = &StatusError{StatusCode: resp.StatusCode, Body: body}

		// Don't retry on client errors (4xx) except 429 (rate limiting)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, lastErr
		}
	}

	if c.maxRetries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("max retries exceeded, last error: %w", lastErr)
}

// stripURL drops the request URL from transport errors; query strings may
// carry credentials.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}
