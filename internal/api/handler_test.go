package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/trip-planner/internal/api"
	"github.com/bobby-s-dev/trip-planner/internal/apperr"
	"github.com/bobby-s-dev/trip-planner/internal/metrics"
	"github.com/bobby-s-dev/trip-planner/internal/models"
	"github.com/bobby-s-dev/trip-planner/internal/scheduler"
	"github.com/bobby-s-dev/trip-planner/internal/services"
	"github.com/bobby-s-dev/trip-planner/internal/store"
)

type stubWeather struct {
	snapshot *models.WeatherSnapshot
	err      error
}

func (s stubWeather) CurrentWeather(context.Context, string) (*models.WeatherSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	w := *s.snapshot
	return &w, nil
}

type stubRates struct {
	table *models.RateTable
	err   error
}

func (s stubRates) Rates(context.Context, string) (*models.RateTable, error) {
	return s.table, s.err
}

// brokenStore fails every owner lookup.
type brokenStore struct {
	*store.MemoryStore
}

func (brokenStore) FindTripsByOwner(context.Context, string) ([]models.TripRecord, error) {
	return nil, errors.New("pq: password authentication failed for user \"trips\"")
}

type stubProbe []scheduler.ProbeStatus

func (s stubProbe) Status() []scheduler.ProbeStatus { return s }

type testServer struct {
	app   *fiber.App
	store *store.MemoryStore
	reg   *prometheus.Registry
}

type serverOption func(*serverDeps)

type serverDeps struct {
	weather services.WeatherProvider
	rates   services.RateProvider
	records services.RecordStore
	probe   api.ProbeStatusReader
}

func withWeather(w services.WeatherProvider) serverOption {
	return func(d *serverDeps) { d.weather = w }
}

func withRates(r services.RateProvider) serverOption {
	return func(d *serverDeps) { d.rates = r }
}

func withRecords(r services.RecordStore) serverOption {
	return func(d *serverDeps) { d.records = r }
}

func withProbe(p api.ProbeStatusReader) serverOption {
	return func(d *serverDeps) { d.probe = p }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	mem := store.NewMemoryStore()
	deps := &serverDeps{
		weather: stubWeather{snapshot: &models.WeatherSnapshot{Place: "Dhaka", Country: "BD", Temperature: 30, Description: "haze", Source: "openweathermap"}},
		rates:   stubRates{table: &models.RateTable{Base: "BDT", Rates: map[string]float64{"USD": 0.0091}, Provider: "exchangerate-api"}},
		records: mem,
	}
	for _, opt := range opts {
		opt(deps)
	}

	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	weather := services.NewWeatherService(deps.weather, logger)
	currency := services.NewCurrencyConverter(deps.rates, logger)
	handler := api.NewHandler(api.Services{
		Weather:   weather,
		Currency:  currency,
		Dashboard: services.NewAggregator(deps.records, weather, currency, m, logger),
		Reports:   services.NewReportCompiler(deps.records, weather, currency, m, logger),
		Trips:     services.NewTripService(deps.records, logger),
		Probe:     deps.probe,
	}, 5*time.Second, logger)

	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler(logger)})
	api.SetupRoutes(app, handler, reg, "*", logger)
	return &testServer{app: app, store: mem, reg: reg}
}

func (s *testServer) do(t *testing.T, method, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest(method, target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code     string `json:"code"`
		Message  string `json:"message"`
		Category string `json:"category"`
	} `json:"error"`
}

func decode(t *testing.T, body []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

func TestGetWeather(t *testing.T) {
	tests := []struct {
		name    string
		weather services.WeatherProvider
		target  string
		status  int
		code    string
		message string
	}{
		{"ok", nil, "/api/v1/weather?city=Dhaka", http.StatusOK, "", ""},
		{"missing city", nil, "/api/v1/weather", http.StatusBadRequest, "validation_error", "city is required"},
		{"no credential", stubWeather{err: apperr.Configuration("openweathermap", "weather credential is not configured")},
			"/api/v1/weather?city=Dhaka", http.StatusInternalServerError, "configuration_error", "weather credential is not configured"},
		{"unknown place", stubWeather{err: apperr.NotFound("place not found")},
			"/api/v1/weather?city=Atlantis", http.StatusNotFound, "not_found", "place not found"},
		{"provider down", stubWeather{err: apperr.Provider("openweathermap", "failed to fetch weather", "", errors.New("HTTP 503"))},
			"/api/v1/weather?city=Dhaka", http.StatusBadGateway, "provider_error", "failed to fetch weather"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []serverOption
			if tt.weather != nil {
				opts = append(opts, withWeather(tt.weather))
			}
			srv := newTestServer(t, opts...)

			resp, body := srv.do(t, http.MethodGet, tt.target)

			assert.Equal(t, tt.status, resp.StatusCode)
			env := decode(t, body)
			if tt.code == "" {
				assert.True(t, env.Success)
				assert.Contains(t, string(env.Data), `"place":"Dhaka"`)
				return
			}
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, tt.message, env.Error.Message)
			assert.NotContains(t, string(body), "HTTP 503")
		})
	}
}

func TestConvertCurrency(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodGet, "/api/v1/currency/convert?from=usd&to=USD&amount=42")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t,
		`{"from":"USD","to":"USD","amount":42,"rate":1,"result":42,"provider":"local"}`,
		string(decode(t, body).Data))

	resp, body = srv.do(t, http.MethodGet, "/api/v1/currency/convert?from=USD&to=EUR&amount=-1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid amount", decode(t, body).Error.Message)

	resp, body = srv.do(t, http.MethodGet, "/api/v1/currency/convert?from=BDT&to=XYZ")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "unsupported currency code: XYZ", decode(t, body).Error.Message)
}

func TestConvertCurrency_ProviderCategory(t *testing.T) {
	srv := newTestServer(t, withRates(stubRates{err: apperr.Provider("exchangerate-api", "currency provider error", "invalid-key", nil)}))

	resp, body := srv.do(t, http.MethodGet, "/api/v1/currency/convert?from=USD&to=EUR")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	env := decode(t, body)
	assert.Equal(t, "currency provider error", env.Error.Message)
	assert.Equal(t, "invalid-key", env.Error.Category)
}

func TestGetDashboard_PartialFailureIsStill200(t *testing.T) {
	srv := newTestServer(t, withWeather(stubWeather{err: apperr.Provider("openweathermap", "failed to fetch weather", "", nil)}))
	ctx := context.Background()
	trip, err := srv.store.CreateTrip(ctx, models.TripRecord{OwnerID: "guest-1", Title: "Cox's Bazar", Destination: "Cox's Bazar"})
	require.NoError(t, err)
	_, err = srv.store.CreateExpense(ctx, models.ExpenseRecord{OwnerID: "guest-1", TripID: trip.ID, Amount: 1500})
	require.NoError(t, err)

	resp, body := srv.do(t, http.MethodGet, "/api/v1/dashboard?owner_id=guest-1&city=Dhaka&from=BDT&to=USD&amount=1000")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		OwnerID  string            `json:"owner_id"`
		Trips    []json.RawMessage `json:"trips"`
		Expenses []json.RawMessage `json:"expenses"`
		Flights  []json.RawMessage `json:"flights"`
		Spending struct {
			Total float64 `json:"total"`
		} `json:"spending"`
		Weather struct {
			Status string `json:"status"`
			Error  struct {
				Code string `json:"code"`
			} `json:"error"`
		} `json:"weather"`
		Currency struct {
			Status string `json:"status"`
			Data   struct {
				Result float64 `json:"result"`
			} `json:"data"`
		} `json:"currency"`
	}
	require.NoError(t, json.Unmarshal(decode(t, body).Data, &result))
	assert.Equal(t, "guest-1", result.OwnerID)
	assert.Len(t, result.Trips, 1)
	assert.Len(t, result.Expenses, 1)
	assert.NotNil(t, result.Flights)
	assert.Equal(t, 1500.0, result.Spending.Total)
	assert.Equal(t, "error", result.Weather.Status)
	assert.Equal(t, "provider_error", result.Weather.Error.Code)
	assert.Equal(t, "ok", result.Currency.Status)
	assert.InDelta(t, 9.1, result.Currency.Data.Result, 1e-9)
}

func TestGetDashboard_NotRequestedLookups(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodGet, "/api/v1/dashboard")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := string(decode(t, body).Data)
	assert.Contains(t, data, `"trips":[]`)
	assert.Contains(t, data, `"weather":{"status":"not_requested"}`)
	assert.Contains(t, data, `"currency":{"status":"not_requested"}`)
}

func TestGetDashboard_StoreFailureHidesCause(t *testing.T) {
	srv := newTestServer(t, withRecords(brokenStore{store.NewMemoryStore()}))

	resp, body := srv.do(t, http.MethodGet, "/api/v1/dashboard?owner_id=guest-1")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	env := decode(t, body)
	assert.Equal(t, "internal_error", env.Error.Code)
	assert.Equal(t, "internal server error", env.Error.Message)
	assert.NotContains(t, string(body), "password")
}

func TestExportReport_TextStreamsAllSections(t *testing.T) {
	srv := newTestServer(t)
	trip, err := srv.store.CreateTrip(context.Background(), models.TripRecord{Title: "Monsoon", Destination: "Dhaka"})
	require.NoError(t, err)

	resp, body := srv.do(t, http.MethodGet, "/api/v1/reports/export?format=text&trip_id="+trip.ID+"&amount=1000")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	text := string(body)
	for _, marker := range []string{"Travel Report", "TRIP DETAILS", "WEATHER: DHAKA", "CURRENCY", "EXPENSES", "No expenses found"} {
		assert.Contains(t, text, marker)
	}
	assert.Contains(t, text, "1000.00 BDT = 9.10 USD")
}

func TestExportReport_MissingTripIs404WithTruncatedDocument(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodGet, "/api/v1/reports/export?format=text&trip_id=nope")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	text := string(body)
	assert.Contains(t, text, "Travel Report")
	assert.Contains(t, text, "Trip not found: nope")
	assert.NotContains(t, text, "CURRENCY")
	assert.NotContains(t, text, "WEATHER")
}

func TestExportReport_PDF(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodGet, "/api/v1/reports/export?city=Dhaka")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "travel-report.pdf")
	assert.True(t, strings.HasPrefix(string(body), "%PDF-"))
}

func TestExportReport_Validation(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodGet, "/api/v1/reports/export?format=docx")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", decode(t, body).Error.Code)

	resp, _ = srv.do(t, http.MethodGet, "/api/v1/reports/export?amount=abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteTrip(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	trip, err := srv.store.CreateTrip(ctx, models.TripRecord{Title: "Old"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := srv.store.CreateExpense(ctx, models.ExpenseRecord{TripID: trip.ID, Amount: 5})
		require.NoError(t, err)
	}

	resp, body := srv.do(t, http.MethodDelete, "/api/v1/trips/"+trip.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"trip_id":"`+trip.ID+`","expenses_removed":2}`, string(decode(t, body).Data))

	resp, _ = srv.do(t, http.MethodDelete, "/api/v1/trips/"+trip.ID)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetHealth(t *testing.T) {
	srv := newTestServer(t, withProbe(stubProbe{{Provider: "openweathermap", Healthy: false, Error: "invalid credential"}}))

	resp, body := srv.do(t, http.MethodGet, "/api/v1/health")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)
	assert.Contains(t, string(body), `"provider":"openweathermap"`)
	assert.Contains(t, string(body), `"error":"invalid credential"`)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodGet, "/api/v1/dashboard")

	resp, body := srv.do(t, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `trip_planner_dashboard_builds_total{result="complete"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodGet, "/api/v1/nowhere")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	env := decode(t, body)
	assert.False(t, env.Success)
	assert.Equal(t, "not_found", env.Error.Code)
}
