package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Weather provider names accepted in WEATHER_PROVIDER.
const (
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
		CORSOrigins  string
	}

	Database struct {
		URL string // empty selects the in-memory store
	}

	Weather struct {
		Provider          string
		OpenWeatherAPIKey string
		OpenWeatherURL    string
		OpenMeteoURL      string
		OpenMeteoGeoURL   string
	}

	Currency struct {
		APIURL string
	}

	HTTPClient struct {
		Timeout time.Duration
	}

	Report struct {
		Timeout time.Duration
	}

	Probe struct {
		Enabled      bool
		Schedule     string
		City         string
		BaseCurrency string
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Retry struct {
		MaxRetries int
		Delay      time.Duration
		Multiplier float64
	}
}

// LoadConfig reads configuration from the environment, loading .env first
// when present. Malformed values are reported together.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	p := &parser{}
	cfg := &Config{}

	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = p.duration("FIBER_READ_TIMEOUT", "10s")
	cfg.Server.WriteTimeout = p.duration("FIBER_WRITE_TIMEOUT", "30s")
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.Server.CORSOrigins = getEnv("CORS_ORIGINS", "*")

	cfg.Database.URL = getEnv("DATABASE_URL", "")

	cfg.Weather.Provider = strings.ToLower(getEnv("WEATHER_PROVIDER", ProviderOpenWeather))
	cfg.Weather.OpenWeatherAPIKey = getEnv("OPENWEATHER_API_KEY", "")
	cfg.Weather.OpenWeatherURL = getEnv("OPENWEATHER_URL", "https://api.openweathermap.org/data/2.5")
	cfg.Weather.OpenMeteoURL = getEnv("OPENMETEO_URL", "https://api.open-meteo.com/v1")
	cfg.Weather.OpenMeteoGeoURL = getEnv("OPENMETEO_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1")
	if cfg.Weather.Provider != ProviderOpenWeather && cfg.Weather.Provider != ProviderOpenMeteo {
		p.fail("WEATHER_PROVIDER", cfg.Weather.Provider, errors.New("must be openweather or openmeteo"))
	}

	cfg.Currency.APIURL = getEnv("CURRENCY_API_URL", "https://open.er-api.com/v6")

	cfg.HTTPClient.Timeout = p.duration("HTTP_CLIENT_TIMEOUT", "10s")
	cfg.Report.Timeout = p.duration("REPORT_TIMEOUT", "30s")

	cfg.Probe.Enabled = p.boolean("PROBE_ENABLED", "true")
	cfg.Probe.Schedule = getEnv("PROBE_SCHEDULE", "@every 15m")
	cfg.Probe.City = getEnv("PROBE_CITY", "London")
	cfg.Probe.BaseCurrency = strings.ToUpper(getEnv("PROBE_BASE_CURRENCY", "USD"))

	cfg.CircuitBreaker.Threshold = p.integer("CIRCUIT_BREAKER_THRESHOLD", "3")
	cfg.CircuitBreaker.Timeout = p.duration("CIRCUIT_BREAKER_TIMEOUT", "30s")

	cfg.Retry.MaxRetries = p.integer("MAX_RETRIES", "0")
	cfg.Retry.Delay = p.duration("RETRY_DELAY", "1s")
	cfg.Retry.Multiplier = p.float("RETRY_MULTIPLIER", "2")

	if len(p.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(p.errs...))
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// parser collects parse failures so every bad variable is reported at once.
type parser struct {
	errs []error
}

func (p *parser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (p *parser) duration(key, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	d, err := time.ParseDuration(value)
	if err != nil {
		p.fail(key, value, err)
		return 0
	}
	if d < 0 {
		p.fail(key, value, errors.New("must not be negative"))
		return 0
	}
	return d
}

func (p *parser) integer(key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	n, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, err)
		return 0
	}
	if n < 0 {
		p.fail(key, value, errors.New("must not be negative"))
		return 0
	}
	return n
}

func (p *parser) float(key, defaultValue string) float64 {
	value := getEnv(key, defaultValue)
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.fail(key, value, err)
		return 0
	}
	return f
}

func (p *parser) boolean(key, defaultValue string) bool {
	value := getEnv(key, defaultValue)
	b, err := strconv.ParseBool(value)
	if err != nil {
		p.fail(key, value, err)
		return false
	}
	return b
}
