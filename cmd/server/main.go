package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bobby-s-dev/trip-planner/internal/api"
	"github.com/bobby-s-dev/trip-planner/internal/config"
	"github.com/bobby-s-dev/trip-planner/internal/metrics"
	"github.com/bobby-s-dev/trip-planner/internal/scheduler"
	"github.com/bobby-s-dev/trip-planner/internal/services"
	"github.com/bobby-s-dev/trip-planner/internal/store"
	"github.com/bobby-s-dev/trip-planner/pkg/client"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	zap.ReplaceGlobals(logger)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if level, err := zapcore.ParseLevel(cfg.Server.LogLevel); err == nil && level != zapcore.InfoLevel {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(level)
		if l, err := zcfg.Build(); err == nil {
			logger = l
			zap.ReplaceGlobals(logger)
		}
	}
	logger.Info("Starting Trip Planner Service")

	ctx := context.Background()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Record store
	records, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open record store", zap.Error(err))
	}
	defer closeStore()

	// Provider clients
	clientConfig := client.ClientConfig{
		Timeout:        cfg.HTTPClient.Timeout,
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryDelay:     cfg.Retry.Delay,
		Multiplier:     cfg.Retry.Multiplier,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
		Observer:       m,
	}

	var weatherProvider interface {
		services.WeatherProvider
		Name() string
	}
	switch cfg.Weather.Provider {
	case config.ProviderOpenMeteo:
		weatherProvider = client.NewOpenMeteoClient(cfg.Weather.OpenMeteoURL, cfg.Weather.OpenMeteoGeoURL, clientConfig, logger)
	default:
		if !client.CredentialConfigured(cfg.Weather.OpenWeatherAPIKey) {
			logger.Warn("OPENWEATHER_API_KEY is not configured; weather lookups will fail")
		}
		weatherProvider = client.NewOpenWeatherClient(cfg.Weather.OpenWeatherAPIKey, cfg.Weather.OpenWeatherURL, clientConfig, logger)
	}
	logger.Info("Weather provider initialized", zap.String("provider", weatherProvider.Name()))

	rateClient := client.NewExchangeRateClient(cfg.Currency.APIURL, clientConfig, logger)

	// Services
	weather := services.NewWeatherService(weatherProvider, logger)
	currency := services.NewCurrencyConverter(rateClient, logger)
	aggregator := services.NewAggregator(records, weather, currency, m, logger)
	compiler := services.NewReportCompiler(records, weather, currency, m, logger)
	trips := services.NewTripService(records, logger)

	// Provider probe
	var probe *scheduler.ProviderProbe
	if cfg.Probe.Enabled {
		probe, err = scheduler.NewProviderProbe(cfg.Probe.Schedule, cfg.HTTPClient.Timeout, []scheduler.Check{
			{Provider: weatherProvider.Name(), Run: func(ctx context.Context) error {
				_, err := weather.Fetch(ctx, cfg.Probe.City)
				return err
			}},
			{Provider: rateClient.Name(), Run: func(ctx context.Context) error {
				_, err := rateClient.Rates(ctx, cfg.Probe.BaseCurrency)
				return err
			}},
		}, m, logger)
		if err != nil {
			logger.Fatal("Failed to initialize provider probe", zap.Error(err))
		}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: api.ErrorHandler(logger),
	})

	// Setup handlers and routes
	svc := api.Services{
		Weather:   weather,
		Currency:  currency,
		Dashboard: aggregator,
		Reports:   compiler,
		Trips:     trips,
	}
	if probe != nil {
		svc.Probe = probe
	}
	handler := api.NewHandler(svc, cfg.Report.Timeout, logger)
	api.SetupRoutes(app, handler, registry, cfg.Server.CORSOrigins, logger)

	if probe != nil {
		probe.Start()
	}

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if probe != nil {
		probe.Stop(shutdownCtx)
	}

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// openStore returns the Postgres store when DATABASE_URL is set, after
// applying migrations, and the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.RecordStore, func(), error) {
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL is not set; using the in-memory record store")
		return store.NewMemoryStore(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	if err := store.Migrate(ctx, sqlDB); err != nil {
		sqlDB.Close()
		pool.Close()
		return nil, nil, err
	}
	logger.Info("Database migrations applied")

	return store.NewPostgresStore(pool), func() {
		_ = sqlDB.Close()
		pool.Close()
	}, nil
}
