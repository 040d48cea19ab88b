package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bobby-s-dev/trip-planner/internal/apperr"
	"github.com/bobby-s-dev/trip-planner/internal/models"
)

// Dashboard build results reported to the Recorder.
const (
	BuildComplete = "complete"
	BuildPartial  = "partial"
	BuildFailed   = "failed"
)

// DashboardRequest carries the optional dashboard inputs. Weather is looked
// up when Place is set and a conversion is made when To is set.
type DashboardRequest struct {
	OwnerID string
	Place   string
	From    string
	To      string
	Amount  float64
}

// Aggregator builds the consolidated dashboard from stored records and the
// two external lookups. Lookup failures are kept inside the result; only
// record store failures fail the build.
type Aggregator struct {
	store    RecordStore
	weather  WeatherFetcher
	currency Converter
	recorder Recorder
	logger   *zap.Logger
}

func NewAggregator(store RecordStore, weather WeatherFetcher, currency Converter, recorder Recorder, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		store:    store,
		weather:  weather,
		currency: currency,
		recorder: orNop(recorder),
		logger:   logger,
	}
}

// BuildDashboard runs the record lookups, then weather and currency.
func (a *Aggregator) BuildDashboard(ctx context.Context, req DashboardRequest) (*models.AggregateResult, error) {
	result := &models.AggregateResult{
		Trips:    []models.TripRecord{},
		Expenses: []models.ExpenseRecord{},
		Flights:  []models.FlightBooking{},
		Spending: Summarize(nil),
	}

	if owner, ok := ParseOwnerKey(req.OwnerID); ok {
		result.OwnerID = owner.String()
		if err := a.loadRecords(ctx, owner, result); err != nil {
			a.recorder.IncDashboardBuild(BuildFailed)
			return nil, err
		}
	}

	place := strings.TrimSpace(req.Place)
	from := strings.TrimSpace(req.From)
	to := strings.TrimSpace(req.To)

	if from != "" {
		// Both inputs are known up front, so the lookups are independent.
		var g errgroup.Group
		g.Go(func() error {
			result.Weather = a.lookupWeather(ctx, place)
			return nil
		})
		g.Go(func() error {
			result.Currency = a.lookupCurrency(ctx, from, to, req.Amount)
			return nil
		})
		_ = g.Wait()
	} else {
		result.Weather = a.lookupWeather(ctx, place)
		result.Currency = a.lookupCurrency(ctx, settlementCurrency("", result.Weather), to, req.Amount)
	}

	buildResult := BuildComplete
	if result.Weather.Err() != nil || result.Currency.Err() != nil {
		buildResult = BuildPartial
	}
	a.recorder.IncDashboardBuild(buildResult)

	a.logger.Debug("Dashboard built",
		zap.String("owner_id", result.OwnerID),
		zap.Int("trips", len(result.Trips)),
		zap.Int("expenses", len(result.Expenses)),
		zap.Int("flights", len(result.Flights)),
		zap.String("result", buildResult))

	return result, nil
}

func (a *Aggregator) loadRecords(ctx context.Context, owner OwnerKey, result *models.AggregateResult) error {
	trips, err := a.store.FindTripsByOwner(ctx, owner.String())
	if err != nil {
		a.logger.Error("Failed to load trips", zap.String("owner_id", owner.String()), zap.Error(err))
		return apperr.Internal("failed to load trips", err)
	}

	expenses, err := a.store.FindExpenses(ctx, owner.ExpenseQuery(trips))
	if err != nil {
		a.logger.Error("Failed to load expenses", zap.String("owner_id", owner.String()), zap.Error(err))
		return apperr.Internal("failed to load expenses", err)
	}

	flights, err := a.store.FindFlights(ctx, owner.String())
	if err != nil {
		a.logger.Error("Failed to load flights", zap.String("owner_id", owner.String()), zap.Error(err))
		return apperr.Internal("failed to load flights", err)
	}

	if trips != nil {
		result.Trips = trips
	}
	if expenses != nil {
		result.Expenses = expenses
	}
	if flights != nil {
		result.Flights = flights
	}
	result.Spending = Summarize(expenses)
	return nil
}

func (a *Aggregator) lookupWeather(ctx context.Context, place string) models.Outcome[models.WeatherSnapshot] {
	return fetchWeather(ctx, a.weather, place)
}

func (a *Aggregator) lookupCurrency(ctx context.Context, from, to string, amount float64) models.Outcome[models.CurrencySnapshot] {
	return convertCurrency(ctx, a.currency, from, to, amount)
}

// fetchWeather returns a not-requested outcome for an empty place.
func fetchWeather(ctx context.Context, w WeatherFetcher, place string) models.Outcome[models.WeatherSnapshot] {
	if place == "" {
		return models.Outcome[models.WeatherSnapshot]{}
	}
	snapshot, err := w.Fetch(ctx, place)
	if err != nil {
		return models.Failed[models.WeatherSnapshot](err)
	}
	return models.Succeeded(snapshot)
}

// convertCurrency returns a not-requested outcome for an empty target.
func convertCurrency(ctx context.Context, c Converter, from, to string, amount float64) models.Outcome[models.CurrencySnapshot] {
	if to == "" {
		return models.Outcome[models.CurrencySnapshot]{}
	}
	snapshot, err := c.Convert(ctx, from, to, amount)
	if err != nil {
		return models.Failed[models.CurrencySnapshot](err)
	}
	return models.Succeeded(snapshot)
}

// settlementCurrency picks the source currency: the explicit one, else the
// currency of the country the weather lookup resolved, else USD.
func settlementCurrency(explicit string, weather models.Outcome[models.WeatherSnapshot]) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return strings.ToUpper(explicit)
	}
	if w, ok := weather.Value(); ok {
		return ResolveCurrency(w.Country)
	}
	return defaultSettlementCurrency
}
