package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/trip-planner/internal/apperr"
	"github.com/bobby-s-dev/trip-planner/internal/models"
	"github.com/bobby-s-dev/trip-planner/internal/report"
)

// Report section names, in emission order.
const (
	SectionHeader    = "header"
	SectionTrip      = "trip"
	SectionDashboard = "dashboard"
	SectionWeather   = "weather"
	SectionCurrency  = "currency"
	SectionExpenses  = "expenses"
)

const (
	ReportTitle = "Travel Report"
	dateLayout  = "2006-01-02"
)

// ReportRequest carries the report inputs. All fields are optional; without
// a TripID the report covers the place and currency only.
type ReportRequest struct {
	TripID string
	Place  string
	From   string
	To     string
	Amount float64
}

// ReportCompiler produces sectioned travel reports.
type ReportCompiler struct {
	store    RecordStore
	weather  WeatherFetcher
	currency Converter
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewReportCompiler(store RecordStore, weather WeatherFetcher, currency Converter, recorder Recorder, logger *zap.Logger) *ReportCompiler {
	return &ReportCompiler{
		store:    store,
		weather:  weather,
		currency: currency,
		recorder: orNop(recorder),
		logger:   logger,
		now:      time.Now,
	}
}

// ReportPlan is a prepared report. The subject trip has been resolved; the
// remaining sections are looked up while rendering.
type ReportPlan struct {
	c           *ReportCompiler
	req         ReportRequest
	trip        *models.TripRecord
	tripMissing bool
	generatedAt time.Time
}

// Prepare resolves the subject trip. When the trip does not exist the
// returned plan renders only the header and a not-found notice, and the
// error is a not_found error.
func (c *ReportCompiler) Prepare(ctx context.Context, req ReportRequest) (*ReportPlan, error) {
	req.TripID = strings.TrimSpace(req.TripID)
	req.Place = strings.TrimSpace(req.Place)
	req.From = strings.TrimSpace(req.From)
	req.To = strings.TrimSpace(req.To)

	plan := &ReportPlan{c: c, req: req, generatedAt: c.now().UTC()}
	if req.TripID == "" {
		return plan, nil
	}

	trip, err := c.store.FindTripByID(ctx, req.TripID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			plan.tripMissing = true
			return plan, apperr.NotFound("trip not found")
		}
		c.logger.Error("Failed to load report trip", zap.String("trip_id", req.TripID), zap.Error(err))
		return nil, apperr.Internal("failed to load trip", err)
	}
	plan.trip = trip
	return plan, nil
}

// Render emits the plan's sections to doc in order. Each section is emitted
// as soon as its data is available. It does not close doc.
func (p *ReportPlan) Render(ctx context.Context, doc *report.Document) error {
	if err := p.emit(doc, headerBlock(p.generatedAt, p.trip)); err != nil {
		return err
	}

	if p.tripMissing {
		return p.emit(doc, tripNotFoundBlock(p.req.TripID))
	}

	if p.trip != nil {
		if err := p.emit(doc, tripBlock(p.trip)); err != nil {
			return err
		}
	} else if err := p.emit(doc, dashboardBlock()); err != nil {
		return err
	}

	place := p.req.Place
	if place == "" && p.trip != nil {
		place = strings.TrimSpace(p.trip.Destination)
	}

	weather := fetchWeather(ctx, p.c.weather, place)
	if weather.Requested() {
		if err := p.emit(doc, weatherBlock(place, weather)); err != nil {
			return err
		}
	}

	from := settlementCurrency(p.req.From, weather)
	currency := convertCurrency(ctx, p.c.currency, from, p.req.To, p.req.Amount)
	if err := p.emit(doc, currencyBlock(currency)); err != nil {
		return err
	}

	if p.trip == nil {
		return nil
	}

	expenses, err := p.c.store.FindExpenses(ctx, models.ExpenseQuery{TripIDs: []string{p.trip.ID}})
	if err != nil {
		p.c.logger.Warn("Failed to load report expenses", zap.String("trip_id", p.trip.ID), zap.Error(err))
	}
	return p.emit(doc, expensesBlock(expenses, err))
}

func (p *ReportPlan) emit(doc *report.Document, b *report.Block) error {
	if err := doc.Emit(b); err != nil {
		return fmt.Errorf("services.ReportPlan.Render: %s: %w", b.Name, err)
	}
	p.c.recorder.IncReportSection(b.Name)
	return nil
}

// Compile prepares and renders a report into doc, then closes it. A missing
// trip still produces the truncated document and returns the not_found error.
func (c *ReportCompiler) Compile(ctx context.Context, req ReportRequest, doc *report.Document) error {
	plan, prepErr := c.Prepare(ctx, req)
	if plan == nil {
		return prepErr
	}
	if err := plan.Render(ctx, doc); err != nil {
		return err
	}
	if err := doc.Close(); err != nil {
		return fmt.Errorf("services.ReportCompiler.Compile: close: %w", err)
	}
	return prepErr
}

func headerBlock(generatedAt time.Time, trip *models.TripRecord) *report.Block {
	subtitle := "Generated " + generatedAt.Format(time.RFC1123)
	if trip != nil && trip.Title != "" {
		subtitle = trip.Title + "  |  " + subtitle
	}
	return report.NewBlock(SectionHeader).Banner(ReportTitle, subtitle)
}

func tripNotFoundBlock(id string) *report.Block {
	return report.NewBlock(SectionTrip).
		Heading("Trip Details").
		Line(report.NoticeStyle, "Trip not found: "+id)
}

func tripBlock(trip *models.TripRecord) *report.Block {
	tripType := trip.TripType
	if tripType == "" {
		tripType = models.DefaultTripType
	}
	return report.NewBlock(SectionTrip).
		Heading("Trip Details").
		Pair("Title", orDash(trip.Title)).
		Pair("Destination", orDash(trip.Destination)).
		Pair("Dates", formatDate(trip.StartDate)+" to "+formatDate(trip.EndDate)).
		Pair("Type", tripType)
}

func dashboardBlock() *report.Block {
	return report.NewBlock(SectionDashboard).
		Heading("Travel Dashboard").
		Line(report.MutedStyle, "No trip selected. Weather and currency for the requested place follow.")
}

func weatherBlock(place string, outcome models.Outcome[models.WeatherSnapshot]) *report.Block {
	b := report.NewBlock(SectionWeather).Heading("Weather: " + place)
	w, ok := outcome.Value()
	if !ok {
		return b.Line(report.NoticeStyle, "Weather data not available ("+apperr.PublicMessage(outcome.Err())+")")
	}
	location := w.Place
	if w.Country != "" {
		location += ", " + w.Country
	}
	return b.
		Pair("Location", location).
		Pair("Conditions", orDash(w.Description)).
		Pair("Temperature", fmt.Sprintf("%.1f °C (feels like %.1f °C)", w.Temperature, w.FeelsLike)).
		Pair("Humidity", fmt.Sprintf("%.0f%%", w.Humidity)).
		Pair("Wind", fmt.Sprintf("%.1f m/s", w.WindSpeed)).
		Line(report.MutedStyle, "Source: "+w.Source+", retrieved "+w.RetrievedAt.Format(time.RFC1123))
}

func currencyBlock(outcome models.Outcome[models.CurrencySnapshot]) *report.Block {
	b := report.NewBlock(SectionCurrency).Heading("Currency")
	if !outcome.Requested() {
		return b.Line(report.NoticeStyle, "Currency data not available (no target currency)")
	}
	c, ok := outcome.Value()
	if !ok {
		return b.Line(report.NoticeStyle, "Currency data not available ("+apperr.PublicMessage(outcome.Err())+")")
	}
	b.Pair("Rate", fmt.Sprintf("1 %s = %s %s", c.From, formatRate(c.Rate), c.To)).
		Pair("Conversion", fmt.Sprintf("%s %s = %s %s", formatMoney(c.Amount), c.From, formatMoney(c.Result), c.To))
	source := "Source: " + c.Provider
	if c.LastUpdate != nil {
		source += ", updated " + c.LastUpdate.Format(time.RFC1123)
	}
	return b.Line(report.MutedStyle, source)
}

func expensesBlock(expenses []models.ExpenseRecord, err error) *report.Block {
	b := report.NewBlock(SectionExpenses).Heading("Expenses")
	if err != nil {
		return b.Line(report.NoticeStyle, "Expense data not available")
	}
	if len(expenses) == 0 {
		return b.Line(report.MutedStyle, "No expenses found")
	}

	running := decimal.Zero
	for _, e := range expenses {
		amount := decimalAmount(e.Amount)
		running = running.Add(amount)
		b.Line(report.BodyStyle, fmt.Sprintf("%s  %-14s %12s   running total %12s",
			formatDate(e.Date), orDash(e.Category), amount.StringFixed(2), running.StringFixed(2)))
	}
	return b.Line(report.HeadingStyle, "Total: "+running.StringFixed(2))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatRate(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
