package api

import (
	"bufio"
	"context"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/trip-planner/internal/apperr"
	"github.com/bobby-s-dev/trip-planner/internal/models"
	"github.com/bobby-s-dev/trip-planner/internal/report"
	"github.com/bobby-s-dev/trip-planner/internal/scheduler"
	"github.com/bobby-s-dev/trip-planner/internal/services"
)

type DashboardBuilder interface {
	BuildDashboard(ctx context.Context, req services.DashboardRequest) (*models.AggregateResult, error)
}

type ReportPreparer interface {
	Prepare(ctx context.Context, req services.ReportRequest) (*services.ReportPlan, error)
}

type TripDeleter interface {
	Delete(ctx context.Context, id string) (int64, error)
}

type ProbeStatusReader interface {
	Status() []scheduler.ProbeStatus
}

// Services groups the handler's collaborators. Probe may be nil when
// provider probing is disabled.
type Services struct {
	Weather   services.WeatherFetcher
	Currency  services.Converter
	Dashboard DashboardBuilder
	Reports   ReportPreparer
	Trips     TripDeleter
	Probe     ProbeStatusReader
}

type Handler struct {
	svc           Services
	reportTimeout time.Duration
	logger        *zap.Logger
	startTime     time.Time
}

func NewHandler(svc Services, reportTimeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		svc:           svc,
		reportTimeout: reportTimeout,
		logger:        logger,
		startTime:     time.Now(),
	}
}

// GetWeather handles GET /api/v1/weather
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	weather, err := h.svc.Weather.Fetch(c.Context(), c.Query("city"))
	if err != nil {
		return err
	}
	return ok(c, weather)
}

// ConvertCurrency handles GET /api/v1/currency/convert
func (h *Handler) ConvertCurrency(c *fiber.Ctx) error {
	amount, err := queryAmount(c)
	if err != nil {
		return err
	}

	conversion, err := h.svc.Currency.Convert(c.Context(), c.Query("from"), c.Query("to"), amount)
	if err != nil {
		return err
	}
	return ok(c, conversion)
}

// GetDashboard handles GET /api/v1/dashboard
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	amount, err := queryAmount(c)
	if err != nil {
		return err
	}

	result, err := h.svc.Dashboard.BuildDashboard(c.Context(), services.DashboardRequest{
		OwnerID: c.Query("owner_id"),
		Place:   c.Query("city"),
		From:    c.Query("from"),
		To:      c.Query("to"),
		Amount:  amount,
	})
	if err != nil {
		return err
	}
	return ok(c, result)
}

type reportFormat struct {
	contentType string
	filename    string
	renderer    func(w io.Writer) report.Renderer
}

var reportFormats = map[string]reportFormat{
	"pdf": {
		contentType: "application/pdf",
		filename:    "travel-report.pdf",
		renderer:    func(w io.Writer) report.Renderer { return report.NewPDFRenderer(w, services.ReportTitle) },
	},
	"text": {
		contentType: "text/plain; charset=utf-8",
		filename:    "travel-report.txt",
		renderer:    func(w io.Writer) report.Renderer { return report.NewTextRenderer(w) },
	},
}

// ExportReport handles GET /api/v1/reports/export. Sections are built and
// their data looked up one at a time; a missing trip answers 404 with a
// truncated document. format=text reaches the wire section by section, while
// format=pdf (the default) is written in one piece when the document closes
// because the PDF trailer needs every page.
func (h *Handler) ExportReport(c *fiber.Ctx) error {
	format, found := reportFormats[strings.ToLower(c.Query("format", "pdf"))]
	if !found {
		return apperr.Validation("format must be pdf or text")
	}
	amount, err := queryAmount(c)
	if err != nil {
		return err
	}

	req := services.ReportRequest{
		TripID: c.Query("trip_id"),
		Place:  c.Query("city"),
		From:   c.Query("from"),
		To:     c.Query("to", "USD"),
		Amount: amount,
	}

	plan, err := h.svc.Reports.Prepare(c.Context(), req)
	if plan == nil {
		return err
	}
	status := fiber.StatusOK
	if err != nil {
		status = apperr.HTTPStatus(err)
	}

	c.Status(status)
	c.Set(fiber.HeaderContentType, format.contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+format.filename+`"`)

	logger := h.logger.With(zap.String("trip_id", req.TripID))
	timeout := h.reportTimeout
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		doc := report.NewDocument(format.renderer(w))
		if err := plan.Render(ctx, doc); err != nil {
			logger.Warn("Report stream aborted", zap.Error(err))
			return
		}
		if err := doc.Close(); err != nil {
			logger.Warn("Report close failed", zap.Error(err))
			return
		}
		if err := w.Flush(); err != nil {
			logger.Debug("Report client went away", zap.Error(err))
		}
	})
	return nil
}

// DeleteTrip handles DELETE /api/v1/trips/:id
func (h *Handler) DeleteTrip(c *fiber.Ctx) error {
	id := c.Params("id")
	removed, err := h.svc.Trips.Delete(c.Context(), id)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{
		"trip_id":          id,
		"expenses_removed": removed,
	})
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	providers := []scheduler.ProbeStatus{}
	if h.svc.Probe != nil {
		providers = h.svc.Probe.Status()
	}

	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"providers": providers,
	})
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// queryAmount parses the optional amount query parameter, defaulting to 1.
func queryAmount(c *fiber.Ctx) (float64, error) {
	raw := strings.TrimSpace(c.Query("amount"))
	if raw == "" {
		return 1, nil
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, apperr.Validation("invalid amount")
	}
	return amount, nil
}
