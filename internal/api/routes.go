package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func SetupRoutes(app *fiber.App, handler *Handler, gatherer prometheus.Gatherer, corsOrigins string, log *zap.Logger) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowMethods: "GET,HEAD,DELETE,OPTIONS",
	}))
	app.Use(RequestLogger(log))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api/v1")

	api.Get("/health", handler.GetHealth)
	api.Get("/weather", handler.GetWeather)
	api.Get("/currency/convert", handler.ConvertCurrency)
	api.Get("/dashboard", handler.GetDashboard)
	api.Get("/reports/export", handler.ExportReport)
	api.Delete("/trips/:id", handler.DeleteTrip)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "endpoint not found: "+c.Path())
	})
}
