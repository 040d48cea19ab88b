package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/trip-planner/internal/apperr"
)

// ErrorHandler renders every error returned by a handler as
// {"success": false, "error": {...}}. Internal causes are logged, never sent.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := apperr.HTTPStatus(err)
		kind := string(apperr.KindOf(err))
		message := apperr.PublicMessage(err)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
			kind = string(apperr.KindInternal)
			switch {
			case code == fiber.StatusNotFound:
				kind = string(apperr.KindNotFound)
			case code < fiber.StatusInternalServerError:
				kind = string(apperr.KindValidation)
			}
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP error", fields...)
		} else {
			logger.Debug("HTTP error", fields...)
		}

		body := fiber.Map{"code": kind, "message": message}
		if category := apperr.CategoryOf(err); category != "" {
			body["category"] = category
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   body,
		})
	}
}

// RequestLogger logs one line per request with its final status.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if handlerErr := c.App().Config().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		}
		if id, ok := c.Locals("requestid").(string); ok {
			fields = append(fields, zap.String("request_id", id))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
		return nil
	}
}
