package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"inventory/internal/logger"
)

// RequestLogger attaches a request-scoped logger and a timeout to the request context,
// resolves any handler error through the app's ErrorHandler and logs the outcome.
// It must run after RequestID.
func RequestLogger(log *zap.Logger, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := GetRequestID(c)
		reqLog := log.With(zap.String("request_id", requestID))

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		ctx = logger.WithRequestID(ctx, requestID)
		c.SetUserContext(logger.WithContext(ctx, reqLog))

		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				reqLog.Error("Error handler failed", zap.Error(handlerErr))
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			reqLog.Error("Request failed", fields...)
		case status >= fiber.StatusBadRequest:
			reqLog.Warn("Request rejected", fields...)
		default:
			reqLog.Info("Request completed", fields...)
		}
		return nil
	}
}
