package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"inventory/internal/logger"
	"inventory/internal/models"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorHandler is the Fiber error handler. It is the only place errors become HTTP statuses.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, message := classify(err)
	if code >= fiber.StatusInternalServerError {
		logger.FromContext(c.UserContext()).Error("Unhandled error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(code).JSON(ErrorResponse{Code: code, Message: message})
}

func classify(err error) (int, string) {
	var (
		validationErr   *models.ValidationError
		notFoundErr     *models.NotFoundError
		conflictErr     *models.ConflictError
		duplicateErr    *models.DuplicateSKUError
		unauthorizedErr *models.UnauthorizedError
		fiberErr        *fiber.Error
	)
	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusUnprocessableEntity, validationErr.Error()
	case errors.As(err, &notFoundErr):
		return fiber.StatusNotFound, "Product not found"
	case errors.As(err, &conflictErr):
		return fiber.StatusConflict, conflictErr.Message
	case errors.As(err, &duplicateErr):
		return fiber.StatusConflict, "SKU already exists"
	case errors.As(err, &unauthorizedErr):
		return fiber.StatusUnauthorized, unauthorizedErr.Message
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusServiceUnavailable, "Request timed out"
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
