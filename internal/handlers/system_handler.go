package handlers

import (
	"github.com/gofiber/fiber/v2"

	"inventory/internal/services"
)

// SystemHandler serves liveness and the test-only reset endpoint.
type SystemHandler struct {
	service *services.ProductService
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(service *services.ProductService) *SystemHandler {
	return &SystemHandler{service: service}
}

// RegisterRoutes registers health routes openly and reset behind guard.
func (h *SystemHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	router.Get("/", h.HandleHealth)
	router.Get("/health", h.HandleHealth)
	router.Post("/test/reset", guard, h.HandleReset)
}

// HandleHealth reports the process is serving.
func (h *SystemHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleReset deletes every product.
func (h *SystemHandler) HandleReset(c *fiber.Ctx) error {
	if err := h.service.Reset(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "All products deleted"})
}
