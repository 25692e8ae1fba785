// Package server assembles the Fiber application: middleware, routes and error handling.
package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"inventory/internal/config"
	"inventory/internal/handlers"
	"inventory/internal/middleware"
	"inventory/internal/services"
)

// Options carries everything NewApp wires together.
type Options struct {
	Config   *config.Config
	Products *services.ProductService
	Logger   *zap.Logger
	// Registry receives the HTTP metrics and backs GET /metrics. A fresh one is used when nil.
	Registry *prometheus.Registry
}

// NewApp builds the Fiber app serving the product API.
func NewApp(opts Options) (*fiber.App, error) {
	if opts.Config == nil || opts.Products == nil {
		return nil, errors.New("server: config and product service are required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	metrics, err := middleware.NewHTTPMetrics(reg)
	if err != nil {
		return nil, err
	}
	guard, err := middleware.NewAPIKeyGuard(opts.Config.TestAPIKey)
	if err != nil {
		return nil, err
	}
	if !guard.Enabled() {
		log.Warn("TEST_API_KEY is not set, POST /test/reset will reject every request")
	}

	app := fiber.New(fiber.Config{
		AppName:               "inventory-api",
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(middleware.RequestID())
	app.Use(metrics.Handler())
	app.Use(middleware.RequestLogger(log, opts.Config.RequestTimeout))
	app.Use(recover.New())
	app.Use(cors.New(corsConfig(opts.Config.CORSOrigins)))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.NewSystemHandler(opts.Products).RegisterRoutes(app, guard.Handler())
	handlers.NewProductHandler(opts.Products).RegisterRoutes(app)

	return app, nil
}

func corsConfig(origins []string) cors.Config {
	allowOrigins := strings.Join(origins, ",")
	return cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: strings.Join([]string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodPatch,
			fiber.MethodDelete, fiber.MethodHead, fiber.MethodOptions,
		}, ","),
		ExposeHeaders: strings.Join([]string{middleware.RequestIDHeader, fiber.HeaderLocation}, ","),
		// Fiber refuses credentials with a wildcard origin.
		AllowCredentials: allowOrigins != "*",
	}
}
