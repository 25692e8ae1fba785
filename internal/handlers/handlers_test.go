package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/internal/handlers"
	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"
)

// setupApp wires the handlers to an in-memory store with no middleware.
func setupApp() (*fiber.App, *services.ProductService) {
	service := services.NewProductService(repositories.NewMemoryProductRepository(), nil)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	handlers.NewProductHandler(service).RegisterRoutes(app)
	handlers.NewSystemHandler(service).RegisterRoutes(app, func(c *fiber.Ctx) error { return c.Next() })
	return app, service
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", models.NewValidationError("price", "must not be negative"), http.StatusUnprocessableEntity, "price: must not be negative"},
		{"wrapped validation", fmt.Errorf("ctx: %w", models.NewValidationError("sku", "is required")), http.StatusUnprocessableEntity, "sku: is required"},
		{"not found", models.NewNotFoundError(7), http.StatusNotFound, "Product not found"},
		{"conflict", models.NewConflictError("SKU already exists"), http.StatusConflict, "SKU already exists"},
		{"store duplicate", models.NewDuplicateSKUError("SKU-001"), http.StatusConflict, "SKU already exists"},
		{"unauthorized", models.NewUnauthorizedError("Unauthorized"), http.StatusUnauthorized, "Unauthorized"},
		{"fiber error", fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"timeout", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, "Request timed out"},
		{"unexpected", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, resp.StatusCode)
			assert.Equal(t, handlers.ErrorResponse{Code: tt.code, Message: tt.message}, body)
		})
	}
}

func TestProductHandler_CreateAndGet(t *testing.T) {
	app, _ := setupApp()

	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"name":"Gaming Mouse","sku":"sku-001","price":"150","quantity":25}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/products/1", resp.Header.Get("Location"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Gaming Mouse","sku":"SKU-001","price":"150.00","quantity":25}`, string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/products/1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProductHandler_MissingContentType(t *testing.T) {
	app, _ := setupApp()

	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"name":"Gaming Mouse","sku":"SKU-001"}`))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestProductHandler_EmptyPatchReturnsProduct(t *testing.T) {
	app, service := setupApp()
	created, err := service.CreateProduct(context.Background(), models.ProductDraft{Name: "Keyboard", SKU: "SKU-002", Quantity: 3})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/products/%d", created.ID), strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got handlers.ProductResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Keyboard", got.Name)
	assert.Equal(t, "0.00", got.Price)
	assert.Equal(t, 3, got.Quantity)
}

func TestSystemHandler_Reset(t *testing.T) {
	app, service := setupApp()
	_, err := service.SeedProducts(context.Background())
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/test/reset", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["message"])

	products, err := service.ListProducts(context.Background(), 0, services.DefaultListLimit)
	require.NoError(t, err)
	assert.Empty(t, products)
}
