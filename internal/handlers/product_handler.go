package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"inventory/internal/models"
	"inventory/internal/services"
)

// ProductHandler handles HTTP requests related to products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Post("/:id/adjust", h.HandleAdjustQuantity)
}

// ProductResponse is the JSON form of a product. Price is rendered with two decimals.
type ProductResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

// Location is the canonical path of the product.
func (p ProductResponse) Location() string {
	return fmt.Sprintf("/products/%d", p.ID)
}

func newProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:       p.ID,
		Name:     p.Name,
		SKU:      p.SKU,
		Price:    p.Price.StringFixed(2),
		Quantity: p.Quantity,
	}
}

// Price accepts a JSON number or a numeric string.
type createProductRequest struct {
	Name     string           `json:"name"`
	SKU      string           `json:"sku"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int             `json:"quantity"`
}

func (r createProductRequest) draft() models.ProductDraft {
	d := models.ProductDraft{Name: r.Name, SKU: r.SKU}
	if r.Price != nil {
		d.Price = *r.Price
	}
	if r.Quantity != nil {
		d.Quantity = *r.Quantity
	}
	return d
}

// Absent and null fields are left untouched.
type updateProductRequest struct {
	Name     *string          `json:"name"`
	SKU      *string          `json:"sku"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int             `json:"quantity"`
}

// HandleCreateProduct creates a product and points Location at it.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req createProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), req.draft())
	if err != nil {
		return err
	}

	resp := newProductResponse(product)
	c.Location(resp.Location())
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// HandleListProducts returns one page of products ordered by id.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", services.DefaultListLimit)
	if err != nil {
		return err
	}

	products, err := h.service.ListProducts(c.UserContext(), offset, limit)
	if err != nil {
		return err
	}

	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, newProductResponse(&products[i]))
	}
	return c.JSON(resp)
}

// HandleGetProduct returns a single product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(newProductResponse(product))
}

// HandleUpdateProduct applies a partial update.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	var req updateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, models.ProductUpdate{
		Name:     req.Name,
		SKU:      req.SKU,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		return err
	}
	return c.JSON(newProductResponse(product))
}

// HandleDeleteProduct deletes a product and answers with an empty 204.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleAdjustQuantity adds the signed ?quantity= delta to the product's stock.
func (h *ProductHandler) HandleAdjustQuantity(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	raw := c.Query("quantity")
	if raw == "" {
		return models.NewValidationError("quantity", "is required")
	}
	delta, err := strconv.Atoi(raw)
	if err != nil {
		return models.NewValidationError("quantity", "must be an integer")
	}

	product, err := h.service.AdjustQuantity(c.UserContext(), id, delta)
	if err != nil {
		return err
	}
	return c.JSON(newProductResponse(product))
}

func productID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, models.NewValidationError("id", "must be an integer")
	}
	return id, nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError(key, "must be an integer")
	}
	return n, nil
}

func invalidBody(err error) error {
	return fmt.Errorf("%w: %v", models.NewValidationError("body", "must be a valid JSON object"), err)
}
