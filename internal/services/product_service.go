package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"inventory/internal/logger"
	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/validation"
)

// Pagination bounds for ListProducts.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

const skuConflictMessage = "SKU already exists"

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	now       func() time.Time
}

// NewProductService creates a new ProductService. A nil publisher disables events.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateProduct validates the draft and stores it under a SKU no other product holds.
func (s *ProductService) CreateProduct(ctx context.Context, draft models.ProductDraft) (*models.Product, error) {
	product, err := validation.Draft(draft)
	if err != nil {
		return nil, err
	}

	if err := s.ensureSKUFree(ctx, product.SKU, 0); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &product); err != nil {
		if models.IsDuplicateSKU(err) {
			return nil, models.NewConflictError(skuConflictMessage)
		}
		return nil, err
	}

	logger.FromContext(ctx).Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("sku", product.SKU))
	s.publish(ctx, models.EventProductCreated, &product)
	return &product, nil
}

// ListProducts returns one page of products ordered by ID.
func (s *ProductService) ListProducts(ctx context.Context, offset, limit int) ([]models.Product, error) {
	if offset < 0 {
		return nil, models.NewValidationError("offset", "must not be negative")
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, models.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", MaxListLimit))
	}
	return s.repo.List(ctx, offset, limit)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProduct applies a partial update. Only the supplied fields are validated.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, update models.ProductUpdate) (*models.Product, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update, err = validation.Update(update)
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return current, nil
	}

	if update.SKU != nil && *update.SKU != current.SKU {
		if err := s.ensureSKUFree(ctx, *update.SKU, id); err != nil {
			return nil, err
		}
	}

	product, err := s.repo.Update(ctx, id, update)
	if err != nil {
		if models.IsDuplicateSKU(err) {
			return nil, models.NewConflictError(skuConflictMessage)
		}
		return nil, err
	}

	logger.FromContext(ctx).Info("Product updated", zap.Int64("product_id", id))
	s.publish(ctx, models.EventProductUpdated, product)
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("Product deleted", zap.Int64("product_id", id))
	s.publish(ctx, models.EventProductDeleted, product)
	return nil
}

// AdjustQuantity adds delta (which may be negative) to the stock of a product.
// The store re-checks the bounds in the same statement that writes the new quantity.
func (s *ProductService) AdjustQuantity(ctx context.Context, id int64, delta int) (*models.Product, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if delta > models.MaxQuantity || delta < -models.MaxQuantity {
		return nil, models.NewValidationError("quantity", fmt.Sprintf("adjustment must be between -%d and %d", models.MaxQuantity, models.MaxQuantity))
	}
	next := int64(current.Quantity) + int64(delta)
	if next < 0 {
		return nil, models.NewValidationError("quantity", "result would be negative")
	}
	if next > models.MaxQuantity {
		return nil, models.NewValidationError("quantity", "result would exceed the maximum quantity")
	}

	product, err := s.repo.AdjustQuantity(ctx, id, delta)
	switch {
	case errors.Is(err, models.ErrNegativeQuantity):
		return nil, models.NewValidationError("quantity", "result would be negative")
	case errors.Is(err, models.ErrQuantityOverflow):
		return nil, models.NewValidationError("quantity", "result would exceed the maximum quantity")
	case err != nil:
		return nil, err
	}

	logger.FromContext(ctx).Info("Product quantity adjusted",
		zap.Int64("product_id", id),
		zap.Int("delta", delta),
		zap.Int("quantity", product.Quantity))
	s.publish(ctx, models.EventProductQuantityAdjusted, product)
	return product, nil
}

// Reset deletes every product. Callers are responsible for authorizing it.
func (s *ProductService) Reset(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	logger.FromContext(ctx).Warn("All products deleted")
	s.publish(ctx, models.EventProductsReset, nil)
	return nil
}

// ensureSKUFree fails with a ConflictError when a product other than exceptID holds sku.
func (s *ProductService) ensureSKUFree(ctx context.Context, sku string, exceptID int64) error {
	existing, err := s.repo.GetBySKU(ctx, sku)
	switch {
	case models.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case existing.ID != exceptID:
		return models.NewConflictError(skuConflictMessage)
	default:
		return nil
	}
}

func (s *ProductService) publish(ctx context.Context, eventType string, product *models.Product) {
	event := models.ProductEvent{
		Type:       eventType,
		RequestID:  logger.RequestIDFromContext(ctx),
		OccurredAt: s.now().UTC(),
	}
	if product != nil {
		event.ProductID = product.ID
		event.SKU = product.SKU
		event.Quantity = product.Quantity
	}
	if err := s.publisher.PublishProductEvent(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish product event",
			zap.String("type", eventType),
			zap.Error(err))
	}
}
