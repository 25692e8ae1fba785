package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventory/internal/logger"
	"inventory/internal/models"
)

// StarterProducts are inserted by SeedProducts into an empty store.
var StarterProducts = []models.ProductDraft{
	{Name: "Gaming Mouse", SKU: "SKU-001", Price: decimal.RequireFromString("150.00"), Quantity: 25},
	{Name: "Mechanical Keyboard", SKU: "SKU-002", Price: decimal.RequireFromString("350.00"), Quantity: 15},
	{Name: `24" Monitor`, SKU: "SKU-003", Price: decimal.RequireFromString("899.90"), Quantity: 10},
	{Name: "USB Headset", SKU: "SKU-004", Price: decimal.RequireFromString("199.90"), Quantity: 20},
}

// SeedProducts populates the store with StarterProducts when it holds no products.
// It returns how many products were inserted.
func (s *ProductService) SeedProducts(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	seeded := 0
	for _, draft := range StarterProducts {
		product, err := s.CreateProduct(ctx, draft)
		if err != nil {
			return seeded, fmt.Errorf("failed to seed product %s: %w", draft.SKU, err)
		}
		logger.FromContext(ctx).Info("Seeded product",
			zap.String("name", product.Name),
			zap.Int64("product_id", product.ID))
		seeded++
	}
	return seeded, nil
}
