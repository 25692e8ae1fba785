package repositories

import (
	"context"

	"inventory/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// SKUs reach the repository already normalized; uniqueness is enforced on the stored value.
type ProductRepository interface {
	// Create inserts the product and assigns its ID.
	// Returns *models.DuplicateSKUError when the SKU is taken.
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	// List returns up to limit products ordered by ID, skipping offset rows.
	List(ctx context.Context, offset, limit int) ([]models.Product, error)
	// Update merges the supplied fields onto the stored row.
	Update(ctx context.Context, id int64, update models.ProductUpdate) (*models.Product, error)
	// AdjustQuantity adds delta to the stored quantity in one atomic step.
	// Returns models.ErrNegativeQuantity or models.ErrQuantityOverflow without changing the row.
	AdjustQuantity(ctx context.Context, id int64, delta int) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}
