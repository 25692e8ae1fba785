package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"inventory/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
// db must be opened with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

var _ ProductRepository = (*GORMProductRepository)(nil)

// Create inserts a new product; the database assigns the ID.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.ID = 0
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewDuplicateSKUError(product.SKU)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// GetBySKU retrieves a single product by its normalized SKU.
func (r *GORMProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewSKUNotFoundError(sku)
		}
		return nil, fmt.Errorf("failed to get product by sku %s: %w", sku, err)
	}
	return &product, nil
}

// List retrieves one page of products ordered by ID.
func (r *GORMProductRepository) List(ctx context.Context, offset, limit int) ([]models.Product, error) {
	products := make([]models.Product, 0, limit)
	if err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Update applies the supplied columns to an existing product inside one transaction.
func (r *GORMProductRepository) Update(ctx context.Context, id int64, update models.ProductUpdate) (*models.Product, error) {
	var product *models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.first(tx, id); err != nil {
			return err
		}
		if cols := update.Columns(); len(cols) > 0 {
			if err := tx.Model(&models.Product{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				if update.SKU != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
					return models.NewDuplicateSKUError(*update.SKU)
				}
				return fmt.Errorf("failed to update product %d: %w", id, err)
			}
		}
		var err error
		product, err = r.first(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// AdjustQuantity adds delta to the stock with a single conditional UPDATE, so concurrent
// adjustments never lose writes and a rejected one leaves the row untouched.
func (r *GORMProductRepository) AdjustQuantity(ctx context.Context, id int64, delta int) (*models.Product, error) {
	var product *models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND quantity + ? >= 0 AND quantity + ? <= ?", id, delta, delta, models.MaxQuantity).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
		if res.Error != nil {
			return fmt.Errorf("failed to adjust quantity of product %d: %w", id, res.Error)
		}
		current, err := r.first(tx, id)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			if int64(current.Quantity)+int64(delta) < 0 {
				return models.ErrNegativeQuantity
			}
			return models.ErrQuantityOverflow
		}
		product = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product by its ID.
func (r *GORMProductRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(id)
	}
	return nil
}

// DeleteAll removes every product.
func (r *GORMProductRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error; err != nil {
		return fmt.Errorf("failed to delete all products: %w", err)
	}
	return nil
}

// Count returns the number of stored products.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (r *GORMProductRepository) first(db *gorm.DB, id int64) (*models.Product, error) {
	var product models.Product
	if err := db.Where("id = ?", id).Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}
