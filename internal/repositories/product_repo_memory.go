package repositories

import (
	"context"
	"sort"
	"sync"

	"inventory/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[int64]models.Product
	skus     map[string]int64
	nextID   int64
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[int64]models.Product),
		skus:     make(map[string]int64),
	}
}

var _ ProductRepository = (*MemoryProductRepository)(nil)

// Create adds a new product and assigns the next ID.
func (r *MemoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.skus[product.SKU]; taken {
		return models.NewDuplicateSKUError(product.SKU)
	}
	r.nextID++
	product.ID = r.nextID
	r.products[product.ID] = *product
	r.skus[product.SKU] = product.ID
	return nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, models.NewNotFoundError(id)
	}
	return &product, nil
}

// GetBySKU returns a product by its SKU.
func (r *MemoryProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.skus[sku]
	if !ok {
		return nil, models.NewSKUNotFoundError(sku)
	}
	product := r.products[id]
	return &product, nil
}

// List returns one page of products ordered by ID.
func (r *MemoryProductRepository) List(ctx context.Context, offset, limit int) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	page := make([]models.Product, 0, limit)
	if offset >= len(ids) {
		return page, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	for _, id := range ids[offset:end] {
		page = append(page, r.products[id])
	}
	return page, nil
}

// Update merges the supplied fields onto an existing product.
func (r *MemoryProductRepository) Update(ctx context.Context, id int64, update models.ProductUpdate) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, models.NewNotFoundError(id)
	}
	oldSKU := product.SKU
	if update.SKU != nil && *update.SKU != oldSKU {
		if _, taken := r.skus[*update.SKU]; taken {
			return nil, models.NewDuplicateSKUError(*update.SKU)
		}
	}
	product.Apply(update)
	if product.SKU != oldSKU {
		delete(r.skus, oldSKU)
		r.skus[product.SKU] = id
	}
	r.products[id] = product
	return &product, nil
}

// AdjustQuantity adds delta to the stock of a product under the write lock.
func (r *MemoryProductRepository) AdjustQuantity(ctx context.Context, id int64, delta int) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, models.NewNotFoundError(id)
	}
	next := int64(product.Quantity) + int64(delta)
	if next < 0 {
		return nil, models.ErrNegativeQuantity
	}
	if next > models.MaxQuantity {
		return nil, models.ErrQuantityOverflow
	}
	product.Quantity = int(next)
	r.products[id] = product
	return &product, nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return models.NewNotFoundError(id)
	}
	delete(r.skus, product.SKU)
	delete(r.products, id)
	return nil
}

// DeleteAll removes every product. IDs keep increasing afterwards, like a database sequence.
func (r *MemoryProductRepository) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = make(map[int64]models.Product)
	r.skus = make(map[string]int64)
	return nil
}

// Count returns the number of stored products.
func (r *MemoryProductRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}
