package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/internal/config"
	"inventory/internal/database"
	"inventory/internal/models"
	"inventory/internal/repositories"
)

// newSQLiteRepository opens a private in-memory SQLite database for one test.
func newSQLiteRepository(t *testing.T) repositories.ProductRepository {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return repositories.NewGORMProductRepository(db)
}

// forEachRepository runs fn against every ProductRepository implementation.
func forEachRepository(t *testing.T, fn func(t *testing.T, repo repositories.ProductRepository)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, repositories.NewMemoryProductRepository())
	})
	t.Run("gorm_sqlite", func(t *testing.T) {
		fn(t, newSQLiteRepository(t))
	})
}

func product(name, sku, price string, quantity int) *models.Product {
	return &models.Product{Name: name, SKU: sku, Price: decimal.RequireFromString(price), Quantity: quantity}
}

func TestProductRepository_CreateAndGet(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.ProductRepository) {
		ctx := context.Background()

		p := product("Gaming Mouse", "SKU-001", "150.00", 25)
		require.NoError(t, repo.Create(ctx, p))
		assert.Equal(t, int64(1), p.ID)

		byID, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Gaming Mouse", byID.Name)
		assert.Equal(t, "150.00", byID.Price.StringFixed(2))
		assert.Equal(t, 25, byID.Quantity)

		bySKU, err := repo.GetBySKU(ctx, "SKU-001")
		require.NoError(t, err)
		assert.Equal(t, p.ID, bySKU.ID)

		_, err = repo.GetByID(ctx, 42)
		assert.True(t, models.IsNotFound(err))
		_, err = repo.GetBySKU(ctx, "MISSING")
		assert.True(t, models.IsNotFound(err))
	})
}

func TestProductRepository_CreateDuplicateSKU(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.ProductRepository) {
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, product("Gaming Mouse", "SKU-001", "150", 25)))
		err := repo.Create(ctx, product("Other Mouse", "SKU-001", "10", 1))
		assert.True(t, models.IsDuplicateSKU(err))

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestProductRepository_ListPagination(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.ProductRepository) {
		ctx := context.Background()
		for i := 1; i <= 7; i++ {
			require.NoError(t, repo.Create(ctx, product(fmt.Sprintf("Item %d", i), fmt.Sprintf("ITEM-%d", i), "1", i)))
		}

		var ids []int64
		for offset := 0; ; offset += 3 {
			page, err := repo.List(ctx, offset, 3)
			require.NoError(t, err)
			if len(page) == 0 {
				break
			}
			for _, p := range page {
				ids = append(ids, p.ID)
			}
		}
		assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7}, ids)

		page, err := repo.List(ctx, 100, 3)
		require.NoError(t, err)
		assert.NotNil(t, page)
		assert.Empty(t, page)
	})
}

func TestProductRepository_Update(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.ProductRepository) {
		ctx := context.Background()
		p := product("Gaming Mouse", "SKU-001", "150.00", 25)
		require.NoError(t, repo.Create(ctx, p))
		require.NoError(t, repo.Create(ctx, product("Keyboard", "SKU-002", "350.00", 15)))

		name := "Wireless Mouse"
		updated, err := repo.Update(ctx, p.ID, models.ProductUpdate{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Wireless Mouse", updated.Name)
		assert.Equal(t, "SKU-001", updated.SKU)
		assert.Equal(t, "150.00", updated.Price.StringFixed(2))
		assert.Equal(t, 25, updated.Quantity)

		sku := "SKU-100"
		updated, err = repo.Update(ctx, p.ID, models.ProductUpdate{SKU: &sku})
		require.NoError(t, err)
		assert.Equal(t, "SKU-100", updated.SKU)
		_, err = repo.GetBySKU(ctx, "SKU-001")
		assert.True(t, models.IsNotFound(err))

		taken := "SKU-002"
		_, err = repo.Update(ctx, p.ID, models.ProductUpdate{SKU: &taken})
		assert.True(t, models.IsDuplicateSKU(err))

		_, err = repo.Update(ctx, 99, models.ProductUpdate{Name: &name})
		assert.True(t, models.IsNotFound(err))
	})
}

func TestProductRepository_AdjustQuantity(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.ProductRepository) {
		ctx := context.Background()
		p := product("Keyboard", "SKU-002", "350.00", 10)
		require.NoError(t, repo.Create(ctx, p))

		_, err := repo.AdjustQuantity(ctx, p.ID, -15)
		assert.True(t, errors.Is(err, models.ErrNegativeQuantity))

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, got.Quantity)

		adjusted, err := repo.AdjustQuantity(ctx, p.ID, -10)
		require.NoError(t, err)
		assert.Equal(t, 0, adjusted.Quantity)

		adjusted, err = repo.AdjustQuantity(ctx, p.ID, models.MaxQuantity)
		require.NoError(t, err)
		assert.Equal(t, models.MaxQuantity, adjusted.Quantity)

		_, err = repo.AdjustQuantity(ctx, p.ID, 1)
		assert.True(t, errors.Is(err, models.ErrQuantityOverflow))

		_, err = repo.AdjustQuantity(ctx, 99, 1)
		assert.True(t, models.IsNotFound(err))
	})
}

func TestProductRepository_ConcurrentAdjustments(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.ProductRepository) {
		ctx := context.Background()
		p := product("Widget", "WIDGET", "1", 20)
		require.NoError(t, repo.Create(ctx, p))

		const workers = 30
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.AdjustQuantity(ctx, p.ID, -1)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var ok, rejected int
		for err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, models.ErrNegativeQuantity):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 20, ok)
		assert.Equal(t, 10, rejected)

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Quantity)
	})
}

func TestProductRepository_DeleteAndDeleteAll(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.ProductRepository) {
		ctx := context.Background()
		p := product("Gaming Mouse", "SKU-001", "150.00", 25)
		require.NoError(t, repo.Create(ctx, p))
		require.NoError(t, repo.Create(ctx, product("Keyboard", "SKU-002", "350.00", 15)))

		require.NoError(t, repo.Delete(ctx, p.ID))
		assert.True(t, models.IsNotFound(repo.Delete(ctx, p.ID)))

		require.NoError(t, repo.DeleteAll(ctx))
		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		// A cleared store accepts previously used SKUs.
		assert.NoError(t, repo.Create(ctx, product("Gaming Mouse", "SKU-001", "150.00", 25)))
	})
}

func TestMemoryProductRepository_CancelledContext(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Create(ctx, product("Gaming Mouse", "SKU-001", "150.00", 25))
	assert.ErrorIs(t, err, context.Canceled)
}
