//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/catalog/ports"
	"github.com/Apurer/storefront-api/internal/platform/postgres/pgtest"
)

func sizedProduct(id string) *domain.Product {
	p := &domain.Product{
		ID:       id,
		Name:     "Linen shirt",
		Price:    decimal.RequireFromString("45.00"),
		Category: domain.CategoryMen,
		Images:   []string{"https://img.example/shirt.jpg"},
		Sizes:    []domain.SizeStock{{Size: "M", Stock: 5}, {Size: "L", Stock: 3}},
		Tags:     []string{"summer"},
		IsActive: true,
	}
	p.Normalize()
	return p
}

func TestRepository_SaveAndGetByID(t *testing.T) {
	db := pgtest.Start(t, "storefront_catalog")

	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, sizedProduct("p-1"))
	require.NoError(t, err)
	assert.Equal(t, 8, saved.Stock)
	assert.Equal(t, []domain.SizeStock{{Size: "M", Stock: 5}, {Size: "L", Stock: 3}}, saved.Sizes)
	assert.True(t, saved.Price.Equal(decimal.RequireFromString("45")))

	page, err := repo.List(ctx, ports.ListFilter{Search: "SUMMER", Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestRepository_ConcurrentDecrement(t *testing.T) {
	db := pgtest.Start(t, "storefront_catalog")

	repo := NewRepository(db)
	ctx := context.Background()
	_, err := repo.Save(ctx, sizedProduct("p-2"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.DecrementStock(ctx, "p-2", "m", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	product, err := repo.GetByID(ctx, "p-2")
	require.NoError(t, err)
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, product.Sizes[0].Stock)
	assert.Equal(t, 3, product.Stock)

	require.NoError(t, repo.Restock(ctx, "p-2", "M", 2))
	product, err = repo.GetByID(ctx, "p-2")
	require.NoError(t, err)
	assert.Equal(t, 5, product.Stock)
}

func TestRepository_Related(t *testing.T) {
	db := pgtest.Start(t, "storefront_catalog")

	repo := NewRepository(db)
	ctx := context.Background()
	ratings := map[string]float64{"self": 5, "r-low": 2, "r-high": 4.5, "r-off": 5}
	for id, rating := range ratings {
		p := sizedProduct(id)
		p.IsActive = id != "r-off"
		_, err := repo.Save(ctx, p)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateRating(ctx, id, rating, 1))
	}
	shoe := sizedProduct("r-shoe")
	shoe.Category = domain.CategoryShoes
	_, err := repo.Save(ctx, shoe)
	require.NoError(t, err)

	self, err := repo.GetByID(ctx, "self")
	require.NoError(t, err)
	related, err := repo.Related(ctx, self, 4)
	require.NoError(t, err)
	require.Len(t, related, 2)
	assert.Equal(t, "r-high", related[0].ID)
	assert.Equal(t, "r-low", related[1].ID)
	assert.Len(t, related[0].Sizes, 2)
}
