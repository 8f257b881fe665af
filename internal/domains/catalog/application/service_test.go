package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/domains/catalog/adapters/memory"
	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/catalog/ports"
	"github.com/Apurer/storefront-api/internal/shared/fault"
)

func newProduct() *domain.Product {
	return &domain.Product{
		Name:     "Canvas sneaker",
		Price:    decimal.RequireFromString("60.00"),
		Category: domain.CategoryShoes,
		Images:   []string{"https://img.example/sneaker.jpg"},
		Sizes:    []domain.SizeStock{{Size: "40", Stock: 4}, {Size: "41", Stock: 6}},
		IsActive: true,
	}
}

func TestCreateProduct_AssignsIDAndAggregatesStock(t *testing.T) {
	svc := NewService(memory.NewRepository(), WithIDGenerator(func() string { return "p-1" }))

	input := newProduct()
	input.AverageRating = 4.9
	saved, err := svc.CreateProduct(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, "p-1", saved.ID)
	require.Equal(t, 10, saved.Stock)
	require.Zero(t, saved.AverageRating)
	require.Equal(t, "https://img.example/sneaker.jpg", saved.ImageURL)
}

func TestCreateProduct_RejectsInvalidCategory(t *testing.T) {
	svc := NewService(memory.NewRepository())

	input := newProduct()
	input.Category = "Pets"
	_, err := svc.CreateProduct(context.Background(), input)
	require.ErrorIs(t, err, fault.ErrValidation)
	require.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestUpdateProduct_PreservesRating(t *testing.T) {
	svc := NewService(memory.NewRepository(), WithIDGenerator(func() string { return "p-1" }))
	ctx := context.Background()
	_, err := svc.CreateProduct(ctx, newProduct())
	require.NoError(t, err)
	require.NoError(t, svc.UpdateRating(ctx, "p-1", 4.5, 2))

	changed := newProduct()
	changed.Name = "Canvas sneaker v2"
	updated, err := svc.UpdateProduct(ctx, "p-1", changed)
	require.NoError(t, err)
	require.Equal(t, "Canvas sneaker v2", updated.Name)
	require.Equal(t, 4.5, updated.AverageRating)
	require.Equal(t, 2, updated.NumReviews)
}

func TestFindProduct_MissingIsNotFound(t *testing.T) {
	svc := NewService(memory.NewRepository())
	_, err := svc.FindProduct(context.Background(), "nope")
	require.ErrorIs(t, err, fault.ErrNotFound)
}

func TestDecrementStock_ConcurrentBuyersNeverOversell(t *testing.T) {
	svc := NewService(memory.NewRepository(), WithIDGenerator(func() string { return "p-1" }))
	ctx := context.Background()
	_, err := svc.CreateProduct(ctx, newProduct())
	require.NoError(t, err)

	const buyers = 10
	errs := make(chan error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.DecrementStock(ctx, "p-1", "40", 1)
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, fault.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 4, ok)
	require.Equal(t, 6, conflicts)

	product, err := svc.FindProduct(ctx, "p-1")
	require.NoError(t, err)
	require.Equal(t, 0, product.Sizes[0].Stock)
	require.Equal(t, 6, product.Stock)
}

func TestRestock_DeletedProductIsIgnored(t *testing.T) {
	svc := NewService(memory.NewRepository())
	require.NoError(t, svc.Restock(context.Background(), "gone", "", 2))
}

func TestListProducts_AppliesPagingDefaults(t *testing.T) {
	svc := NewService(memory.NewRepository())
	page, err := svc.ListProducts(context.Background(), ports.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 12, page.Limit)

	_, err = svc.ListProducts(context.Background(), ports.ListFilter{Category: "Garden"})
	require.ErrorIs(t, err, fault.ErrValidation)
}

func TestRelatedProducts_SameCategoryBestRatedFirst(t *testing.T) {
	ids := []string{"self", "low", "top", "mid", "hidden", "other", "extra"}
	next := 0
	svc := NewService(memory.NewRepository(), WithIDGenerator(func() string {
		id := ids[next]
		next++
		return id
	}))
	ctx := context.Background()
	ratings := map[string]float64{"self": 5, "low": 2.5, "top": 4.8, "mid": 3.9, "hidden": 5, "other": 5, "extra": 1}
	for _, id := range ids {
		product := newProduct()
		product.Name = "Shoe " + id
		switch id {
		case "hidden":
			product.IsActive = false
		case "other":
			product.Category = domain.CategoryMen
			product.Sizes = nil
			product.Stock = 1
		}
		_, err := svc.CreateProduct(ctx, product)
		require.NoError(t, err)
		require.NoError(t, svc.UpdateRating(ctx, id, ratings[id], 1))
	}

	related, err := svc.RelatedProducts(ctx, "self", 0)
	require.NoError(t, err)
	got := make([]string, 0, len(related))
	for _, p := range related {
		got = append(got, p.ID)
	}
	require.Equal(t, []string{"top", "mid", "low", "extra"}, got)

	limited, err := svc.RelatedProducts(ctx, "self", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)

	_, err = svc.RelatedProducts(ctx, "missing", 4)
	require.ErrorIs(t, err, fault.ErrNotFound)
}
