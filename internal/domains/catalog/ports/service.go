package ports

import (
	"context"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
)

// Service exposes catalog use cases to adapters and to the other bounded contexts.
type Service interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	FindProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ListFilter) (Page, error)
	FeaturedProducts(ctx context.Context, limit int) ([]*domain.Product, error)
	RelatedProducts(ctx context.Context, id string, limit int) ([]*domain.Product, error)
	DecrementStock(ctx context.Context, id, size string, quantity int) error
	Restock(ctx context.Context, id, size string, quantity int) error
	UpdateRating(ctx context.Context, id string, average float64, count int) error
}
