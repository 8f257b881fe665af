package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
)

var ErrNotFound = errors.New("product not found")

// SortOrder selects the listing order.
type SortOrder string

const (
	SortDefault   SortOrder = ""
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortRating    SortOrder = "rating"
	SortNewest    SortOrder = "newest"
)

// ListFilter narrows a catalog listing. Zero values mean "no constraint".
type ListFilter struct {
	Category        domain.Category
	Search          string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	OnSaleOnly      bool
	FeaturedOnly    bool
	IncludeInactive bool
	Sort            SortOrder
	Page            int
	Limit           int
}

// Page is one slice of a listing plus the total match count.
type Page struct {
	Products []*domain.Product
	Total    int
	Page     int
	Limit    int
}

// Pages returns the number of pages for the total.
func (p Page) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// Repository persists products. DecrementStock must be atomic: it either
// removes quantity from both the size row and the aggregate or changes nothing
// and returns domain.ErrInsufficientStock.
type Repository interface {
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) (Page, error)
	DecrementStock(ctx context.Context, id, size string, quantity int) error
	Restock(ctx context.Context, id, size string, quantity int) error
	UpdateRating(ctx context.Context, id string, average float64, count int) error
	// Related lists active products of the product's category, excluding the
	// product itself, best rated first.
	Related(ctx context.Context, product *domain.Product, limit int) ([]*domain.Product, error)
}
