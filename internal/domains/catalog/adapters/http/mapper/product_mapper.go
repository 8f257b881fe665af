package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/catalog/ports"
)

// SizeStock is the HTTP representation of per-size stock.
type SizeStock struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// ProductInput is the admin create/update payload. Monetary fields accept
// either JSON numbers or decimal strings.
type ProductInput struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	OriginalPrice  decimal.Decimal `json:"originalPrice"`
	OnSale         bool            `json:"onSale"`
	SalePercentage int             `json:"salePercentage"`
	ImageURL       string          `json:"image"`
	Images         []string        `json:"images"`
	Category       string          `json:"category"`
	SubCategory    string          `json:"subCategory"`
	Sizes          []SizeStock     `json:"sizes"`
	Stock          int             `json:"stock"`
	Colors         []string        `json:"colors"`
	Material       string          `json:"material"`
	Brand          string          `json:"brand"`
	Tags           []string        `json:"tags"`
	IsActive       *bool           `json:"isActive"`
	IsFeatured     bool            `json:"isFeatured"`
}

// Product is the HTTP representation of a catalog product.
type Product struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Price          string      `json:"price"`
	OriginalPrice  string      `json:"originalPrice,omitempty"`
	EffectivePrice string      `json:"effectivePrice"`
	OnSale         bool        `json:"onSale"`
	SalePercentage int         `json:"salePercentage"`
	ImageURL       string      `json:"image"`
	Images         []string    `json:"images"`
	Category       string      `json:"category"`
	SubCategory    string      `json:"subCategory,omitempty"`
	Sizes          []SizeStock `json:"sizes"`
	Stock          int         `json:"stock"`
	Colors         []string    `json:"colors"`
	Material       string      `json:"material,omitempty"`
	Brand          string      `json:"brand,omitempty"`
	Tags           []string    `json:"tags"`
	IsActive       bool        `json:"isActive"`
	IsFeatured     bool        `json:"isFeatured"`
	Rating         float64     `json:"rating"`
	NumReviews     int         `json:"numReviews"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// ProductPage wraps one listing page with its paging metadata.
type ProductPage struct {
	Products    []Product `json:"products"`
	Total       int       `json:"total"`
	Page        int       `json:"page"`
	Pages       int       `json:"pages"`
	Limit       int       `json:"limit"`
	HasNextPage bool      `json:"hasNextPage"`
}

// ToDomainProduct maps an admin payload into the catalog aggregate. Products
// are active unless the payload says otherwise.
func ToDomainProduct(input ProductInput) *domain.Product {
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	product := &domain.Product{
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		OriginalPrice:  input.OriginalPrice,
		OnSale:         input.OnSale,
		SalePercentage: input.SalePercentage,
		ImageURL:       input.ImageURL,
		Images:         append([]string(nil), input.Images...),
		Category:       domain.Category(input.Category),
		SubCategory:    input.SubCategory,
		Stock:          input.Stock,
		Colors:         append([]string(nil), input.Colors...),
		Material:       input.Material,
		Brand:          input.Brand,
		Tags:           append([]string(nil), input.Tags...),
		IsActive:       active,
		IsFeatured:     input.IsFeatured,
	}
	for _, s := range input.Sizes {
		product.Sizes = append(product.Sizes, domain.SizeStock{Size: s.Size, Stock: s.Stock})
	}
	return product
}

// FromDomainProduct renders a product for API responses.
func FromDomainProduct(product *domain.Product) Product {
	if product == nil {
		return Product{}
	}
	out := Product{
		ID:             product.ID,
		Name:           product.Name,
		Description:    product.Description,
		Price:          product.Price.StringFixed(2),
		EffectivePrice: product.EffectivePrice().StringFixed(2),
		OnSale:         product.OnSale,
		SalePercentage: product.SalePercentage,
		ImageURL:       product.ImageURL,
		Images:         nonNil(product.Images),
		Category:       string(product.Category),
		SubCategory:    product.SubCategory,
		Sizes:          make([]SizeStock, 0, len(product.Sizes)),
		Stock:          product.Stock,
		Colors:         nonNil(product.Colors),
		Material:       product.Material,
		Brand:          product.Brand,
		Tags:           nonNil(product.Tags),
		IsActive:       product.IsActive,
		IsFeatured:     product.IsFeatured,
		Rating:         product.AverageRating,
		NumReviews:     product.NumReviews,
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
	if !product.OriginalPrice.IsZero() {
		out.OriginalPrice = product.OriginalPrice.StringFixed(2)
	}
	for _, s := range product.Sizes {
		out.Sizes = append(out.Sizes, SizeStock{Size: s.Size, Stock: s.Stock})
	}
	return out
}

// FromDomainProducts maps a slice of products.
func FromDomainProducts(products []*domain.Product) []Product {
	result := make([]Product, 0, len(products))
	for _, p := range products {
		result = append(result, FromDomainProduct(p))
	}
	return result
}

// FromPage renders a listing page.
func FromPage(page ports.Page) ProductPage {
	return ProductPage{
		Products:    FromDomainProducts(page.Products),
		Total:       page.Total,
		Page:        page.Page,
		Pages:       page.Pages(),
		Limit:       page.Limit,
		HasNextPage: page.Page < page.Pages(),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
