package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category enumerates the storefront departments.
type Category string

const (
	CategoryMen         Category = "Men"
	CategoryWomen       Category = "Women"
	CategoryKids        Category = "Kids"
	CategoryAccessories Category = "Accessories"
	CategoryShoes       Category = "Shoes"
)

var (
	ErrEmptyName          = errors.New("product name is required")
	ErrNameTooLong        = errors.New("product name cannot exceed 200 characters")
	ErrNegativePrice      = errors.New("price cannot be negative")
	ErrInvalidSale        = errors.New("sale percentage must be between 0 and 100")
	ErrInvalidCategory    = errors.New("product category is invalid")
	ErrNegativeStock      = errors.New("stock cannot be negative")
	ErrDuplicateSize      = errors.New("size listed more than once")
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrUnknownSize        = errors.New("size is not offered for this product")
	ErrSizeRequired       = errors.New("size is required for this product")
	ErrStockMismatch      = errors.New("stock must equal the sum of size stocks")
	ErrInvalidRating      = errors.New("average rating must be between 0 and 5")
	ErrMissingImage       = errors.New("product image is required")
	ErrDescriptionTooLong = errors.New("description cannot exceed 2000 characters")
)

// SizeStock is the stock held for one size of a product.
type SizeStock struct {
	Size  string
	Stock int
}

// Product is the catalog aggregate. Stock is the aggregate across sizes when
// sizes are tracked.
type Product struct {
	ID             string
	Name           string
	Description    string
	Price          decimal.Decimal
	OriginalPrice  decimal.Decimal
	OnSale         bool
	SalePercentage int
	ImageURL       string
	Images         []string
	Category       Category
	SubCategory    string
	Sizes          []SizeStock
	Stock          int
	Colors         []string
	Material       string
	Brand          string
	Tags           []string
	IsActive       bool
	IsFeatured     bool
	AverageRating  float64
	NumReviews     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EffectivePrice is the price a buyer pays, rounded to cents.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.OnSale && p.SalePercentage > 0 {
		discount := p.Price.Mul(decimal.NewFromInt(int64(p.SalePercentage))).Div(decimal.NewFromInt(100))
		return p.Price.Sub(discount).Round(2)
	}
	return p.Price.Round(2)
}

// Normalize trims text fields and recomputes the aggregate stock from sizes.
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Material = strings.TrimSpace(p.Material)
	if len(p.Sizes) > 0 {
		total := 0
		for i := range p.Sizes {
			p.Sizes[i].Size = strings.ToUpper(strings.TrimSpace(p.Sizes[i].Size))
			total += p.Sizes[i].Stock
		}
		p.Stock = total
	}
	if p.ImageURL == "" && len(p.Images) > 0 {
		p.ImageURL = p.Images[0]
	}
}

// Validate enforces catalog invariants.
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return ErrNameTooLong
	}
	if len(p.Description) > 2000 {
		return ErrDescriptionTooLong
	}
	if p.Price.IsNegative() || p.OriginalPrice.IsNegative() {
		return ErrNegativePrice
	}
	if p.SalePercentage < 0 || p.SalePercentage > 100 {
		return ErrInvalidSale
	}
	if !IsValidCategory(p.Category) {
		return ErrInvalidCategory
	}
	if strings.TrimSpace(p.ImageURL) == "" {
		return ErrMissingImage
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	seen := make(map[string]struct{}, len(p.Sizes))
	sum := 0
	for _, s := range p.Sizes {
		if s.Stock < 0 {
			return ErrNegativeStock
		}
		if _, dup := seen[s.Size]; dup {
			return ErrDuplicateSize
		}
		seen[s.Size] = struct{}{}
		sum += s.Stock
	}
	if len(p.Sizes) > 0 && sum != p.Stock {
		return ErrStockMismatch
	}
	if p.AverageRating < 0 || p.AverageRating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// HasSize reports whether the product tracks stock for size.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s.Size == size {
			return true
		}
	}
	return false
}

// Decrement removes quantity units, failing without mutation when any counter
// would go negative. Products without sizes only track the aggregate.
func (p *Product) Decrement(size string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if p.Stock < quantity {
		return ErrInsufficientStock
	}
	idx, err := p.sizeIndex(size)
	if err != nil {
		return err
	}
	if idx >= 0 {
		if p.Sizes[idx].Stock < quantity {
			return ErrInsufficientStock
		}
		p.Sizes[idx].Stock -= quantity
	}
	p.Stock -= quantity
	return nil
}

// Restock returns quantity units to the product.
func (p *Product) Restock(size string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	idx, err := p.sizeIndex(size)
	if err != nil {
		return err
	}
	if idx >= 0 {
		p.Sizes[idx].Stock += quantity
	}
	p.Stock += quantity
	return nil
}

// ApplyRating stores a recomputed review aggregate.
func (p *Product) ApplyRating(average float64, count int) error {
	if count <= 0 {
		p.AverageRating = 0
		p.NumReviews = 0
		return nil
	}
	if average < 0 || average > 5 {
		return ErrInvalidRating
	}
	p.AverageRating = average
	p.NumReviews = count
	return nil
}

// Clone returns a deep copy safe to hand across adapter boundaries.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Images = append([]string(nil), p.Images...)
	clone.Sizes = append([]SizeStock(nil), p.Sizes...)
	clone.Colors = append([]string(nil), p.Colors...)
	clone.Tags = append([]string(nil), p.Tags...)
	return &clone
}

func (p *Product) sizeIndex(size string) (int, error) {
	size = strings.ToUpper(strings.TrimSpace(size))
	if len(p.Sizes) == 0 {
		return -1, nil
	}
	if size == "" {
		return -1, ErrSizeRequired
	}
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			return i, nil
		}
	}
	return -1, ErrUnknownSize
}

// IsValidCategory reports whether c is a known department.
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryMen, CategoryWomen, CategoryKids, CategoryAccessories, CategoryShoes:
		return true
	default:
		return false
	}
}
