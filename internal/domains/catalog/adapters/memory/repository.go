package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory product store. Stock mutations happen under the
// write lock so check-and-decrement is atomic.
type Repository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	now      func() time.Time
}

func NewRepository() *Repository {
	return &Repository{products: map[string]*domain.Product{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Save(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := product.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if existing, ok := r.products[clone.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
	} else if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	r.products[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return product.Clone(), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) (ports.Page, error) {
	r.mu.RLock()
	matched := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if matches(product, filter) {
			matched = append(matched, product.Clone())
		}
	}
	r.mu.RUnlock()

	sortProducts(matched, filter.Sort)
	page := ports.Page{Total: len(matched), Page: filter.Page, Limit: filter.Limit}
	start := (filter.Page - 1) * filter.Limit
	if filter.Limit <= 0 || start < 0 {
		page.Products = matched
		return page, nil
	}
	if start >= len(matched) {
		page.Products = []*domain.Product{}
		return page, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	page.Products = matched[start:end]
	return page, nil
}

func (r *Repository) DecrementStock(_ context.Context, id, size string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return ports.ErrNotFound
	}
	if err := product.Decrement(size, quantity); err != nil {
		return err
	}
	product.UpdatedAt = r.now()
	return nil
}

func (r *Repository) Restock(_ context.Context, id, size string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return ports.ErrNotFound
	}
	if err := product.Restock(size, quantity); err != nil {
		return err
	}
	product.UpdatedAt = r.now()
	return nil
}

func (r *Repository) UpdateRating(_ context.Context, id string, average float64, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return ports.ErrNotFound
	}
	return product.ApplyRating(average, count)
}

func (r *Repository) Related(_ context.Context, product *domain.Product, limit int) ([]*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	r.mu.RLock()
	related := make([]*domain.Product, 0, limit)
	for _, candidate := range r.products {
		if candidate.ID != product.ID && candidate.IsActive && candidate.Category == product.Category {
			related = append(related, candidate.Clone())
		}
	}
	r.mu.RUnlock()

	sortProducts(related, ports.SortRating)
	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	return related, nil
}

func matches(p *domain.Product, f ports.ListFilter) bool {
	if !f.IncludeInactive && !p.IsActive {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.OnSaleOnly && !p.OnSale {
		return false
	}
	if f.FeaturedOnly && !p.IsFeatured {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystack := strings.ToLower(p.Name + " " + p.Description + " " + strings.Join(p.Tags, " "))
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func sortProducts(list []*domain.Product, order ports.SortOrder) {
	newest := func(a, b *domain.Product) bool {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.After(b.CreatedAt)
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch order {
		case ports.SortPriceLow:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case ports.SortPriceHigh:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case ports.SortRating:
			if a.AverageRating != b.AverageRating {
				return a.AverageRating > b.AverageRating
			}
		case ports.SortNewest:
		default:
			if a.IsFeatured != b.IsFeatured {
				return a.IsFeatured
			}
		}
		return newest(a, b)
	})
}
