package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/catalog/ports"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
	defaultRelated  = 4
	defaultTimeout  = 5 * time.Second
)

// Service orchestrates catalog use cases.
type Service struct {
	repo    ports.Repository
	timeout time.Duration
	newID   func() string
}

// Option configures the catalog service.
type Option func(*Service)

// WithTimeout bounds every repository call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithIDGenerator overrides product id generation.
func WithIDGenerator(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newID = next
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, timeout: defaultTimeout, newID: uuid.NewString}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateProduct validates and stores a new product.
func (s *Service) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, mapError("catalog.create", domain.ErrEmptyName)
	}
	candidate := product.Clone()
	candidate.ID = s.newID()
	candidate.AverageRating = 0
	candidate.NumReviews = 0
	candidate.Normalize()
	if err := candidate.Validate(); err != nil {
		return nil, mapError("catalog.create", err)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	saved, err := s.repo.Save(ctx, candidate)
	if err != nil {
		return nil, mapError("catalog.create", err)
	}
	return saved, nil
}

// UpdateProduct replaces the editable fields of an existing product. Review
// aggregates are owned by the review aggregator and are never overwritten here.
func (s *Service) UpdateProduct(ctx context.Context, id string, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, mapError("catalog.update", domain.ErrEmptyName)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError("catalog.update", err)
	}
	candidate := product.Clone()
	candidate.ID = existing.ID
	candidate.CreatedAt = existing.CreatedAt
	candidate.AverageRating = existing.AverageRating
	candidate.NumReviews = existing.NumReviews
	candidate.Normalize()
	if err := candidate.Validate(); err != nil {
		return nil, mapError("catalog.update", err)
	}
	saved, err := s.repo.Save(ctx, candidate)
	if err != nil {
		return nil, mapError("catalog.update", err)
	}
	return saved, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return mapError("catalog.delete", s.repo.Delete(ctx, id))
}

// FindProduct loads a single product.
func (s *Service) FindProduct(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, mapError("catalog.find", ports.ErrNotFound)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError("catalog.find", err)
	}
	return product, nil
}

// ListProducts applies paging defaults and returns one page of products.
func (s *Service) ListProducts(ctx context.Context, filter ports.ListFilter) (ports.Page, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Category != "" && !domain.IsValidCategory(filter.Category) {
		return ports.Page{}, mapError("catalog.list", domain.ErrInvalidCategory)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return ports.Page{}, mapError("catalog.list", domain.ErrNegativePrice)
	}
	filter.Search = strings.TrimSpace(filter.Search)
	ctx, cancel := s.bound(ctx)
	defer cancel()
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return ports.Page{}, mapError("catalog.list", err)
	}
	return page, nil
}

// FeaturedProducts returns active featured products, newest first.
func (s *Service) FeaturedProducts(ctx context.Context, limit int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	page, err := s.ListProducts(ctx, ports.ListFilter{FeaturedOnly: true, Sort: ports.SortNewest, Limit: limit})
	if err != nil {
		return nil, err
	}
	return page.Products, nil
}

// RelatedProducts returns up to limit (default 4) active products sharing the
// product's category.
func (s *Service) RelatedProducts(ctx context.Context, id string, limit int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = defaultRelated
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	product, err := s.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	related, err := s.repo.Related(ctx, product, limit)
	if err != nil {
		return nil, mapError("catalog.related", err)
	}
	return related, nil
}

// DecrementStock atomically removes quantity units or fails with insufficient stock.
func (s *Service) DecrementStock(ctx context.Context, id, size string, quantity int) error {
	if quantity <= 0 {
		return mapError("catalog.decrement", domain.ErrInvalidQuantity)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return mapError("catalog.decrement", s.repo.DecrementStock(ctx, id, strings.ToUpper(strings.TrimSpace(size)), quantity))
}

// Restock returns units taken by a cancelled or failed order.
func (s *Service) Restock(ctx context.Context, id, size string, quantity int) error {
	if quantity <= 0 {
		return mapError("catalog.restock", domain.ErrInvalidQuantity)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	err := s.repo.Restock(ctx, id, strings.ToUpper(strings.TrimSpace(size)), quantity)
	if errors.Is(err, ports.ErrNotFound) {
		// The product was deleted after the sale; nothing to give back.
		return nil
	}
	return mapError("catalog.restock", err)
}

// UpdateRating stores the review aggregate for a single product.
func (s *Service) UpdateRating(ctx context.Context, id string, average float64, count int) error {
	if count < 0 || average < 0 || average > 5 {
		return mapError("catalog.rating", domain.ErrInvalidRating)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return mapError("catalog.rating", s.repo.UpdateRating(ctx, id, average, count))
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

var _ ports.Service = (*Service)(nil)
