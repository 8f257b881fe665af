package application

import (
	"context"
	"hash/fnv"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/storefront-api/internal/domains/reviews/domain"
	"github.com/Apurer/storefront-api/internal/domains/reviews/ports"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

const (
	defaultTimeout = 5 * time.Second
	refreshStripes = 64
)

// Service owns reviews and keeps the catalog's rating aggregate in step with
// the approved reviews of each product.
type Service struct {
	repo      ports.Repository
	catalog   ports.Catalog
	purchases ports.PurchaseVerifier
	logger    *slog.Logger
	timeout   time.Duration
	newID     func() string
	// refresh serialises recomputation per product so a slower refresh
	// cannot overwrite a newer aggregate. Products share stripes.
	refresh [refreshStripes]sync.Mutex
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithIDGenerator(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newID = next
		}
	}
}

// NewService wires the aggregator. purchases may be nil, in which case no
// review is marked as a verified purchase.
func NewService(repo ports.Repository, catalog ports.Catalog, purchases ports.PurchaseVerifier, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		catalog:   catalog,
		purchases: purchases,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout:   defaultTimeout,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateReview stores the actor's review of a product and refreshes the
// product's rating aggregate.
func (s *Service) CreateReview(ctx context.Context, input ports.CreateReviewInput) (*domain.Review, error) {
	if input.Actor.UserID == "" {
		return nil, mapError("reviews.create", ErrUnauthenticated)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if _, err := s.catalog.FindProduct(ctx, input.ProductID); err != nil {
		return nil, mapError("reviews.create", err)
	}
	verified := false
	if s.purchases != nil {
		ok, err := s.purchases.HasPurchased(ctx, input.Actor.UserID, input.ProductID)
		if err != nil {
			return nil, mapError("reviews.create", err)
		}
		verified = ok
	}
	review, err := domain.NewReview(s.newID(), input.ProductID, input.Actor.UserID, input.Actor.Name,
		input.Rating, input.Title, input.Comment, verified)
	if err != nil {
		return nil, mapError("reviews.create", err)
	}
	saved, err := s.repo.Create(ctx, review)
	if err != nil {
		return nil, mapError("reviews.create", err)
	}
	s.recompute(ctx, saved.ProductID)
	return saved, nil
}

// ListProductReviews returns approved reviews, newest first.
func (s *Service) ListProductReviews(ctx context.Context, productID string) ([]*domain.Review, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	reviews, err := s.repo.ListByProduct(ctx, productID, true)
	if err != nil {
		return nil, mapError("reviews.list", err)
	}
	return reviews, nil
}

func (s *Service) MarkHelpful(ctx context.Context, id string, actor identity.Actor) (*domain.Review, error) {
	if actor.UserID == "" {
		return nil, mapError("reviews.helpful", ErrUnauthenticated)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	review, err := s.repo.AddHelpfulVote(ctx, id, actor.UserID)
	if err != nil {
		return nil, mapError("reviews.helpful", err)
	}
	return review, nil
}

// DeleteReview removes a review. Only its author or an admin may do so.
func (s *Service) DeleteReview(ctx context.Context, id string, actor identity.Actor) error {
	if actor.UserID == "" {
		return mapError("reviews.delete", ErrUnauthenticated)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapError("reviews.delete", err)
	}
	if !actor.CanAccess(review.UserID) {
		return mapError("reviews.delete", ErrNotAuthor)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError("reviews.delete", err)
	}
	s.recompute(ctx, review.ProductID)
	return nil
}

// recompute rewrites the aggregate from the stored approved reviews. The
// triggering write has already committed, so it runs detached from the
// request; a failure is logged and the next review write repairs the aggregate.
func (s *Service) recompute(ctx context.Context, productID string) {
	mu := s.refreshLock(productID)
	mu.Lock()
	defer mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	stats, err := s.repo.Stats(ctx, productID)
	if err == nil {
		err = s.catalog.UpdateRating(ctx, productID, stats.Average, stats.Count)
	}
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to refresh product rating",
			slog.String("product.id", productID), slog.String("error", err.Error()))
	}
}

func (s *Service) refreshLock(productID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(productID))
	return &s.refresh[h.Sum32()%refreshStripes]
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

var _ ports.Service = (*Service)(nil)
