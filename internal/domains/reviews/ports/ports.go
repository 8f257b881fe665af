package ports

import (
	"context"
	"errors"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/reviews/domain"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

var ErrNotFound = errors.New("review not found")

// Repository persists reviews. Create returns domain.ErrAlreadyReviewed when
// the user already reviewed the product; AddHelpfulVote returns
// domain.ErrAlreadyHelpful for a repeat voter. Both checks are atomic.
type Repository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string, approvedOnly bool) ([]*domain.Review, error)
	AddHelpfulVote(ctx context.Context, id, userID string) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, productID string) (domain.Stats, error)
}

// Catalog is the slice of the catalog the aggregator writes to.
type Catalog interface {
	FindProduct(ctx context.Context, id string) (*catalogdomain.Product, error)
	UpdateRating(ctx context.Context, id string, average float64, count int) error
}

// PurchaseVerifier answers whether a user bought a product.
type PurchaseVerifier interface {
	HasPurchased(ctx context.Context, userID, productID string) (bool, error)
}

// CreateReviewInput is a review submission.
type CreateReviewInput struct {
	Actor     identity.Actor
	ProductID string
	Rating    int
	Title     string
	Comment   string
}

// Service exposes review use cases.
type Service interface {
	CreateReview(ctx context.Context, input CreateReviewInput) (*domain.Review, error)
	ListProductReviews(ctx context.Context, productID string) ([]*domain.Review, error)
	MarkHelpful(ctx context.Context, id string, actor identity.Actor) (*domain.Review, error)
	DeleteReview(ctx context.Context, id string, actor identity.Actor) error
}
