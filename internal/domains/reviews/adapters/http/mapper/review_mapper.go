package mapper

import (
	"time"

	"github.com/Apurer/storefront-api/internal/domains/reviews/domain"
	"github.com/Apurer/storefront-api/internal/domains/reviews/ports"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

// CreateReview is the inbound review payload.
type CreateReview struct {
	ProductID string `json:"productId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
}

// Review is the HTTP representation of a review. Voter identities stay private.
type Review struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"productId"`
	UserID           string    `json:"userId"`
	UserName         string    `json:"userName"`
	Rating           int       `json:"rating"`
	Title            string    `json:"title"`
	Comment          string    `json:"comment"`
	VerifiedPurchase bool      `json:"verifiedPurchase"`
	Helpful          int       `json:"helpful"`
	CreatedAt        time.Time `json:"createdAt"`
}

func ToCreateInput(actor identity.Actor, payload CreateReview) ports.CreateReviewInput {
	return ports.CreateReviewInput{
		Actor:     actor,
		ProductID: payload.ProductID,
		Rating:    payload.Rating,
		Title:     payload.Title,
		Comment:   payload.Comment,
	}
}

func FromDomainReview(review *domain.Review) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:               review.ID,
		ProductID:        review.ProductID,
		UserID:           review.UserID,
		UserName:         review.UserName,
		Rating:           review.Rating,
		Title:            review.Title,
		Comment:          review.Comment,
		VerifiedPurchase: review.VerifiedPurchase,
		Helpful:          review.HelpfulCount,
		CreatedAt:        review.CreatedAt,
	}
}

func FromDomainReviews(reviews []*domain.Review) []Review {
	result := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		result = append(result, FromDomainReview(r))
	}
	return result
}
