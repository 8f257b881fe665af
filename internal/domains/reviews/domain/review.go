package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrTitleRequired   = errors.New("review title is required")
	ErrTitleTooLong    = errors.New("title cannot exceed 100 characters")
	ErrCommentRequired = errors.New("review comment is required")
	ErrCommentTooLong  = errors.New("comment cannot exceed 1000 characters")
	ErrAlreadyReviewed = errors.New("you have already reviewed this product")
	ErrAlreadyHelpful  = errors.New("you already marked this review as helpful")
	ErrMissingAuthor   = errors.New("review author is required")
)

// Review is one user's rating of one product.
type Review struct {
	ID               string
	ProductID        string
	UserID           string
	UserName         string
	Rating           int
	Title            string
	Comment          string
	VerifiedPurchase bool
	HelpfulCount     int
	HelpfulBy        []string
	IsApproved       bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewReview validates and builds an approved review.
func NewReview(id, productID, userID, userName string, rating int, title, comment string, verified bool) (*Review, error) {
	r := &Review{
		ID:               id,
		ProductID:        productID,
		UserID:           userID,
		UserName:         strings.TrimSpace(userName),
		Rating:           rating,
		Title:            strings.TrimSpace(title),
		Comment:          strings.TrimSpace(comment),
		VerifiedPurchase: verified,
		IsApproved:       true,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Review) Validate() error {
	switch {
	case r.UserID == "" || r.UserName == "":
		return ErrMissingAuthor
	case r.Rating < 1 || r.Rating > 5:
		return ErrInvalidRating
	case r.Title == "":
		return ErrTitleRequired
	case len(r.Title) > 100:
		return ErrTitleTooLong
	case r.Comment == "":
		return ErrCommentRequired
	case len(r.Comment) > 1000:
		return ErrCommentTooLong
	}
	return nil
}

// MarkHelpful records one vote per user.
func (r *Review) MarkHelpful(userID string) error {
	for _, voter := range r.HelpfulBy {
		if voter == userID {
			return ErrAlreadyHelpful
		}
	}
	r.HelpfulBy = append(r.HelpfulBy, userID)
	r.HelpfulCount++
	return nil
}

func (r *Review) Clone() *Review {
	if r == nil {
		return nil
	}
	clone := *r
	clone.HelpfulBy = append([]string(nil), r.HelpfulBy...)
	return &clone
}

// Stats is a product's rating aggregate.
type Stats struct {
	Average float64
	Count   int
}

// Aggregate averages ratings to one decimal place. No ratings yields zeros.
func Aggregate(ratings []int) Stats {
	if len(ratings) == 0 {
		return Stats{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return Stats{Average: RoundRating(float64(sum) / float64(len(ratings))), Count: len(ratings)}
}

// RoundRating rounds to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
