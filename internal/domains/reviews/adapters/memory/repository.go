package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/storefront-api/internal/domains/reviews/domain"
	"github.com/Apurer/storefront-api/internal/domains/reviews/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps reviews in memory, enforcing one review per user and product.
type Repository struct {
	mu      sync.RWMutex
	reviews map[string]*domain.Review
	now     func() time.Time
}

func NewRepository() *Repository {
	return &Repository{reviews: map[string]*domain.Review{}, now: time.Now}
}

func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, review *domain.Review) (*domain.Review, error) {
	if review == nil {
		return nil, errors.New("review is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.ProductID == review.ProductID && existing.UserID == review.UserID {
			return nil, domain.ErrAlreadyReviewed
		}
	}
	clone := review.Clone()
	now := r.now()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	r.reviews[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return review.Clone(), nil
}

func (r *Repository) ListByProduct(_ context.Context, productID string, approvedOnly bool) ([]*domain.Review, error) {
	r.mu.RLock()
	out := make([]*domain.Review, 0)
	for _, review := range r.reviews {
		if review.ProductID != productID || (approvedOnly && !review.IsApproved) {
			continue
		}
		out = append(out, review.Clone())
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Repository) AddHelpfulVote(_ context.Context, id, userID string) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if err := review.MarkHelpful(userID); err != nil {
		return nil, err
	}
	review.UpdatedAt = r.now()
	return review.Clone(), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *Repository) Stats(_ context.Context, productID string) (domain.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ratings := make([]int, 0)
	for _, review := range r.reviews {
		if review.ProductID == productID && review.IsApproved {
			ratings = append(ratings, review.Rating)
		}
	}
	return domain.Aggregate(ratings), nil
}
