package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/storefront-api/internal/domains/wishlist/domain"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
)

var _ ports.Repository = (*Repository)(nil)

type Repository struct {
	mu    sync.Mutex
	lists map[string]*domain.Wishlist
	now   func() time.Time
}

func NewRepository() *Repository {
	return &Repository{lists: map[string]*domain.Wishlist{}, now: time.Now}
}

func (r *Repository) Get(_ context.Context, userID string) (*domain.Wishlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.lists[userID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return w.Clone(), nil
}

// Update applies fn to a copy and stores it only when fn succeeds.
func (r *Repository) Update(_ context.Context, userID string, create bool, fn func(*domain.Wishlist) error) (*domain.Wishlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.lists[userID]
	if !ok {
		if !create {
			return nil, ports.ErrNotFound
		}
		current = domain.New(userID, r.now().UTC())
	}
	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.Dedupe()
	r.lists[userID] = working
	return working.Clone(), nil
}
