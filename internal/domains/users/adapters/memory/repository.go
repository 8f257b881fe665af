package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/storefront-api/internal/domains/users/domain"
	"github.com/Apurer/storefront-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user store with a unique email index.
type Repository struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	byEmail map[string]string
}

func NewRepository() *Repository {
	return &Repository{users: map[string]*domain.User{}, byEmail: map[string]string{}}
}

func (r *Repository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := user.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.byEmail[clone.Email]; ok && owner != clone.ID {
		return nil, domain.ErrEmailTaken
	}
	now := time.Now().UTC()
	if existing, ok := r.users[clone.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
		if existing.Email != clone.Email {
			delete(r.byEmail, existing.Email)
		}
	} else {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	r.users[clone.ID] = clone
	r.byEmail[clone.Email] = clone.ID
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return user.Clone(), nil
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.users[id].Clone(), nil
}

func (r *Repository) GetByResetToken(_ context.Context, tokenHash string) (*domain.User, error) {
	if tokenHash == "" {
		return nil, ports.ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.ResetTokenHash == tokenHash {
			return user.Clone(), nil
		}
	}
	return nil, ports.ErrNotFound
}
