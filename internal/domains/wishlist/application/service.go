package application

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/storefront-api/internal/domains/wishlist/domain"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
	"github.com/Apurer/storefront-api/internal/shared/fault"
)

const defaultTimeout = 5 * time.Second

type Service struct {
	repo    ports.Repository
	catalog ports.Catalog
	now     func() time.Time
	timeout time.Duration
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
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

func NewService(repo ports.Repository, catalog ports.Catalog, opts ...Option) *Service {
	s := &Service{repo: repo, catalog: catalog, now: time.Now, timeout: defaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns the user's wishlist, creating an empty one on first access.
func (s *Service) Get(ctx context.Context, userID string) (ports.View, error) {
	return s.update(ctx, "wishlist.get", userID, true, func(*domain.Wishlist) error { return nil })
}

// Add saves a product; it must exist in the catalog and not already be listed.
func (s *Service) Add(ctx context.Context, userID, productID string) (ports.View, error) {
	switch {
	case userID == "":
		return ports.View{}, mapError("wishlist.add", ErrUnauthenticated)
	case productID == "":
		return ports.View{}, mapError("wishlist.add", domain.ErrMissingProduct)
	}
	lookup, cancel := context.WithTimeout(ctx, s.timeout)
	_, err := s.catalog.FindProduct(lookup, productID)
	cancel()
	if err != nil {
		return ports.View{}, mapError("wishlist.add", err)
	}
	return s.update(ctx, "wishlist.add", userID, true, func(w *domain.Wishlist) error {
		return w.Add(productID, s.now().UTC())
	})
}

func (s *Service) Remove(ctx context.Context, userID, productID string) (ports.View, error) {
	return s.update(ctx, "wishlist.remove", userID, false, func(w *domain.Wishlist) error {
		w.Remove(productID, s.now().UTC())
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, userID string) (ports.View, error) {
	return s.update(ctx, "wishlist.clear", userID, false, func(w *domain.Wishlist) error {
		w.Clear(s.now().UTC())
		return nil
	})
}

func (s *Service) update(ctx context.Context, op, userID string, create bool, fn func(*domain.Wishlist) error) (ports.View, error) {
	if userID == "" {
		return ports.View{}, mapError(op, ErrUnauthenticated)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	wishlist, err := s.repo.Update(ctx, userID, create, fn)
	if err != nil {
		return ports.View{}, mapError(op, err)
	}
	view, err := s.resolve(ctx, wishlist)
	if err != nil {
		return ports.View{}, mapError(op, err)
	}
	return view, nil
}

// resolve joins items with their products; removed products stay listed with
// a nil Product.
func (s *Service) resolve(ctx context.Context, wishlist *domain.Wishlist) (ports.View, error) {
	view := ports.View{UserID: wishlist.UserID, Entries: make([]ports.Entry, 0, len(wishlist.Items))}
	for _, item := range wishlist.Items {
		product, err := s.catalog.FindProduct(ctx, item.ProductID)
		if err != nil && !errors.Is(err, fault.ErrNotFound) {
			return ports.View{}, err
		}
		view.Entries = append(view.Entries, ports.Entry{Item: item, Product: product})
	}
	return view, nil
}

var _ ports.Service = (*Service)(nil)
