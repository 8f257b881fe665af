package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps orders in process memory with version-checked saves.
type Repository struct {
	mu       sync.RWMutex
	orders   map[string]*domain.Order
	byNumber map[string]string
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}, byNumber: map[string]string{}}
}

func (r *Repository) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.orders[order.ID]
	switch {
	case !ok && order.Version != 0:
		return nil, ports.ErrNotFound
	case ok && existing.Version != order.Version:
		return nil, ports.ErrStaleVersion
	}
	if !ok {
		if _, taken := r.byNumber[order.OrderNumber]; taken {
			return nil, errors.New("order number already exists")
		}
	}
	clone := order.Clone()
	clone.Version++
	r.orders[clone.ID] = clone
	r.byNumber[clone.OrderNumber] = clone.ID
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) GetByOrderNumber(_ context.Context, number string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNumber[number]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.orders[id].Clone(), nil
}

func (r *Repository) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	return r.collect(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Order, error) {
	return r.collect(func(*domain.Order) bool { return true }), nil
}

func (r *Repository) HasPaidOrderWithProduct(_ context.Context, userID, productID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.UserID != userID || o.PaymentStatus != domain.PaymentPaid {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *Repository) collect(keep func(*domain.Order) bool) []*domain.Order {
	r.mu.RLock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if keep(o) {
			list = append(list, o.Clone())
		}
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].OrderNumber > list[j].OrderNumber
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}
