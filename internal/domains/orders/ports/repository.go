package ports

import (
	"context"
	"errors"

	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrStaleVersion is returned by Save when the stored order changed since it was read.
	ErrStaleVersion = errors.New("order was modified concurrently")
)

// Repository persists orders. Save inserts when Version is zero and otherwise
// updates only if the stored version still equals order.Version; the returned
// order carries the new version.
type Repository interface {
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByOrderNumber(ctx context.Context, number string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	HasPaidOrderWithProduct(ctx context.Context, userID, productID string) (bool, error)
}
