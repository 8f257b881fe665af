package ports

import (
	"context"
	"errors"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/domain"
)

var ErrNotFound = errors.New("wishlist not found")

// Repository stores one wishlist per user. Update runs fn against the stored
// wishlist under a per-user lock and persists the result; when create is set a
// missing wishlist is created empty first, otherwise ErrNotFound is returned.
type Repository interface {
	Get(ctx context.Context, userID string) (*domain.Wishlist, error)
	Update(ctx context.Context, userID string, create bool, fn func(*domain.Wishlist) error) (*domain.Wishlist, error)
}

// Catalog resolves the products a wishlist refers to.
type Catalog interface {
	FindProduct(ctx context.Context, id string) (*catalogdomain.Product, error)
}

// Entry is a wishlist item joined with its product. Product is nil when the
// product has since been removed from the catalog.
type Entry struct {
	domain.Item
	Product *catalogdomain.Product
}

// View is a wishlist with its products resolved.
type View struct {
	UserID  string
	Entries []Entry
}

type Service interface {
	Get(ctx context.Context, userID string) (View, error)
	Add(ctx context.Context, userID, productID string) (View, error)
	Remove(ctx context.Context, userID, productID string) (View, error)
	Clear(ctx context.Context, userID string) (View, error)
}
