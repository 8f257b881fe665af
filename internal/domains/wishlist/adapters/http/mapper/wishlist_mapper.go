package mapper

import (
	"time"

	catalogmapper "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/http/mapper"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
)

// AddItem is the inbound add-to-wishlist payload.
type AddItem struct {
	ProductID string `json:"productId" binding:"required"`
}

// Entry is one wishlist line. Product is null when the product was removed
// from the catalog after it was saved.
type Entry struct {
	ProductID string                 `json:"productId"`
	AddedAt   time.Time              `json:"addedAt"`
	Product   *catalogmapper.Product `json:"product"`
}

// Wishlist is the HTTP representation of a user's wishlist.
type Wishlist struct {
	UserID string  `json:"userId"`
	Items  []Entry `json:"items"`
}

func FromView(view ports.View) Wishlist {
	out := Wishlist{UserID: view.UserID, Items: make([]Entry, 0, len(view.Entries))}
	for _, e := range view.Entries {
		entry := Entry{ProductID: e.ProductID, AddedAt: e.AddedAt}
		if e.Product != nil {
			product := catalogmapper.FromDomainProduct(e.Product)
			entry.Product = &product
		}
		out.Items = append(out.Items, entry)
	}
	return out
}
