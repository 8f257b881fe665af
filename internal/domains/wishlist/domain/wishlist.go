package domain

import (
	"errors"
	"time"
)

var (
	ErrAlreadyPresent = errors.New("product already in wishlist")
	ErrMissingProduct = errors.New("product id is required")
)

type Item struct {
	ProductID string
	AddedAt   time.Time
}

// Wishlist is the set of products a user saved for later.
type Wishlist struct {
	UserID    string
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(userID string, now time.Time) *Wishlist {
	return &Wishlist{UserID: userID, Items: []Item{}, CreatedAt: now, UpdatedAt: now}
}

func (w *Wishlist) Contains(productID string) bool {
	for _, item := range w.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

func (w *Wishlist) Add(productID string, now time.Time) error {
	if productID == "" {
		return ErrMissingProduct
	}
	if w.Contains(productID) {
		return ErrAlreadyPresent
	}
	w.Items = append(w.Items, Item{ProductID: productID, AddedAt: now})
	w.UpdatedAt = now
	return nil
}

// Remove drops the product if present; absent products are ignored.
func (w *Wishlist) Remove(productID string, now time.Time) {
	kept := w.Items[:0]
	for _, item := range w.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	w.Items = kept
	w.UpdatedAt = now
}

func (w *Wishlist) Clear(now time.Time) {
	w.Items = []Item{}
	w.UpdatedAt = now
}

// Dedupe keeps the first occurrence of every product.
func (w *Wishlist) Dedupe() {
	seen := make(map[string]struct{}, len(w.Items))
	kept := make([]Item, 0, len(w.Items))
	for _, item := range w.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		kept = append(kept, item)
	}
	w.Items = kept
}

func (w *Wishlist) Clone() *Wishlist {
	if w == nil {
		return nil
	}
	clone := *w
	clone.Items = append([]Item{}, w.Items...)
	return &clone
}
