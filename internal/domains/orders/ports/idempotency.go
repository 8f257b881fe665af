package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict indicates the same key was used with a different checkout payload.
var ErrIdempotencyConflict = errors.New("idempotency key reused with a different checkout")

// IdempotencyRecord ties a client-supplied checkout key to the order it produced.
// Keys are scoped per user.
type IdempotencyRecord struct {
	Key         string
	UserID      string
	RequestHash string
	OrderID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdempotencyStore persists checkout keys so retried submissions replay the original order.
type IdempotencyStore interface {
	// Get returns the stored record for the user and key, or nil when unknown.
	Get(ctx context.Context, userID, key string) (*IdempotencyRecord, error)
	// Save persists the record. When the key already exists for a different
	// request or order, ErrIdempotencyConflict is returned with the stored record.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}
