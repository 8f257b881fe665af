package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
)

func TestIdempotencyStore_SaveReplaysAndDetectsConflicts(t *testing.T) {
	store := NewIdempotencyStore()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return fixed })
	ctx := context.Background()

	record := ports.IdempotencyRecord{Key: "cart-42", UserID: "u-1", RequestHash: "h1", OrderID: "o-1"}
	saved, err := store.Save(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, fixed, saved.CreatedAt)

	again, err := store.Save(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, "o-1", again.OrderID)

	record.RequestHash = "h2"
	existing, err := store.Save(ctx, record)
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	assert.Equal(t, "h1", existing.RequestHash)

	other, err := store.Get(ctx, "u-2", "cart-42")
	require.NoError(t, err)
	assert.Nil(t, other)
}
