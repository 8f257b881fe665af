//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
	"github.com/Apurer/storefront-api/internal/platform/postgres/pgtest"
)

func newOrder(t *testing.T) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder("o-1", "ORD1", "u-1",
		[]domain.LineItem{{ProductID: "p-1", Name: "Linen shirt", Quantity: 3, UnitPrice: decimal.RequireFromString("30")}},
		domain.Address{FullName: "Ama", Phone: "077", Street: "Galle Rd", City: "Colombo", PostalCode: "00300", Country: "Sri Lanka"},
		domain.PaymentPayHere, "")
	require.NoError(t, err)
	order.CreatedAt = time.Now().UTC()
	return order
}

func TestRepository_SaveVersionedAndQuery(t *testing.T) {
	db := pgtest.Start(t, "storefront_orders")

	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, newOrder(t))
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)
	assert.Equal(t, "107.20", saved.Totals.Total.StringFixed(2))

	stale := saved.Clone()
	_, err = saved.ApplyPayment(domain.PaymentPaid, &domain.PaymentResult{ID: "pay-1"}, time.Now())
	require.NoError(t, err)
	paid, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, 2, paid.Version)
	assert.Equal(t, domain.StatusConfirmed, paid.OrderStatus)
	require.NotNil(t, paid.PaymentResult)

	_, err = stale.ApplyOrderStatus(domain.StatusCancelled, "", time.Now())
	require.NoError(t, err)
	_, err = repo.Save(ctx, stale)
	require.ErrorIs(t, err, ports.ErrStaleVersion)

	byNumber, err := repo.GetByOrderNumber(ctx, "ORD1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, byNumber.PaymentStatus)

	purchased, err := repo.HasPaidOrderWithProduct(ctx, "u-1", "p-1")
	require.NoError(t, err)
	assert.True(t, purchased)
	purchased, err = repo.HasPaidOrderWithProduct(ctx, "u-1", "p-2")
	require.NoError(t, err)
	assert.False(t, purchased)
}

func TestIdempotencyStore_ScopedKeysAndConflicts(t *testing.T) {
	db := pgtest.Start(t, "storefront_orders")

	ctx := context.Background()
	store := NewIdempotencyStore(db)

	missing, err := store.Get(ctx, "u-1", "cart-42")
	require.NoError(t, err)
	assert.Nil(t, missing)

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "cart-42", UserID: "u-1", RequestHash: "h1", OrderID: "o-1"})
	require.NoError(t, err)
	assert.Equal(t, "o-1", saved.OrderID)

	again, err := store.Save(ctx, ports.IdempotencyRecord{Key: "cart-42", UserID: "u-1", RequestHash: "h1", OrderID: "o-1"})
	require.NoError(t, err)
	assert.Equal(t, "o-1", again.OrderID)

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "cart-42", UserID: "u-1", RequestHash: "h1", OrderID: "o-2"})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.NotNil(t, existing)
	assert.Equal(t, "o-1", existing.OrderID)

	_, err = store.Save(ctx, ports.IdempotencyRecord{Key: "cart-42", UserID: "u-2", RequestHash: "h9", OrderID: "o-3"})
	require.NoError(t, err)

	got, err := store.Get(ctx, "u-2", "cart-42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "o-3", got.OrderID)
}
