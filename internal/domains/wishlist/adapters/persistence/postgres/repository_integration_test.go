//go:build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/domains/wishlist/domain"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
	"github.com/Apurer/storefront-api/internal/platform/postgres/pgtest"
)

func TestWishlistRepository_ConcurrentAdds(t *testing.T) {
	db := pgtest.Start(t, "storefront_wishlist")

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Update(ctx, "u-1", false, func(*domain.Wishlist) error { return nil })
	require.ErrorIs(t, err, ports.ErrNotFound)

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = repo.Update(ctx, "u-1", true, func(w *domain.Wishlist) error {
				return w.Add(fmt.Sprintf("p-%d", i%4), time.Now().UTC())
			})
		}(i)
	}
	wg.Wait()

	stored, err := repo.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, stored.Items, 4)

	cleared, err := repo.Update(ctx, "u-1", false, func(w *domain.Wishlist) error {
		w.Clear(time.Now().UTC())
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, cleared.Items)
}
