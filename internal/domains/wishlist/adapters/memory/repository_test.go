package memory

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
)

func TestRepository_UpdateCreatesOnlyWhenAsked(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	_, err := repo.Update(ctx, "u-1", false, func(*domain.Wishlist) error { return nil })
	require.ErrorIs(t, err, ports.ErrNotFound)

	w, err := repo.Update(ctx, "u-1", true, func(*domain.Wishlist) error { return nil })
	require.NoError(t, err)
	assert.Empty(t, w.Items)
}

func TestRepository_FailedUpdateLeavesStateUntouched(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	now := time.Now()
	_, err := repo.Update(ctx, "u-1", true, func(w *domain.Wishlist) error { return w.Add("p-1", now) })
	require.NoError(t, err)

	_, err = repo.Update(ctx, "u-1", false, func(w *domain.Wishlist) error {
		w.Clear(now)
		return domain.ErrAlreadyPresent
	})
	require.Error(t, err)

	stored, err := repo.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
}

func TestRepository_ConcurrentAddsAreSerialised(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Update(ctx, "u-1", true, func(w *domain.Wishlist) error {
				return w.Add(fmt.Sprintf("p-%d", i%5), time.Now())
			})
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrAlreadyPresent)
			}
		}(i)
	}
	wg.Wait()

	stored, err := repo.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, stored.Items, 5)
}
