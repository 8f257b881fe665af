//go:build integration

package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/domains/reviews/domain"
	"github.com/Apurer/storefront-api/internal/platform/postgres/pgtest"
)

func review(id, user string, rating int) *domain.Review {
	return &domain.Review{
		ID: id, ProductID: "p-1", UserID: user, UserName: user,
		Rating: rating, Title: "Title", Comment: "Comment", IsApproved: true,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
}

func TestReviewRepository_StatsAndUniqueness(t *testing.T) {
	db := pgtest.Start(t, "storefront_reviews")

	repo := NewRepository(db)
	ctx := context.Background()

	for i, rating := range []int{5, 3, 4} {
		_, err := repo.Create(ctx, review(string(rune('a'+i)), string(rune('u'+i)), rating))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, review("dup", "u", 1))
	require.ErrorIs(t, err, domain.ErrAlreadyReviewed)

	stats, err := repo.Stats(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{Average: 4.0, Count: 3}, stats)

	require.NoError(t, repo.Delete(ctx, "b"))
	stats, err = repo.Stats(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{Average: 4.5, Count: 2}, stats)
}

func TestReviewRepository_HelpfulVotesCountOnce(t *testing.T) {
	db := pgtest.Start(t, "storefront_reviews")

	repo := NewRepository(db)
	ctx := context.Background()
	_, err := repo.Create(ctx, review("r-1", "author", 4))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var accepted atomic.Int32
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AddHelpfulVote(ctx, "r-1", "voter"); err == nil {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, accepted.Load())
	stored, err := repo.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.HelpfulCount)
	assert.Equal(t, []string{"voter"}, stored.HelpfulBy)

	_, err = repo.AddHelpfulVote(ctx, "missing", "voter")
	require.Error(t, err)
}
