package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlist_AddRemoveClear(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	w := New("u-1", now)

	require.NoError(t, w.Add("p-1", now))
	require.NoError(t, w.Add("p-2", now))
	require.ErrorIs(t, w.Add("p-1", now), ErrAlreadyPresent)
	require.ErrorIs(t, w.Add("", now), ErrMissingProduct)

	w.Remove("p-1", now.Add(time.Minute))
	assert.False(t, w.Contains("p-1"))
	assert.Equal(t, now.Add(time.Minute), w.UpdatedAt)

	w.Remove("missing", now)
	assert.Len(t, w.Items, 1)

	w.Clear(now)
	assert.Empty(t, w.Items)
}

func TestWishlist_Dedupe(t *testing.T) {
	first := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	w := &Wishlist{Items: []Item{{ProductID: "p-1", AddedAt: first}, {ProductID: "p-2", AddedAt: first}, {ProductID: "p-1", AddedAt: first.Add(time.Hour)}}}
	w.Dedupe()
	require.Len(t, w.Items, 2)
	assert.Equal(t, first, w.Items[0].AddedAt)
}
