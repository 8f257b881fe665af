package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/domains/users/domain"
	"github.com/Apurer/storefront-api/internal/domains/users/ports"
)

func TestSessionStore_PurgeExpired(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domain.Session{Token: "old", UserID: "u-1", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.Save(ctx, domain.Session{Token: "fresh", UserID: "u-1", ExpiresAt: now.Add(time.Hour)}))

	purged, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	_, err = store.Get(ctx, "old")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
	_, err = store.Get(ctx, "fresh")
	require.NoError(t, err)
}

func TestSessionStore_DeleteForUserKeepsCurrentToken(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	for _, session := range []domain.Session{
		{Token: "laptop", UserID: "u-1"},
		{Token: "phone", UserID: "u-1"},
		{Token: "tablet", UserID: "u-1"},
		{Token: "other", UserID: "u-2"},
	} {
		require.NoError(t, store.Save(ctx, session))
	}

	revoked, err := store.DeleteForUser(ctx, "u-1", "phone")
	require.NoError(t, err)
	assert.EqualValues(t, 2, revoked)

	_, err = store.Get(ctx, "laptop")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
	_, err = store.Get(ctx, "phone")
	require.NoError(t, err)
	_, err = store.Get(ctx, "other")
	require.NoError(t, err)
}

func TestRepository_UniqueEmail(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	first := &domain.User{ID: "u-1", Name: "Ama", Email: "ama@example.com", PasswordHash: "x", Role: "customer"}
	_, err := repo.Save(ctx, first)
	require.NoError(t, err)

	second := &domain.User{ID: "u-2", Name: "Ama", Email: "AMA@example.com", PasswordHash: "x", Role: "customer"}
	_, err = repo.Save(ctx, second)
	require.ErrorIs(t, err, domain.ErrEmailTaken)

	found, err := repo.GetByEmail(ctx, " Ama@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", found.ID)
}
