//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/domains/users/domain"
	"github.com/Apurer/storefront-api/internal/domains/users/ports"
	"github.com/Apurer/storefront-api/internal/platform/postgres/pgtest"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

func customer(id, email string) *domain.User {
	return &domain.User{ID: id, Name: "Ama", Email: email, PasswordHash: "$2a$04$hash", Role: identity.RoleCustomer, IsActive: true}
}

func TestAccountsPersistence(t *testing.T) {
	db := pgtest.Start(t, "storefront_accounts")
	ctx := context.Background()
	repo := NewRepository(db)
	sessions := NewSessionStore(db)

	t.Run("emails are unique regardless of case", func(t *testing.T) {
		saved, err := repo.Save(ctx, customer("u-1", "Ama@Example.com"))
		require.NoError(t, err)
		assert.Equal(t, "ama@example.com", saved.Email)
		assert.False(t, saved.CreatedAt.IsZero())

		found, err := repo.GetByEmail(ctx, " AMA@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u-1", found.ID)

		_, err = repo.Save(ctx, customer("u-2", "ama@example.com"))
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	t.Run("updates keep the creation time", func(t *testing.T) {
		before, err := repo.GetByID(ctx, "u-1")
		require.NoError(t, err)

		before.Role = identity.RoleAdmin
		before.IsActive = false
		_, err = repo.Save(ctx, before)
		require.NoError(t, err)

		after, err := repo.GetByID(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, identity.RoleAdmin, after.Role)
		assert.False(t, after.IsActive)
		assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
		assert.False(t, after.UpdatedAt.Before(after.CreatedAt))
	})

	t.Run("changing to a taken email is rejected", func(t *testing.T) {
		_, err := repo.Save(ctx, customer("u-3", "kasun@example.com"))
		require.NoError(t, err)
		_, err = repo.Save(ctx, customer("u-3", "ama@example.com"))
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	t.Run("address book is replaced on save", func(t *testing.T) {
		user := customer("u-4", "nimal@example.com")
		for _, id := range []string{"a-1", "a-2"} {
			_, err := user.AddAddress(id, domain.Address{FullName: "Nimal", AddressLine1: id + " Galle Rd", City: "Colombo", Country: "LK"})
			require.NoError(t, err)
		}
		_, err := repo.Save(ctx, user)
		require.NoError(t, err)

		require.NoError(t, user.RemoveAddress("a-1"))
		_, err = user.AddAddress("a-3", domain.Address{FullName: "Nimal", AddressLine1: "3 Kandy Rd", City: "Kandy", Country: "LK"})
		require.NoError(t, err)
		_, err = repo.Save(ctx, user)
		require.NoError(t, err)

		loaded, err := repo.GetByID(ctx, "u-4")
		require.NoError(t, err)
		require.Len(t, loaded.Addresses, 2)
		assert.Equal(t, "a-2", loaded.Addresses[0].ID)
		assert.True(t, loaded.Addresses[0].IsDefault)
		assert.Equal(t, "Kandy", loaded.Addresses[1].City)
	})

	t.Run("reset tokens are found by hash and cleared", func(t *testing.T) {
		user, err := repo.GetByID(ctx, "u-4")
		require.NoError(t, err)
		expires := time.Now().Add(time.Hour)
		user.IssueReset("raw-token", expires)
		_, err = repo.Save(ctx, user)
		require.NoError(t, err)

		found, err := repo.GetByResetToken(ctx, domain.HashResetToken("raw-token"))
		require.NoError(t, err)
		assert.Equal(t, "u-4", found.ID)
		assert.WithinDuration(t, expires, found.ResetExpiresAt, time.Millisecond)

		found.ClearReset()
		_, err = repo.Save(ctx, found)
		require.NoError(t, err)
		_, err = repo.GetByResetToken(ctx, domain.HashResetToken("raw-token"))
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("unknown ids are not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("sessions expire and revoke per user", func(t *testing.T) {
		now := time.Now().UTC()
		for _, s := range []domain.Session{
			{Token: "stale", UserID: "u-1", ExpiresAt: now.Add(-time.Minute), CreatedAt: now},
			{Token: "laptop", UserID: "u-1", ExpiresAt: now.Add(time.Hour), CreatedAt: now},
			{Token: "phone", UserID: "u-1", ExpiresAt: now.Add(time.Hour), CreatedAt: now},
			{Token: "kasun", UserID: "u-3", ExpiresAt: now.Add(time.Hour), CreatedAt: now},
		} {
			require.NoError(t, sessions.Save(ctx, s))
		}

		purged, err := sessions.PurgeExpired(ctx, now)
		require.NoError(t, err)
		assert.EqualValues(t, 1, purged)
		_, err = sessions.Get(ctx, "stale")
		assert.ErrorIs(t, err, ports.ErrSessionNotFound)

		revoked, err := sessions.DeleteForUser(ctx, "u-1", "phone")
		require.NoError(t, err)
		assert.EqualValues(t, 1, revoked)

		kept, err := sessions.Get(ctx, "phone")
		require.NoError(t, err)
		assert.Equal(t, "u-1", kept.UserID)
		_, err = sessions.Get(ctx, "kasun")
		assert.NoError(t, err)
	})
}
