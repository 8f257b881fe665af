package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/storefront-api/internal/shared/identity"
)

func TestNewUser_NormalizesEmail(t *testing.T) {
	u, err := NewUser("u-1", "  Ama Perera ", " Ama@Example.COM ", "0771234567")
	require.NoError(t, err)
	assert.Equal(t, "ama@example.com", u.Email)
	assert.Equal(t, "Ama Perera", u.Name)
	assert.Equal(t, identity.RoleCustomer, u.Role)
	assert.True(t, u.IsActive)
}

func TestNewUser_Rejections(t *testing.T) {
	_, err := NewUser("u-1", "", "a@b.co", "")
	require.ErrorIs(t, err, ErrNameRequired)
	_, err = NewUser("u-1", "Ama", "not-an-email", "")
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestPassword_HashAndCheck(t *testing.T) {
	u := &User{}
	require.ErrorIs(t, u.SetPassword("12345", bcrypt.MinCost), ErrWeakPassword)
	require.NoError(t, u.SetPassword("secret1", bcrypt.MinCost))
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.True(t, u.CheckPassword("secret1"))
	assert.False(t, u.CheckPassword("secret2"))
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now}
	assert.True(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Second)))
}
