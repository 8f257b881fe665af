package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/storefront-api/internal/domains/users/adapters/memory"
	"github.com/Apurer/storefront-api/internal/domains/users/ports"
	"github.com/Apurer/storefront-api/internal/shared/fault"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (*Service, *memory.Repository, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	repo := memory.NewRepository()
	svc := NewService(repo, memory.NewSessionStore(), WithHashCost(bcrypt.MinCost), WithClock(c.Now), WithSessionTTL(time.Hour))
	return svc, repo, c
}

func register(t *testing.T, svc *Service) string {
	t.Helper()
	_, session, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "Ama Perera", Email: "ama@example.com", Password: "secret1", Phone: "0771234567",
	})
	require.NoError(t, err)
	return session.Token
}

func TestRegisterLoginAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc)

	user, session, err := svc.Login(ctx, "AMA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ama@example.com", user.Email)
	assert.NotEmpty(t, session.Token)

	actor, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.UserID)
	assert.Equal(t, identity.RoleCustomer, actor.Role)
	assert.Equal(t, "0771234567", actor.Phone)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc)
	_, _, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Other", Email: "Ama@example.com", Password: "secret2"})
	require.ErrorIs(t, err, fault.ErrConflict)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc)

	_, _, err := svc.Login(context.Background(), "ama@example.com", "wrong-password")
	require.ErrorIs(t, err, fault.ErrUnauthorized)
	_, _, err = svc.Login(context.Background(), "missing@example.com", "secret1")
	require.ErrorIs(t, err, fault.ErrUnauthorized)
}

func TestAuthenticate_ExpiredAndRevoked(t *testing.T) {
	svc, _, c := newTestService(t)
	ctx := context.Background()
	token := register(t, svc)

	c.now = c.now.Add(2 * time.Hour)
	_, err := svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, fault.ErrUnauthorized)

	c.now = c.now.Add(-2 * time.Hour)
	_, session, err := svc.Login(ctx, "ama@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, session.Token))
	_, err = svc.Authenticate(ctx, session.Token)
	require.ErrorIs(t, err, fault.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "")
	require.ErrorIs(t, err, fault.ErrUnauthorized)
}

func TestAuthenticate_InactiveAccountForbidden(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	token := register(t, svc)

	user, err := repo.GetByEmail(ctx, "ama@example.com")
	require.NoError(t, err)
	user.IsActive = false
	_, err = repo.Save(ctx, user)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, fault.ErrForbidden)
}

func TestUpdateProfile(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc)
	user, err := repo.GetByEmail(ctx, "ama@example.com")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, ports.ProfileUpdate{Name: "Ama P.", Password: "newsecret"})
	require.NoError(t, err)
	assert.Equal(t, "Ama P.", updated.Name)
	assert.Equal(t, "0771234567", updated.Phone)

	_, _, err = svc.Login(ctx, "ama@example.com", "newsecret")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, user.ID, ports.ProfileUpdate{Password: "123"})
	require.ErrorIs(t, err, fault.ErrValidation)
}

func TestPasswordChangeSignsOutOtherSessions(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	current := register(t, svc)
	_, other, err := svc.Login(ctx, "ama@example.com", "secret1")
	require.NoError(t, err)
	user, err := repo.GetByEmail(ctx, "ama@example.com")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, user.ID, ports.ProfileUpdate{Phone: "0770000000"})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, other.Token)
	require.NoError(t, err, "a profile edit without a password change keeps sessions")

	_, err = svc.UpdateProfile(ctx, user.ID, ports.ProfileUpdate{Password: "rotated-pw", KeepSession: current})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, current)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, other.Token)
	require.ErrorIs(t, err, fault.ErrUnauthorized)
}

func TestEnsureAdmin_IsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.EnsureAdmin(ctx, "", "admin@example.com", "adminpass")
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, first.Role)

	second, err := svc.EnsureAdmin(ctx, "", "admin@example.com", "ignored-password")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, _, err = svc.Login(ctx, "admin@example.com", "adminpass")
	require.NoError(t, err)
}
