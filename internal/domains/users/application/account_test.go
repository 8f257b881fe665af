package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/storefront-api/internal/domains/users/adapters/memory"
	"github.com/Apurer/storefront-api/internal/domains/users/domain"
	"github.com/Apurer/storefront-api/internal/domains/users/ports"
	"github.com/Apurer/storefront-api/internal/shared/fault"
)

type recordingMailer struct {
	sent []ports.PasswordReset
	err  error
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, reset ports.PasswordReset) error {
	m.sent = append(m.sent, reset)
	return m.err
}

func newResetService(t *testing.T) (*Service, *memory.Repository, *recordingMailer, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	repo := memory.NewRepository()
	mailer := &recordingMailer{}
	svc := NewService(repo, memory.NewSessionStore(),
		WithHashCost(bcrypt.MinCost), WithClock(c.Now), WithSessionTTL(time.Hour), WithResetMailer(mailer))
	return svc, repo, mailer, c
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	current := register(t, svc)
	_, other, err := svc.Login(ctx, "ama@example.com", "secret1")
	require.NoError(t, err)
	actor, err := svc.Authenticate(ctx, current)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, actor.UserID, ports.PasswordChange{Current: "wrong", New: "secret2", KeepSession: current})
	require.ErrorIs(t, err, fault.ErrValidation)
	require.ErrorIs(t, err, domain.ErrWrongPassword)

	err = svc.ChangePassword(ctx, actor.UserID, ports.PasswordChange{Current: "secret1", New: "123", KeepSession: current})
	require.ErrorIs(t, err, domain.ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(ctx, actor.UserID, ports.PasswordChange{Current: "secret1", New: "secret2", KeepSession: current}))
	_, err = svc.Authenticate(ctx, current)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, other.Token)
	require.ErrorIs(t, err, fault.ErrUnauthorized)
	_, _, err = svc.Login(ctx, "ama@example.com", "secret2")
	require.NoError(t, err)
}

func TestRequestPasswordReset_MailsTokenAndStoresHash(t *testing.T) {
	svc, repo, mailer, c := newResetService(t)
	ctx := context.Background()
	register(t, svc)

	require.NoError(t, svc.RequestPasswordReset(ctx, " AMA@example.com "))
	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, "ama@example.com", sent.Email)
	assert.Equal(t, "Ama Perera", sent.Name)
	assert.Equal(t, c.now.Add(DefaultResetTTL), sent.ExpiresAt)

	user, err := repo.GetByEmail(ctx, "ama@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.HashResetToken(sent.Token), user.ResetTokenHash)
	assert.NotEqual(t, sent.Token, user.ResetTokenHash)
}

func TestRequestPasswordReset_UnknownEmailLooksTheSame(t *testing.T) {
	svc, _, mailer, _ := newResetService(t)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, mailer.sent)

	err := svc.RequestPasswordReset(context.Background(), "  ")
	require.ErrorIs(t, err, fault.ErrValidation)
}

func TestRequestPasswordReset_MailFailureVoidsToken(t *testing.T) {
	svc, repo, mailer, _ := newResetService(t)
	ctx := context.Background()
	register(t, svc)
	mailer.err = errors.New("smtp down")

	err := svc.RequestPasswordReset(ctx, "ama@example.com")
	require.Error(t, err)
	assert.True(t, fault.IsRetryable(err))

	user, err := repo.GetByEmail(ctx, "ama@example.com")
	require.NoError(t, err)
	assert.Empty(t, user.ResetTokenHash)
	_, _, err = svc.ResetPassword(ctx, mailer.sent[0].Token, "secret2")
	require.ErrorIs(t, err, domain.ErrResetInvalid)
}

func TestRequestPasswordReset_WithoutMailer(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc)
	err := svc.RequestPasswordReset(context.Background(), "ama@example.com")
	require.ErrorIs(t, err, ErrMailerUnavailable)
}

func TestResetPassword_SingleUseAndRevokesSessions(t *testing.T) {
	svc, _, mailer, _ := newResetService(t)
	ctx := context.Background()
	old := register(t, svc)
	require.NoError(t, svc.RequestPasswordReset(ctx, "ama@example.com"))
	token := mailer.sent[0].Token

	_, _, err := svc.ResetPassword(ctx, token, "123")
	require.ErrorIs(t, err, domain.ErrWeakPassword)

	user, session, err := svc.ResetPassword(ctx, token, "secret2")
	require.NoError(t, err)
	assert.Empty(t, user.ResetTokenHash)
	assert.NotEmpty(t, session.Token)

	_, err = svc.Authenticate(ctx, old)
	require.ErrorIs(t, err, fault.ErrUnauthorized)
	_, err = svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "ama@example.com", "secret2")
	require.NoError(t, err)

	_, _, err = svc.ResetPassword(ctx, token, "secret3")
	require.ErrorIs(t, err, fault.ErrValidation)
	require.ErrorIs(t, err, domain.ErrResetInvalid)
}

func TestResetPassword_Expired(t *testing.T) {
	svc, _, mailer, c := newResetService(t)
	ctx := context.Background()
	register(t, svc)
	require.NoError(t, svc.RequestPasswordReset(ctx, "ama@example.com"))

	c.now = c.now.Add(DefaultResetTTL)
	_, _, err := svc.ResetPassword(ctx, mailer.sent[0].Token, "secret2")
	require.ErrorIs(t, err, domain.ErrResetInvalid)
	_, _, err = svc.ResetPassword(ctx, "", "secret2")
	require.ErrorIs(t, err, domain.ErrResetInvalid)
}

func TestAddressBook(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	actor, err := svc.Authenticate(ctx, register(t, svc))
	require.NoError(t, err)
	home := domain.Address{FullName: "Ama Perera", AddressLine1: "12 Galle Rd", City: "Colombo", Country: "Sri Lanka"}

	book, err := svc.AddAddress(ctx, actor.UserID, home)
	require.NoError(t, err)
	require.Len(t, book, 1)
	assert.NotEmpty(t, book[0].ID)
	assert.True(t, book[0].IsDefault)

	office := home
	office.AddressLine1 = "1 Union Pl"
	office.IsDefault = true
	book, err = svc.AddAddress(ctx, actor.UserID, office)
	require.NoError(t, err)
	require.Len(t, book, 2)
	assert.False(t, book[0].IsDefault)
	assert.True(t, book[1].IsDefault)

	moved := home
	moved.City = "Kandy"
	book, err = svc.UpdateAddress(ctx, actor.UserID, book[0].ID, moved)
	require.NoError(t, err)
	assert.Equal(t, "Kandy", book[0].City)

	book, err = svc.DeleteAddress(ctx, actor.UserID, book[1].ID)
	require.NoError(t, err)
	require.Len(t, book, 1)
	assert.True(t, book[0].IsDefault)

	profile, err := svc.GetProfile(ctx, actor.UserID)
	require.NoError(t, err)
	assert.Equal(t, book, profile.Addresses)

	_, err = svc.DeleteAddress(ctx, actor.UserID, "missing")
	require.ErrorIs(t, err, fault.ErrNotFound)
	_, err = svc.AddAddress(ctx, actor.UserID, domain.Address{FullName: "Ama"})
	require.ErrorIs(t, err, fault.ErrValidation)
}
