package application

import (
	"context"
	"errors"
	"strings"

	"github.com/Apurer/storefront-api/internal/domains/users/domain"
	"github.com/Apurer/storefront-api/internal/domains/users/ports"
)

// ChangePassword checks the current password before replacing it. Every
// other session of the account is revoked.
func (s *Service) ChangePassword(ctx context.Context, userID string, change ports.PasswordChange) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return mapError("users.change_password", err)
	}
	if !user.CheckPassword(change.Current) {
		return mapError("users.change_password", domain.ErrWrongPassword)
	}
	if err := user.SetPassword(change.New, s.hashCost); err != nil {
		return mapError("users.change_password", err)
	}
	user.ClearReset()
	if _, err := s.repo.Save(ctx, user); err != nil {
		return mapError("users.change_password", err)
	}
	if _, err := s.sessions.DeleteForUser(ctx, userID, change.KeepSession); err != nil {
		return mapError("users.revoke_sessions", err)
	}
	return nil
}

// RequestPasswordReset mails a single-use reset link. Unknown and deactivated
// accounts get the same nil result as real ones.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return mapError("users.forgot_password", domain.ErrInvalidEmail)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ports.ErrNotFound) {
		return nil
	}
	if err != nil {
		return mapError("users.forgot_password", err)
	}
	if !user.IsActive {
		return nil
	}
	if s.mailer == nil {
		return mapError("users.forgot_password", ErrMailerUnavailable)
	}

	token := s.newToken()
	expiresAt := s.now().UTC().Add(s.resetTTL)
	user.IssueReset(token, expiresAt)
	if _, err := s.repo.Save(ctx, user); err != nil {
		return mapError("users.forgot_password", err)
	}
	err = s.mailer.SendPasswordReset(ctx, ports.PasswordReset{
		Email:     user.Email,
		Name:      user.Name,
		Token:     token,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		// A link nobody received must not stay redeemable.
		user.ClearReset()
		_, _ = s.repo.Save(ctx, user)
		return mapError("users.send_reset", err)
	}
	return nil
}

// ResetPassword redeems a reset token, signs out every session and opens a
// fresh one.
func (s *Service) ResetPassword(ctx context.Context, token, password string) (*domain.User, domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.Session{}, mapError("users.reset_password", domain.ErrResetInvalid)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	user, err := s.repo.GetByResetToken(ctx, domain.HashResetToken(token))
	if errors.Is(err, ports.ErrNotFound) {
		return nil, domain.Session{}, mapError("users.reset_password", domain.ErrResetInvalid)
	}
	if err != nil {
		return nil, domain.Session{}, mapError("users.reset_password", err)
	}
	if !user.CanReset(token, s.now()) {
		return nil, domain.Session{}, mapError("users.reset_password", domain.ErrResetInvalid)
	}
	if !user.IsActive {
		return nil, domain.Session{}, mapError("users.reset_password", ErrAccountDisabled)
	}
	if err := user.SetPassword(password, s.hashCost); err != nil {
		return nil, domain.Session{}, mapError("users.reset_password", err)
	}
	user.ClearReset()
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, domain.Session{}, mapError("users.reset_password", err)
	}
	if _, err := s.sessions.DeleteForUser(ctx, saved.ID, ""); err != nil {
		return nil, domain.Session{}, mapError("users.revoke_sessions", err)
	}
	session, err := s.openSession(ctx, saved.ID)
	if err != nil {
		return nil, domain.Session{}, mapError("users.reset_password", err)
	}
	return saved, session, nil
}

func (s *Service) AddAddress(ctx context.Context, userID string, address domain.Address) ([]domain.Address, error) {
	return s.editAddresses(ctx, "users.add_address", userID, func(user *domain.User) error {
		_, err := user.AddAddress(s.newID(), address)
		return err
	})
}

func (s *Service) UpdateAddress(ctx context.Context, userID, addressID string, address domain.Address) ([]domain.Address, error) {
	return s.editAddresses(ctx, "users.update_address", userID, func(user *domain.User) error {
		_, err := user.UpdateAddress(addressID, address)
		return err
	})
}

func (s *Service) DeleteAddress(ctx context.Context, userID, addressID string) ([]domain.Address, error) {
	return s.editAddresses(ctx, "users.delete_address", userID, func(user *domain.User) error {
		return user.RemoveAddress(addressID)
	})
}

// editAddresses loads the account, applies edit and returns the saved book.
func (s *Service) editAddresses(ctx context.Context, op, userID string, edit func(*domain.User) error) ([]domain.Address, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapError(op, err)
	}
	if err := edit(user); err != nil {
		return nil, mapError(op, err)
	}
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, mapError(op, err)
	}
	return saved.Addresses, nil
}
