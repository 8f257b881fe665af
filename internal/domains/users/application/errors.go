package application

import (
	"errors"

	"github.com/Apurer/storefront-api/internal/domains/users/domain"
	"github.com/Apurer/storefront-api/internal/domains/users/ports"
	"github.com/Apurer/storefront-api/internal/shared/fault"
)

var (
	// ErrInvalidSession covers unknown, expired and missing bearer tokens.
	ErrInvalidSession = errors.New("not authorized, please login again")
	// ErrAccountDisabled blocks deactivated accounts.
	ErrAccountDisabled = errors.New("your account has been deactivated")
	// ErrMailerUnavailable means no ResetMailer was configured.
	ErrMailerUnavailable = errors.New("password reset mail is not configured")
)

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case fault.Kind(err) != nil:
		return err
	case errors.Is(err, domain.ErrAddressNotFound):
		return fault.Wrap(fault.ErrNotFound, err)
	case errors.Is(err, ports.ErrNotFound):
		return fault.Wrap(fault.ErrNotFound, err)
	case errors.Is(err, ports.ErrInvalidCredentials),
		errors.Is(err, ports.ErrSessionNotFound),
		errors.Is(err, ErrInvalidSession):
		return fault.Wrap(fault.ErrUnauthorized, err)
	case errors.Is(err, ErrAccountDisabled):
		return fault.Wrap(fault.ErrForbidden, err)
	case errors.Is(err, domain.ErrEmailTaken):
		return fault.Wrap(fault.ErrConflict, err)
	case errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrNameTooLong),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrPasswordUnset),
		errors.Is(err, domain.ErrWrongPassword),
		errors.Is(err, domain.ErrResetInvalid),
		errors.Is(err, domain.ErrAddressIncomplete),
		errors.Is(err, domain.ErrTooManyAddresses):
		return fault.Wrap(fault.ErrValidation, err)
	default:
		return fault.Dependency(op, err)
	}
}
