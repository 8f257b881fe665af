package application

import (
	"errors"

	"github.com/Apurer/storefront-api/internal/domains/wishlist/domain"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
	"github.com/Apurer/storefront-api/internal/shared/fault"
)

var ErrUnauthenticated = errors.New("sign in to use the wishlist")

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case fault.Kind(err) != nil:
		return err
	case errors.Is(err, ports.ErrNotFound):
		return fault.Wrap(fault.ErrNotFound, err)
	case errors.Is(err, ErrUnauthenticated):
		return fault.Wrap(fault.ErrUnauthorized, err)
	case errors.Is(err, domain.ErrAlreadyPresent):
		return fault.Wrap(fault.ErrConflict, err)
	case errors.Is(err, domain.ErrMissingProduct):
		return fault.Wrap(fault.ErrValidation, err)
	default:
		return fault.Dependency(op, err)
	}
}
