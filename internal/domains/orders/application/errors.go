package application

import (
	"errors"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
	"github.com/Apurer/storefront-api/internal/shared/fault"
)

var (
	ErrNotOwner             = errors.New("order belongs to another user")
	ErrUnknownProduct       = errors.New("product does not exist")
	ErrProductUnavailable   = errors.New("product is not available for purchase")
	ErrGatewayNotConfigured = errors.New("online payments are not configured")
)

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case fault.Kind(err) != nil:
		return err
	case errors.Is(err, ports.ErrNotFound):
		return fault.Wrap(fault.ErrNotFound, err)
	case errors.Is(err, ErrNotOwner):
		return fault.Wrap(fault.ErrForbidden, err)
	case errors.Is(err, domain.ErrSignatureMismatch),
		errors.Is(err, domain.ErrMerchantMismatch),
		errors.Is(err, domain.ErrAmountMismatch):
		return fault.Wrap(fault.ErrIntegrity, err)
	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrNotPayable),
		errors.Is(err, ports.ErrStaleVersion),
		errors.Is(err, ports.ErrIdempotencyConflict),
		errors.Is(err, catalogdomain.ErrInsufficientStock):
		return fault.Wrap(fault.ErrConflict, err)
	case errors.Is(err, domain.ErrNoItems),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrMissingProduct),
		errors.Is(err, domain.ErrMissingAddress),
		errors.Is(err, domain.ErrInvalidMethod),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrTotalsMismatch),
		errors.Is(err, domain.ErrNotesTooLong),
		errors.Is(err, domain.ErrNegativeUnitPrice),
		errors.Is(err, domain.ErrTrackingNumberLimit),
		errors.Is(err, ErrUnknownProduct),
		errors.Is(err, ErrProductUnavailable),
		errors.Is(err, catalogdomain.ErrUnknownSize),
		errors.Is(err, catalogdomain.ErrSizeRequired):
		return fault.Wrap(fault.ErrValidation, err)
	case errors.Is(err, domain.ErrMissingOwner):
		return fault.Wrap(fault.ErrUnauthorized, err)
	default:
		return fault.Dependency(op, err)
	}
}
