package application

import (
	"errors"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/catalog/ports"
	"github.com/Apurer/storefront-api/internal/shared/fault"
)

// mapError tags repository and domain errors with their fault kind. Anything
// unrecognised came from storage and is reported as a dependency failure.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case fault.Kind(err) != nil:
		return err
	case errors.Is(err, ports.ErrNotFound):
		return fault.Wrap(fault.ErrNotFound, err)
	case errors.Is(err, domain.ErrInsufficientStock):
		return fault.Wrap(fault.ErrConflict, err)
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrNameTooLong),
		errors.Is(err, domain.ErrDescriptionTooLong),
		errors.Is(err, domain.ErrNegativePrice),
		errors.Is(err, domain.ErrInvalidSale),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrNegativeStock),
		errors.Is(err, domain.ErrStockMismatch),
		errors.Is(err, domain.ErrDuplicateSize),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrUnknownSize),
		errors.Is(err, domain.ErrSizeRequired),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrMissingImage):
		return fault.Wrap(fault.ErrValidation, err)
	default:
		return fault.Dependency(op, err)
	}
}
