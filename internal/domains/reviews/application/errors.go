package application

import (
	"errors"

	"github.com/Apurer/storefront-api/internal/domains/reviews/domain"
	"github.com/Apurer/storefront-api/internal/domains/reviews/ports"
	"github.com/Apurer/storefront-api/internal/shared/fault"
)

var (
	ErrNotAuthor       = errors.New("not authorized to delete this review")
	ErrUnauthenticated = errors.New("sign in to review products")
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
	case errors.Is(err, ErrNotAuthor):
		return fault.Wrap(fault.ErrForbidden, err)
	case errors.Is(err, ErrUnauthenticated):
		return fault.Wrap(fault.ErrUnauthorized, err)
	case errors.Is(err, domain.ErrAlreadyReviewed),
		errors.Is(err, domain.ErrAlreadyHelpful):
		return fault.Wrap(fault.ErrConflict, err)
	case errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrTitleRequired),
		errors.Is(err, domain.ErrTitleTooLong),
		errors.Is(err, domain.ErrCommentRequired),
		errors.Is(err, domain.ErrCommentTooLong),
		errors.Is(err, domain.ErrMissingAuthor):
		return fault.Wrap(fault.ErrValidation, err)
	default:
		return fault.Dependency(op, err)
	}
}
