// internal/eligibility/errmap.go
package eligibility

import (
	"errors"

	apperrors "yojanamitra/internal/common/errors"
)

// ToStandardError maps an Evaluate or Match error onto the shared error
// codes used by the workers and the HTTP API.
func ToStandardError(err error, schemeID string) *apperrors.StandardError {
	if err == nil {
		return nil
	}
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return stdErr
	}

	switch {
	case errors.Is(err, ErrProfileRequired):
		return apperrors.NewProfileRequiredError()
	case errors.Is(err, ErrSchemeIDRequired):
		return apperrors.NewSchemeIDRequiredError()
	case errors.Is(err, ErrSchemeNotFound):
		return apperrors.NewSchemeNotFoundError(schemeID)
	case errors.Is(err, ErrInvalidCatalogEntry):
		return apperrors.NewCatalogEntryInvalidError(schemeID, err)
	case errors.Is(err, ErrCatalogUnavailable):
		return apperrors.NewCatalogUnavailableError(err)
	default:
		return apperrors.NewInternalError(err)
	}
}
