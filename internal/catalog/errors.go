// internal/catalog/errors.go
package catalog

import (
	"errors"

	apperrors "yojanamitra/internal/common/errors"
)

// ToStandardError maps a provider error onto the shared error codes.
// schemeID is reported for ErrNotFound.
func ToStandardError(err error, schemeID string) *apperrors.StandardError {
	if err == nil {
		return nil
	}
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return stdErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return apperrors.NewSchemeNotFoundError(schemeID)
	case errors.Is(err, ErrConnection):
		return apperrors.NewDatabaseConnectionFailedError(err)
	case errors.Is(err, ErrSearch):
		return apperrors.NewSearchQueryFailedError("scheme search", err)
	case errors.Is(err, ErrQuery):
		return apperrors.NewQueryExecutionFailedError("scheme query", err)
	default:
		return apperrors.NewCatalogUnavailableError(err)
	}
}
