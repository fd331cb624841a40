// internal/eligibility/errors.go
package eligibility

import "errors"

var (
	ErrProfileRequired     = errors.New("profile is required")
	ErrSchemeIDRequired    = errors.New("scheme id is required")
	ErrSchemeNotFound      = errors.New("scheme not found")
	ErrCatalogUnavailable  = errors.New("scheme catalog unavailable")
	ErrInvalidCatalogEntry = errors.New("invalid catalog entry")
)

// IsInputError reports whether err was caused by the caller's request.
func IsInputError(err error) bool {
	return errors.Is(err, ErrProfileRequired) || errors.Is(err, ErrSchemeIDRequired)
}
