// internal/explain/errors.go
package explain

import (
	"context"
	"errors"

	apperrors "yojanamitra/internal/common/errors"
)

// ToStandardError classifies an Assess or Explain failure. Callers use it
// for logging and metrics only; explanation errors never fail a job.
func ToStandardError(err error) *apperrors.StandardError {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrExplanationTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewExplanationTimeoutError()
	}
	return apperrors.NewExplanationFailedError(err)
}
