// internal/explain/errors_test.go
package explain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	apperrors "yojanamitra/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

func TestToStandardError(t *testing.T) {
	assert.Nil(t, ToStandardError(nil))
	assert.Equal(t, apperrors.ErrCodeExplanationTimeout, ToStandardError(ErrExplanationTimeout).Code)
	assert.Equal(t, apperrors.ErrCodeExplanationTimeout, ToStandardError(fmt.Errorf("call: %w", context.DeadlineExceeded)).Code)

	stdErr := ToStandardError(fmt.Errorf("%w: bad gateway", ErrExplanationFailed))
	assert.Equal(t, apperrors.ErrCodeExplanationFailed, stdErr.Code)
	assert.True(t, errors.Is(stdErr, ErrExplanationFailed))
}
