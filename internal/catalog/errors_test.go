// internal/catalog/errors_test.go
package catalog

import (
	"errors"
	"fmt"
	"testing"

	apperrors "yojanamitra/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

func TestToStandardError(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want apperrors.ErrorCode
	}{
		{"not found", ErrNotFound, apperrors.ErrCodeSchemeNotFound},
		{"connection", fmt.Errorf("%w: %w: %v", ErrUnavailable, ErrConnection, cause), apperrors.ErrCodeDatabaseConnection},
		{"search", fmt.Errorf("%w: %w: %v", ErrUnavailable, ErrSearch, cause), apperrors.ErrCodeSearchQueryFailed},
		{"query", fmt.Errorf("%w: %w: %v", ErrUnavailable, ErrQuery, cause), apperrors.ErrCodeQueryExecutionFailed},
		{"file missing", fmt.Errorf("%w: no catalog file", ErrUnavailable), apperrors.ErrCodeCatalogUnavailable},
		{"already standard", apperrors.NewCacheUnavailableError(cause), apperrors.ErrCodeCacheUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr := ToStandardError(tt.err, "pm-kisan")
			assert.Equal(t, tt.want, stdErr.Code)
		})
	}

	assert.Nil(t, ToStandardError(nil, ""))
	assert.Contains(t, ToStandardError(ErrNotFound, "pm-kisan").Details, "pm-kisan")
}
