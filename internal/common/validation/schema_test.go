// internal/common/validation/schema_test.go
package validation

import (
	"encoding/json"
	"testing"

	"yojanamitra/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProfile(t *testing.T) {
	profile, err := DecodeProfile(json.RawMessage(`{
		"name": " Asha ",
		"age": 24,
		"state": "Bihar",
		"income_annual": 0,
		"caste": "obc",
		"documents": ["Aadhaar", " "]
	}`))
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.Equal(t, "Asha", profile.Name)
	assert.Equal(t, models.CasteOBC, profile.Caste)
	require.NotNil(t, profile.IncomeAnnual)
	assert.Equal(t, 0.0, *profile.IncomeAnnual)
	assert.Equal(t, []string{"Aadhaar"}, profile.Documents)
}

func TestDecodeProfile_AbsentIsNil(t *testing.T) {
	for _, raw := range []string{"", "null", "  "} {
		profile, err := DecodeProfile(json.RawMessage(raw))
		assert.NoError(t, err)
		assert.Nil(t, profile)
	}
}

func TestDecodeProfile_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{name: "negative income", raw: `{"income_annual": -1}`, field: "income_annual"},
		{name: "age out of range", raw: `{"age": 151}`, field: "age"},
		{name: "fractional age", raw: `{"age": 20.5}`, field: "age"},
		{name: "unknown caste", raw: `{"caste": "Brahmin"}`, field: "caste"},
		{name: "income as text", raw: `{"income_annual": "lots"}`, field: "income_annual"},
		{name: "documents not a list", raw: `{"documents": "Aadhaar"}`, field: "documents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeProfile(json.RawMessage(tt.raw))
			require.ErrorIs(t, err, ErrInvalidProfile)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateProfile_CasteCaseInsensitive(t *testing.T) {
	for _, caste := range []string{"SC", "st", "General", " EWS ", ""} {
		result, err := ValidateProfile(map[string]interface{}{"caste": caste})
		require.NoError(t, err)
		assert.True(t, result.Valid, caste)
	}
}

func TestValidateScheme(t *testing.T) {
	valid := []string{
		`{"id": "pm-kisan", "title": "PM Kisan", "eligibility": {"income_max": 200000, "caste": ["SC"]}}`,
		`{"id": "nsp", "title": "NSP", "eligibility": "{\"student\": true}"}`,
		`{"id": "ayushman", "title": "Ayushman Bharat", "official_portal_url": "https://pmjay.gov.in"}`,
	}
	for _, raw := range valid {
		result, err := ValidateScheme([]byte(raw))
		require.NoError(t, err)
		assert.True(t, result.Valid, "%s: %v", raw, result.GetErrorMessages())
	}

	result, err := ValidateScheme([]byte(`{"id": "", "official_portal_url": "ftp://x", "required_docs": [""]}`))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("title") || result.HasErrors("(root)"))
	assert.NotEmpty(t, result.GetErrorsForField("official_portal_url"))
	assert.NotEmpty(t, result.GetErrorsForField("required_docs"))
}

func TestMustCompile_BadSchemaPanics(t *testing.T) {
	assert.Panics(t, func() { mustCompile(`{"type": 12}`) })
}
