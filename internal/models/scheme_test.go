// internal/models/scheme_test.go
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheme_UnmarshalEligibilityShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, s Scheme)
	}{
		{
			name:  "object",
			input: `{"id":"a","title":"A","eligibility":{"income_max":150000,"caste":["OBC","SC"],"student":true}}`,
			check: func(t *testing.T, s Scheme) {
				require.NotNil(t, s.Eligibility.IncomeMax)
				assert.Equal(t, 150000.0, *s.Eligibility.IncomeMax)
				assert.Equal(t, []string{"OBC", "SC"}, s.Eligibility.Caste)
				assert.True(t, s.Eligibility.Student)
			},
		},
		{
			name:  "embedded json string",
			input: `{"id":"a","title":"A","eligibility":"{\"income_max\":\"2,50,000\",\"category\":\"SC, ST\"}"}`,
			check: func(t *testing.T, s Scheme) {
				require.NotNil(t, s.Eligibility.IncomeMax)
				assert.Equal(t, 250000.0, *s.Eligibility.IncomeMax)
				assert.Equal(t, []string{"SC", "ST"}, s.Eligibility.Caste)
			},
		},
		{
			name:  "legacy eligibility_json",
			input: `{"id":"a","title":"A","eligibility_json":"{\"student_status\":\"yes\",\"msme_required\":false}"}`,
			check: func(t *testing.T, s Scheme) {
				assert.True(t, s.Eligibility.Student)
				require.NotNil(t, s.Eligibility.MSMERequired)
				assert.False(t, *s.Eligibility.MSMERequired)
			},
		},
		{
			name:  "education flag",
			input: `{"id":"a","title":"A","eligibility":{"education":true}}`,
			check: func(t *testing.T, s Scheme) {
				assert.True(t, s.Eligibility.Student)
				assert.Empty(t, s.Eligibility.Education)
			},
		},
		{
			name:  "education text",
			input: `{"id":"a","title":"A","eligibility":{"education":" Class 12 "}}`,
			check: func(t *testing.T, s Scheme) {
				assert.Equal(t, "Class 12", s.Eligibility.Education)
				assert.True(t, s.Eligibility.HasEducationRule())
			},
		},
		{
			name:  "no eligibility",
			input: `{"id":"a","title":"A","eligibility":null}`,
			check: func(t *testing.T, s Scheme) {
				assert.True(t, s.Eligibility.IsEmpty())
				assert.NoError(t, s.EligibilityErr)
			},
		},
		{
			name:  "delimited required docs",
			input: `{"id":"a","title":"A","required_docs":"Aadhaar | Ration Card;  ; Bank Passbook"}`,
			check: func(t *testing.T, s Scheme) {
				assert.Equal(t, []string{"Aadhaar", "Ration Card", "Bank Passbook"}, s.RequiredDocs)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Scheme
			require.NoError(t, json.Unmarshal([]byte(tt.input), &s))
			assert.NoError(t, s.EligibilityErr)
			tt.check(t, s)
		})
	}
}

func TestScheme_BadEligibilityIsRecorded(t *testing.T) {
	for _, input := range []string{
		`{"id":"a","title":"A","eligibility":"{broken"}`,
		`{"id":"a","title":"A","eligibility":{"income_max":-1}}`,
		`{"id":"a","title":"A","eligibility":{"income_max":"lots"}}`,
		`{"id":"a","title":"A","eligibility":{"student":"maybe"}}`,
		`{"id":"a","title":"A","eligibility":{"caste":42}}`,
	} {
		var s Scheme
		require.NoError(t, json.Unmarshal([]byte(input), &s), input)
		assert.ErrorIs(t, s.EligibilityErr, ErrInvalidEligibility, input)
		assert.Equal(t, "a", s.ID)
	}
}

func TestScheme_Valid(t *testing.T) {
	assert.True(t, (&Scheme{ID: "a", Title: "A"}).Valid())
	assert.False(t, (&Scheme{ID: " ", Title: "A"}).Valid())
	assert.False(t, (&Scheme{ID: "a"}).Valid())
	assert.False(t, (*Scheme)(nil).Valid())
}

func TestScheme_RoundTrip(t *testing.T) {
	in := Scheme{
		ID:    "a",
		Title: "A",
		State: "All",
		Eligibility: EligibilityRules{
			IncomeMax: Float(100000),
			Caste:     []string{"SC"},
			Student:   true,
		},
		RequiredDocs: []string{"Aadhaar"},
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Scheme
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "150,000", FormatAmount(150000))
	assert.Equal(t, "0", FormatAmount(0))
	assert.Equal(t, "1,234.50", FormatAmount(1234.5))
}
