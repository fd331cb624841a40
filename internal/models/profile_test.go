// internal/models/profile_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfile_Normalize(t *testing.T) {
	p := Profile{
		Name:      "  Asha ",
		State:     " Bihar ",
		Caste:     "obc",
		Education: " Graduate ",
		Documents: []string{" Aadhaar ", "", "  "},
	}.Normalize()

	assert.Equal(t, "Asha", p.Name)
	assert.Equal(t, "Bihar", p.State)
	assert.Equal(t, CasteOBC, p.Caste)
	assert.Equal(t, "Graduate", p.Education)
	assert.Equal(t, []string{"Aadhaar"}, p.Documents)
}

func TestCanonicalCaste(t *testing.T) {
	assert.Equal(t, CasteGeneral, CanonicalCaste("GENERAL"))
	assert.Equal(t, CasteEWS, CanonicalCaste(" ews"))
	assert.Equal(t, "Minority", CanonicalCaste("Minority"))
}

func TestProfile_Presence(t *testing.T) {
	var nilProfile *Profile
	assert.False(t, nilProfile.HasIncome())

	p := &Profile{IncomeAnnual: Float(0), State: " "}
	assert.True(t, p.HasIncome(), "zero income is known")
	assert.False(t, p.HasState())
	assert.False(t, p.HasCaste())
}
