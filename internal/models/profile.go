// internal/models/profile.go
package models

import "strings"

// Profile is the applicant record supplied by the caller. Nil pointers and
// empty strings mean the attribute is unknown, never zero.
type Profile struct {
	Name         string   `json:"name,omitempty"`
	Age          *int     `json:"age,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	State        string   `json:"state,omitempty"`
	IncomeAnnual *float64 `json:"income_annual,omitempty"`
	Caste        string   `json:"caste,omitempty"`
	Education    string   `json:"education,omitempty"`
	Documents    []string `json:"documents,omitempty"`
}

const (
	CasteSC      = "SC"
	CasteST      = "ST"
	CasteOBC     = "OBC"
	CasteGeneral = "General"
	CasteEWS     = "EWS"
)

var knownCastes = []string{CasteSC, CasteST, CasteOBC, CasteGeneral, CasteEWS}

func (p *Profile) HasIncome() bool {
	return p != nil && p.IncomeAnnual != nil
}

func (p *Profile) HasCaste() bool {
	return p != nil && strings.TrimSpace(p.Caste) != ""
}

func (p *Profile) HasEducation() bool {
	return p != nil && strings.TrimSpace(p.Education) != ""
}

func (p *Profile) HasState() bool {
	return p != nil && strings.TrimSpace(p.State) != ""
}

// Normalize trims free-text fields and maps caste spellings onto the
// canonical category names. Unknown castes are kept as given.
func (p Profile) Normalize() Profile {
	out := p
	out.Name = strings.TrimSpace(p.Name)
	out.Phone = strings.TrimSpace(p.Phone)
	out.State = strings.TrimSpace(p.State)
	out.Education = strings.TrimSpace(p.Education)
	out.Caste = CanonicalCaste(p.Caste)

	if len(p.Documents) > 0 {
		docs := make([]string, 0, len(p.Documents))
		for _, d := range p.Documents {
			if d = strings.TrimSpace(d); d != "" {
				docs = append(docs, d)
			}
		}
		out.Documents = docs
	}
	return out
}

func CanonicalCaste(caste string) string {
	caste = strings.TrimSpace(caste)
	for _, known := range knownCastes {
		if strings.EqualFold(caste, known) {
			return known
		}
	}
	return caste
}

func Int(v int) *int { return &v }

func Float(v float64) *float64 { return &v }
