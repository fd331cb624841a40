// internal/workers/eligibility/get-scheme/models.go
package getscheme

import "yojanamitra/internal/models"

// Input selects one scheme by id, or the whole catalog when All is set.
// Query narrows the listing.
type Input struct {
	SchemeID string `json:"schemeId,omitempty"`
	All      bool   `json:"all,omitempty"`
	Query    string `json:"query,omitempty"`
}

type Output struct {
	Scheme  *models.Scheme  `json:"scheme,omitempty"`
	Schemes []models.Scheme `json:"schemes,omitempty"`
	Count   int             `json:"count"`
}
