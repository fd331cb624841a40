// internal/workers/eligibility/match-schemes/models.go
package matchschemes

import (
	"encoding/json"

	"yojanamitra/internal/models"
)

type Input struct {
	Profile json.RawMessage `json:"profile"`
}

type Output struct {
	MatchID        string              `json:"matchId"`
	Results        []models.MatchEntry `json:"results"`
	TotalSchemes   int                 `json:"totalSchemes"`
	MatchedSchemes int                 `json:"matchedSchemes"`
	Message        string              `json:"message,omitempty"`
	NeedsReview    bool                `json:"needsReview"`
}
