// internal/workers/eligibility/evaluate-eligibility/models.go
package evaluateeligibility

import (
	"encoding/json"

	"yojanamitra/internal/models"
)

type Input struct {
	Profile  json.RawMessage `json:"profile"`
	SchemeID string          `json:"schemeId"`
}

// Output is merged into the process instance variables.
type Output struct {
	EvaluationID string                    `json:"evaluationId"`
	Result       models.EligibilityVerdict `json:"result"`
	Scheme       models.SchemeRef          `json:"scheme"`
}
