// internal/eligibility/actions.go
package eligibility

import (
	"encoding/json"
	"fmt"
	"strings"

	"yojanamitra/internal/models"
)

const maxNextActions = 5

const (
	fallbackEligibleAfterError   = "You appear to be eligible for this scheme based on available information."
	fallbackIncompleteAfterError = "Some additional information or documents are needed to confirm eligibility."
	fallbackEligible             = "You appear to be eligible for this scheme."
	fallbackIncomplete           = "Some information is missing to confirm eligibility."

	msgNoSchemes    = "No schemes available in database"
	msgNoMatches    = "No matching schemes found. Please provide more information (state, education, etc.)"
	msgExplainPanic = "You may be eligible for this scheme. Please check the eligibility criteria."
)

// verdictLevel buckets a single-scheme confidence.
func verdictLevel(confidence float64) models.ConfidenceLevel {
	switch {
	case confidence >= 0.8:
		return models.ConfidenceHigh
	case confidence < 0.5:
		return models.ConfidenceLow
	default:
		return models.ConfidenceMedium
	}
}

// thresholdLevel buckets a batch entry's rule confidence when no model text
// is available.
func thresholdLevel(confidence float64) models.ConfidenceLevel {
	switch {
	case confidence > 0.7:
		return models.ConfidenceHigh
	case confidence > 0.4:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// explainedLevel buckets a batch entry using the model's own wording as a
// signal alongside the rule confidence.
func explainedLevel(explanation string, confidence float64, missing int) models.ConfidenceLevel {
	text := strings.ToLower(explanation)
	switch {
	case strings.Contains(text, "high confidence") || confidence > 0.7:
		return models.ConfidenceHigh
	case strings.Contains(text, "low confidence") || confidence < 0.4 || missing > 2:
		return models.ConfidenceLow
	default:
		return models.ConfidenceMedium
	}
}

// isEligible is the single-scheme eligibility conjunction.
func isEligible(reasons models.Reasons, confidence float64) bool {
	return len(reasons.Failed) == 0 && len(reasons.Missing) <= 2 && confidence >= 0.6
}

// deriveNextActions lists missing requirements before fixable failures,
// capped at five.
func deriveNextActions(reasons models.Reasons) []models.NextAction {
	actions := make([]models.NextAction, 0, len(reasons.Missing)+len(reasons.Failed))

	for _, m := range reasons.Missing {
		priority := models.PriorityMedium
		field := strings.ToLower(m.Field)
		if strings.Contains(field, "income") || strings.Contains(field, "category") {
			priority = models.PriorityHigh
		}
		actions = append(actions, models.NextAction{
			Action:      m.Action,
			Priority:    priority,
			Description: m.Reason,
		})
	}

	for _, f := range reasons.Failed {
		if f.Fix == "" {
			continue
		}
		actions = append(actions, models.NextAction{
			Action:      f.Fix,
			Priority:    models.PriorityHigh,
			Description: f.Reason,
		})
	}

	return capActions(actions)
}

func capActions(actions []models.NextAction) []models.NextAction {
	if actions == nil {
		return []models.NextAction{}
	}
	if len(actions) > maxNextActions {
		return actions[:maxNextActions]
	}
	return actions
}

func fallbackExplanation(reasons models.Reasons, afterError bool) string {
	favourable := len(reasons.Passed) > len(reasons.Failed)
	switch {
	case afterError && favourable:
		return fallbackEligibleAfterError
	case afterError:
		return fallbackIncompleteAfterError
	case favourable:
		return fallbackEligible
	default:
		return fallbackIncomplete
	}
}

func defaultExplanation(eligible bool) string {
	if eligible {
		return "Based on available information, you appear to be eligible."
	}
	return "Based on available information, some additional steps are required."
}

func basicExplanation(score int) string {
	return fmt.Sprintf("This scheme may be suitable based on your profile. Score: %d. Please check eligibility criteria.", score)
}

// errorExplanation is used when the explanation service failed for one
// batch entry.
func errorExplanation(profile *models.Profile, scheme *models.Scheme) string {
	income := "N/A"
	if profile.HasIncome() {
		income = formatAmount(*profile.IncomeAnnual)
	}
	caste := "N/A"
	if profile.HasCaste() {
		caste = strings.TrimSpace(profile.Caste)
	}

	rules, err := json.Marshal(scheme.Eligibility)
	if err != nil {
		rules = []byte("{}")
	}
	return fmt.Sprintf(
		"You may be eligible for this scheme. Your income is ₹%s and you belong to %s category. Please check the eligibility criteria: %s.",
		income, caste, rules,
	)
}

func withSource(passed []models.RuleOutcome, source string) []models.RuleOutcome {
	out := make([]models.RuleOutcome, len(passed))
	for i, p := range passed {
		p.Source = source
		out[i] = p
	}
	return out
}
