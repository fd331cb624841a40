// internal/explain/service.go
package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"yojanamitra/internal/models"
)

var (
	ErrExplanationTimeout = errors.New("EXPLANATION_TIMEOUT")
	ErrExplanationFailed  = errors.New("EXPLANATION_FAILED")
)

const MaxAIScore = 30

// Service produces language-model explanations. Callers treat every error
// as "no explanation" and fall back to deterministic text.
type Service interface {
	// Assess returns a structured judgement for a single scheme.
	Assess(ctx context.Context, req *AssessRequest) (*Assessment, error)
	// Explain returns free text for one entry of a batch match.
	Explain(ctx context.Context, req *ExplainRequest) (string, error)
}

type AssessRequest struct {
	Profile models.Profile
	Scheme  models.Scheme
	Passed  int
	Failed  int
	Missing int
}

type Assessment struct {
	Eligible    bool                `json:"eligible"`
	Explanation string              `json:"explanation"`
	AIScore     float64             `json:"aiScore"`
	NextActions []models.NextAction `json:"nextActions"`
}

type ExplainRequest struct {
	Profile       models.Profile
	Scheme        models.Scheme
	Score         int
	Confidence    float64
	MissingFields []string
}

type assessmentWire struct {
	Eligible    bool            `json:"eligible"`
	Explanation string          `json:"explanation"`
	AIScore     json.RawMessage `json:"aiScore"`
	NextActions []struct {
		Action      string `json:"action"`
		Priority    string `json:"priority"`
		Description string `json:"description"`
	} `json:"nextActions"`
}

// ParseAssessment decodes the JSON object a model returned, tolerating
// surrounding prose or code fences. aiScore is clamped to 0..30 and unknown
// priorities become medium.
func ParseAssessment(text string) (*Assessment, error) {
	raw := extractJSONObject(text)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrExplanationFailed)
	}

	var w assessmentWire
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, fmt.Errorf("%w: decode assessment: %v", ErrExplanationFailed, err)
	}

	out := &Assessment{
		Explanation: strings.TrimSpace(w.Explanation),
		Eligible:    w.Eligible,
		AIScore:     parseScore(w.AIScore),
	}

	for _, a := range w.NextActions {
		if strings.TrimSpace(a.Action) == "" {
			continue
		}
		out.NextActions = append(out.NextActions, models.NextAction{
			Action:      strings.TrimSpace(a.Action),
			Priority:    normalizePriority(a.Priority),
			Description: strings.TrimSpace(a.Description),
		})
	}
	return out, nil
}

func parseScore(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		if v, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0
		}
	}
	switch {
	case v != v || v < 0:
		return 0
	case v > MaxAIScore:
		return MaxAIScore
	}
	return v
}

func normalizePriority(p string) models.Priority {
	switch models.Priority(strings.ToLower(strings.TrimSpace(p))) {
	case models.PriorityHigh:
		return models.PriorityHigh
	case models.PriorityLow:
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}

func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
