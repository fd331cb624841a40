// internal/models/eligibility.go
package models

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "High"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceLow    ConfidenceLevel = "Low"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// RuleOutcome is a passed or failed rule. Fix is only set on failures,
// Source only on passes.
type RuleOutcome struct {
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
	Fix    string `json:"fix,omitempty"`
	Source string `json:"source,omitempty"`
}

// MissingRequirement is a rule that could not be evaluated because the
// profile lacks the attribute, or a required document the applicant lacks.
type MissingRequirement struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
	Action string `json:"action"`
}

type Reasons struct {
	Passed  []RuleOutcome        `json:"passed"`
	Failed  []RuleOutcome        `json:"failed"`
	Missing []MissingRequirement `json:"missing"`
}

// ScoreResult is the outcome of scoring one profile against one scheme.
type ScoreResult struct {
	Score         int      `json:"score"`
	Confidence    float64  `json:"confidence"`
	MissingFields []string `json:"missingFields"`
	Reasons       Reasons  `json:"reasons"`
}

type NextAction struct {
	Action      string   `json:"action"`
	Priority    Priority `json:"priority"`
	Description string   `json:"description"`
}

type EligibilityVerdict struct {
	Eligible        bool            `json:"eligible"`
	Confidence      float64         `json:"confidence"`
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel"`
	Explanation     string          `json:"explanation"`
	Reasons         Reasons         `json:"reasons"`
	NextActions     []NextAction    `json:"nextActions"`
	Score           float64         `json:"score"`
	RuleBasedScore  int             `json:"ruleBasedScore"`
	AIBasedScore    float64         `json:"aiBasedScore"`
}

// SchemeRef identifies the scheme a verdict was produced for.
type SchemeRef struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	OfficialPortalURL string `json:"official_portal_url,omitempty"`
}

type EvaluationResult struct {
	Result EligibilityVerdict `json:"result"`
	Scheme SchemeRef          `json:"scheme"`
}

type MatchEntry struct {
	Scheme          Scheme          `json:"scheme"`
	Score           int             `json:"score"`
	Confidence      float64         `json:"confidence"`
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel"`
	Explanation     string          `json:"explanation"`
	MissingFields   []string        `json:"missingFields"`
	NeedsReview     bool            `json:"needsReview"`
}

type MatchResult struct {
	Results        []MatchEntry `json:"results"`
	TotalSchemes   int          `json:"totalSchemes"`
	MatchedSchemes int          `json:"matchedSchemes"`
	Message        string       `json:"message,omitempty"`
}
