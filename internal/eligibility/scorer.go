// internal/eligibility/scorer.go
package eligibility

import (
	"fmt"
	"strings"

	"yojanamitra/internal/models"
)

const (
	RuleIncome    = "Income Limit"
	RuleCategory  = "Category Match"
	RuleEducation = "Education Level"
	RuleState     = "State Match"
	RuleDocuments = "Documents"
)

// MaxScore is the denominator used to turn points into confidence.
const MaxScore = 100

// Weights are the points a passed rule earns. Confidence gains weight/MaxScore.
type Weights struct {
	Income    int
	Caste     int
	Education int
	State     int
	Documents int
}

var DefaultWeights = Weights{
	Income:    40,
	Caste:     30,
	Education: 20,
	State:     10,
	Documents: 10,
}

var educationKeywords = []string{"post", "higher", "graduate"}

type Scorer struct {
	weights   Weights
	documents bool
}

type ScorerOption func(*Scorer)

// WithDocuments enables the required-documents rule.
func WithDocuments() ScorerOption {
	return func(s *Scorer) { s.documents = true }
}

func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{weights: DefaultWeights}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score evaluates one profile against one scheme. Attributes the profile
// does not carry are reported as missing, never as failed. An entry whose
// eligibility block could not be decoded scores zero with an error.
func (s *Scorer) Score(profile *models.Profile, scheme *models.Scheme) (models.ScoreResult, error) {
	result := models.ScoreResult{
		MissingFields: []string{},
		Reasons: models.Reasons{
			Passed:  []models.RuleOutcome{},
			Failed:  []models.RuleOutcome{},
			Missing: []models.MissingRequirement{},
		},
	}

	if scheme == nil {
		return result, fmt.Errorf("%w: nil scheme", ErrInvalidCatalogEntry)
	}
	if scheme.EligibilityErr != nil {
		return result, fmt.Errorf("%w: scheme %s: %v", ErrInvalidCatalogEntry, scheme.ID, scheme.EligibilityErr)
	}
	if profile == nil {
		return result, nil
	}

	sc := &scoreCard{result: &result}
	rules := scheme.Eligibility

	s.scoreIncome(sc, profile, rules)
	s.scoreCaste(sc, profile, rules)
	s.scoreEducation(sc, profile, rules)
	s.scoreState(sc, profile, scheme)
	if s.documents {
		s.scoreDocuments(sc, profile, scheme)
	}

	result.Score = sc.points
	result.Confidence = clamp(float64(sc.points)/MaxScore, 0, 1)
	return result, nil
}

type scoreCard struct {
	result *models.ScoreResult
	points int
}

func (c *scoreCard) pass(weight int, rule, reason string) {
	c.points += weight
	c.result.Reasons.Passed = append(c.result.Reasons.Passed, models.RuleOutcome{Rule: rule, Reason: reason})
}

func (c *scoreCard) fail(label, rule, reason, fix string) {
	c.result.MissingFields = append(c.result.MissingFields, label)
	c.result.Reasons.Failed = append(c.result.Reasons.Failed, models.RuleOutcome{Rule: rule, Reason: reason, Fix: fix})
}

func (c *scoreCard) missing(label, field, reason, action string) {
	c.result.MissingFields = append(c.result.MissingFields, label)
	c.result.Reasons.Missing = append(c.result.Reasons.Missing, models.MissingRequirement{Field: field, Reason: reason, Action: action})
}

func (s *Scorer) scoreIncome(sc *scoreCard, p *models.Profile, rules models.EligibilityRules) {
	if !rules.HasIncomeRule() {
		return
	}
	if !p.HasIncome() {
		sc.missing("Annual income", "Annual Income",
			"Income information required for eligibility check",
			"Obtain income certificate or upload income proof")
		return
	}

	income, limit := *p.IncomeAnnual, *rules.IncomeMax
	if income <= limit {
		sc.pass(s.weights.Income, RuleIncome,
			fmt.Sprintf("Your income ₹%s is below the scheme limit (₹%s)", formatAmount(income), formatAmount(limit)))
		return
	}
	sc.fail("Income exceeds limit", RuleIncome,
		fmt.Sprintf("Your income ₹%s exceeds the scheme limit (₹%s)", formatAmount(income), formatAmount(limit)),
		"Update your income certificate or declare lower income")
}

func (s *Scorer) scoreCaste(sc *scoreCard, p *models.Profile, rules models.EligibilityRules) {
	if !rules.HasCasteRule() {
		return
	}
	if !p.HasCaste() {
		sc.missing("Caste category", "Category/Caste",
			"Category information required",
			"Obtain category certificate (SC/ST/OBC/General)")
		return
	}

	caste := strings.TrimSpace(p.Caste)
	for _, allowed := range rules.Caste {
		if strings.EqualFold(strings.TrimSpace(allowed), caste) {
			sc.pass(s.weights.Caste, RuleCategory,
				fmt.Sprintf("You belong to %s category, which is eligible for this scheme", caste))
			return
		}
	}
	sc.fail("Caste category mismatch", RuleCategory,
		fmt.Sprintf("You belong to %s category, but the scheme is for %s", caste, strings.Join(rules.Caste, ", ")),
		"Verify your category certificate or select the correct category")
}

// scoreEducation passes when the profile's education mentions the required
// qualification or any of the keywords post/higher/graduate.
func (s *Scorer) scoreEducation(sc *scoreCard, p *models.Profile, rules models.EligibilityRules) {
	if !rules.HasEducationRule() {
		return
	}
	if !p.HasEducation() {
		sc.missing("Education details", "Education",
			"Education details required",
			"Upload marksheet or education certificate")
		return
	}

	education := strings.TrimSpace(p.Education)
	if educationMatches(education, rules.Education) {
		sc.pass(s.weights.Education, RuleEducation,
			fmt.Sprintf("Your education (%s) matches the scheme requirements", education))
		return
	}

	required := rules.Education
	if required == "" {
		required = "student"
	}
	sc.fail("Education level", RuleEducation,
		fmt.Sprintf("Your education (%s) does not match the scheme requirement (%s)", education, required),
		"Update your education certificate or select the correct qualification")
}

func educationMatches(education, required string) bool {
	edu := strings.ToLower(education)
	if req := strings.ToLower(strings.TrimSpace(required)); req != "" && strings.Contains(edu, req) {
		return true
	}
	for _, kw := range educationKeywords {
		if strings.Contains(edu, kw) {
			return true
		}
	}
	return false
}

func (s *Scorer) scoreState(sc *scoreCard, p *models.Profile, scheme *models.Scheme) {
	if scheme.State == "" {
		return
	}
	if scheme.IsNationwide() {
		if p.HasState() {
			sc.pass(s.weights.State, RuleState,
				fmt.Sprintf("This scheme is available in all states, including %s", strings.TrimSpace(p.State)))
		}
		return
	}
	if !p.HasState() {
		sc.missing("State information", "State",
			"State information required",
			"Upload State/Domicile certificate")
		return
	}

	state := strings.TrimSpace(p.State)
	if strings.EqualFold(scheme.State, state) {
		sc.pass(s.weights.State, RuleState,
			fmt.Sprintf("You are from %s, which is an eligible state for this scheme", state))
		return
	}
	sc.fail("State mismatch", RuleState,
		fmt.Sprintf("Scheme is for %s, but you are from %s", scheme.State, state),
		"Check state-specific schemes or obtain domicile certificate")
}

// scoreDocuments matches each required document by case-insensitive
// substring against the documents the applicant holds.
func (s *Scorer) scoreDocuments(sc *scoreCard, p *models.Profile, scheme *models.Scheme) {
	if len(scheme.RequiredDocs) == 0 {
		return
	}

	owned := make([]string, 0, len(p.Documents))
	for _, d := range p.Documents {
		owned = append(owned, strings.ToLower(d))
	}

	var lacking []string
	for _, doc := range scheme.RequiredDocs {
		needle := strings.ToLower(doc)
		found := false
		for _, have := range owned {
			if strings.Contains(have, needle) {
				found = true
				break
			}
		}
		if !found {
			lacking = append(lacking, doc)
		}
	}

	if len(lacking) == 0 {
		sc.pass(s.weights.Documents, RuleDocuments, "All required documents are available")
		return
	}
	for _, doc := range lacking {
		sc.missing(doc, doc,
			fmt.Sprintf("%s document required for application", doc),
			fmt.Sprintf("Obtain or download %s", doc))
	}
}
