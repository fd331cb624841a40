// internal/models/scheme.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StateAll marks a nationwide scheme.
const StateAll = "All"

var ErrInvalidEligibility = errors.New("invalid eligibility rules")

type Scheme struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Description       string           `json:"description,omitempty"`
	State             string           `json:"state,omitempty"`
	Eligibility       EligibilityRules `json:"eligibility"`
	RequiredDocs      []string         `json:"required_docs,omitempty"`
	SourceURL         string           `json:"source_url,omitempty"`
	OfficialPortalURL string           `json:"official_portal_url,omitempty"`
	ApplicationURL    string           `json:"application_url,omitempty"`
	LastReviewed      string           `json:"last_reviewed,omitempty"`

	// EligibilityErr is set when the entry's eligibility block could not be
	// decoded. The entry stays in the catalog so it can be isolated at scoring.
	EligibilityErr error `json:"-"`
}

// EligibilityRules is the structured eligibility block of a scheme. Nil
// IncomeMax and empty Caste/Education mean the rule is not defined.
type EligibilityRules struct {
	IncomeMax    *float64 `json:"income_max,omitempty"`
	Caste        []string `json:"caste,omitempty"`
	Student      bool     `json:"student,omitempty"`
	Education    string   `json:"education,omitempty"`
	MSMERequired *bool    `json:"msme_required,omitempty"`
}

func (r EligibilityRules) HasIncomeRule() bool {
	return r.IncomeMax != nil
}

func (r EligibilityRules) HasCasteRule() bool {
	return len(r.Caste) > 0
}

func (r EligibilityRules) HasEducationRule() bool {
	return r.Student || strings.TrimSpace(r.Education) != ""
}

func (r EligibilityRules) IsEmpty() bool {
	return !r.HasIncomeRule() && !r.HasCasteRule() && !r.HasEducationRule() && r.MSMERequired == nil
}

// Valid reports whether the entry carries the identity fields every catalog
// entry needs.
func (s *Scheme) Valid() bool {
	return s != nil && strings.TrimSpace(s.ID) != "" && strings.TrimSpace(s.Title) != ""
}

func (s *Scheme) IsNationwide() bool {
	return strings.EqualFold(strings.TrimSpace(s.State), StateAll)
}

type schemeWire struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	State             string          `json:"state"`
	Eligibility       json.RawMessage `json:"eligibility"`
	EligibilityJSON   string          `json:"eligibility_json"`
	RequiredDocs      json.RawMessage `json:"required_docs"`
	SourceURL         string          `json:"source_url"`
	OfficialPortalURL string          `json:"official_portal_url"`
	ApplicationURL    string          `json:"application_url"`
	LastReviewed      string          `json:"last_reviewed"`
}

// UnmarshalJSON accepts catalogs produced by the CSV seeder, where the
// eligibility block may be an embedded JSON string and required_docs a
// delimited string.
func (s *Scheme) UnmarshalJSON(data []byte) error {
	var w schemeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*s = Scheme{
		ID:                strings.TrimSpace(w.ID),
		Title:             strings.TrimSpace(w.Title),
		Description:       w.Description,
		State:             strings.TrimSpace(w.State),
		SourceURL:         w.SourceURL,
		OfficialPortalURL: w.OfficialPortalURL,
		ApplicationURL:    w.ApplicationURL,
		LastReviewed:      w.LastReviewed,
	}

	docs, err := decodeStringList(w.RequiredDocs)
	if err != nil {
		s.EligibilityErr = fmt.Errorf("%w: required_docs: %v", ErrInvalidEligibility, err)
	}
	s.RequiredDocs = docs

	raw := w.Eligibility
	if isNullOrEmpty(raw) && strings.TrimSpace(w.EligibilityJSON) != "" {
		raw = json.RawMessage(w.EligibilityJSON)
	}

	rules, err := DecodeEligibility(raw)
	if err != nil {
		s.EligibilityErr = err
		return nil
	}
	s.Eligibility = rules
	return nil
}

// DecodeEligibility decodes an eligibility block given either as a JSON
// object or as a JSON string holding one. Empty input yields no rules.
func DecodeEligibility(raw []byte) (EligibilityRules, error) {
	if isNullOrEmpty(raw) {
		return EligibilityRules{}, nil
	}

	var embedded string
	if err := json.Unmarshal(raw, &embedded); err == nil {
		if strings.TrimSpace(embedded) == "" {
			return EligibilityRules{}, nil
		}
		raw = []byte(embedded)
	}

	var rules EligibilityRules
	if err := json.Unmarshal(raw, &rules); err != nil {
		return EligibilityRules{}, fmt.Errorf("%w: %v", ErrInvalidEligibility, err)
	}
	return rules, nil
}

type rulesWire struct {
	IncomeMax     json.RawMessage `json:"income_max"`
	Caste         json.RawMessage `json:"caste"`
	Category      json.RawMessage `json:"category"`
	Student       json.RawMessage `json:"student"`
	StudentStatus json.RawMessage `json:"student_status"`
	Education     json.RawMessage `json:"education"`
	MSMERequired  json.RawMessage `json:"msme_required"`
}

func (r *EligibilityRules) UnmarshalJSON(data []byte) error {
	var w rulesWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*r = EligibilityRules{}

	incomeMax, err := decodeNumber(w.IncomeMax)
	if err != nil {
		return fmt.Errorf("income_max: %w", err)
	}
	if incomeMax != nil && *incomeMax < 0 {
		return fmt.Errorf("income_max: must be non-negative, got %v", *incomeMax)
	}
	r.IncomeMax = incomeMax

	casteRaw := w.Caste
	if isNullOrEmpty(casteRaw) {
		casteRaw = w.Category
	}
	castes, err := decodeStringList(casteRaw)
	if err != nil {
		return fmt.Errorf("caste: %w", err)
	}
	r.Caste = castes

	studentRaw := w.Student
	if isNullOrEmpty(studentRaw) {
		studentRaw = w.StudentStatus
	}
	student, err := decodeBool(studentRaw)
	if err != nil {
		return fmt.Errorf("student: %w", err)
	}
	if student != nil {
		r.Student = *student
	}

	if !isNullOrEmpty(w.Education) {
		var edu string
		if err := json.Unmarshal(w.Education, &edu); err != nil {
			// a boolean education flag behaves like student
			flag, bErr := decodeBool(w.Education)
			if bErr != nil {
				return fmt.Errorf("education: %w", err)
			}
			if flag != nil && *flag {
				r.Student = true
			}
		} else {
			r.Education = strings.TrimSpace(edu)
		}
	}

	msme, err := decodeBool(w.MSMERequired)
	if err != nil {
		return fmt.Errorf("msme_required: %w", err)
	}
	r.MSMERequired = msme
	return nil
}

func isNullOrEmpty(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func decodeNumber(raw json.RawMessage) (*float64, error) {
	if isNullOrEmpty(raw) {
		return nil, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("expected number, got %s", string(raw))
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("expected number, got %q", s)
	}
	return &n, nil
}

func decodeBool(raw json.RawMessage) (*bool, error) {
	if isNullOrEmpty(raw) {
		return nil, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("expected boolean, got %s", string(raw))
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		b = true
	case "false", "no", "n", "0", "":
		b = false
	default:
		return nil, fmt.Errorf("expected boolean, got %q", s)
	}
	return &b, nil
}

func decodeStringList(raw json.RawMessage) ([]string, error) {
	if isNullOrEmpty(raw) {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return compact(list), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("expected list of strings, got %s", string(raw))
	}
	return compact(strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})), nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
