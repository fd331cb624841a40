// internal/common/validation/schema.go
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"yojanamitra/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// ProfileSchema constrains applicant profiles accepted by the workers and
// the HTTP API. Unknown attributes are allowed and ignored.
const ProfileSchema = `{
  "type": "object",
  "properties": {
    "name":          {"type": ["string", "null"]},
    "age":           {"type": ["integer", "null"], "minimum": 0, "maximum": 150},
    "phone":         {"type": ["string", "null"]},
    "state":         {"type": ["string", "null"]},
    "income_annual": {"type": ["number", "null"], "minimum": 0},
    "caste":         {"type": ["string", "null"], "pattern": "^\\s*(?i:sc|st|obc|general|ews)?\\s*$"},
    "education":     {"type": ["string", "null"]},
    "documents":     {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`

// SchemeSchema constrains one catalog entry. Eligibility may be an object
// or a JSON-encoded string.
const SchemeSchema = `{
  "type": "object",
  "required": ["id", "title"],
  "properties": {
    "id":          {"type": "string", "minLength": 1, "pattern": "^[A-Za-z0-9][A-Za-z0-9._-]*$"},
    "title":       {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "state":       {"type": "string"},
    "eligibility": {
      "oneOf": [
        {
          "type": "object",
          "properties": {
            "income_max": {"type": ["number", "string", "null"]},
            "caste":      {"type": ["array", "string", "null"], "items": {"type": "string"}},
            "student":    {"type": ["boolean", "string", "null"]},
            "education":  {"type": ["string", "null"]}
          }
        },
        {"type": "string"},
        {"type": "null"}
      ]
    },
    "required_docs":       {"type": ["array", "string", "null"], "items": {"type": "string", "minLength": 1}},
    "source_url":          {"type": "string", "pattern": "^(https?://.+)?$"},
    "official_portal_url": {"type": "string", "pattern": "^(https?://.+)?$"},
    "application_url":     {"type": "string", "pattern": "^(https?://.+)?$"},
    "last_reviewed":       {"type": "string"}
  }
}`

var (
	ErrInvalidProfile = errors.New("invalid profile")

	profileSchema = mustCompile(ProfileSchema)
	schemeSchema  = mustCompile(SchemeSchema)
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func mustCompile(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return s
}

func validateWith(s *gojsonschema.Schema, document interface{}) (*ValidationResult, error) {
	var loader gojsonschema.JSONLoader
	switch doc := document.(type) {
	case []byte:
		loader = gojsonschema.NewBytesLoader(doc)
	case json.RawMessage:
		loader = gojsonschema.NewBytesLoader(doc)
	default:
		loader = gojsonschema.NewGoLoader(doc)
	}

	result, err := s.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

func ValidateProfile(document interface{}) (*ValidationResult, error) {
	return validateWith(profileSchema, document)
}

func ValidateScheme(document interface{}) (*ValidationResult, error) {
	return validateWith(schemeSchema, document)
}

// DecodeProfile validates and decodes a profile payload. An absent or null
// payload decodes to nil so callers can report a missing profile
// separately from a malformed one.
func DecodeProfile(raw json.RawMessage) (*models.Profile, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	result, err := ValidateProfile([]byte(trimmed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(result.GetErrorMessages(), "; "))
	}

	var profile models.Profile
	if err := json.Unmarshal(trimmed, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	normalized := profile.Normalize()
	return &normalized, nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field and its children
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
