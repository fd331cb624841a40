// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

type ErrorCode string

// Input errors
const (
	ErrCodeProfileRequired  ErrorCode = "PROFILE_REQUIRED"
	ErrCodeSchemeIDRequired ErrorCode = "SCHEME_ID_REQUIRED"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
)

// Catalog errors
const (
	ErrCodeSchemeNotFound       ErrorCode = "SCHEME_NOT_FOUND"
	ErrCodeCatalogUnavailable   ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeCatalogEntryInvalid  ErrorCode = "CATALOG_ENTRY_INVALID"
	ErrCodeDatabaseConnection   ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed    ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeCacheUnavailable     ErrorCode = "CACHE_UNAVAILABLE"
)

// Explanation errors. These are absorbed by the engine and only surface in
// logs and metrics.
const (
	ErrCodeExplanationFailed  ErrorCode = "EXPLANATION_FAILED"
	ErrCodeExplanationTimeout ErrorCode = "EXPLANATION_TIMEOUT"
)

const (
	ErrCodeWorkflowEngine ErrorCode = "WORKFLOW_ENGINE_ERROR"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e after adding key to its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func NewProfileRequiredError() *StandardError {
	return newError(ErrCodeProfileRequired, "Profile is required", "", false, nil)
}

func NewSchemeIDRequiredError() *StandardError {
	return newError(ErrCodeSchemeIDRequired, "Scheme ID is required", "", false, nil)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

func NewSchemeNotFoundError(schemeID string) *StandardError {
	return newError(ErrCodeSchemeNotFound, "Scheme not found", fmt.Sprintf("schemeId: %s", schemeID), false, nil).
		WithMetadata("schemeId", schemeID)
}

// NewCatalogUnavailableError is retryable: the catalog may come back once
// its backing store recovers.
func NewCatalogUnavailableError(err error) *StandardError {
	return newError(ErrCodeCatalogUnavailable, "Schemes database not found", errDetails(err), true, err)
}

func NewCatalogEntryInvalidError(schemeID string, err error) *StandardError {
	return newError(ErrCodeCatalogEntryInvalid, "Invalid scheme catalog entry", errDetails(err), false, err).
		WithMetadata("schemeId", schemeID)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnection, "Database connection error", errDetails(err), true, err)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, errDetails(err)), true, err)
}

func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, errDetails(err)), true, err)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Catalog cache unavailable", errDetails(err), true, err)
}

func NewExplanationFailedError(err error) *StandardError {
	return newError(ErrCodeExplanationFailed, "Explanation service error", errDetails(err), false, err)
}

func NewExplanationTimeoutError() *StandardError {
	return newError(ErrCodeExplanationTimeout, "Explanation service timeout", "", false, nil)
}

func NewWorkflowEngineError(operation string, err error, retryable bool) *StandardError {
	return newError(ErrCodeWorkflowEngine, "Workflow engine error",
		fmt.Sprintf("operation: %s, error: %s", operation, errDetails(err)), retryable, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", errDetails(err), false, err)
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// AsStandardError returns the StandardError in err's chain, if any.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 4. Retry Policy
// ==========================

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnection,
		ErrCodeQueryExecutionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeCatalogUnavailable:
		return 3

	case ErrCodeCacheUnavailable:
		return 1

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "REQUIRED") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SCHEME") || strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "EXPLANATION"):
		return "AI"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	default:
		return "OTHER"
	}
}
