// internal/workers/eligibility/evaluate-eligibility/handler_test.go
package evaluateeligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"yojanamitra/internal/catalog"
	"yojanamitra/internal/common/errors"
	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/eligibility"
	"yojanamitra/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMockJob(key int64, variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		Retries:            3,
		Variables:          variables,
	}}
}

func testCatalog() catalog.Provider {
	return catalog.NewStaticProvider([]models.Scheme{
		{
			ID:                "up-obc-scholarship",
			Title:             "UP OBC Scholarship",
			State:             "Uttar Pradesh",
			OfficialPortalURL: "https://scholarship.up.gov.in",
			Eligibility: models.EligibilityRules{
				IncomeMax: models.Float(200000),
				Caste:     []string{"OBC"},
				Student:   true,
			},
		},
	})
}

func newTestHandler(t *testing.T, evaluator Evaluator) *Handler {
	t.Helper()
	h, err := NewHandler(DefaultConfig(), evaluator, logger.NewTestLogger(t))
	require.NoError(t, err)
	return h
}

func TestNewHandler_RequiresEvaluator(t *testing.T) {
	_, err := NewHandler(DefaultConfig(), nil, logger.NewNoOpLogger())
	assert.Error(t, err)

	_, err = NewHandler(&Config{Timeout: 0}, eligibility.NewAggregator(testCatalog(), nil, eligibility.DefaultConfig, nil), logger.NewNoOpLogger())
	assert.Error(t, err)
}

func TestParseInput(t *testing.T) {
	input, err := parseInput(createMockJob(1, `{"profile": {"caste": "OBC"}, "schemeId": "up-obc-scholarship"}`))
	require.NoError(t, err)
	assert.Equal(t, "up-obc-scholarship", input.SchemeID)
	assert.JSONEq(t, `{"caste": "OBC"}`, string(input.Profile))

	_, err = parseInput(createMockJob(2, `{"profile": `))
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
}

func TestExecute_Eligible(t *testing.T) {
	h := newTestHandler(t, eligibility.NewAggregator(testCatalog(), nil, eligibility.DefaultConfig, nil))

	output, err := h.Execute(context.Background(), &Input{
		Profile:  json.RawMessage(`{"state": "Uttar Pradesh", "income_annual": 120000, "caste": "obc", "education": "Graduate"}`),
		SchemeID: "up-obc-scholarship",
	})
	require.NoError(t, err)

	_, err = uuid.Parse(output.EvaluationID)
	assert.NoError(t, err)
	assert.True(t, output.Result.Eligible)
	assert.Equal(t, 100, output.Result.RuleBasedScore)
	assert.Equal(t, models.ConfidenceHigh, output.Result.ConfidenceLevel)
	assert.Equal(t, "up-obc-scholarship", output.Scheme.ID)
	assert.Equal(t, "https://scholarship.up.gov.in", output.Scheme.OfficialPortalURL)
}

func TestExecute_Errors(t *testing.T) {
	h := newTestHandler(t, eligibility.NewAggregator(testCatalog(), nil, eligibility.DefaultConfig, nil))

	tests := []struct {
		name      string
		input     *Input
		wantCode  errors.ErrorCode
		retryable bool
	}{
		{name: "nil input", input: nil, wantCode: errors.ErrCodeProfileRequired},
		{name: "missing profile", input: &Input{SchemeID: "up-obc-scholarship"}, wantCode: errors.ErrCodeProfileRequired},
		{name: "missing scheme id", input: &Input{Profile: json.RawMessage(`{}`)}, wantCode: errors.ErrCodeSchemeIDRequired},
		{name: "unknown scheme", input: &Input{Profile: json.RawMessage(`{}`), SchemeID: "nope"}, wantCode: errors.ErrCodeSchemeNotFound},
		{name: "invalid profile", input: &Input{Profile: json.RawMessage(`{"age": -3}`), SchemeID: "up-obc-scholarship"}, wantCode: errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), tt.input)
			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok, "%v", err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}

type unavailableEvaluator struct{}

func (unavailableEvaluator) Evaluate(context.Context, *models.Profile, string) (*models.EvaluationResult, error) {
	return nil, fmt.Errorf("%w: connection refused", eligibility.ErrCatalogUnavailable)
}

func TestExecute_CatalogUnavailableIsRetryable(t *testing.T) {
	h := newTestHandler(t, unavailableEvaluator{})

	_, err := h.Execute(context.Background(), &Input{Profile: json.RawMessage(`{}`), SchemeID: "s1"})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeCatalogUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, 3, errors.ConvertToBPMNError(stdErr).Retries)
}
