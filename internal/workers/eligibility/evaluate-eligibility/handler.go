// internal/workers/eligibility/evaluate-eligibility/handler.go
package evaluateeligibility

import (
	"context"
	"encoding/json"
	"fmt"

	"yojanamitra/internal/common/errors"
	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/common/metrics"
	"yojanamitra/internal/common/validation"
	"yojanamitra/internal/eligibility"
	"yojanamitra/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "evaluate-eligibility"

// Evaluator is the single-scheme half of the eligibility aggregator.
type Evaluator interface {
	Evaluate(ctx context.Context, profile *models.Profile, schemeID string) (*models.EvaluationResult, error)
}

type Handler struct {
	config       *Config
	evaluator    Evaluator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(cfg *Config, evaluator Evaluator, log logger.Logger) (*Handler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if evaluator == nil {
		return nil, fmt.Errorf("%s: evaluator is required", TaskType)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       cfg,
		evaluator:    evaluator,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.GetKey(),
		"workflowKey": job.GetProcessInstanceKey(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job)
	if err != nil {
		return h.failJob(ctx, client, job, err)
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		return h.failJob(ctx, client, job, err)
	}

	h.completeJob(ctx, client, job, output)
	return nil
}

func parseInput(job entities.Job) (*Input, error) {
	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err))
	}
	return &input, nil
}

// Execute evaluates the profile against the requested scheme.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewProfileRequiredError()
	}

	profile, err := validation.DecodeProfile(input.Profile)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}

	result, err := h.evaluator.Evaluate(ctx, profile, input.SchemeID)
	if err != nil {
		return nil, eligibility.ToStandardError(err, input.SchemeID)
	}

	output := &Output{
		EvaluationID: uuid.NewString(),
		Result:       result.Result,
		Scheme:       result.Scheme,
	}

	h.logger.Info("eligibility evaluated", map[string]interface{}{
		"evaluationId":    output.EvaluationID,
		"schemeId":        result.Scheme.ID,
		"eligible":        result.Result.Eligible,
		"confidenceLevel": string(result.Result.ConfidenceLevel),
	})
	return output, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) error {
	stdErr, ok := errors.AsStandardError(err)
	if !ok {
		stdErr = errors.NewInternalError(err)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
	return stdErr
}
