// internal/workers/eligibility/match-schemes/handler.go
package matchschemes

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

const TaskType = "match-schemes"

// Matcher is the batch half of the eligibility aggregator.
type Matcher interface {
	Match(ctx context.Context, profile *models.Profile) (*models.MatchResult, error)
}

type Handler struct {
	config       *Config
	matcher      Matcher
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(cfg *Config, matcher Matcher, log logger.Logger) (*Handler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if matcher == nil {
		return nil, fmt.Errorf("%s: matcher is required", TaskType)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       cfg,
		matcher:      matcher,
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

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return h.failJob(ctx, client, job, errors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err)))
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		return h.failJob(ctx, client, job, err)
	}

	h.completeJob(ctx, client, job, output)
	return nil
}

// Execute ranks the catalog for the profile. Empty catalogs and empty
// matches complete normally with a message.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewProfileRequiredError()
	}

	profile, err := validation.DecodeProfile(input.Profile)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}

	result, err := h.matcher.Match(ctx, profile)
	if err != nil {
		return nil, eligibility.ToStandardError(err, "")
	}

	output := &Output{
		MatchID:        uuid.NewString(),
		Results:        result.Results,
		TotalSchemes:   result.TotalSchemes,
		MatchedSchemes: result.MatchedSchemes,
		Message:        result.Message,
	}
	if output.Results == nil {
		output.Results = []models.MatchEntry{}
	}
	for _, r := range output.Results {
		if r.NeedsReview {
			output.NeedsReview = true
			break
		}
	}

	h.logger.Info("schemes matched", map[string]interface{}{
		"matchId":        output.MatchID,
		"totalSchemes":   output.TotalSchemes,
		"matchedSchemes": output.MatchedSchemes,
		"returned":       len(output.Results),
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
