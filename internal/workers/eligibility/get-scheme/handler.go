// internal/workers/eligibility/get-scheme/handler.go
package getscheme

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"yojanamitra/internal/catalog"
	"yojanamitra/internal/common/errors"
	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "get-scheme"

type Handler struct {
	config       *Config
	catalog      catalog.Provider
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(cfg *Config, provider catalog.Provider, log logger.Logger) (*Handler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if provider == nil {
		return nil, fmt.Errorf("%s: catalog is required", TaskType)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       cfg,
		catalog:      provider,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewSchemeIDRequiredError()
	}

	if input.All || strings.TrimSpace(input.Query) != "" {
		schemes, err := catalog.Search(ctx, h.catalog, input.Query)
		if err != nil {
			return nil, catalog.ToStandardError(err, "")
		}
		return &Output{Schemes: schemes, Count: len(schemes)}, nil
	}

	id := strings.TrimSpace(input.SchemeID)
	if id == "" {
		return nil, errors.NewSchemeIDRequiredError()
	}

	scheme, err := h.catalog.Get(ctx, id)
	if err != nil {
		return nil, catalog.ToStandardError(err, id)
	}
	return &Output{Scheme: scheme, Count: 1}, nil
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
