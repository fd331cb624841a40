// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"yojanamitra/internal/common/config"
	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/common/metrics"
	"yojanamitra/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler completes or fails the job itself and returns the error that
// ended it, if any, for metrics.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// Instrument wraps a handler with the job counters, duration histograms and
// the active-jobs gauge.
func Instrument(taskType string, handler JobHandler, obs *observability.Observability, log logger.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		start := time.Now()
		err := handler.Handle(client, job)
		elapsed := time.Since(start)

		status := "completed"
		if err != nil {
			status = "failed"
			log.Error("handler returned error", map[string]interface{}{
				"taskType": taskType,
				"jobKey":   job.Key,
				"error":    err.Error(),
			})
		}

		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		obs.RecordJobProcessed(context.Background(), taskType, status)
		obs.RecordJobDuration(context.Background(), taskType, elapsed, status)
	}
}

// Pool tracks the job workers opened on one Zeebe client.
type Pool struct {
	client  zbc.Client
	obs     *observability.Observability
	logger  logger.Logger
	workers map[string]worker.JobWorker
}

func NewPool(client zbc.Client, obs *observability.Observability, log logger.Logger) *Pool {
	return &Pool{
		client:  client,
		obs:     obs,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for taskType unless it is disabled.
func (p *Pool) Start(taskType string, wcfg config.WorkerConfig, handler JobHandler) bool {
	if !wcfg.Enabled {
		p.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	p.workers[taskType] = p.client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, p.obs, p.logger)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	p.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

func (p *Pool) TaskTypes() []string {
	out := make([]string, 0, len(p.workers))
	for t := range p.workers {
		out = append(out, t)
	}
	return out
}

// Stop closes every job worker and waits for in-flight handlers.
func (p *Pool) Stop() {
	for taskType, w := range p.workers {
		p.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		w.Close()
		w.AwaitClose()
	}
}
