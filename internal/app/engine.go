// internal/app/engine.go
package app

import (
	"context"
	"fmt"

	"yojanamitra/internal/catalog"
	"yojanamitra/internal/common/config"
	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/common/observability"
	"yojanamitra/internal/eligibility"
	"yojanamitra/internal/explain"
)

// Engine is the wired evaluation stack shared by the API server and the
// worker manager.
type Engine struct {
	Config        *config.Config
	Observability *observability.Observability
	Catalog       *catalog.Built
	Explainer     explain.Service
	Aggregator    *eligibility.Aggregator

	logger logger.Logger
}

// Build wires the scheme catalog, the explanation service, observability and
// the aggregator from cfg.
func Build(ctx context.Context, cfg *config.Config, serviceName string, log logger.Logger) (*Engine, error) {
	built, err := catalog.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	explainer, err := explain.New(cfg, log)
	if err != nil {
		_ = built.Close()
		return nil, fmt.Errorf("init explanations: %w", err)
	}

	name := cfg.Observability.ServiceName
	if name == "" {
		name = serviceName
	}

	tracing := observability.NewTracing(observability.TracingConfig{
		ServiceName: name,
		Enabled:     cfg.Observability.TracingEnabled,
		SampleRatio: cfg.Observability.SampleRatio,
	})

	obs, err := observability.New(name)
	if err != nil {
		_ = tracing.Shutdown(ctx)
		_ = built.Close()
		return nil, fmt.Errorf("init observability: %w", err)
	}
	obs.WithTracing(tracing)

	aggregator := eligibility.NewAggregator(built.Provider, explainer, eligibility.Config{
		TopN:       cfg.Matching.TopN,
		ExplainTop: cfg.Matching.ExplainTop,
	}, log)

	return &Engine{
		Config:        cfg,
		Observability: obs,
		Catalog:       built,
		Explainer:     explainer,
		Aggregator:    aggregator,
		logger:        log,
	}, nil
}

// StartBackground warms the catalog cache and starts the scheduled refresh
// when both are configured. The refresher stops with ctx.
func (e *Engine) StartBackground(ctx context.Context) {
	if e.Catalog.Cache != nil {
		if n, err := e.Catalog.Cache.Warm(ctx); err != nil {
			e.logger.Warn("catalog cache warm-up failed", map[string]interface{}{"error": err.Error()})
		} else {
			e.logger.Info("catalog cache warmed", map[string]interface{}{"schemes": n})
		}
	}

	started, err := e.Catalog.StartRefresher(ctx, e.Config.Catalog.RefreshSchedule, e.logger)
	if err != nil {
		e.logger.Error("catalog refresher not started", map[string]interface{}{"error": err.Error()})
		return
	}
	if started {
		e.logger.Info("catalog refresher started", map[string]interface{}{
			"schedule": e.Config.Catalog.RefreshSchedule,
		})
	}
}

// CheckCatalog reports whether the catalog can currently be listed.
func (e *Engine) CheckCatalog(ctx context.Context) error {
	_, err := e.Catalog.Provider.List(ctx)
	return err
}

func (e *Engine) Close(ctx context.Context) error {
	var firstErr error
	if err := e.Catalog.Close(); err != nil {
		firstErr = err
	}
	if err := e.Observability.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
