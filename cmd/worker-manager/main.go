// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"yojanamitra/internal/app"
	"yojanamitra/internal/common/camunda"
	"yojanamitra/internal/common/config"
	"yojanamitra/internal/common/logger"

	ee "yojanamitra/internal/workers/eligibility/evaluate-eligibility"
	gs "yojanamitra/internal/workers/eligibility/get-scheme"
	ms "yojanamitra/internal/workers/eligibility/match-schemes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine, err := app.Build(ctx, cfg, "worker-manager", log)
	if err != nil {
		zapLog.Fatal("engine init failed", zap.Error(err))
	}
	engine.StartBackground(ctx)

	// --- Zeebe client with retry ---
	client, err := camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda), 10, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	pool := camunda.NewPool(client.Zeebe(), engine.Observability, log)

	// --- evaluate-eligibility ---
	{
		handler, err := ee.NewHandler(ee.ConfigFrom(cfg), engine.Aggregator, log)
		if err != nil {
			zapLog.Fatal("failed to create evaluate-eligibility handler", zap.Error(err))
		}
		pool.Start(ee.TaskType, config.GetWorkerConfig(cfg, ee.TaskType), handler)
	}

	// --- match-schemes ---
	{
		handler, err := ms.NewHandler(ms.ConfigFrom(cfg), engine.Aggregator, log)
		if err != nil {
			zapLog.Fatal("failed to create match-schemes handler", zap.Error(err))
		}
		pool.Start(ms.TaskType, config.GetWorkerConfig(cfg, ms.TaskType), handler)
	}

	// --- get-scheme ---
	{
		handler, err := gs.NewHandler(gs.ConfigFrom(cfg), engine.Catalog.Provider, log)
		if err != nil {
			zapLog.Fatal("failed to create get-scheme handler", zap.Error(err))
		}
		pool.Start(gs.TaskType, config.GetWorkerConfig(cfg, gs.TaskType), handler)
	}
	zapLog.Info("Workers registered", zap.Strings("taskTypes", pool.TaskTypes()))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, done := context.WithTimeout(r.Context(), 5*time.Second)
		defer done()

		checks := map[string]string{"status": "ready"}
		status := http.StatusOK
		if err := client.HealthCheck(checkCtx); err != nil {
			checks["zeebe"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := engine.CheckCatalog(checkCtx); err != nil {
			checks["catalog"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if status != http.StatusOK {
			checks["status"] = "not ready"
		}
		writeStatus(w, status, checks)
	})
	mux.Handle(cfg.Observability.MetricsPath, promhttp.Handler())

	healthServer := &http.Server{
		Addr:              cfg.Server.HealthAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.HealthAddress))
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 30*time.Second)
	defer done()

	pool.Stop()
	if err := client.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := engine.Close(shutdownCtx); err != nil {
		zapLog.Error("Error releasing engine resources", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	body["time"] = time.Now().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
