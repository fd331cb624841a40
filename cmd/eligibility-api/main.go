// cmd/eligibility-api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"yojanamitra/internal/api"
	"yojanamitra/internal/app"
	"yojanamitra/internal/common/config"
	"yojanamitra/internal/common/logger"
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

	zapLog.Info("Starting eligibility API...",
		zap.String("environment", cfg.App.Environment),
		zap.String("catalog", cfg.Catalog.Source),
		zap.String("explanations", cfg.Explanation.Provider),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine, err := app.Build(ctx, cfg, "eligibility-api", log)
	if err != nil {
		zapLog.Fatal("engine init failed", zap.Error(err))
	}
	engine.StartBackground(ctx)

	handler := api.NewHandler(engine.Aggregator, engine.Catalog.Provider, log)
	server := api.SetupRouter(handler, log, map[string]api.HealthCheck{
		"catalog": func(c *fiber.Ctx) error {
			checkCtx, done := context.WithTimeout(c.UserContext(), 3*time.Second)
			defer done()
			return engine.CheckCatalog(checkCtx)
		},
	})
	server.Get(cfg.Observability.MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	go func() {
		zapLog.Info("API server listening", zap.String("address", cfg.Server.APIAddress))
		if err := server.Listen(cfg.Server.APIAddress); err != nil {
			zapLog.Error("API server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping API server...")
	cancel()

	if err := server.ShutdownWithTimeout(30 * time.Second); err != nil {
		zapLog.Error("Error stopping API server", zap.Error(err))
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := engine.Close(shutdownCtx); err != nil {
		zapLog.Error("Error releasing engine resources", zap.Error(err))
	}

	zapLog.Info("Eligibility API stopped gracefully")
}
