// internal/api/router.go
package api

import (
	"time"

	"yojanamitra/internal/common/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(c *fiber.Ctx) error

func SetupRouter(handler *Handler, log logger.Logger, checks map[string]HealthCheck) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "yojanamitra",
		ErrorHandler: errorHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(accessLog(log))

	app.Get("/health", health(checks))

	api := app.Group("/api")
	api.Post("/eligibility", handler.Evaluate)
	api.Post("/match", handler.Match)
	api.Get("/schemes", handler.ListSchemes)
	api.Get("/schemes/:id", handler.GetScheme)

	return app
}

func health(checks map[string]HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := fiber.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(c); err != nil {
				results[name] = err.Error()
				status = fiber.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		state := "healthy"
		if status != fiber.StatusOK {
			state = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{
			"status": state,
			"checks": results,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func accessLog(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("request", map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  requestID(c),
		})
		return err
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return ""
}
