// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"strings"

	"yojanamitra/internal/catalog"
	"yojanamitra/internal/common/errors"
	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/common/validation"
	"yojanamitra/internal/eligibility"
	"yojanamitra/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Engine is the eligibility aggregator as seen by the HTTP layer.
type Engine interface {
	Evaluate(ctx context.Context, profile *models.Profile, schemeID string) (*models.EvaluationResult, error)
	Match(ctx context.Context, profile *models.Profile) (*models.MatchResult, error)
}

type Handler struct {
	engine  Engine
	catalog catalog.Provider
	logger  logger.Logger
}

func NewHandler(engine Engine, provider catalog.Provider, log logger.Logger) *Handler {
	return &Handler{engine: engine, catalog: provider, logger: log}
}

type evaluateRequest struct {
	Profile  json.RawMessage `json:"profile"`
	SchemeID string          `json:"schemeId"`
}

type matchRequest struct {
	Profile json.RawMessage `json:"profile"`
}

type evaluateResponse struct {
	Success bool                      `json:"success"`
	Result  models.EligibilityVerdict `json:"result"`
	Scheme  models.SchemeRef          `json:"scheme"`
}

// Evaluate handles POST /api/eligibility.
func (h *Handler) Evaluate(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errors.NewInvalidInputError("request body must be a JSON object"))
	}

	profile, err := validation.DecodeProfile(req.Profile)
	if err != nil {
		return writeError(c, errors.NewInvalidInputError(err.Error()))
	}

	result, err := h.engine.Evaluate(c.UserContext(), profile, req.SchemeID)
	if err != nil {
		stdErr := eligibility.ToStandardError(err, req.SchemeID)
		if !eligibility.IsInputError(err) {
			h.logError(c, stdErr)
		}
		return writeError(c, stdErr)
	}

	return c.JSON(evaluateResponse{Success: true, Result: result.Result, Scheme: result.Scheme})
}

// Match handles POST /api/match.
func (h *Handler) Match(c *fiber.Ctx) error {
	var req matchRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errors.NewInvalidInputError("request body must be a JSON object"))
	}

	profile, err := validation.DecodeProfile(req.Profile)
	if err != nil {
		return writeError(c, errors.NewInvalidInputError(err.Error()))
	}

	result, err := h.engine.Match(c.UserContext(), profile)
	if err != nil {
		stdErr := eligibility.ToStandardError(err, "")
		if !eligibility.IsInputError(err) {
			h.logError(c, stdErr)
		}
		return writeError(c, stdErr)
	}
	if result.Results == nil {
		result.Results = []models.MatchEntry{}
	}
	return c.JSON(result)
}

// ListSchemes handles GET /api/schemes with an optional q filter.
func (h *Handler) ListSchemes(c *fiber.Ctx) error {
	schemes, err := catalog.Search(c.UserContext(), h.catalog, c.Query("q"))
	if err != nil {
		stdErr := catalog.ToStandardError(err, "")
		h.logError(c, stdErr)
		return writeError(c, stdErr)
	}
	if schemes == nil {
		schemes = []models.Scheme{}
	}
	return c.JSON(fiber.Map{"success": true, "schemes": schemes, "count": len(schemes)})
}

// GetScheme handles GET /api/schemes/:id.
func (h *Handler) GetScheme(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return writeError(c, errors.NewSchemeIDRequiredError())
	}

	scheme, err := h.catalog.Get(c.UserContext(), id)
	if err != nil {
		stdErr := catalog.ToStandardError(err, id)
		if stdErr.Code != errors.ErrCodeSchemeNotFound {
			h.logError(c, stdErr)
		}
		return writeError(c, stdErr)
	}
	return c.JSON(fiber.Map{"success": true, "scheme": scheme})
}

func (h *Handler) logError(c *fiber.Ctx, stdErr *errors.StandardError) {
	h.logger.Error("request failed", map[string]interface{}{
		"path":      c.Path(),
		"requestId": requestID(c),
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	})
}
