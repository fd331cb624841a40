// internal/api/errors.go
package api

import (
	"yojanamitra/internal/common/errors"

	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeProfileRequired, errors.ErrCodeSchemeIDRequired, errors.ErrCodeInvalidInput:
		return fiber.StatusBadRequest
	case errors.ErrCodeSchemeNotFound:
		return fiber.StatusNotFound
	case errors.ErrCodeCatalogEntryInvalid:
		return fiber.StatusUnprocessableEntity
	case errors.ErrCodeCatalogUnavailable,
		errors.ErrCodeDatabaseConnection,
		errors.ErrCodeQueryExecutionFailed,
		errors.ErrCodeSearchQueryFailed,
		errors.ErrCodeCacheUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, stdErr *errors.StandardError) error {
	status := statusFor(stdErr.Code)
	body := errorResponse{Error: stdErr.Message, Code: string(stdErr.Code)}
	if status < fiber.StatusInternalServerError {
		body.Details = stdErr.Details
	}
	return c.Status(status).JSON(body)
}

// errorHandler catches errors returned from handlers and middleware that
// did not write their own response.
func errorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(errorResponse{Error: e.Message, Code: "HTTP_ERROR"})
	}
	if stdErr, ok := errors.AsStandardError(err); ok {
		return writeError(c, stdErr)
	}
	return writeError(c, errors.NewInternalError(err))
}
