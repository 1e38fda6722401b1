package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/LikkleOra/studio/internal/service"
	"github.com/LikkleOra/studio/internal/tmdb"
	"github.com/LikkleOra/studio/internal/validation"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error          string            `json:"error"`
	UpstreamStatus int               `json:"upstream_status,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
}

// writeError maps service and catalog errors onto HTTP responses.
// invalidMsg is shown for input errors.
func writeError(c fiber.Ctx, err error, invalidMsg string) error {
	var (
		upstream *tmdb.UpstreamError
		verr     *validation.Error
	)

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		resp := ErrorResponse{Error: invalidMsg}
		if errors.As(err, &verr) {
			resp.Fields = verr.Fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	case errors.Is(err, tmdb.ErrInvalidMediaType), errors.Is(err, tmdb.ErrInvalidID):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: invalidMsg})
	case errors.Is(err, tmdb.ErrCircuitOpen):
		slog.Warn("catalog unavailable", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "catalog temporarily unavailable, please try again shortly",
		})
	case errors.As(err, &upstream):
		slog.Error("catalog request failed", "path", c.Path(), "op", upstream.Op, "status", upstream.StatusCode, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error:          upstream.Message,
			UpstreamStatus: upstream.StatusCode,
		})
	case errors.Is(err, context.DeadlineExceeded):
		slog.Error("catalog request timed out", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusGatewayTimeout).JSON(ErrorResponse{Error: "catalog request timed out"})
	default:
		slog.Error("request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
	}
}
