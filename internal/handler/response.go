package handler

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"osa-dashboard/internal/series"
	"osa-dashboard/internal/service"
	"osa-dashboard/pkg/jwt"
	"osa-dashboard/pkg/validator"
)

type ErrorResponse struct {
	Error   string                     `json:"error"`
	Message string                     `json:"message,omitempty"`
	Fields  []*validator.ErrorResponse `json:"fields,omitempty"`
}

// respondError maps service errors to a status and a JSON body.
func respondError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(http.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:   "validation_failed",
			Message: verr.Error(),
			Fields:  verr.Fields,
		})
	case errors.Is(err, series.ErrInvalidMode):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_option", Message: err.Error()})
	case errors.Is(err, service.ErrAuthentication):
		return c.Status(http.StatusUnauthorized).JSON(ErrorResponse{Error: "authentication_failed", Message: err.Error()})
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionTimeout),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken):
		return c.Status(http.StatusUnauthorized).JSON(ErrorResponse{Error: "unauthorized", Message: err.Error()})
	case errors.Is(err, service.ErrStoreNotFound):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, service.ErrNoSnapshot):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Error: "no_data", Message: err.Error()})
	case errors.Is(err, service.ErrSuperseded):
		return c.Status(http.StatusConflict).JSON(ErrorResponse{Error: "superseded", Message: err.Error()})
	case errors.Is(err, service.ErrImport):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "import_failed", Message: err.Error()})
	case errors.Is(err, service.ErrFetch):
		return c.Status(http.StatusBadGateway).JSON(ErrorResponse{Error: "upstream_error", Message: err.Error()})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: "internal_server_error"})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "bad_request", Message: msg})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
}
