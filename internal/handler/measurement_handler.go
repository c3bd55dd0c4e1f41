package handler

import (
	"github.com/gofiber/fiber/v2"

	"osa-dashboard/internal/middleware"
	"osa-dashboard/internal/model"
	"osa-dashboard/internal/service"
)

type MeasurementHandler struct {
	service service.MeasurementService
}

func NewMeasurementHandler(s service.MeasurementService) *MeasurementHandler {
	return &MeasurementHandler{service: s}
}

// GET /api/v1/measurements?store=&date_from=&date_to=&limit=
func (h *MeasurementHandler) List(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return unauthorized(c)
	}

	var filter model.KPIFilter
	if err := c.QueryParser(&filter); err != nil {
		return badRequest(c, "Invalid query")
	}

	items, err := h.service.List(sess.Context(c.UserContext()), filter, c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(model.MeasurementList{Items: items})
}
