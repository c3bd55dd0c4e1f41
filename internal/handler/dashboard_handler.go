package handler

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"osa-dashboard/internal/charting"
	"osa-dashboard/internal/middleware"
	"osa-dashboard/internal/model"
	"osa-dashboard/internal/series"
	"osa-dashboard/internal/service"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// OptionsRequest is a partial update of the visual options. Absent fields
// keep their current value.
type OptionsRequest struct {
	GroupBy           *string  `json:"group_by"`
	ShowMovingAverage *bool    `json:"show_moving_average"`
	Target            *float64 `json:"target"`
}

// GET /api/v1/dashboard
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(sess.Dashboard.View())
}

// Refresh refetches KPIs with the given filters and rebuilds the charts.
// Filters come from the JSON body or, when there is none, the query string.
// POST /api/v1/dashboard/refresh
func (h *DashboardHandler) Refresh(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return unauthorized(c)
	}

	var filter model.KPIFilter
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&filter); err != nil {
			return badRequest(c, "Invalid JSON")
		}
	} else if err := c.QueryParser(&filter); err != nil {
		return badRequest(c, "Invalid query")
	}

	if err := sess.Dashboard.Refresh(sess.Context(c.UserContext()), filter); err != nil {
		return respondError(c, err)
	}
	return c.JSON(sess.Dashboard.View())
}

// PUT /api/v1/dashboard/options
func (h *DashboardHandler) ApplyOptions(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return unauthorized(c)
	}

	var req OptionsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	err := sess.Dashboard.UpdateVisualOptions(func(opts *service.VisualOptions) {
		if req.GroupBy != nil {
			opts.GroupBy = series.GroupMode(*req.GroupBy)
		}
		if req.ShowMovingAverage != nil {
			opts.ShowMovingAverage = *req.ShowMovingAverage
		}
		if req.Target != nil {
			opts.Target = *req.Target
		}
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sess.Dashboard.View())
}

// GET /api/v1/dashboard/export.csv
func (h *DashboardHandler) ExportCSV(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return unauthorized(c)
	}

	filename, body, err := sess.Dashboard.ExportCSV()
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.SendString(body)
}

// Page renders the current charts as a standalone HTML page.
// GET /api/v1/dashboard/page
func (h *DashboardHandler) Page(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return unauthorized(c)
	}

	view := sess.Dashboard.View()
	if view.Status != service.StatusReady {
		return respondError(c, service.ErrNoSnapshot)
	}

	var buf bytes.Buffer
	if err := charting.RenderPage(&buf, "OSA Dashboard", view.Line, view.Pie); err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
