package handler

import "github.com/gofiber/fiber/v2"

type HealthHandler struct {
	upstream string
	sessions func() int
}

func NewHealthHandler(upstream string, sessions func() int) *HealthHandler {
	return &HealthHandler{upstream: upstream, sessions: sessions}
}

// GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := fiber.Map{"status": "ok", "upstream": h.upstream}
	if h.sessions != nil {
		resp["sessions"] = h.sessions()
	}
	return c.JSON(resp)
}
