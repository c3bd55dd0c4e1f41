package handler

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"osa-dashboard/internal/middleware"
	"osa-dashboard/internal/ws"
)

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// RequireUpgrade rejects plain HTTP requests on the websocket route.
func (h *WSHandler) RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.SendStatus(fiber.StatusUpgradeRequired)
}

// Stream subscribes the connection to its session's chart events.
// GET /api/v1/ws?token=
func (h *WSHandler) Stream() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		topic, _ := c.Locals(middleware.LocalSessionID).(string)
		if topic == "" {
			_ = c.Close()
			return
		}

		sub := ws.Subscription{Topic: topic, Conn: c}
		if !h.hub.Subscribe(sub) {
			_ = c.Close()
			return
		}
		defer h.hub.Unsubscribe(sub)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
