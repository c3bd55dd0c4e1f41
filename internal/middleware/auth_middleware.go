package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"osa-dashboard/internal/service"
)

const (
	LocalSession   = "session"
	LocalSessionID = "session_id"
	LocalUsername  = "username"
)

// RequireAuth validates the bearer token, resolves the live session and
// stores it in the request locals. Browsers that cannot set headers (the
// websocket and the chart page) may pass the token as ?token=.
func RequireAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}

		sess, err := authService.ValidateToken(tokenString)
		if err != nil {
			msg := "Invalid or expired token"
			switch {
			case errors.Is(err, service.ErrSessionTimeout):
				msg = "Session expired due to inactivity"
			case errors.Is(err, service.ErrSessionNotFound):
				msg = "Session closed"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
		}

		c.Locals(LocalSession, sess)
		c.Locals(LocalSessionID, sess.ID.String())
		c.Locals(LocalUsername, sess.Username)

		return c.Next()
	}
}

// CurrentSession returns the session set by RequireAuth.
func CurrentSession(c *fiber.Ctx) (*service.Session, bool) {
	sess, ok := c.Locals(LocalSession).(*service.Session)
	return sess, ok && sess != nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if t := c.Query("token"); t != "" {
			return t, nil
		}
		return "", errors.New("Missing authorization token")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("Invalid authorization format. Use: Bearer <token>")
	}
	return parts[1], nil
}
