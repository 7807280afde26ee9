// Package middleware holds the fiber middleware of the storefront API.
package middleware

import (
	"os"
	"strings"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const (
	userKey = "user"

	// SessionCookie is read when no Authorization header is sent.
	SessionCookie = "session_token"
)

// sessionToken extracts the opaque token from "Authorization: Bearer <token>" or
// the session cookie.
func sessionToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Cookies(SessionCookie)
}

// OptionalSession resolves the caller when a session is present and continues
// anonymously otherwise.
func OptionalSession(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user := sessions.ResolveUser(c.UserContext(), sessionToken(c)); user != nil {
			c.Locals(userKey, user)
		}
		return c.Next()
	}
}

// SessionRequired rejects requests without a resolvable session.
func SessionRequired(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		user := sessions.ResolveUser(c.UserContext(), token)
		if user == nil {
			logger.Debug().Str("path", c.Path()).Msg("Rejected unknown session")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired session",
			})
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// AdminOnly must run after SessionRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CurrentUser(c).IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the user resolved for this request, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
