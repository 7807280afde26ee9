package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// APIKeyHeader carries the shared secret of internal callers.
const APIKeyHeader = "X-API-KEY"

// ValidateAPIKey guards internal routes with a shared key. An empty key disables
// the routes entirely.
func ValidateAPIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get(APIKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or missing API key",
			})
		}
		return c.Next()
	}
}
