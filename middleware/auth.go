package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminOnly authorizes requests carrying the admin console's bearer secret
func AdminOnly(adminSecret string) fiber.Handler {
	return requireBearer(adminSecret)
}

// CronOrAdmin authorizes either the external scheduler's secret or the admin
// secret, for the dispatcher trigger endpoints.
func CronOrAdmin(cronSecret, adminSecret string) fiber.Handler {
	return requireBearer(cronSecret, adminSecret)
}

func requireBearer(secrets ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization required",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization format",
			})
		}

		for _, secret := range secrets {
			if secret != "" && subtle.ConstantTimeCompare([]byte(tokenParts[1]), []byte(secret)) == 1 {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}
}
