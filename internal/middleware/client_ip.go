package middleware

import (
	"github.com/gofiber/fiber/v2"

	"kintree/internal/service"
)

// ClientIP stashes the caller's address in the request context so the
// audit trail can record where a mutation came from.
func ClientIP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(service.ClientIPKey{}, c.IP())
		return c.Next()
	}
}
