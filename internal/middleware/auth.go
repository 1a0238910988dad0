package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"

	"kintree/internal/api"
)

// RequireAuth resolves the caller from the session store and puts the
// user id in c.Locals("user_id"). Requests without a valid session are
// rejected before any handler runs.
func RequireAuth(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return api.Fail(c, fiber.StatusInternalServerError, "session error")
		}

		raw, ok := sess.Get("user_id").(string)
		if !ok || raw == "" {
			return api.Fail(c, fiber.StatusUnauthorized, "authentication required")
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			return api.Fail(c, fiber.StatusUnauthorized, "authentication required")
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// UserID returns the authenticated caller set by RequireAuth.
func UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals("user_id").(uuid.UUID)
	return id, ok
}
