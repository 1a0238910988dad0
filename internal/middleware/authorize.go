package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kintree/internal/access"
	"kintree/internal/api"
)

// TreeContext parses the :treeId route parameter into
// c.Locals("tree_id"). A malformed id is rejected as a bad request; the
// gate separately denies a nil tree id for routes that skip this
// middleware.
func TreeContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		treeID, err := uuid.Parse(c.Params("treeId"))
		if err != nil {
			return api.Fail(c, fiber.StatusBadRequest, "invalid tree id")
		}

		c.Locals("tree_id", treeID)
		return c.Next()
	}
}

// TreeID returns the tree context set by TreeContext.
func TreeID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals("tree_id").(uuid.UUID)
	return id, ok
}

// Authorize evaluates the route's declared requirement against the
// caller. On allow the caller's role and member id are stored in locals
// for the handler; any deny is translated to the matching status code.
func Authorize(gate *access.Gate, req access.Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := access.Identity{}
		if userID, ok := UserID(c); ok {
			caller = access.Identity{UserID: userID, Authenticated: true}
		}

		treeID, _ := TreeID(c)

		decision, err := gate.Decide(c.Context(), caller, treeID, req)
		if err != nil {
			return api.Fail(c, fiber.StatusInternalServerError, "authorization check failed")
		}
		if !decision.Allowed {
			return api.Fail(c, denyStatus(decision.Reason), decision.Reason.Error())
		}

		c.Locals("role", decision.Role)
		c.Locals("member_id", decision.MemberID)
		return c.Next()
	}
}

func denyStatus(reason error) int {
	switch {
	case errors.Is(reason, access.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(reason, access.ErrInvalidTreeContext):
		return fiber.StatusBadRequest
	case errors.Is(reason, access.ErrNotATreeMember),
		errors.Is(reason, access.ErrOwnerOnly),
		errors.Is(reason, access.ErrPermissionDenied):
		return fiber.StatusForbidden
	default:
		return fiber.StatusForbidden
	}
}
