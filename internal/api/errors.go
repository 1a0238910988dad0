package api

import (
	"errors"

	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"kintree/internal/filter"
	"kintree/internal/graph"
	"kintree/internal/service"
)

// failFromError translates a service or filter error into the response
// envelope. Anything unrecognized becomes a 500 with a generic message
// so internals never leak to clients.
func failFromError(c *fiber.Ctx, err error) error {
	var validationErrs playground.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Fail(c, fiber.StatusBadRequest, "validation failed: "+validationErrs.Error())
	}

	switch {
	case errors.Is(err, filter.ErrInvalidField),
		errors.Is(err, filter.ErrInvalidOperator),
		errors.Is(err, filter.ErrInvalidValue),
		errors.Is(err, service.ErrTreeNameRequired),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidFeature),
		errors.Is(err, service.ErrInvalidMethod),
		errors.Is(err, service.ErrInvalidInviteRole),
		errors.Is(err, service.ErrMemberDeleted),
		errors.Is(err, service.ErrMemberTreeMismatch):
		return Fail(c, fiber.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidActivation):
		return Fail(c, fiber.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrEmailNotVerified),
		errors.Is(err, service.ErrAlreadyBound):
		return Fail(c, fiber.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrTreeNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrEdgeNotFound),
		errors.Is(err, service.ErrGrantNotFound),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrFundNotFound),
		errors.Is(err, service.ErrInvitationNotFound),
		errors.Is(err, graph.ErrEmptyTree):
		return Fail(c, fiber.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInvitationExpired),
		errors.Is(err, service.ErrInvitationUsed):
		return Fail(c, fiber.StatusConflict, err.Error())

	case errors.Is(err, service.ErrTooManyAttempts):
		return Fail(c, fiber.StatusTooManyRequests, err.Error())
	}

	return Fail(c, fiber.StatusInternalServerError, "internal server error")
}
