package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kintree/internal/service"
	"kintree/internal/validator"
)

type GrantHandler struct {
	grants   *service.GrantService
	validate *validator.Validator
	logger   *slog.Logger
}

func NewGrantHandler(grants *service.GrantService, validate *validator.Validator, logger *slog.Logger) *GrantHandler {
	return &GrantHandler{
		grants:   grants,
		validate: validate,
		logger:   logger.With("component", "grant_handler"),
	}
}

func (h *GrantHandler) Set(c *fiber.Ctx) error {
	var req service.SetGrantRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	grant, err := h.grants.SetGrant(c.Context(), treeParam(c), req, currentUser(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "grant set", grant)
}

func (h *GrantHandler) Revoke(c *fiber.Ctx) error {
	grantID, err := uuid.Parse(c.Params("grantId"))
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, "invalid grant id")
	}

	if err := h.grants.RevokeGrant(c.Context(), treeParam(c), grantID, currentUser(c)); err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "grant revoked", nil)
}

func (h *GrantHandler) List(c *fiber.Ctx) error {
	query, err := parseListQuery(c)
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, err.Error())
	}

	grants, total, err := h.grants.ListGrants(c.Context(), treeParam(c), query)
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "ok", PagedData{Items: grants, Total: total})
}
