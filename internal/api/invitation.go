package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"kintree/internal/service"
	"kintree/internal/validator"
)

type InvitationHandler struct {
	invitations *service.InvitationService
	validate    *validator.Validator
	logger      *slog.Logger
}

func NewInvitationHandler(invitations *service.InvitationService, validate *validator.Validator, logger *slog.Logger) *InvitationHandler {
	return &InvitationHandler{
		invitations: invitations,
		validate:    validate,
		logger:      logger.With("component", "invitation_handler"),
	}
}

func (h *InvitationHandler) Invite(c *fiber.Ctx) error {
	var req service.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	invitation, err := h.invitations.Invite(c.Context(), treeParam(c), req, currentUser(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusCreated, "invitation sent", invitation)
}

type acceptInvitationRequest struct {
	Code string `json:"code" validate:"required"`
}

func (h *InvitationHandler) Accept(c *fiber.Ctx) error {
	var req acceptInvitationRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	binding, err := h.invitations.Accept(c.Context(), req.Code, currentUser(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "invitation accepted", binding)
}

func (h *InvitationHandler) List(c *fiber.Ctx) error {
	invitations, err := h.invitations.ListInvitations(c.Context(), treeParam(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "ok", invitations)
}
