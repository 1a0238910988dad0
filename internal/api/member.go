package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kintree/internal/service"
	"kintree/internal/validator"
)

type MemberHandler struct {
	members  *service.MemberService
	validate *validator.Validator
	logger   *slog.Logger
}

func NewMemberHandler(members *service.MemberService, validate *validator.Validator, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{
		members:  members,
		validate: validate,
		logger:   logger.With("component", "member_handler"),
	}
}

func (h *MemberHandler) Add(c *fiber.Ctx) error {
	var req service.AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	member, err := h.members.AddMember(c.Context(), treeParam(c), req, currentUser(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusCreated, "member added", member)
}

func (h *MemberHandler) Update(c *fiber.Ctx) error {
	memberID, err := uuid.Parse(c.Params("memberId"))
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, "invalid member id")
	}

	var req service.UpdateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	member, err := h.members.UpdateMember(c.Context(), treeParam(c), memberID, req, currentUser(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "member updated", member)
}

func (h *MemberHandler) Remove(c *fiber.Ctx) error {
	memberID, err := uuid.Parse(c.Params("memberId"))
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, "invalid member id")
	}

	if err := h.members.RemoveMember(c.Context(), treeParam(c), memberID, currentUser(c)); err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "member removed", nil)
}

func (h *MemberHandler) Get(c *fiber.Ctx) error {
	memberID, err := uuid.Parse(c.Params("memberId"))
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, "invalid member id")
	}

	member, err := h.members.GetMember(c.Context(), treeParam(c), memberID)
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "ok", member)
}

func (h *MemberHandler) List(c *fiber.Ctx) error {
	query, err := parseListQuery(c)
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, err.Error())
	}

	members, total, err := h.members.ListMembers(c.Context(), treeParam(c), query)
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "ok", PagedData{Items: members, Total: total})
}

func (h *MemberHandler) AddEdge(c *fiber.Ctx) error {
	var req service.AddEdgeRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	edge, err := h.members.AddEdge(c.Context(), treeParam(c), req, currentUser(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusCreated, "edge added", edge)
}

func (h *MemberHandler) RemoveEdge(c *fiber.Ctx) error {
	edgeID, err := uuid.Parse(c.Params("edgeId"))
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, "invalid edge id")
	}

	if err := h.members.RemoveEdge(c.Context(), treeParam(c), edgeID, currentUser(c)); err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "edge removed", nil)
}
