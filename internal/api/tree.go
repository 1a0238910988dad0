package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kintree/internal/service"
	"kintree/internal/validator"
)

// currentUser reads the authenticated caller placed in locals by the
// auth middleware. Routes behind RequireAuth always have it.
func currentUser(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals("user_id").(uuid.UUID)
	return id
}

// treeParam reads the tree context placed in locals by the tree-context
// middleware.
func treeParam(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals("tree_id").(uuid.UUID)
	return id
}

type TreeHandler struct {
	trees    *service.TreeService
	validate *validator.Validator
	logger   *slog.Logger
}

func NewTreeHandler(trees *service.TreeService, validate *validator.Validator, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		trees:    trees,
		validate: validate,
		logger:   logger.With("component", "tree_handler"),
	}
}

type createTreeRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

func (h *TreeHandler) Create(c *fiber.Ctx) error {
	var req createTreeRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	tree, err := h.trees.CreateTree(c.Context(), currentUser(c), req.Name)
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusCreated, "tree created", tree)
}

func (h *TreeHandler) List(c *fiber.Ctx) error {
	trees, err := h.trees.ListMyTrees(c.Context(), currentUser(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "ok", trees)
}

func (h *TreeHandler) Get(c *fiber.Ctx) error {
	tree, err := h.trees.GetTree(c.Context(), treeParam(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "ok", tree)
}

func (h *TreeHandler) Rename(c *fiber.Ctx) error {
	var req createTreeRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	tree, err := h.trees.RenameTree(c.Context(), treeParam(c), req.Name, currentUser(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "tree renamed", tree)
}

func (h *TreeHandler) Delete(c *fiber.Ctx) error {
	if err := h.trees.DeleteTree(c.Context(), treeParam(c), currentUser(c)); err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "tree deleted", nil)
}

func (h *TreeHandler) Render(c *fiber.Ctx) error {
	rendered, err := h.trees.RenderTree(c.Context(), treeParam(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "ok", rendered)
}
