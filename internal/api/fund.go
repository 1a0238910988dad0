package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kintree/internal/service"
	"kintree/internal/validator"
)

type FundHandler struct {
	funds    *service.FundService
	validate *validator.Validator
	logger   *slog.Logger
}

func NewFundHandler(funds *service.FundService, validate *validator.Validator, logger *slog.Logger) *FundHandler {
	return &FundHandler{
		funds:    funds,
		validate: validate,
		logger:   logger.With("component", "fund_handler"),
	}
}

func (h *FundHandler) Create(c *fiber.Ctx) error {
	var req service.FundRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	fund, err := h.funds.CreateFund(c.Context(), treeParam(c), req, currentUser(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusCreated, "fund created", fund)
}

func (h *FundHandler) Update(c *fiber.Ctx) error {
	fundID, err := uuid.Parse(c.Params("fundId"))
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, "invalid fund id")
	}

	var req service.FundRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	fund, err := h.funds.UpdateFund(c.Context(), treeParam(c), fundID, req, currentUser(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "fund updated", fund)
}

func (h *FundHandler) Delete(c *fiber.Ctx) error {
	fundID, err := uuid.Parse(c.Params("fundId"))
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, "invalid fund id")
	}

	if err := h.funds.DeleteFund(c.Context(), treeParam(c), fundID, currentUser(c)); err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "fund deleted", nil)
}

func (h *FundHandler) List(c *fiber.Ctx) error {
	query, err := parseListQuery(c)
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, err.Error())
	}

	funds, total, err := h.funds.ListFunds(c.Context(), treeParam(c), query)
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "ok", PagedData{Items: funds, Total: total})
}
