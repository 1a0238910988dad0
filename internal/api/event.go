package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kintree/internal/service"
	"kintree/internal/validator"
)

type EventHandler struct {
	events   *service.EventService
	validate *validator.Validator
	logger   *slog.Logger
}

func NewEventHandler(events *service.EventService, validate *validator.Validator, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		events:   events,
		validate: validate,
		logger:   logger.With("component", "event_handler"),
	}
}

func (h *EventHandler) Create(c *fiber.Ctx) error {
	var req service.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	event, err := h.events.CreateEvent(c.Context(), treeParam(c), req, currentUser(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusCreated, "event created", event)
}

func (h *EventHandler) Update(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("eventId"))
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, "invalid event id")
	}

	var req service.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	event, err := h.events.UpdateEvent(c.Context(), treeParam(c), eventID, req, currentUser(c))
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "event updated", event)
}

func (h *EventHandler) Delete(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("eventId"))
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, "invalid event id")
	}

	if err := h.events.DeleteEvent(c.Context(), treeParam(c), eventID, currentUser(c)); err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "event deleted", nil)
}

func (h *EventHandler) List(c *fiber.Ctx) error {
	query, err := parseListQuery(c)
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, err.Error())
	}

	events, total, err := h.events.ListEvents(c.Context(), treeParam(c), query)
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "ok", PagedData{Items: events, Total: total})
}
