package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"

	"kintree/internal/service"
	"kintree/internal/validator"
)

type AuthHandler struct {
	auth     *service.AuthService
	store    *session.Store
	validate *validator.Validator
	logger   *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, store *session.Store, validate *validator.Validator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		store:    store,
		validate: validate,
		logger:   logger.With("component", "auth_handler"),
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	user, err := h.auth.Register(c.Context(), req)
	if err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusCreated, "registered, check your email for the activation code", user)
}

type verifyEmailRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Code   string    `json:"code" validate:"required"`
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	if err := h.auth.VerifyEmail(c.Context(), req.UserID, req.Code); err != nil {
		return failFromError(c, err)
	}

	return Success(c, fiber.StatusOK, "email verified", nil)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return failFromError(c, err)
	}

	user, err := h.auth.Login(c.Context(), req)
	if err != nil {
		return failFromError(c, err)
	}

	sess, err := h.store.Get(c)
	if err != nil {
		h.logger.Error("get session", "error", err)
		return Fail(c, fiber.StatusInternalServerError, "failed to create session")
	}
	sess.Set("user_id", user.ID.String())
	if err := sess.Save(); err != nil {
		h.logger.Error("save session", "error", err)
		return Fail(c, fiber.StatusInternalServerError, "failed to save session")
	}

	h.logger.Info("user logged in", "user_id", user.ID, "ip", c.IP())

	return Success(c, fiber.StatusOK, "logged in", user)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return Fail(c, fiber.StatusInternalServerError, "session error")
	}

	sess.Delete("user_id")
	if err := sess.Save(); err != nil {
		return Fail(c, fiber.StatusInternalServerError, "failed to save session")
	}

	return Success(c, fiber.StatusOK, "logged out", nil)
}
