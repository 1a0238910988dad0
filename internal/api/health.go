package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"kintree/internal/repository"
)

type HealthHandler struct {
	repo  repository.Repository
	redis *redis.Client
}

func NewHealthHandler(repo repository.Repository, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		repo:  repo,
		redis: redisClient,
	}
}

func (h *HealthHandler) Healthy(c *fiber.Ctx) error {
	if err := h.repo.HealthCheck(c.Context()); err != nil {
		slog.Error("database health check failed", "error", err)
		return Fail(c, fiber.StatusServiceUnavailable, "database unavailable")
	}

	if err := h.redis.Ping(c.Context()).Err(); err != nil {
		slog.Error("redis health check failed", "error", err)
		return Fail(c, fiber.StatusServiceUnavailable, "cache unavailable")
	}

	return Success(c, fiber.StatusOK, "healthy", nil)
}
