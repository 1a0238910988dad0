package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kintree/internal/model"
	"kintree/internal/repository"
)

// AuditService records who did what to which entity. Writes are
// fire-and-forget so they never slow down the request path.
type AuditService struct {
	repo repository.Repository
}

func NewAuditService(repo repository.Repository) *AuditService {
	return &AuditService{repo: repo}
}

// AuditContext carries the request facts worth keeping with an entry.
type AuditContext struct {
	UserID    *uuid.UUID
	TreeID    *uuid.UUID
	IPAddress string
}

// ClientIPKey is the context key under which the HTTP layer stores the
// caller's address for the audit trail.
type ClientIPKey struct{}

func (s *AuditService) Log(ctx context.Context, entityType string, entityID uuid.UUID, action model.AuditAction, auditCtx AuditContext, details map[string]any) {
	if auditCtx.IPAddress == "" {
		if ip, ok := ctx.Value(ClientIPKey{}).(string); ok {
			auditCtx.IPAddress = ip
		}
	}

	entry := model.AuditLog{
		ID:         uuid.New(),
		UserID:     auditCtx.UserID,
		TreeID:     auditCtx.TreeID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
		IPAddress:  auditCtx.IPAddress,
		CreatedAt:  time.Now(),
	}

	go func() {
		if err := s.repo.CreateAuditLog(context.Background(), entry); err != nil {
			slog.Error("failed to write audit log", "error", err, "entity_type", entityType, "action", action)
		}
	}()
}
