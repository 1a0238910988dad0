package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kintree/internal/model"
)

func auditEntries(repo *memRepo) []model.AuditLog {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := make([]model.AuditLog, len(repo.auditLogs))
	copy(out, repo.auditLogs)
	return out
}

func TestAuditLogRecordsClientIP(t *testing.T) {
	repo := newMemRepo()
	audit := NewAuditService(repo)

	userID := uuid.New()
	ctx := context.WithValue(context.Background(), ClientIPKey{}, "203.0.113.9")
	audit.Log(ctx, "tree", uuid.New(), model.AuditActionCreate,
		AuditContext{UserID: &userID}, nil)

	require.Eventually(t, func() bool {
		return len(auditEntries(repo)) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "203.0.113.9", auditEntries(repo)[0].IPAddress)
}

func TestAuditLogWithoutClientIP(t *testing.T) {
	repo := newMemRepo()
	audit := NewAuditService(repo)

	userID := uuid.New()
	audit.Log(context.Background(), "tree", uuid.New(), model.AuditActionCreate,
		AuditContext{UserID: &userID}, nil)

	require.Eventually(t, func() bool {
		return len(auditEntries(repo)) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, auditEntries(repo)[0].IPAddress)
}
