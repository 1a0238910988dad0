package model

import (
	"time"

	"github.com/google/uuid"
)

// Invitation asks an email address to join a tree with a given role.
// Single use, expires.
type Invitation struct {
	ID        uuid.UUID  `json:"id"`
	TreeID    uuid.UUID  `json:"tree_id"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Code      string     `json:"-"`
	InvitedBy uuid.UUID  `json:"invited_by"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	UsedBy    *uuid.UUID `json:"used_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

func (i *Invitation) IsUsed() bool {
	return i.UsedAt != nil
}

func (i *Invitation) IsValid() bool {
	return !i.IsExpired() && !i.IsUsed()
}

// Event is a tree-scoped calendar entry, gated by FeatureEvent.
type Event struct {
	ID          uuid.UUID `json:"id"`
	TreeID      uuid.UUID `json:"tree_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	CreatedBy   uuid.UUID `json:"created_by"`
	Deleted     bool      `json:"deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Fund is a tree-scoped shared money pot, gated by FeatureFund. Amounts
// are stored in minor units.
type Fund struct {
	ID        uuid.UUID `json:"id"`
	TreeID    uuid.UUID `json:"tree_id"`
	Name      string    `json:"name"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedBy uuid.UUID `json:"created_by"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditAction classifies an audit log entry.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionDeny   AuditAction = "deny"
)

// AuditLog records who did what to which entity, including denied
// authorization attempts.
type AuditLog struct {
	ID         uuid.UUID      `json:"id"`
	UserID     *uuid.UUID     `json:"user_id,omitempty"`
	TreeID     *uuid.UUID     `json:"tree_id,omitempty"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	Action     AuditAction    `json:"action"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address"`
	CreatedAt  time.Time      `json:"created_at"`
}
