package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

type UserRegistration struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	ActivationCode string    `json:"activation_code"`
}

// Gender is binary-coded in the stored data: 0 = male, 1 = female.
type Gender int

const (
	GenderMale   Gender = 0
	GenderFemale Gender = 1
)

// MemberStatus is the enumerated civil status of a member. StatusUndefined
// is a sentinel: members with it are excluded from partner derivation.
type MemberStatus int

const (
	StatusUndefined MemberStatus = 0
	StatusSingle    MemberStatus = 1
	StatusMarried   MemberStatus = 2
	StatusDivorced  MemberStatus = 3
)

// RelationCategory types a relationship edge.
type RelationCategory int

const (
	CategoryParent   RelationCategory = 1
	CategoryPartner  RelationCategory = 2
	CategorySibling  RelationCategory = 3
	CategoryChildren RelationCategory = 4
)

// Member is a node in one tree's relationship graph. Members are never
// hard-deleted; removal sets the Deleted flag.
type Member struct {
	ID         uuid.UUID    `json:"id"`
	TreeID     uuid.UUID    `json:"tree_id"`
	FullName   string       `json:"full_name"`
	Gender     Gender       `json:"gender"`
	Birthday   *time.Time   `json:"birthday,omitempty"`
	Status     MemberStatus `json:"status"`
	IsRoot     bool         `json:"is_root"`
	IsDivorced bool         `json:"is_divorced"`
	Deleted    bool         `json:"deleted"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// RelationshipEdge is a typed directed connection between members of one
// tree. For CategoryChildren, FromMemberID (and the optional
// FromPartnerID co-parent) are parents of ToMemberID. For CategoryPartner
// the edge may be recorded from either side.
type RelationshipEdge struct {
	ID            uuid.UUID        `json:"id"`
	TreeID        uuid.UUID        `json:"tree_id"`
	FromMemberID  uuid.UUID        `json:"from_member_id"`
	FromPartnerID *uuid.UUID       `json:"from_partner_id,omitempty"`
	ToMemberID    uuid.UUID        `json:"to_member_id"`
	Category      RelationCategory `json:"category"`
	Deleted       bool             `json:"deleted"`
	CreatedAt     time.Time        `json:"created_at"`
}

type Tree struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
