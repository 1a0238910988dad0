package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is a caller's standing within one tree.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
	// RoleNone means no binding exists for the (tree, user) pair.
	RoleNone Role = ""
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleMember, RoleGuest:
		return true
	}
	return false
}

// Feature is the resource category of a permission unit. FeatureAll is a
// wildcard matching any concrete feature.
type Feature string

const (
	FeatureMember Feature = "member"
	FeatureEvent  Feature = "event"
	FeatureFund   Feature = "fund"
	FeatureAll    Feature = "all"
)

func (f Feature) IsValid() bool {
	switch f {
	case FeatureMember, FeatureEvent, FeatureFund, FeatureAll:
		return true
	}
	return false
}

// Method is the operation kind of a permission unit. MethodAll is a
// wildcard matching any concrete method.
type Method string

const (
	MethodView   Method = "view"
	MethodAdd    Method = "add"
	MethodUpdate Method = "update"
	MethodDelete Method = "delete"
	MethodAll    Method = "all"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodView, MethodAdd, MethodUpdate, MethodDelete, MethodAll:
		return true
	}
	return false
}

// TreeUserBinding links a user account to a tree with a role and the
// member node that represents the user inside the tree. At most one
// binding exists per (tree, user) pair.
type TreeUserBinding struct {
	TreeID   uuid.UUID `json:"tree_id"`
	UserID   uuid.UUID `json:"user_id"`
	MemberID uuid.UUID `json:"member_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// PermissionGrant allows a member a set of methods on one feature of a
// tree. Either axis may hold the wildcard value.
type PermissionGrant struct {
	ID        uuid.UUID `json:"id"`
	TreeID    uuid.UUID `json:"tree_id"`
	MemberID  uuid.UUID `json:"member_id"`
	Feature   Feature   `json:"feature"`
	Methods   []Method  `json:"methods"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
