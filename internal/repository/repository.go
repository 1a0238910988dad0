package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"kintree/internal/model"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTreeNotFound       = errors.New("tree not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrEdgeNotFound       = errors.New("relationship edge not found")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrFundNotFound       = errors.New("fund not found")
	ErrDuplicateBinding   = errors.New("binding already exists for this tree and user")
)

// Repository is the persistence contract. The core engines consume the
// narrow slices of it they need (access.BindingStore, access.GrantStore);
// services consume the whole thing.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	UpdateUser(ctx context.Context, user model.User) error
	CreateUserRegistration(ctx context.Context, reg model.UserRegistration) error
	GetUserRegistrationByUserID(ctx context.Context, userID uuid.UUID) (model.UserRegistration, error)
	DeleteUserRegistration(ctx context.Context, id uuid.UUID) error

	// Tree operations
	CreateTree(ctx context.Context, tree model.Tree) error
	GetTreeByID(ctx context.Context, id uuid.UUID) (model.Tree, error)
	UpdateTree(ctx context.Context, tree model.Tree) error
	DeleteTree(ctx context.Context, id uuid.UUID) error
	GetTreesByUser(ctx context.Context, userID uuid.UUID) ([]model.Tree, error)

	// Member operations
	CreateMember(ctx context.Context, member model.Member) error
	GetMemberByID(ctx context.Context, id uuid.UUID) (model.Member, error)
	UpdateMember(ctx context.Context, member model.Member) error
	SoftDeleteMember(ctx context.Context, id uuid.UUID) error
	GetMembersByTree(ctx context.Context, treeID uuid.UUID) ([]model.Member, error)

	// Relationship edge operations
	CreateEdge(ctx context.Context, edge model.RelationshipEdge) error
	GetEdgeByID(ctx context.Context, id uuid.UUID) (model.RelationshipEdge, error)
	SoftDeleteEdge(ctx context.Context, id uuid.UUID) error
	GetEdgesByTree(ctx context.Context, treeID uuid.UUID) ([]model.RelationshipEdge, error)

	// Tree-user binding operations
	CreateTreeUserBinding(ctx context.Context, binding model.TreeUserBinding) error
	GetTreeUserBinding(ctx context.Context, treeID, userID uuid.UUID) (model.TreeUserBinding, error)
	GetBindingsByTree(ctx context.Context, treeID uuid.UUID) ([]model.TreeUserBinding, error)
	DeleteTreeUserBinding(ctx context.Context, treeID, userID uuid.UUID) error

	// Permission grant operations
	UpsertGrant(ctx context.Context, grant model.PermissionGrant) error
	GetGrantsByMember(ctx context.Context, treeID, memberID uuid.UUID) ([]model.PermissionGrant, error)
	GetGrantsByTree(ctx context.Context, treeID uuid.UUID) ([]model.PermissionGrant, error)
	DeleteGrant(ctx context.Context, id uuid.UUID) error
	DeleteGrantsByMember(ctx context.Context, treeID, memberID uuid.UUID) error

	// Invitation operations
	CreateInvitation(ctx context.Context, inv model.Invitation) error
	GetInvitationByCode(ctx context.Context, code string) (model.Invitation, error)
	MarkInvitationUsed(ctx context.Context, id, usedBy uuid.UUID) error
	GetInvitationsByTree(ctx context.Context, treeID uuid.UUID) ([]model.Invitation, error)

	// Event operations
	CreateEvent(ctx context.Context, event model.Event) error
	GetEventByID(ctx context.Context, id uuid.UUID) (model.Event, error)
	UpdateEvent(ctx context.Context, event model.Event) error
	SoftDeleteEvent(ctx context.Context, id uuid.UUID) error
	GetEventsByTree(ctx context.Context, treeID uuid.UUID) ([]model.Event, error)

	// Fund operations
	CreateFund(ctx context.Context, fund model.Fund) error
	GetFundByID(ctx context.Context, id uuid.UUID) (model.Fund, error)
	UpdateFund(ctx context.Context, fund model.Fund) error
	SoftDeleteFund(ctx context.Context, id uuid.UUID) error
	GetFundsByTree(ctx context.Context, treeID uuid.UUID) ([]model.Fund, error)

	// Audit operations
	CreateAuditLog(ctx context.Context, entry model.AuditLog) error

	// Database operations
	HealthCheck(ctx context.Context) error
}
