// Package access decides whether a caller may perform an operation on a
// tree. The decision combines the caller's role within the tree with the
// operation's declared capability requirement and, for non-owners, the
// tree's permission grants.
package access

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"kintree/internal/model"
)

var (
	ErrUnauthenticated    = errors.New("caller carries no verified identity")
	ErrInvalidTreeContext = errors.New("missing or invalid tree context")
	ErrNotATreeMember     = errors.New("caller is not a member of this tree")
	ErrOwnerOnly          = errors.New("operation is restricted to the tree owner")
	ErrPermissionDenied   = errors.New("no grant covers this operation")
)

// Requirement is the statically declared capability a route needs. It is
// plain data: either owner-only, or one (feature, method) pair.
type Requirement struct {
	OwnerOnly bool
	Feature   model.Feature
	Method    model.Method
}

// OwnerOnly declares a route only the tree owner may call.
func OwnerOnly() Requirement {
	return Requirement{OwnerOnly: true}
}

// Capability declares the (feature, method) pair a route needs.
func Capability(feature model.Feature, method model.Method) Requirement {
	return Requirement{Feature: feature, Method: method}
}

// BindingStore reads tree-user bindings. Implemented by the repository.
type BindingStore interface {
	GetTreeUserBinding(ctx context.Context, treeID, userID uuid.UUID) (model.TreeUserBinding, error)
}

// GrantStore reads permission grants. Implemented by the repository.
type GrantStore interface {
	GetGrantsByMember(ctx context.Context, treeID, memberID uuid.UUID) ([]model.PermissionGrant, error)
}

// ErrBindingNotFound must be returned (possibly wrapped) by BindingStore
// when no binding exists for the pair.
var ErrBindingNotFound = errors.New("tree user binding not found")
