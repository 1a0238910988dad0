package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"kintree/internal/model"
)

// Identity is the caller as established by the request pipeline. An
// unauthenticated request has Authenticated false and a nil UserID.
type Identity struct {
	UserID        uuid.UUID
	Authenticated bool
}

// Decision is the terminal outcome of one gate evaluation. A deny is
// never retried and never downgraded; Reason is one of the package's
// sentinel errors (possibly wrapped) and nil iff Allowed.
type Decision struct {
	Allowed  bool
	Role     model.Role
	MemberID uuid.UUID
	Reason   error
}

func deny(role model.Role, reason error) Decision {
	return Decision{Role: role, Reason: reason}
}

func allow(role model.Role, memberID uuid.UUID) Decision {
	return Decision{Allowed: true, Role: role, MemberID: memberID}
}

// Gate evaluates one authorization decision per request, from a single
// read of the binding and (at most) a single read of the grant set.
type Gate struct {
	roles  RoleResolver
	grants GrantStore
	logger *slog.Logger
}

func NewGate(bindings BindingStore, grants GrantStore, logger *slog.Logger) *Gate {
	return &Gate{
		roles:  NewRoleResolver(bindings),
		grants: grants,
		logger: logger.With("component", "access_gate"),
	}
}

// Decide runs the decision procedure:
//
//	no identity            -> deny (unauthenticated)
//	no tree context        -> deny (invalid tree context)
//	no binding             -> deny (not a tree member)
//	owner                  -> allow, regardless of grants or requirement
//	owner-only requirement -> deny for every other role
//	guest + (member,view)
//	      or (event,view)  -> allow without consulting grants
//	otherwise              -> allow iff a grant covers (feature, method)
//
// The error return is reserved for store failures; an authorization deny
// is reported through the Decision, not the error.
func (g *Gate) Decide(ctx context.Context, caller Identity, treeID uuid.UUID, req Requirement) (Decision, error) {
	if !caller.Authenticated {
		return deny(model.RoleNone, ErrUnauthenticated), nil
	}
	if treeID == uuid.Nil {
		return deny(model.RoleNone, ErrInvalidTreeContext), nil
	}

	role, memberID, err := g.roles.Resolve(ctx, treeID, caller.UserID)
	if err != nil {
		return Decision{}, err
	}
	if role == model.RoleNone {
		return deny(role, ErrNotATreeMember), nil
	}
	if role == model.RoleOwner {
		return allow(role, memberID), nil
	}
	if req.OwnerOnly {
		return deny(role, ErrOwnerOnly), nil
	}

	if role == model.RoleGuest && guestFastPath(req) {
		return allow(role, memberID), nil
	}

	grants, err := g.grants.GetGrantsByMember(ctx, treeID, memberID)
	if err != nil {
		return Decision{}, fmt.Errorf("load grants: %w", err)
	}
	if NewMatrix(grants).Allows(req.Feature, req.Method) {
		return allow(role, memberID), nil
	}

	g.logger.Debug("permission denied",
		"tree_id", treeID,
		"user_id", caller.UserID,
		"role", role,
		"feature", req.Feature,
		"method", req.Method)

	return deny(role, ErrPermissionDenied), nil
}

// guestFastPath covers the two capabilities every guest holds without an
// explicit grant.
func guestFastPath(req Requirement) bool {
	if req.Method != model.MethodView {
		return false
	}
	return req.Feature == model.FeatureMember || req.Feature == model.FeatureEvent
}
