package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"kintree/internal/model"
)

// RoleResolver determines a caller's standing within one tree. It is a
// pure lookup over tree-user bindings with no side effects.
type RoleResolver struct {
	bindings BindingStore
}

func NewRoleResolver(bindings BindingStore) RoleResolver {
	return RoleResolver{bindings: bindings}
}

// Resolve returns the caller's role and, when bound, the member node
// representing the caller inside the tree. model.RoleNone means the user
// has no binding at all.
func (r RoleResolver) Resolve(ctx context.Context, treeID, userID uuid.UUID) (model.Role, uuid.UUID, error) {
	binding, err := r.bindings.GetTreeUserBinding(ctx, treeID, userID)
	if err != nil {
		if errors.Is(err, ErrBindingNotFound) {
			return model.RoleNone, uuid.Nil, nil
		}
		return model.RoleNone, uuid.Nil, fmt.Errorf("resolve role: %w", err)
	}
	return binding.Role, binding.MemberID, nil
}
