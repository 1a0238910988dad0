package access

import (
	"kintree/internal/model"
)

// Matrix is the set of permission grants held by one member of one tree,
// queryable with wildcard semantics on both axes.
type Matrix struct {
	grants []model.PermissionGrant
}

func NewMatrix(grants []model.PermissionGrant) Matrix {
	return Matrix{grants: grants}
}

// Allows reports whether any grant covers the (feature, method) pair.
// A grant on model.FeatureAll matches any feature; model.MethodAll in a
// grant's method set matches any method. The queried pair is always a
// concrete feature and method.
func (m Matrix) Allows(feature model.Feature, method model.Method) bool {
	for _, g := range m.grants {
		if g.Feature != feature && g.Feature != model.FeatureAll {
			continue
		}
		for _, gm := range g.Methods {
			if gm == method || gm == model.MethodAll {
				return true
			}
		}
	}
	return false
}

func (m Matrix) Empty() bool {
	return len(m.grants) == 0
}
