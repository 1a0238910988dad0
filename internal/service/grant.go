package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kintree/internal/filter"
	"kintree/internal/model"
	"kintree/internal/repository"
)

var (
	ErrInvalidFeature = errors.New("invalid feature code")
	ErrInvalidMethod  = errors.New("invalid method code")
	ErrGrantNotFound  = errors.New("permission grant not found")
)

func grantSchema() *filter.Schema[model.PermissionGrant] {
	return filter.NewSchema[model.PermissionGrant]().
		String("Feature", func(g model.PermissionGrant) string { return string(g.Feature) }).
		String("MemberId", func(g model.PermissionGrant) string { return g.MemberID.String() }).
		Time("CreatedAt", func(g model.PermissionGrant) *time.Time { t := g.CreatedAt; return &t }).
		Searchable("Feature")
}

// GrantService is the owner-only administration surface of the
// permission matrix. Route wiring enforces owner-only; the service only
// validates and persists.
type GrantService struct {
	repo   repository.Repository
	cache  RenderCache
	audit  *AuditService
	logger *slog.Logger
}

func NewGrantService(repo repository.Repository, cache RenderCache, audit *AuditService, logger *slog.Logger) *GrantService {
	return &GrantService{
		repo:   repo,
		cache:  cache,
		audit:  audit,
		logger: logger.With("component", "grant"),
	}
}

type SetGrantRequest struct {
	MemberID uuid.UUID `json:"member_id" validate:"required"`
	Feature  string    `json:"feature" validate:"required"`
	Methods  []string  `json:"methods" validate:"required,min=1"`
}

// SetGrant creates or replaces the member's grant for one feature.
func (s *GrantService) SetGrant(ctx context.Context, treeID uuid.UUID, req SetGrantRequest, actor uuid.UUID) (model.PermissionGrant, error) {
	feature := model.Feature(req.Feature)
	if !feature.IsValid() {
		return model.PermissionGrant{}, fmt.Errorf("%w: %q", ErrInvalidFeature, req.Feature)
	}
	methods := make([]model.Method, len(req.Methods))
	for i, m := range req.Methods {
		method := model.Method(m)
		if !method.IsValid() {
			return model.PermissionGrant{}, fmt.Errorf("%w: %q", ErrInvalidMethod, m)
		}
		methods[i] = method
	}

	member, err := s.repo.GetMemberByID(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return model.PermissionGrant{}, ErrMemberNotFound
		}
		return model.PermissionGrant{}, err
	}
	if member.TreeID != treeID {
		return model.PermissionGrant{}, ErrMemberTreeMismatch
	}
	if member.Deleted {
		return model.PermissionGrant{}, ErrMemberDeleted
	}

	now := time.Now()
	grant := model.PermissionGrant{
		ID:        uuid.New(),
		TreeID:    treeID,
		MemberID:  req.MemberID,
		Feature:   feature,
		Methods:   methods,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertGrant(ctx, grant); err != nil {
		return model.PermissionGrant{}, fmt.Errorf("set grant: %w", err)
	}
	s.cache.Invalidate(ctx, treeID)

	s.audit.Log(ctx, "grant", grant.ID, model.AuditActionUpdate,
		AuditContext{UserID: &actor, TreeID: &treeID},
		map[string]any{"member_id": req.MemberID, "feature": feature, "methods": methods})

	return grant, nil
}

func (s *GrantService) RevokeGrant(ctx context.Context, treeID, grantID uuid.UUID, actor uuid.UUID) error {
	grants, err := s.repo.GetGrantsByTree(ctx, treeID)
	if err != nil {
		return fmt.Errorf("load grants: %w", err)
	}
	found := false
	for _, g := range grants {
		if g.ID == grantID {
			found = true
			break
		}
	}
	if !found {
		return ErrGrantNotFound
	}

	if err := s.repo.DeleteGrant(ctx, grantID); err != nil {
		return fmt.Errorf("revoke grant: %w", err)
	}
	s.cache.Invalidate(ctx, treeID)

	s.audit.Log(ctx, "grant", grantID, model.AuditActionDelete,
		AuditContext{UserID: &actor, TreeID: &treeID}, nil)
	return nil
}

// ListGrants pages the tree's grants through the filter engine.
func (s *GrantService) ListGrants(ctx context.Context, treeID uuid.UUID, query filter.Query) ([]model.PermissionGrant, int, error) {
	compiled, err := grantSchema().Compile(query)
	if err != nil {
		return nil, 0, err
	}

	grants, err := s.repo.GetGrantsByTree(ctx, treeID)
	if err != nil {
		return nil, 0, fmt.Errorf("load grants: %w", err)
	}

	page, total := compiled.Apply(grants)
	return page, total, nil
}
