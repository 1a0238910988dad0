package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kintree/internal/graph"
	"kintree/internal/model"
	"kintree/internal/repository"
)

var (
	ErrTreeNameRequired = errors.New("tree name is required")
	ErrTreeNotFound     = errors.New("tree not found")
)

// RenderCache is what the tree service needs from the cache layer.
// Implemented by cache.TreeCache.
type RenderCache interface {
	Get(ctx context.Context, treeID uuid.UUID) (*graph.RenderTree, bool)
	Set(ctx context.Context, tree *graph.RenderTree)
	Invalidate(ctx context.Context, treeID uuid.UUID)
}

type TreeService struct {
	repo   repository.Repository
	cache  RenderCache
	audit  *AuditService
	logger *slog.Logger
}

func NewTreeService(repo repository.Repository, cache RenderCache, audit *AuditService, logger *slog.Logger) *TreeService {
	return &TreeService{
		repo:   repo,
		cache:  cache,
		audit:  audit,
		logger: logger.With("component", "tree"),
	}
}

// CreateTree creates the tree, enrolls the creator as its root member,
// and binds them as owner.
func (s *TreeService) CreateTree(ctx context.Context, ownerID uuid.UUID, name string) (model.Tree, error) {
	if name == "" {
		return model.Tree{}, ErrTreeNameRequired
	}

	owner, err := s.repo.GetUserByID(ctx, ownerID)
	if err != nil {
		return model.Tree{}, fmt.Errorf("load owner: %w", err)
	}

	now := time.Now()
	tree := model.Tree{
		ID:        uuid.New(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateTree(ctx, tree); err != nil {
		return model.Tree{}, fmt.Errorf("create tree: %w", err)
	}

	rootMember := model.Member{
		ID:        uuid.New(),
		TreeID:    tree.ID,
		FullName:  owner.Name,
		Status:    model.StatusUndefined,
		IsRoot:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateMember(ctx, rootMember); err != nil {
		return model.Tree{}, fmt.Errorf("create root member: %w", err)
	}

	binding := model.TreeUserBinding{
		TreeID:   tree.ID,
		UserID:   ownerID,
		MemberID: rootMember.ID,
		Role:     model.RoleOwner,
		JoinedAt: now,
	}
	if err := s.repo.CreateTreeUserBinding(ctx, binding); err != nil {
		return model.Tree{}, fmt.Errorf("create owner binding: %w", err)
	}

	s.audit.Log(ctx, "tree", tree.ID, model.AuditActionCreate,
		AuditContext{UserID: &ownerID, TreeID: &tree.ID}, map[string]any{"name": name})

	return tree, nil
}

func (s *TreeService) GetTree(ctx context.Context, treeID uuid.UUID) (model.Tree, error) {
	tree, err := s.repo.GetTreeByID(ctx, treeID)
	if err != nil {
		if errors.Is(err, repository.ErrTreeNotFound) {
			return model.Tree{}, ErrTreeNotFound
		}
		return model.Tree{}, err
	}
	return tree, nil
}

func (s *TreeService) RenameTree(ctx context.Context, treeID uuid.UUID, name string, actor uuid.UUID) (model.Tree, error) {
	if name == "" {
		return model.Tree{}, ErrTreeNameRequired
	}
	tree, err := s.GetTree(ctx, treeID)
	if err != nil {
		return model.Tree{}, err
	}

	tree.Name = name
	tree.UpdatedAt = time.Now()
	if err := s.repo.UpdateTree(ctx, tree); err != nil {
		return model.Tree{}, fmt.Errorf("rename tree: %w", err)
	}

	s.audit.Log(ctx, "tree", tree.ID, model.AuditActionUpdate,
		AuditContext{UserID: &actor, TreeID: &tree.ID}, map[string]any{"name": name})

	return tree, nil
}

func (s *TreeService) DeleteTree(ctx context.Context, treeID uuid.UUID, actor uuid.UUID) error {
	if _, err := s.GetTree(ctx, treeID); err != nil {
		return err
	}
	if err := s.repo.DeleteTree(ctx, treeID); err != nil {
		return fmt.Errorf("delete tree: %w", err)
	}
	s.cache.Invalidate(ctx, treeID)

	s.audit.Log(ctx, "tree", treeID, model.AuditActionDelete,
		AuditContext{UserID: &actor, TreeID: &treeID}, nil)
	return nil
}

func (s *TreeService) ListMyTrees(ctx context.Context, userID uuid.UUID) ([]model.Tree, error) {
	return s.repo.GetTreesByUser(ctx, userID)
}

// RenderTree assembles the renderable structure for a tree, serving a
// warm cache entry when one exists. The snapshot is loaded in one pass,
// so the derivation works from a single point-in-time view.
func (s *TreeService) RenderTree(ctx context.Context, treeID uuid.UUID) (*graph.RenderTree, error) {
	if cached, ok := s.cache.Get(ctx, treeID); ok {
		return cached, nil
	}

	if _, err := s.GetTree(ctx, treeID); err != nil {
		return nil, err
	}

	members, err := s.repo.GetMembersByTree(ctx, treeID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	edges, err := s.repo.GetEdgesByTree(ctx, treeID)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}

	snapshot := graph.NewSnapshot(treeID, members, edges)
	tree, err := graph.BuildTree(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, tree)
	return tree, nil
}
