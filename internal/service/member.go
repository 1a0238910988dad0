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
	ErrMemberNotFound     = errors.New("member not found")
	ErrMemberDeleted      = errors.New("member is deleted")
	ErrMemberTreeMismatch = errors.New("member does not belong to this tree")
	ErrEdgeNotFound       = errors.New("relationship edge not found")
	ErrInvalidCategory    = errors.New("invalid relationship category")
)

// memberSchema is the filterable surface of a member listing.
func memberSchema() *filter.Schema[model.Member] {
	return filter.NewSchema[model.Member]().
		String("Fullname", func(m model.Member) string { return m.FullName }).
		Number("Gender", func(m model.Member) float64 { return float64(m.Gender) }).
		Number("Status", func(m model.Member) float64 { return float64(m.Status) }).
		Time("Birthday", func(m model.Member) *time.Time { return m.Birthday }).
		Time("CreatedAt", func(m model.Member) *time.Time { t := m.CreatedAt; return &t }).
		SoftDelete(func(m model.Member) bool { return m.Deleted }).
		Searchable("Fullname")
}

type MemberService struct {
	repo   repository.Repository
	cache  RenderCache
	audit  *AuditService
	logger *slog.Logger
}

func NewMemberService(repo repository.Repository, cache RenderCache, audit *AuditService, logger *slog.Logger) *MemberService {
	return &MemberService{
		repo:   repo,
		cache:  cache,
		audit:  audit,
		logger: logger.With("component", "member"),
	}
}

type AddMemberRequest struct {
	FullName   string     `json:"full_name" validate:"required,min=1,max=200"`
	Gender     int        `json:"gender" validate:"min=0,max=1"`
	Birthday   *time.Time `json:"birthday"`
	Status     int        `json:"status" validate:"min=0,max=3"`
	IsDivorced bool       `json:"is_divorced"`
}

func (s *MemberService) AddMember(ctx context.Context, treeID uuid.UUID, req AddMemberRequest, actor uuid.UUID) (model.Member, error) {
	now := time.Now()
	member := model.Member{
		ID:         uuid.New(),
		TreeID:     treeID,
		FullName:   req.FullName,
		Gender:     model.Gender(req.Gender),
		Birthday:   req.Birthday,
		Status:     model.MemberStatus(req.Status),
		IsDivorced: req.IsDivorced,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateMember(ctx, member); err != nil {
		return model.Member{}, fmt.Errorf("add member: %w", err)
	}
	s.cache.Invalidate(ctx, treeID)

	s.audit.Log(ctx, "member", member.ID, model.AuditActionCreate,
		AuditContext{UserID: &actor, TreeID: &treeID}, map[string]any{"full_name": member.FullName})

	return member, nil
}

type UpdateMemberRequest struct {
	FullName   string     `json:"full_name" validate:"required,min=1,max=200"`
	Gender     int        `json:"gender" validate:"min=0,max=1"`
	Birthday   *time.Time `json:"birthday"`
	Status     int        `json:"status" validate:"min=0,max=3"`
	IsDivorced bool       `json:"is_divorced"`
}

func (s *MemberService) UpdateMember(ctx context.Context, treeID, memberID uuid.UUID, req UpdateMemberRequest, actor uuid.UUID) (model.Member, error) {
	member, err := s.getActiveMember(ctx, treeID, memberID)
	if err != nil {
		return model.Member{}, err
	}

	member.FullName = req.FullName
	member.Gender = model.Gender(req.Gender)
	member.Birthday = req.Birthday
	member.Status = model.MemberStatus(req.Status)
	member.IsDivorced = req.IsDivorced
	member.UpdatedAt = time.Now()

	if err := s.repo.UpdateMember(ctx, member); err != nil {
		return model.Member{}, fmt.Errorf("update member: %w", err)
	}
	s.cache.Invalidate(ctx, treeID)

	s.audit.Log(ctx, "member", member.ID, model.AuditActionUpdate,
		AuditContext{UserID: &actor, TreeID: &treeID}, nil)

	return member, nil
}

// RemoveMember soft-deletes the member and drops their grants in the
// same operation, so a removed member keeps no standing permissions.
func (s *MemberService) RemoveMember(ctx context.Context, treeID, memberID uuid.UUID, actor uuid.UUID) error {
	if _, err := s.getActiveMember(ctx, treeID, memberID); err != nil {
		return err
	}
	if err := s.repo.SoftDeleteMember(ctx, memberID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if err := s.repo.DeleteGrantsByMember(ctx, treeID, memberID); err != nil {
		return fmt.Errorf("drop grants of removed member: %w", err)
	}
	s.cache.Invalidate(ctx, treeID)

	s.audit.Log(ctx, "member", memberID, model.AuditActionDelete,
		AuditContext{UserID: &actor, TreeID: &treeID}, nil)
	return nil
}

func (s *MemberService) GetMember(ctx context.Context, treeID, memberID uuid.UUID) (model.Member, error) {
	return s.getActiveMember(ctx, treeID, memberID)
}

// ListMembers runs the filter query over the tree's members in memory
// and returns the page plus the unpaged total.
func (s *MemberService) ListMembers(ctx context.Context, treeID uuid.UUID, query filter.Query) ([]model.Member, int, error) {
	compiled, err := memberSchema().Compile(query)
	if err != nil {
		return nil, 0, err
	}

	members, err := s.repo.GetMembersByTree(ctx, treeID)
	if err != nil {
		return nil, 0, fmt.Errorf("load members: %w", err)
	}

	page, total := compiled.Apply(members)
	return page, total, nil
}

type AddEdgeRequest struct {
	FromMemberID  uuid.UUID  `json:"from_member_id" validate:"required"`
	FromPartnerID *uuid.UUID `json:"from_partner_id"`
	ToMemberID    uuid.UUID  `json:"to_member_id" validate:"required"`
	Category      int        `json:"category" validate:"required,min=1,max=4"`
}

// AddEdge records a relationship edge after checking that every
// participant is an active member of the tree.
func (s *MemberService) AddEdge(ctx context.Context, treeID uuid.UUID, req AddEdgeRequest, actor uuid.UUID) (model.RelationshipEdge, error) {
	category := model.RelationCategory(req.Category)
	switch category {
	case model.CategoryParent, model.CategoryPartner, model.CategorySibling, model.CategoryChildren:
	default:
		return model.RelationshipEdge{}, ErrInvalidCategory
	}

	participants := []uuid.UUID{req.FromMemberID, req.ToMemberID}
	if req.FromPartnerID != nil {
		participants = append(participants, *req.FromPartnerID)
	}
	for _, id := range participants {
		if _, err := s.getActiveMember(ctx, treeID, id); err != nil {
			return model.RelationshipEdge{}, err
		}
	}

	edge := model.RelationshipEdge{
		ID:            uuid.New(),
		TreeID:        treeID,
		FromMemberID:  req.FromMemberID,
		FromPartnerID: req.FromPartnerID,
		ToMemberID:    req.ToMemberID,
		Category:      category,
		CreatedAt:     time.Now(),
	}
	if err := s.repo.CreateEdge(ctx, edge); err != nil {
		return model.RelationshipEdge{}, fmt.Errorf("add edge: %w", err)
	}
	s.cache.Invalidate(ctx, treeID)

	s.audit.Log(ctx, "edge", edge.ID, model.AuditActionCreate,
		AuditContext{UserID: &actor, TreeID: &treeID}, map[string]any{"category": category})

	return edge, nil
}

func (s *MemberService) RemoveEdge(ctx context.Context, treeID, edgeID uuid.UUID, actor uuid.UUID) error {
	edge, err := s.repo.GetEdgeByID(ctx, edgeID)
	if err != nil {
		if errors.Is(err, repository.ErrEdgeNotFound) {
			return ErrEdgeNotFound
		}
		return err
	}
	if edge.TreeID != treeID {
		return ErrEdgeNotFound
	}

	if err := s.repo.SoftDeleteEdge(ctx, edgeID); err != nil {
		return fmt.Errorf("remove edge: %w", err)
	}
	s.cache.Invalidate(ctx, treeID)

	s.audit.Log(ctx, "edge", edgeID, model.AuditActionDelete,
		AuditContext{UserID: &actor, TreeID: &treeID}, nil)
	return nil
}

func (s *MemberService) getActiveMember(ctx context.Context, treeID, memberID uuid.UUID) (model.Member, error) {
	member, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return model.Member{}, ErrMemberNotFound
		}
		return model.Member{}, err
	}
	if member.TreeID != treeID {
		return model.Member{}, ErrMemberTreeMismatch
	}
	if member.Deleted {
		return model.Member{}, ErrMemberDeleted
	}
	return member, nil
}
