package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"kintree/internal/access"
	"kintree/internal/email"
	"kintree/internal/model"
	"kintree/internal/repository"
	"kintree/internal/util"
)

const invitationTTL = 7 * 24 * time.Hour

var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrInvitationUsed     = errors.New("invitation has already been used")
	ErrInvalidInviteRole  = errors.New("invitations may only carry the member or guest role")
	ErrAlreadyBound       = errors.New("user already belongs to this tree")
)

type InvitationService struct {
	repo    repository.Repository
	mail    email.Sender
	limiter *RateLimiter
	audit   *AuditService
	logger  *slog.Logger
}

func NewInvitationService(repo repository.Repository, mail email.Sender, limiter *RateLimiter, audit *AuditService, logger *slog.Logger) *InvitationService {
	return &InvitationService{
		repo:    repo,
		mail:    mail,
		limiter: limiter,
		audit:   audit,
		logger:  logger.With("component", "invitation"),
	}
}

type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=member guest"`
}

// Invite creates a single-use, expiring invitation and mails its code.
func (s *InvitationService) Invite(ctx context.Context, treeID uuid.UUID, req InviteRequest, inviter uuid.UUID) (model.Invitation, error) {
	role := model.Role(req.Role)
	if role != model.RoleMember && role != model.RoleGuest {
		return model.Invitation{}, ErrInvalidInviteRole
	}

	if err := s.limiter.CheckInvite(ctx, inviter.String()); err != nil {
		return model.Invitation{}, err
	}

	tree, err := s.repo.GetTreeByID(ctx, treeID)
	if err != nil {
		if errors.Is(err, repository.ErrTreeNotFound) {
			return model.Invitation{}, ErrTreeNotFound
		}
		return model.Invitation{}, err
	}

	code, err := util.RandomString(24)
	if err != nil {
		return model.Invitation{}, fmt.Errorf("generate invitation code: %w", err)
	}

	inv := model.Invitation{
		ID:        uuid.New(),
		TreeID:    treeID,
		Email:     strings.TrimSpace(strings.ToLower(req.Email)),
		Role:      role,
		Code:      code,
		InvitedBy: inviter,
		ExpiresAt: time.Now().Add(invitationTTL),
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateInvitation(ctx, inv); err != nil {
		return model.Invitation{}, fmt.Errorf("create invitation: %w", err)
	}

	if err := s.mail.SendInvitation(ctx, inv.Email, tree.Name, code); err != nil {
		// The invitation stands; the code can be shared by other means.
		s.logger.Error("failed to send invitation email", "invitation_id", inv.ID, "error", err)
	}

	s.audit.Log(ctx, "invitation", inv.ID, model.AuditActionCreate,
		AuditContext{UserID: &inviter, TreeID: &treeID}, map[string]any{"role": role})

	return inv, nil
}

// Accept redeems an invitation code for the calling user: it enrolls a
// member node for them and creates their tree-user binding with the
// invited role.
func (s *InvitationService) Accept(ctx context.Context, code string, userID uuid.UUID) (model.TreeUserBinding, error) {
	inv, err := s.repo.GetInvitationByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrInvitationNotFound) {
			return model.TreeUserBinding{}, ErrInvitationNotFound
		}
		return model.TreeUserBinding{}, err
	}
	if inv.IsUsed() {
		return model.TreeUserBinding{}, ErrInvitationUsed
	}
	if inv.IsExpired() {
		return model.TreeUserBinding{}, ErrInvitationExpired
	}

	if _, err := s.repo.GetTreeUserBinding(ctx, inv.TreeID, userID); err == nil {
		return model.TreeUserBinding{}, ErrAlreadyBound
	} else if !errors.Is(err, access.ErrBindingNotFound) {
		return model.TreeUserBinding{}, fmt.Errorf("check binding: %w", err)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return model.TreeUserBinding{}, fmt.Errorf("load user: %w", err)
	}

	now := time.Now()
	member := model.Member{
		ID:        uuid.New(),
		TreeID:    inv.TreeID,
		FullName:  user.Name,
		Status:    model.StatusUndefined,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateMember(ctx, member); err != nil {
		return model.TreeUserBinding{}, fmt.Errorf("enroll member: %w", err)
	}

	binding := model.TreeUserBinding{
		TreeID:   inv.TreeID,
		UserID:   userID,
		MemberID: member.ID,
		Role:     inv.Role,
		JoinedAt: now,
	}
	if err := s.repo.CreateTreeUserBinding(ctx, binding); err != nil {
		if delErr := s.repo.SoftDeleteMember(ctx, member.ID); delErr != nil {
			s.logger.Error("failed to clean up member after binding failure", "member_id", member.ID, "error", delErr)
		}
		if errors.Is(err, repository.ErrDuplicateBinding) {
			return model.TreeUserBinding{}, ErrAlreadyBound
		}
		return model.TreeUserBinding{}, fmt.Errorf("create binding: %w", err)
	}

	if err := s.repo.MarkInvitationUsed(ctx, inv.ID, userID); err != nil {
		return model.TreeUserBinding{}, fmt.Errorf("mark invitation used: %w", err)
	}

	s.audit.Log(ctx, "invitation", inv.ID, model.AuditActionUpdate,
		AuditContext{UserID: &userID, TreeID: &inv.TreeID}, map[string]any{"accepted": true})

	return binding, nil
}

func (s *InvitationService) ListInvitations(ctx context.Context, treeID uuid.UUID) ([]model.Invitation, error) {
	return s.repo.GetInvitationsByTree(ctx, treeID)
}
