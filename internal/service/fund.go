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

var ErrFundNotFound = errors.New("fund not found")

func fundSchema() *filter.Schema[model.Fund] {
	return filter.NewSchema[model.Fund]().
		String("Name", func(f model.Fund) string { return f.Name }).
		String("Currency", func(f model.Fund) string { return f.Currency }).
		Number("Amount", func(f model.Fund) float64 { return float64(f.Amount) }).
		SoftDelete(func(f model.Fund) bool { return f.Deleted }).
		Searchable("Name")
}

type FundService struct {
	repo   repository.Repository
	audit  *AuditService
	logger *slog.Logger
}

func NewFundService(repo repository.Repository, audit *AuditService, logger *slog.Logger) *FundService {
	return &FundService{
		repo:   repo,
		audit:  audit,
		logger: logger.With("component", "fund"),
	}
}

type FundRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Amount   int64  `json:"amount" validate:"min=0"`
	Currency string `json:"currency" validate:"required,len=3"`
}

func (s *FundService) CreateFund(ctx context.Context, treeID uuid.UUID, req FundRequest, actor uuid.UUID) (model.Fund, error) {
	now := time.Now()
	fund := model.Fund{
		ID:        uuid.New(),
		TreeID:    treeID,
		Name:      req.Name,
		Amount:    req.Amount,
		Currency:  req.Currency,
		CreatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateFund(ctx, fund); err != nil {
		return model.Fund{}, fmt.Errorf("create fund: %w", err)
	}

	s.audit.Log(ctx, "fund", fund.ID, model.AuditActionCreate,
		AuditContext{UserID: &actor, TreeID: &treeID}, map[string]any{"name": fund.Name})

	return fund, nil
}

func (s *FundService) UpdateFund(ctx context.Context, treeID, fundID uuid.UUID, req FundRequest, actor uuid.UUID) (model.Fund, error) {
	fund, err := s.getActiveFund(ctx, treeID, fundID)
	if err != nil {
		return model.Fund{}, err
	}

	fund.Name = req.Name
	fund.Amount = req.Amount
	fund.Currency = req.Currency
	fund.UpdatedAt = time.Now()
	if err := s.repo.UpdateFund(ctx, fund); err != nil {
		return model.Fund{}, fmt.Errorf("update fund: %w", err)
	}

	s.audit.Log(ctx, "fund", fund.ID, model.AuditActionUpdate,
		AuditContext{UserID: &actor, TreeID: &treeID}, nil)

	return fund, nil
}

func (s *FundService) DeleteFund(ctx context.Context, treeID, fundID uuid.UUID, actor uuid.UUID) error {
	if _, err := s.getActiveFund(ctx, treeID, fundID); err != nil {
		return err
	}
	if err := s.repo.SoftDeleteFund(ctx, fundID); err != nil {
		return fmt.Errorf("delete fund: %w", err)
	}

	s.audit.Log(ctx, "fund", fundID, model.AuditActionDelete,
		AuditContext{UserID: &actor, TreeID: &treeID}, nil)
	return nil
}

func (s *FundService) ListFunds(ctx context.Context, treeID uuid.UUID, query filter.Query) ([]model.Fund, int, error) {
	compiled, err := fundSchema().Compile(query)
	if err != nil {
		return nil, 0, err
	}

	funds, err := s.repo.GetFundsByTree(ctx, treeID)
	if err != nil {
		return nil, 0, fmt.Errorf("load funds: %w", err)
	}

	page, total := compiled.Apply(funds)
	return page, total, nil
}

func (s *FundService) getActiveFund(ctx context.Context, treeID, fundID uuid.UUID) (model.Fund, error) {
	fund, err := s.repo.GetFundByID(ctx, fundID)
	if err != nil {
		if errors.Is(err, repository.ErrFundNotFound) {
			return model.Fund{}, ErrFundNotFound
		}
		return model.Fund{}, err
	}
	if fund.TreeID != treeID || fund.Deleted {
		return model.Fund{}, ErrFundNotFound
	}
	return fund, nil
}
