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

var ErrEventNotFound = errors.New("event not found")

func eventSchema() *filter.Schema[model.Event] {
	return filter.NewSchema[model.Event]().
		String("Title", func(e model.Event) string { return e.Title }).
		String("Description", func(e model.Event) string { return e.Description }).
		Time("StartsAt", func(e model.Event) *time.Time { t := e.StartsAt; return &t }).
		SoftDelete(func(e model.Event) bool { return e.Deleted }).
		Searchable("Title", "Description")
}

type EventService struct {
	repo   repository.Repository
	audit  *AuditService
	logger *slog.Logger
}

func NewEventService(repo repository.Repository, audit *AuditService, logger *slog.Logger) *EventService {
	return &EventService{
		repo:   repo,
		audit:  audit,
		logger: logger.With("component", "event"),
	}
}

type EventRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
}

func (s *EventService) CreateEvent(ctx context.Context, treeID uuid.UUID, req EventRequest, actor uuid.UUID) (model.Event, error) {
	now := time.Now()
	event := model.Event{
		ID:          uuid.New(),
		TreeID:      treeID,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		CreatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return model.Event{}, fmt.Errorf("create event: %w", err)
	}

	s.audit.Log(ctx, "event", event.ID, model.AuditActionCreate,
		AuditContext{UserID: &actor, TreeID: &treeID}, map[string]any{"title": event.Title})

	return event, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, treeID, eventID uuid.UUID, req EventRequest, actor uuid.UUID) (model.Event, error) {
	event, err := s.getActiveEvent(ctx, treeID, eventID)
	if err != nil {
		return model.Event{}, err
	}

	event.Title = req.Title
	event.Description = req.Description
	event.StartsAt = req.StartsAt
	event.UpdatedAt = time.Now()
	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return model.Event{}, fmt.Errorf("update event: %w", err)
	}

	s.audit.Log(ctx, "event", event.ID, model.AuditActionUpdate,
		AuditContext{UserID: &actor, TreeID: &treeID}, nil)

	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, treeID, eventID uuid.UUID, actor uuid.UUID) error {
	if _, err := s.getActiveEvent(ctx, treeID, eventID); err != nil {
		return err
	}
	if err := s.repo.SoftDeleteEvent(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	s.audit.Log(ctx, "event", eventID, model.AuditActionDelete,
		AuditContext{UserID: &actor, TreeID: &treeID}, nil)
	return nil
}

func (s *EventService) ListEvents(ctx context.Context, treeID uuid.UUID, query filter.Query) ([]model.Event, int, error) {
	compiled, err := eventSchema().Compile(query)
	if err != nil {
		return nil, 0, err
	}

	events, err := s.repo.GetEventsByTree(ctx, treeID)
	if err != nil {
		return nil, 0, fmt.Errorf("load events: %w", err)
	}

	page, total := compiled.Apply(events)
	return page, total, nil
}

func (s *EventService) getActiveEvent(ctx context.Context, treeID, eventID uuid.UUID) (model.Event, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return model.Event{}, ErrEventNotFound
		}
		return model.Event{}, err
	}
	if event.TreeID != treeID || event.Deleted {
		return model.Event{}, ErrEventNotFound
	}
	return event, nil
}
