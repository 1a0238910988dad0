package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kintree/internal/filter"
)

func TestEventLifecycle(t *testing.T) {
	repo := newMemRepo()
	svc := NewEventService(repo, NewAuditService(repo), testLogger())

	treeID := uuid.New()
	actor := uuid.New()

	event, err := svc.CreateEvent(context.Background(), treeID, EventRequest{
		Title:       "Family reunion",
		Description: "Annual get-together",
		StartsAt:    time.Date(2026, 6, 14, 12, 0, 0, 0, time.UTC),
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, actor, event.CreatedBy)

	updated, err := svc.UpdateEvent(context.Background(), treeID, event.ID, EventRequest{
		Title:    "Family reunion 2026",
		StartsAt: event.StartsAt,
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, "Family reunion 2026", updated.Title)

	require.NoError(t, svc.DeleteEvent(context.Background(), treeID, event.ID, actor))

	page, total, err := svc.ListEvents(context.Background(), treeID, filter.Query{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, page)

	// Deleted events cannot be updated.
	_, err = svc.UpdateEvent(context.Background(), treeID, event.ID, EventRequest{Title: "x", StartsAt: event.StartsAt}, actor)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestListEventsByDay(t *testing.T) {
	repo := newMemRepo()
	svc := NewEventService(repo, NewAuditService(repo), testLogger())

	treeID := uuid.New()
	actor := uuid.New()

	for _, starts := range []time.Time{
		time.Date(2026, 6, 14, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 14, 20, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC),
	} {
		_, err := svc.CreateEvent(context.Background(), treeID, EventRequest{
			Title:    "event",
			StartsAt: starts,
		}, actor)
		require.NoError(t, err)
	}

	_, total, err := svc.ListEvents(context.Background(), treeID,
		listQuery("StartsAt", "DATEIN", "2026-06-14"))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestEventScopedToTree(t *testing.T) {
	repo := newMemRepo()
	svc := NewEventService(repo, NewAuditService(repo), testLogger())

	treeID := uuid.New()
	event, err := svc.CreateEvent(context.Background(), treeID, EventRequest{
		Title:    "private",
		StartsAt: time.Now(),
	}, uuid.New())
	require.NoError(t, err)

	err = svc.DeleteEvent(context.Background(), uuid.New(), event.ID, uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)
}
