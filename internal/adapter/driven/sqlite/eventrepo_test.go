package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/hookboard/internal/domain/model"
	"github.com/ericfisherdev/hookboard/internal/domain/port/driven"
)

func makeEvent(requestID string, eventAt time.Time) model.Event {
	return model.Event{
		RequestID:  requestID,
		Type:       model.EventTypePullRequest,
		Author:     "octocat",
		Action:     "opened",
		FromBranch: "feature/login",
		ToBranch:   "main",
		Timestamp:  eventAt,
	}
}

func TestEventRepo_Insert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepo(db)
	ctx := context.Background()

	eventAt := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	stored, err := repo.Insert(ctx, makeEvent("req-1", eventAt))
	require.NoError(t, err)

	assert.NotZero(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	events, err := repo.ListRecent(ctx, 10, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, model.EventTypePullRequest, got.Type)
	assert.Equal(t, "octocat", got.Author)
	assert.Equal(t, "opened", got.Action)
	assert.Equal(t, "feature/login", got.FromBranch)
	assert.Equal(t, "main", got.ToBranch)
	assert.True(t, got.Timestamp.Equal(eventAt))
}

func TestEventRepo_Insert_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepo(db)
	ctx := context.Background()

	eventAt := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	_, err := repo.Insert(ctx, makeEvent("req-1", eventAt))
	require.NoError(t, err)

	// Same request_id with different content is still a duplicate.
	dup := makeEvent("req-1", eventAt.Add(time.Hour))
	dup.Author = "hubot"
	_, err = repo.Insert(ctx, dup)
	require.ErrorIs(t, err, driven.ErrDuplicateEvent)

	// The original row is untouched.
	events, err := repo.ListRecent(ctx, 10, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "octocat", events[0].Author)
}

func TestEventRepo_ListRecent_Ordering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.Insert(ctx, makeEvent(fmt.Sprintf("req-%d", i), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	events, err := repo.ListRecent(ctx, 10, nil)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	assert.Equal(t, "req-2", events[0].RequestID)
	assert.Equal(t, "req-1", events[1].RequestID)
	assert.Equal(t, "req-0", events[2].RequestID)
}

func TestEventRepo_ListRecent_Limit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := repo.Insert(ctx, makeEvent(fmt.Sprintf("req-%d", i), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	events, err := repo.ListRecent(ctx, 2, nil)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// The cap keeps the newest events.
	assert.Equal(t, "req-4", events[0].RequestID)
	assert.Equal(t, "req-3", events[1].RequestID)
}

func TestEventRepo_ListRecent_Since(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := repo.Insert(ctx, makeEvent(fmt.Sprintf("req-%d", i), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	// Strictly newer than the floor: req-1's own timestamp is excluded.
	since := base.Add(1 * time.Minute)
	events, err := repo.ListRecent(ctx, 10, &since)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "req-3", events[0].RequestID)
	assert.Equal(t, "req-2", events[1].RequestID)
}

func TestEventRepo_ListRecent_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepo(db)

	events, err := repo.ListRecent(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventRepo_Clear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.Insert(ctx, makeEvent(fmt.Sprintf("req-%d", i), base))
		require.NoError(t, err)
	}

	deleted, err := repo.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	events, err := repo.ListRecent(ctx, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventRepo_DeleteOlderThan(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := repo.Insert(ctx, makeEvent(fmt.Sprintf("req-%d", i), base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	deleted, err := repo.DeleteOlderThan(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	events, err := repo.ListRecent(ctx, 10, nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "req-3", events[0].RequestID)
	assert.Equal(t, "req-2", events[1].RequestID)
}

func TestEventRepo_Ping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepo(db)

	require.NoError(t, repo.Ping(context.Background()))
}
