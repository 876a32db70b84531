package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/hookboard/internal/domain/model"
	"github.com/ericfisherdev/hookboard/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.EventStore = (*EventRepo)(nil)

// EventRepo is the SQLite implementation of the EventStore port interface.
type EventRepo struct {
	db *DB
}

// NewEventRepo creates a new EventRepo backed by the given DB.
func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

// Insert stores a webhook event. The unique index on request_id provides
// duplicate suppression; a conflicting insert returns ErrDuplicateEvent and
// leaves the stored row untouched. On success the returned event carries the
// assigned row ID and CreatedAt.
func (r *EventRepo) Insert(ctx context.Context, event model.Event) (model.Event, error) {
	const query = `
		INSERT INTO events (
			request_id, event_type, author, action, from_branch, to_branch, branch, event_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		event.RequestID, string(event.Type), event.Author, event.Action,
		event.FromBranch, event.ToBranch, event.Branch,
		event.Timestamp.UTC().Format(time.RFC3339), createdAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.Event{}, fmt.Errorf("insert event %s: %w", event.RequestID, driven.ErrDuplicateEvent)
		}
		return model.Event{}, fmt.Errorf("insert event %s: %w", event.RequestID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Event{}, fmt.Errorf("last insert id: %w", err)
	}

	event.ID = id
	event.CreatedAt = createdAt
	return event, nil
}

// ListRecent returns up to limit events ordered by event time descending.
// When since is non-nil, only events strictly newer than it are returned.
func (r *EventRepo) ListRecent(ctx context.Context, limit int, since *time.Time) ([]model.Event, error) {
	query := `
		SELECT id, request_id, event_type, author, action, from_branch, to_branch, branch, event_at, created_at
		FROM events
	`
	var args []any
	if since != nil {
		query += ` WHERE event_at > ?`
		args = append(args, since.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY event_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// Clear deletes all stored events and returns the number deleted.
func (r *EventRepo) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.Writer.ExecContext(ctx, `DELETE FROM events`)
	if err != nil {
		return 0, fmt.Errorf("clear events: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}

	return deleted, nil
}

// DeleteOlderThan removes events whose event time is before cutoff and
// returns the number deleted.
func (r *EventRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM events WHERE event_at < ?`

	result, err := r.db.Writer.ExecContext(ctx, query, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("delete old events: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}

	return deleted, nil
}

// Ping verifies database reachability for the health endpoint.
func (r *EventRepo) Ping(ctx context.Context) error {
	if err := r.db.Reader.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*model.Event, error) {
	var event model.Event
	var eventType string
	var eventAt, createdAt string

	err := s.Scan(
		&event.ID, &event.RequestID, &eventType, &event.Author, &event.Action,
		&event.FromBranch, &event.ToBranch, &event.Branch, &eventAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	event.Type = model.EventType(eventType)

	event.Timestamp, err = parseTime(eventAt)
	if err != nil {
		return nil, fmt.Errorf("parse event_at: %w", err)
	}

	event.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &event, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
