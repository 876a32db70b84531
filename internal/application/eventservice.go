// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/hookboard/internal/domain/model"
	"github.com/ericfisherdev/hookboard/internal/domain/port/driven"
)

const (
	// DefaultEventLimit is applied when the caller does not request a limit.
	DefaultEventLimit = 50
	// MaxEventLimit caps the events returned by a single read, regardless of
	// the requested limit.
	MaxEventLimit = 500
)

// IngestInput is the normalized webhook payload handed to Ingest. Timestamp
// is the sender's ISO 8601 string; RequestID may be empty.
type IngestInput struct {
	RequestID  string
	EventType  string
	Author     string
	Action     string
	FromBranch string
	ToBranch   string
	Branch     string
	Timestamp  string
}

// EventService implements the webhook ingest and dashboard read use cases on
// top of the EventStore port.
type EventService struct {
	store driven.EventStore
}

// NewEventService creates an EventService backed by the given store.
func NewEventService(store driven.EventStore) *EventService {
	return &EventService{store: store}
}

// Ingest validates and stores a webhook event. A missing RequestID is
// replaced with a generated UUID. The returned bool is false when the event
// was a duplicate and the store was left unchanged; validation failures are
// reported wrapped in model.ErrInvalidEvent.
func (s *EventService) Ingest(ctx context.Context, in IngestInput) (model.Event, bool, error) {
	timestamp, err := parseTimestamp(in.Timestamp)
	if err != nil {
		return model.Event{}, false, fmt.Errorf("%w: %v", model.ErrInvalidEvent, err)
	}

	event := model.Event{
		RequestID:  in.RequestID,
		Type:       model.EventType(in.EventType),
		Author:     in.Author,
		Action:     in.Action,
		FromBranch: in.FromBranch,
		ToBranch:   in.ToBranch,
		Branch:     in.Branch,
		Timestamp:  timestamp,
	}

	if err := event.Validate(); err != nil {
		return model.Event{}, false, err
	}

	if event.RequestID == "" {
		event.RequestID = uuid.NewString()
	}

	stored, err := s.store.Insert(ctx, event)
	if errors.Is(err, driven.ErrDuplicateEvent) {
		return event, false, nil
	}
	if err != nil {
		return model.Event{}, false, err
	}

	return stored, true, nil
}

// Recent returns events ordered newest-first. A non-positive limit falls
// back to DefaultEventLimit; anything above MaxEventLimit is clamped. When
// since is non-nil only events strictly newer than it are returned.
func (s *EventService) Recent(ctx context.Context, limit int, since *time.Time) ([]model.Event, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	if limit > MaxEventLimit {
		limit = MaxEventLimit
	}

	return s.store.ListRecent(ctx, limit, since)
}

// Clear deletes all stored events and returns the number deleted.
func (s *EventService) Clear(ctx context.Context) (int64, error) {
	return s.store.Clear(ctx)
}

// DatabaseStatus reports whether the event store is reachable. The health
// endpoint stays 200 either way so orchestrators do not restart the app
// during transient database trouble.
func (s *EventService) DatabaseStatus(ctx context.Context) string {
	if err := s.store.Ping(ctx); err != nil {
		return "error"
	}
	return "connected"
}

// parseTimestamp accepts ISO 8601 timestamps with or without sub-second
// precision. A trailing "Z" and numeric offsets are both handled by RFC3339.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("timestamp is required")
	}

	for _, format := range []string{time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
