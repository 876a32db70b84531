package model

import (
	"errors"
	"fmt"
	"time"
)

// EventType classifies a webhook event.
type EventType string

const (
	EventTypePush        EventType = "push"
	EventTypePullRequest EventType = "pull_request"
	EventTypeMerge       EventType = "merge"
	EventTypeUnknown     EventType = "unknown"
)

// IsValid reports whether t is one of the accepted event types.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypePush, EventTypePullRequest, EventTypeMerge:
		return true
	}
	return false
}

// ErrInvalidEvent indicates an event failed validation before persistence.
var ErrInvalidEvent = errors.New("invalid event")

// Event represents a single webhook delivery tracked by hookboard.
type Event struct {
	ID         int64
	RequestID  string // Unique delivery identifier; basis for duplicate suppression.
	Type       EventType
	Author     string
	Action     string // pull_request action (opened, closed, ...); empty for push.
	FromBranch string // Source branch for pull_request/merge events.
	ToBranch   string // Target branch for pull_request/merge events.
	Branch     string // Pushed branch for push events.
	Timestamp  time.Time
	CreatedAt  time.Time
}

// Validate checks the fields required for persistence. RequestID is not
// required here; the ingest path generates one when absent.
func (e Event) Validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("%w: unrecognized event type %q", ErrInvalidEvent, string(e.Type))
	}
	if e.Author == "" {
		return fmt.Errorf("%w: author is required", ErrInvalidEvent)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidEvent)
	}
	return nil
}

// Summary returns a human-readable one-line description of the event, used
// for logging.
func (e Event) Summary() string {
	switch e.Type {
	case EventTypePush:
		return fmt.Sprintf("%s pushed to %s", e.Author, e.Branch)
	case EventTypePullRequest:
		return fmt.Sprintf("%s %s pull request %s -> %s", e.Author, e.Action, e.FromBranch, e.ToBranch)
	case EventTypeMerge:
		return fmt.Sprintf("%s merged %s into %s", e.Author, e.FromBranch, e.ToBranch)
	}
	return fmt.Sprintf("%s sent %s event", e.Author, string(e.Type))
}
