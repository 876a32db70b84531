package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/hookboard/internal/domain/model"
)

// ErrDuplicateEvent indicates an event with the same request_id is already stored.
var ErrDuplicateEvent = errors.New("duplicate event")

// EventStore defines the driven port for webhook event persistence.
// Insert returns ErrDuplicateEvent if an event with the same RequestID
// already exists; the stored row is left untouched in that case.
type EventStore interface {
	Insert(ctx context.Context, event model.Event) (model.Event, error)
	ListRecent(ctx context.Context, limit int, since *time.Time) ([]model.Event, error)
	Clear(ctx context.Context) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Ping(ctx context.Context) error
}
