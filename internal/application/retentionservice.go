package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/hookboard/internal/domain/port/driven"
)

// pruneRequest represents a manual prune trigger.
type pruneRequest struct {
	done chan pruneResult
}

type pruneResult struct {
	deleted int64
	err     error
}

// RetentionService periodically deletes events older than the configured
// maximum age. The composition root only starts it when retention is enabled.
type RetentionService struct {
	store    driven.EventStore
	maxAge   time.Duration
	interval time.Duration
	pruneCh  chan pruneRequest
}

// NewRetentionService creates a RetentionService that prunes events older
// than maxAge every interval.
func NewRetentionService(store driven.EventStore, maxAge, interval time.Duration) *RetentionService {
	return &RetentionService{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		pruneCh:  make(chan pruneRequest),
	}
}

// Start begins the prune loop. It runs an immediate prune, then prunes on
// the configured interval, and also serves manual prune requests. Start
// blocks until the context is canceled.
func (s *RetentionService) Start(ctx context.Context) {
	if _, err := s.prune(ctx); err != nil {
		slog.Error("initial prune failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention service stopped")
			return
		case <-ticker.C:
			if _, err := s.prune(ctx); err != nil {
				slog.Error("prune cycle failed", "error", err)
			}
		case req := <-s.pruneCh:
			deleted, err := s.prune(ctx)
			req.done <- pruneResult{deleted: deleted, err: err}
		}
	}
}

// PruneNow triggers a prune outside the regular interval. It blocks until
// the prune completes or the context is canceled.
func (s *RetentionService) PruneNow(ctx context.Context) (int64, error) {
	req := pruneRequest{done: make(chan pruneResult, 1)}

	select {
	case s.pruneCh <- req:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case res := <-req.done:
		return res.deleted, res.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (s *RetentionService) prune(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.maxAge)

	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		slog.Info("pruned old events", "deleted", deleted, "cutoff", cutoff)
	}

	return deleted, nil
}
