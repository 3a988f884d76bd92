// Package runlog consumes pipeline events, logs them and persists finished
// runs.
package runlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/hbnb-web/internal/events"
	"github.com/yourorg/hbnb-web/internal/store"
)

// Recorder persists finished runs. *store.Store implements it.
type Recorder interface {
	RecordRun(ctx context.Context, rec store.RunRecord) error
}

type Consumer struct {
	Pub      events.Publisher
	Recorder Recorder
	Logger   *slog.Logger
}

// Run blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context) {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	sub := c.Pub.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-sub:
			c.Handle(ctx, evt)
		}
	}
}

// Handle processes a single event.
func (c *Consumer) Handle(ctx context.Context, evt events.Event) {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	log := c.Logger.With("run_id", evt.RunID, "variant", evt.Variant)

	switch evt.Kind {
	case events.KindTransition:
		log.Debug("pipeline transition", "state", evt.State)
	case events.KindBranchFailed:
		log.Debug("pipeline branch failed", "branch", evt.Branch, "error", evt.Err)
	case events.KindFinished:
		if c.Recorder == nil {
			return
		}
		rec := store.RunRecord{
			RunID:      evt.RunID,
			Variant:    evt.Variant,
			FinalState: evt.State,
			Rendered:   evt.Rendered,
			Degraded:   evt.Degraded,
			JoinMisses: evt.Misses,
			Failures:   evt.Failures,
			Error:      evt.Err,
			FinishedAt: evt.At,
		}
		if rec.FinishedAt.IsZero() {
			rec.FinishedAt = time.Now()
		}
		wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := c.Recorder.RecordRun(wctx, rec); err != nil {
			log.Warn("unable to persist render run", "error", err)
		}
	}
}
