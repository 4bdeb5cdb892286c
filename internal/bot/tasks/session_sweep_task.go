package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/splitleh/splitlehbot/internal/metrics"
)

// newSessionSweepTask drops expired member-addition requests. Stores that
// expire entries on their own report zero.
func newSessionSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "session_sweep")

	return func(ctx context.Context) error {
		startTime := time.Now()

		removed, err := deps.Sessions.Sweep(ctx)
		duration := time.Since(startTime)
		if err != nil {
			log.ErrorContext(ctx, "Session sweep failed", "error", err, "duration", duration)
			return fmt.Errorf("session sweep failed: %w", err)
		}

		metrics.AddSessionsEvicted(removed)
		log.DebugContext(ctx, "Session sweep completed", "removed", removed, "duration", duration)
		return nil
	}
}
