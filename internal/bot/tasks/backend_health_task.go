package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/splitleh/splitlehbot/internal/metrics"
)

// healthProbeTimeout bounds a single probe.
const healthProbeTimeout = 5 * time.Second

// newBackendHealthTask probes the backend and exports the result as the
// splitleh_backend_up gauge.
func newBackendHealthTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "backend_health")

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
		defer cancel()

		if err := deps.Backend.Ping(ctx); err != nil {
			metrics.SetBackendUp(false)
			log.WarnContext(ctx, "Backend health probe failed", "error", err)
			return fmt.Errorf("backend unreachable: %w", err)
		}

		metrics.SetBackendUp(true)
		log.DebugContext(ctx, "Backend health probe succeeded")
		return nil
	}
}
