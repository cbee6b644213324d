package engine

import (
	"context"
	"time"

	"codenerd/internal/dedup"
	"codenerd/internal/logging"
)

// RunMaintenance drives the auto-promote sweep and fingerprint backfill
// on a ticker, on the calling goroutine, touching the store only through
// its transactional operations -- no state is shared with the dispatcher
// beyond the store itself, per §5. It blocks until ctx is cancelled.
func (e *Engine) RunMaintenance(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Get(logging.CategoryBoot).Info("maintenance loop started, interval=%s", interval)
	for {
		select {
		case <-ctx.Done():
			logging.Get(logging.CategoryBoot).Info("maintenance loop stopped")
			return
		case <-ticker.C:
			e.runMaintenanceCycle(ctx)
		}
	}
}

func (e *Engine) runMaintenanceCycle(ctx context.Context) {
	promoted, err := e.Pipeline.AutoPromote(ctx)
	if err != nil {
		logging.Get(logging.CategoryPipeline).Warn("auto-promote sweep failed: %v", err)
	} else if len(promoted) > 0 {
		logging.Get(logging.CategoryPipeline).Info("auto-promoted %d candidates", len(promoted))
	}

	fixed, err := dedup.Sweep(e.local)
	if err != nil {
		logging.Get(logging.CategoryDedup).Warn("fingerprint sweep failed: %v", err)
	} else if fixed > 0 {
		logging.Get(logging.CategoryDedup).Info("backfilled %d stale fingerprints", fixed)
	}
}
