// Package retention prunes abandoned intake sessions so stale transcripts and
// half-collected profiles do not accumulate forever.
package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/sitewizard/sitewizard/store"
)

type Runner struct {
	store    *store.Store
	interval time.Duration
	maxAge   time.Duration
}

// NewRunner creates a session retention runner. Sessions untouched for maxAge
// are deleted together with their transcripts.
func NewRunner(store *store.Store, maxAge time.Duration) *Runner {
	return &Runner{
		store:    store,
		interval: 1 * time.Hour,
		maxAge:   maxAge,
	}
}

// Run starts the background task.
func (r *Runner) Run(ctx context.Context) {
	// Prune once on startup
	r.prune(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.prune(ctx)
		case <-ctx.Done():
			slog.Info("retention runner stopped")
			return
		}
	}
}

// RunOnce prunes once (for manual trigger).
func (r *Runner) RunOnce(ctx context.Context) {
	r.prune(ctx)
}

func (r *Runner) prune(ctx context.Context) {
	cutoff := time.Now().Add(-r.maxAge).Unix()
	n, err := r.store.DeleteIntakeSessionsBefore(ctx, cutoff)
	if err != nil {
		slog.Error("failed to prune stale intake sessions", "error", err)
		return
	}
	if n > 0 {
		slog.Info("pruned stale intake sessions", "count", n)
	}
}
