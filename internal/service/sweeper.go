package service

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper runs the idle sweep once at start and then on a fixed
// interval until the context is cancelled.
type Sweeper struct {
	service  *TransitionService
	interval time.Duration
}

// NewSweeper creates a Sweeper around the given service.
func NewSweeper(service *TransitionService, interval time.Duration) *Sweeper {
	return &Sweeper{service: service, interval: interval}
}

// Run blocks until ctx is cancelled. Sweep failures are logged and
// swallowed; the next tick retries naturally.
func (w *Sweeper) Run(ctx context.Context) {
	slog.Info("idle sweeper started", "interval", w.interval.String())

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("idle sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Sweeper) sweep(ctx context.Context) {
	if _, err := w.service.RunIdleSweep(ctx); err != nil {
		slog.Error("idle sweep failed", "error", err)
	}
}
