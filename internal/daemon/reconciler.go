package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/logging"
)

// ViewportSource reports the current viewport size; zero means unknown.
type ViewportSource interface {
	ViewportSize() geometry.Size
}

// ViewportSink receives viewport changes. *manager.Manager implements it.
type ViewportSink interface {
	SetViewport(size geometry.Size)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *logging.ScopedLogger
}

// Reconciler periodically re-reads a viewport source and pushes changes to
// the window manager, so maximized windows and the tray follow a resized
// display even when no pointer gesture is in flight.
type Reconciler struct {
	interval time.Duration
	source   ViewportSource
	sink     ViewportSink
	logger   *logging.ScopedLogger

	mu   sync.Mutex
	last geometry.Size
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, source ViewportSource, sink ViewportSink) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	return &Reconciler{
		interval: interval,
		source:   source,
		sink:     sink,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single pass and reports whether the sink was updated.
func (r *Reconciler) reconcile() bool {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	size := r.source.ViewportSize()
	if size.IsZero() {
		return false
	}

	r.mu.Lock()
	if size == r.last {
		r.mu.Unlock()
		return false
	}
	prev := r.last
	r.last = size
	r.mu.Unlock()

	r.logger.Debug("viewport changed",
		"width", size.Width, "height", size.Height,
		"previous_width", prev.Width, "previous_height", prev.Height)
	r.sink.SetViewport(size)
	return true
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() bool {
	return r.reconcile()
}
