// Package cleanup provides the report retention sweeper
package cleanup

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/caching/reports"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/observability/performance"
)

// Result summarises one sweep.
type Result struct {
	Scanned    int           `json:"scanned"`
	Deleted    int           `json:"deleted"`
	Failed     int           `json:"failed"`
	FreedBytes int64         `json:"freedBytes"`
	Duration   time.Duration `json:"duration"`
}

// Worker deletes report artifacts older than the retention window
type Worker struct {
	config  *Config
	logger  *slog.Logger
	tracker *performance.Tracker
	now     func() time.Time
	remove  func(string) error
}

// Option configures a Worker.
type Option func(*Worker)

// WithClock injects the time source used to age artifacts.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

// WithTracker records each sweep as a performance marker.
func WithTracker(t *performance.Tracker) Option {
	return func(w *Worker) { w.tracker = t }
}

// NewWorker creates a new retention worker with injected configuration
func NewWorker(config *Config, logger *slog.Logger, opts ...Option) *Worker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	w := &Worker{
		config: config,
		logger: logger,
		now:    time.Now,
		remove: os.Remove,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs an initial sweep when configured to, then sweeps on the
// configured interval until ctx is done. With no interval it returns after
// the initial sweep.
func (w *Worker) Start(ctx context.Context) {
	if w.config.RunOnStart {
		w.sweepAndLog(ctx)
	}
	if w.config.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.logger.Info("Report sweeper started",
		"interval", w.config.Interval, "retention", w.config.Retention, "dir", w.config.Dir)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Report sweeper stopping")
			return
		case <-ticker.C:
			w.sweepAndLog(ctx)
		}
	}
}

func (w *Worker) sweepAndLog(ctx context.Context) {
	if _, err := w.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Error("Report sweep failed", "error", err)
	}
}

// Sweep deletes every report (and abandoned temp write) whose modification
// time is older than the retention window. Deletion is best-effort: a file
// that cannot be removed is logged and counted, and the sweep continues. A
// missing directory is an empty sweep.
func (w *Worker) Sweep(ctx context.Context) (Result, error) {
	start := w.now()
	var res Result

	var marker *performance.Marker
	if w.tracker != nil {
		marker = w.tracker.StartOperation("cleanup:sweep", w.config.Dir)
		defer marker.Complete()
	}

	entries, err := os.ReadDir(w.config.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		w.logger.Debug("Reports directory missing, nothing to sweep", "dir", w.config.Dir)
		return res, nil
	}
	if err != nil {
		if marker != nil {
			marker.SetError(err)
		}
		return res, err
	}

	cutoff := start.Add(-w.config.Retention)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != reports.Ext && !reports.IsTempFile(name) {
			continue
		}
		res.Scanned++

		info, err := entry.Info()
		if err != nil {
			// removed by someone else since ReadDir
			if !errors.Is(err, fs.ErrNotExist) {
				res.Failed++
				w.logger.Warn("Could not stat report", "file", name, "error", err)
			}
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := w.remove(filepath.Join(w.config.Dir, name)); err != nil {
			res.Failed++
			w.logger.Warn("Could not delete expired report", "file", name, "error", err)
			continue
		}
		res.Deleted++
		res.FreedBytes += info.Size()
		w.logger.Debug("Deleted expired report", "file", name, "age", start.Sub(info.ModTime()))
	}

	res.Duration = w.now().Sub(start)
	if marker != nil {
		marker.AddMetadata("deleted", res.Deleted)
		marker.AddMetadata("failed", res.Failed)
	}
	if res.Deleted > 0 || res.Failed > 0 {
		w.logger.Info("Report sweep finished",
			"scanned", res.Scanned, "deleted", res.Deleted, "failed", res.Failed,
			"freedBytes", res.FreedBytes, "duration", res.Duration)
	}
	return res, nil
}
