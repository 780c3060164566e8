package performance

import (
	"log/slog"
	"sync"
	"time"
)

// Thresholds are the durations above which an operation is logged as slow.
type Thresholds struct {
	Default time.Duration
	ByOp    map[string]time.Duration
}

// DefaultThresholds returns sensible default slow-operation thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		Default: 500 * time.Millisecond,
		ByOp: map[string]time.Duration{
			"report:render":    10 * time.Second,
			"payment:checkout": 2 * time.Second,
			"cleanup:sweep":    5 * time.Second,
		},
	}
}

func (th Thresholds) For(operation string) time.Duration {
	if d, ok := th.ByOp[operation]; ok {
		return d
	}
	return th.Default
}

// Stats aggregates completed markers for one operation.
type Stats struct {
	Count    int           `json:"count"`
	Failures int           `json:"failures"`
	Slow     int           `json:"slow"`
	Total    time.Duration `json:"total"`
	Max      time.Duration `json:"max"`
}

// Average returns the mean duration, or zero before any completion.
func (s Stats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Tracker hands out markers and aggregates them once they complete.
type Tracker struct {
	logger     *slog.Logger
	thresholds Thresholds
	now        func() time.Time

	mu    sync.RWMutex
	stats map[string]*Stats
}

// NewTracker creates a tracker that logs slow and failed operations to logger.
// A nil logger only aggregates.
func NewTracker(logger *slog.Logger, thresholds Thresholds) *Tracker {
	return &Tracker{
		logger:     logger,
		thresholds: thresholds,
		now:        time.Now,
		stats:      make(map[string]*Stats),
	}
}

// StartOperation creates a performance marker for an operation
func (t *Tracker) StartOperation(operation, key string) *Marker {
	return &Marker{
		Operation: operation,
		Key:       key,
		StartTime: t.now(),
		Metadata:  make(map[string]any),
		Success:   true, // Assume success until proven otherwise
		tracker:   t,
	}
}

func (t *Tracker) record(m *Marker) {
	threshold := t.thresholds.For(m.Operation)
	slow := m.Duration > threshold

	t.mu.Lock()
	s, ok := t.stats[m.Operation]
	if !ok {
		s = &Stats{}
		t.stats[m.Operation] = s
	}
	s.Count++
	s.Total += m.Duration
	s.Max = max(s.Max, m.Duration)
	if !m.Success {
		s.Failures++
	}
	if slow {
		s.Slow++
	}
	t.mu.Unlock()

	if t.logger == nil {
		return
	}
	switch {
	case !m.Success:
		t.logger.Warn("Operation failed",
			"operation", m.Operation, "key", m.Key, "duration", m.Duration, "error", m.Error)
	case slow:
		t.logger.Warn("Slow operation",
			"operation", m.Operation, "key", m.Key, "duration", m.Duration, "threshold", threshold)
	default:
		t.logger.Debug("Operation completed",
			"operation", m.Operation, "key", m.Key, "duration", m.Duration)
	}
}

// Snapshot returns a copy of the per-operation aggregates.
func (t *Tracker) Snapshot() map[string]Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Stats, len(t.stats))
	for op, s := range t.stats {
		out[op] = *s
	}
	return out
}
