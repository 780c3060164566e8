package funnel

import (
	"errors"
	"strings"
	"time"

	"github.com/AtRiskMedia/compliance-funnel/internal/domain/apperr"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/content"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/entities/scan"
)

const (
	DefaultScanDuration = 60 * time.Second
	DefaultPreviewSize  = 3
)

// Machine applies events to funnels. It holds only read-only dependencies,
// so one Machine serves every visitor.
type Machine struct {
	catalog     *content.Store
	statuses    []string
	duration    time.Duration
	previewSize int
	rng         content.Rand
	newID       func() string
	now         func() time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock injects the time source used to stamp scan starts.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithRand injects the random source used to sample preview violations.
func WithRand(rng content.Rand) Option {
	return func(m *Machine) { m.rng = rng }
}

// WithIDGenerator injects the scan identifier generator.
func WithIDGenerator(newID func() string) Option {
	return func(m *Machine) { m.newID = newID }
}

// WithScanDuration sets how long a scan runs before results are shown.
func WithScanDuration(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.duration = d
		}
	}
}

// WithPreviewSize sets how many violations the results preview shows.
func WithPreviewSize(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.previewSize = n
		}
	}
}

// NewMachine builds a Machine over the given content store.
func NewMachine(catalog *content.Store, opts ...Option) *Machine {
	m := &Machine{
		catalog:     catalog,
		statuses:    catalog.ScanStatuses(),
		duration:    DefaultScanDuration,
		previewSize: DefaultPreviewSize,
		newID:       scan.NewID,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ScanDuration is the fixed length of a scan.
func (m *Machine) ScanDuration() time.Duration { return m.duration }

// Statuses returns the status lines a scan steps through.
func (m *Machine) Statuses() []string {
	return append([]string(nil), m.statuses...)
}

// Status returns the status line for f's current scan position.
func (m *Machine) Status(f Funnel) string {
	if len(m.statuses) == 0 {
		return ""
	}
	i := min(max(f.StatusIndex, 0), len(m.statuses)-1)
	return m.statuses[i]
}

// Apply advances f by ev. Invalid input sets f.Error and returns a
// validation error without changing state; events that do not apply to the
// current state return ErrInvalidTransition. Ticks outside a scan are
// ignored, since a stray timer may fire after a scan was skipped or closed.
func (m *Machine) Apply(f Funnel, ev Event) (Funnel, error) {
	if _, ok := ev.(Close); ok {
		if !f.State.Gated() {
			return invalid(f, ev)
		}
		return Funnel{State: Idle}, nil
	}

	switch f.State {
	case Idle:
		if e, ok := ev.(SubmitURL); ok {
			return m.startScan(f, e)
		}
	case Scanning:
		switch e := ev.(type) {
		case Tick:
			return m.tick(f, e.Now), nil
		case Skip:
			return m.completeScan(f), nil
		}
	case ResultsPreview:
		if _, ok := ev.(Unlock); ok {
			f.State = LeadCapture
			f.Error = ""
			return f, nil
		}
	case LeadCapture:
		if e, ok := ev.(SubmitLead); ok {
			return m.captureLead(f, e)
		}
	case Offer:
		if _, ok := ev.(Accept); ok {
			f.State = Checkout
			return f, nil
		}
	case Checkout:
		if e, ok := ev.(PaymentCompleted); ok {
			if strings.TrimSpace(e.SessionID) == "" {
				return withError(f, apperr.Validation("Session ID is required"))
			}
			f.State = Confirmation
			f.SessionID = e.SessionID
			f.Error = ""
			return f, nil
		}
	}

	if _, ok := ev.(Tick); ok {
		return f, nil
	}
	return invalid(f, ev)
}

func (m *Machine) startScan(f Funnel, e SubmitURL) (Funnel, error) {
	normalized, err := NormalizeURL(e.Raw)
	if err != nil {
		return withError(f, err)
	}
	return Funnel{
		State:     Scanning,
		ScanID:    m.newID(),
		URL:       normalized,
		StartedAt: m.now(),
	}, nil
}

// tick reconciles progress and status from a single clock reading.
func (m *Machine) tick(f Funnel, now time.Time) Funnel {
	elapsed := now.Sub(f.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= m.duration {
		return m.completeScan(f)
	}

	f.Progress = float64(elapsed) / float64(m.duration) * 100
	if n := len(m.statuses); n > 0 {
		perStatus := m.duration / time.Duration(n)
		f.StatusIndex = min(int(elapsed/perStatus), n-1)
	}
	return f
}

func (m *Machine) completeScan(f Funnel) Funnel {
	f.State = ResultsPreview
	f.Progress = 100
	f.StatusIndex = max(len(m.statuses)-1, 0)
	f.Violations = m.catalog.Sample(m.rng, m.previewSize)
	f.RiskLevel = content.RiskLevel(f.Violations)
	f.Error = ""
	return f
}

func (m *Machine) captureLead(f Funnel, e SubmitLead) (Funnel, error) {
	if err := e.Lead.Validate(); err != nil {
		return withError(f, err)
	}
	f.State = Offer
	f.Lead = e.Lead.Normalize()
	f.Error = ""
	return f, nil
}

func withError(f Funnel, err error) (Funnel, error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		f.Error = ae.Message
	} else {
		f.Error = err.Error()
	}
	return f, err
}
