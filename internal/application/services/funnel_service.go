package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/AtRiskMedia/compliance-funnel/internal/domain/content"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/entities/scan"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/funnel"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/user"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/observability/logging"
)

// DefaultTickInterval is how often a streamed scan reports progress.
const DefaultTickInterval = 100 * time.Millisecond

// SSE event names emitted by Stream.
const (
	StreamEventStart    = "start"
	StreamEventProgress = "progress"
	StreamEventResults  = "results"
)

// ScanStarted describes a scan that has left the idle screen.
type ScanStarted struct {
	ScanID     string   `json:"scanId"`
	URL        string   `json:"url"`
	DurationMs int64    `json:"durationMs"`
	Statuses   []string `json:"statuses"`
}

// ScanProgress is one progress update of a running scan.
type ScanProgress struct {
	ScanID      string  `json:"scanId"`
	Progress    float64 `json:"progress"`
	StatusIndex int     `json:"statusIndex"`
	Status      string  `json:"status"`
}

// ScanResults is the results preview of a finished scan.
type ScanResults struct {
	ScanID     string              `json:"scanId"`
	URL        string              `json:"url"`
	Violations []content.Violation `json:"violations"`
	RiskLevel  content.Severity    `json:"riskLevel"`
	RiskStyle  content.RiskStyle   `json:"riskStyle"`
}

// EmitFunc delivers one stream event. Returning false stops the stream.
type EmitFunc func(event string, data any) bool

// FunnelService drives the funnel machine for the scan and lead screens.
type FunnelService struct {
	machine *funnel.Machine
	catalog *content.Store
	tick    time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// FunnelOption configures a FunnelService.
type FunnelOption func(*FunnelService)

// WithTickInterval sets how often Stream advances a scan.
func WithTickInterval(d time.Duration) FunnelOption {
	return func(s *FunnelService) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithFunnelClock sets the clock read on every tick. It should match the
// machine's clock.
func WithFunnelClock(now func() time.Time) FunnelOption {
	return func(s *FunnelService) { s.now = now }
}

func NewFunnelService(machine *funnel.Machine, catalog *content.Store, logger *slog.Logger, opts ...FunnelOption) *FunnelService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &FunnelService{
		machine: machine,
		catalog: catalog,
		tick:    DefaultTickInterval,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartScan validates the submitted address and opens a scan.
func (s *FunnelService) StartScan(raw string) (*ScanStarted, error) {
	f, err := s.start(raw)
	if err != nil {
		return nil, err
	}
	return s.started(f), nil
}

// Stream runs a scan to completion, emitting a start event, progress events
// on every tick and a final results event. It returns ctx.Err() if the
// client goes away first.
func (s *FunnelService) Stream(ctx context.Context, raw string, emit EmitFunc) error {
	f, err := s.start(raw)
	if err != nil {
		return err
	}
	if !emit(StreamEventStart, s.started(f)) {
		return nil
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Scan stream abandoned", "scanId", f.ScanID, "progress", f.Progress)
			return ctx.Err()
		case <-ticker.C:
			f, err = s.machine.Apply(f, funnel.Tick{Now: s.now()})
			if err != nil {
				return err
			}
			if f.State == funnel.ResultsPreview {
				res := s.results(f)
				s.logger.Info("Scan completed", "scanId", f.ScanID, "riskLevel", string(res.RiskLevel))
				emit(StreamEventResults, res)
				return nil
			}
			ok := emit(StreamEventProgress, ScanProgress{
				ScanID:      f.ScanID,
				Progress:    f.Progress,
				StatusIndex: f.StatusIndex,
				Status:      s.machine.Status(f),
			})
			if !ok {
				return nil
			}
		}
	}
}

// Preview skips the scan animation and returns the results straight away.
func (s *FunnelService) Preview(raw string) (*ScanResults, error) {
	f, err := s.start(raw)
	if err != nil {
		return nil, err
	}
	f, err = s.machine.Apply(f, funnel.Skip{})
	if err != nil {
		return nil, err
	}
	res := s.results(f)
	s.logger.Info("Scan skipped to results", "scanId", f.ScanID, "riskLevel", string(res.RiskLevel))
	return &res, nil
}

// CaptureLead validates the lead form for scanID and returns the normalized
// lead. Nothing is stored; the lead travels on to checkout.
func (s *FunnelService) CaptureLead(scanID string, lead user.Lead) (user.Lead, error) {
	if err := scan.ValidateID(scanID); err != nil {
		return user.Lead{}, err
	}
	f, err := s.machine.Apply(funnel.Funnel{State: funnel.LeadCapture, ScanID: scanID}, funnel.SubmitLead{Lead: lead})
	if err != nil {
		return user.Lead{}, err
	}
	s.logger.Info("Lead captured",
		"scanId", scanID,
		"businessName", f.Lead.BusinessName,
		"email", logging.MaskEmail(f.Lead.Email),
	)
	return f.Lead, nil
}

// Content returns the public content tables.
func (s *FunnelService) Content() content.Tables {
	return s.catalog.Public()
}

// EstimateExposure returns the penalty estimate for a monthly transaction count.
func (s *FunnelService) EstimateExposure(monthlyTransactions int) content.Exposure {
	return content.EstimateExposure(monthlyTransactions)
}

func (s *FunnelService) start(raw string) (funnel.Funnel, error) {
	f, err := s.machine.Apply(funnel.Funnel{State: funnel.Idle}, funnel.SubmitURL{Raw: raw})
	if err != nil {
		s.logger.Debug("Scan request rejected", "error", err)
		return f, err
	}
	s.logger.Info("Scan started", "scanId", f.ScanID, "url", f.URL)
	return f, nil
}

func (s *FunnelService) started(f funnel.Funnel) *ScanStarted {
	return &ScanStarted{
		ScanID:     f.ScanID,
		URL:        f.URL,
		DurationMs: s.machine.ScanDuration().Milliseconds(),
		Statuses:   s.machine.Statuses(),
	}
}

func (s *FunnelService) results(f funnel.Funnel) ScanResults {
	return ScanResults{
		ScanID:     f.ScanID,
		URL:        f.URL,
		Violations: f.Violations,
		RiskLevel:  f.RiskLevel,
		RiskStyle:  s.catalog.RiskStyle(f.RiskLevel),
	}
}
