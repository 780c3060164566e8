// Package services provides application-level services that orchestrate
// domain logic and coordinate the infrastructure adapters.
package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/AtRiskMedia/compliance-funnel/internal/domain/apperr"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/content"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/entities/scan"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/user"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/caching/reports"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/rendering"
	"github.com/AtRiskMedia/compliance-funnel/internal/presentation/templates"
)

// ReportDateLayout is the date stamp printed on reports.
const ReportDateLayout = "January 2, 2006 at 03:04 PM"

// ReportService returns the PDF report for a scan, generating it on first
// request.
type ReportService struct {
	cache    *reports.Cache
	renderer rendering.Renderer
	catalog  *content.Store
	rng      content.Rand
	now      func() time.Time
	tracker  *performance.Tracker
	logger   *slog.Logger
}

// ReportOption configures a ReportService.
type ReportOption func(*ReportService)

func WithReportClock(now func() time.Time) ReportOption {
	return func(s *ReportService) { s.now = now }
}

func WithReportRand(rng content.Rand) ReportOption {
	return func(s *ReportService) { s.rng = rng }
}

func WithReportTracker(t *performance.Tracker) ReportOption {
	return func(s *ReportService) { s.tracker = t }
}

// NewReportService creates a new report application service
func NewReportService(cache *reports.Cache, renderer rendering.Renderer, catalog *content.Store, logger *slog.Logger, opts ...ReportOption) *ReportService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &ReportService{
		cache:    cache,
		renderer: renderer,
		catalog:  catalog,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the stored report for scanID or generates one. lead
// may be nil; blank fields print as placeholders. Once a report exists it is
// returned unchanged regardless of lead.
func (s *ReportService) GetOrCreate(ctx context.Context, scanID string, lead *user.Lead) ([]byte, error) {
	if err := scan.ValidateID(scanID); err != nil {
		return nil, err
	}

	data, outcome, err := s.cache.GetOrCreate(ctx, scanID, func(ctx context.Context) ([]byte, error) {
		return s.generate(ctx, scanID, lead)
	})
	if err != nil {
		s.logger.Error("Report request failed", "scanId", scanID, "error", err)
		return nil, err
	}
	s.logger.Info("Report served", "scanId", scanID, "outcome", string(outcome), "bytes", len(data))
	return data, nil
}

// ReportData assembles the fields printed on a new report.
func (s *ReportService) ReportData(scanID string, lead *user.Lead) templates.ReportData {
	filled := lead.WithDefaults()
	sampled := s.catalog.Sample(s.rng, content.ReportCount(s.rng))
	lines := make([]string, len(sampled))
	for i, v := range sampled {
		lines[i] = v.ReportLine()
	}
	return templates.ReportData{
		ScanID:       scanID,
		Date:         s.now().Format(ReportDateLayout),
		BusinessName: filled.BusinessName,
		OwnerName:    filled.OwnerName,
		Email:        filled.Email,
		Violations:   lines,
	}
}

func (s *ReportService) generate(ctx context.Context, scanID string, lead *user.Lead) (pdf []byte, err error) {
	if s.tracker != nil {
		marker := s.tracker.StartOperation("report:render", scanID)
		defer func() {
			marker.SetError(err)
			marker.Complete()
		}()
	}

	html, err := templates.RenderReport(s.ReportData(scanID, lead))
	if err != nil {
		return nil, apperr.Upstream(apperr.TypeRender, "Failed to render report template", err)
	}
	pdf, err = s.renderer.RenderPDF(ctx, html)
	if err != nil {
		return nil, apperr.Upstream(apperr.TypeRender, "Failed to render report PDF", err)
	}
	if len(pdf) == 0 {
		return nil, apperr.Upstream(apperr.TypeRender, "Failed to render report PDF", errors.New("render engine returned no bytes"))
	}
	s.logger.Debug("Report generated", "scanId", scanID, "htmlBytes", len(html), "pdfBytes", len(pdf))
	return pdf, nil
}
