// Package container provides dependency injection for all singleton services
package container

import (
	"errors"
	"fmt"

	"github.com/AtRiskMedia/compliance-funnel/internal/application/services"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/content"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/funnel"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/caching/cleanup"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/caching/reports"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/email"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/payments"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/rendering"
	"github.com/AtRiskMedia/compliance-funnel/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services (stateless singletons)
	FunnelService  *services.FunnelService
	ReportService  *services.ReportService
	PaymentService *services.PaymentService

	// Infrastructure Dependencies
	Config        *config.Config
	Logger        *logging.ChanneledLogger
	PerfTracker   *performance.Tracker
	Content       *content.Store
	ReportCache   *reports.Cache
	Renderer      rendering.Renderer
	Payments      payments.Provider
	Mailer        email.Service // nil when email is not configured
	CleanupWorker *cleanup.Worker
}

// Option replaces an infrastructure adapter, mainly for tests.
type Option func(*Container)

func WithRenderer(r rendering.Renderer) Option {
	return func(c *Container) { c.Renderer = r }
}

func WithPaymentProvider(p payments.Provider) Option {
	return func(c *Container) { c.Payments = p }
}

func WithMailer(m email.Service) Option {
	return func(c *Container) { c.Mailer = m }
}

// NewContainer creates and wires all singleton services
func NewContainer(cfg *config.Config, logger *logging.ChanneledLogger, opts ...Option) (*Container, error) {
	catalog, err := content.Load(cfg.ContentFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load content tables: %w", err)
	}

	c := &Container{
		Config:      cfg,
		Logger:      logger,
		PerfTracker: performance.NewTracker(logger.Perf(), performance.DefaultThresholds()),
		Content:     catalog,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.Renderer == nil {
		c.Renderer = rendering.NewChromeRenderer(cfg, logger.Report())
	}
	if c.Payments == nil {
		c.Payments = payments.NewStripeProvider(cfg.StripeSecretKey)
	}
	if c.Mailer == nil {
		mailer, err := email.NewService(cfg)
		switch {
		case errors.Is(err, email.ErrNotConfigured):
			logger.Email().Warn("RESEND_API_KEY not set; report emails are disabled")
		case err != nil:
			return nil, fmt.Errorf("failed to create email service: %w", err)
		default:
			c.Mailer = mailer
		}
	}

	c.ReportCache = reports.NewCache(reports.NewStore(cfg.ReportsDir), logger.Report())
	c.CleanupWorker = cleanup.NewWorker(cleanup.NewConfig(cfg), logger.Cleanup(), cleanup.WithTracker(c.PerfTracker))

	machine := funnel.NewMachine(catalog, funnel.WithScanDuration(cfg.ScanDuration))
	c.FunnelService = services.NewFunnelService(machine, catalog, logger.Funnel())
	c.ReportService = services.NewReportService(c.ReportCache, c.Renderer, catalog, logger.Report(),
		services.WithReportTracker(c.PerfTracker))
	c.PaymentService = services.NewPaymentService(cfg, c.Payments, c.Mailer, c.PerfTracker, logger.Payment())

	return c, nil
}
