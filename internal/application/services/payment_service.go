package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/AtRiskMedia/compliance-funnel/internal/domain/apperr"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/entities/scan"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/user"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/email"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/payments"
	"github.com/AtRiskMedia/compliance-funnel/pkg/config"
)

const (
	MaxCheckoutQuantity = 10

	// Mock identifiers used by the debug checkout redirect.
	DebugSessionID = "cs_test_debug_session_12345"
	DebugScanID    = "CCFP-DEBUG-12345-ABCDEF"
)

// CheckoutRequest is the body of a checkout request.
type CheckoutRequest struct {
	Lead     *user.Lead `json:"leadData"`
	ScanID   string     `json:"scanId"`
	Quantity int64      `json:"quantity"`
}

// CheckoutSession is what the browser needs to redirect to the provider.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// PaymentService creates checkout sessions and processes provider webhooks.
type PaymentService struct {
	cfg      *config.Config
	provider payments.Provider
	mailer   email.Service // nil when email is not configured
	tracker  *performance.Tracker
	logger   *slog.Logger
}

// NewPaymentService creates a new payment application service
func NewPaymentService(cfg *config.Config, provider payments.Provider, mailer email.Service, tracker *performance.Tracker, logger *slog.Logger) *PaymentService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PaymentService{
		cfg:      cfg,
		provider: provider,
		mailer:   mailer,
		tracker:  tracker,
		logger:   logger,
	}
}

func stripeConfigError() error {
	return apperr.Configuration(apperr.TypeStripeConfig,
		"Stripe configuration required",
		"Please set up your Stripe keys in the environment (STRIPE_SECRET_KEY, STRIPE_WEBHOOK_SECRET).")
}

// SuccessURL is where the provider redirects after payment. The provider
// substitutes the session id placeholder.
func (s *PaymentService) SuccessURL(scanID string) string {
	return fmt.Sprintf("%s/confirmation?scanId=%s&session_id=%s",
		s.cfg.PublicBaseURL, url.QueryEscape(scanID), payments.CheckoutSessionIDTemplate)
}

// CancelURL is where the provider redirects when the visitor backs out.
func (s *PaymentService) CancelURL() string {
	return s.cfg.PublicBaseURL + "/checkout-cancelled"
}

// ReportURL is the download link for a paid report.
func (s *PaymentService) ReportURL(scanID string) string {
	return s.cfg.PublicBaseURL + "/reports/" + url.PathEscape(scanID)
}

// DebugCheckoutURL is the confirmation URL for a simulated completed checkout.
func (s *PaymentService) DebugCheckoutURL() string {
	return fmt.Sprintf("%s/confirmation?scanId=%s&session_id=%s",
		s.cfg.PublicBaseURL, DebugScanID, DebugSessionID)
}

// CreateCheckout validates the request and creates a provider session.
func (s *PaymentService) CreateCheckout(ctx context.Context, req CheckoutRequest) (_ *CheckoutSession, err error) {
	if req.Lead == nil || strings.TrimSpace(req.ScanID) == "" {
		return nil, apperr.Validation("Lead data and scan ID are required")
	}
	if err := scan.ValidateID(req.ScanID); err != nil {
		return nil, err
	}
	if err := req.Lead.Validate(); err != nil {
		return nil, err
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 || quantity > MaxCheckoutQuantity {
		return nil, apperr.Validation(fmt.Sprintf("Quantity must be between 1 and %d", MaxCheckoutQuantity))
	}
	if !s.cfg.PaymentsConfigured() {
		s.logger.Error("Checkout refused: Stripe secret key missing or placeholder", "scanId", req.ScanID)
		return nil, stripeConfigError()
	}

	if s.tracker != nil {
		marker := s.tracker.StartOperation("payment:checkout", req.ScanID)
		defer func() {
			marker.SetError(err)
			marker.Complete()
		}()
	}

	lead := req.Lead.Normalize()
	session, err := s.provider.CreateCheckoutSession(ctx, payments.CheckoutParams{
		ProductName:        s.cfg.CheckoutProductName,
		ProductDescription: s.cfg.CheckoutProductDescription,
		UnitAmount:         s.cfg.CheckoutUnitAmount,
		Currency:           s.cfg.CheckoutCurrency,
		Quantity:           quantity,
		CustomerEmail:      lead.Email,
		SuccessURL:         s.SuccessURL(req.ScanID),
		CancelURL:          s.CancelURL(),
		Metadata: map[string]string{
			"scanId":       req.ScanID,
			"businessName": lead.BusinessName,
			"ownerName":    lead.OwnerName,
			"email":        lead.Email,
			"phone":        lead.Phone,
		},
	})
	if err != nil {
		s.logger.Error("Checkout session creation failed", "scanId", req.ScanID, "error", err)
		return nil, apperr.Upstream(apperr.TypeStripeCheckout, "Failed to create checkout session", err)
	}

	s.logger.Info("Checkout session created", "scanId", req.ScanID, "sessionId", session.ID, "quantity", quantity)
	return &CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

// GetCheckoutSession returns the provider's record of a session.
func (s *PaymentService) GetCheckoutSession(ctx context.Context, sessionID string) (*payments.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperr.Validation("Session ID is required")
	}
	if !s.cfg.PaymentsConfigured() {
		return nil, stripeConfigError()
	}
	session, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		s.logger.Error("Checkout session lookup failed", "sessionId", sessionID, "error", err)
		return nil, apperr.Upstream(apperr.TypeStripeCheckout, "Failed to retrieve checkout session", err)
	}
	return session, nil
}

// HandleWebhook authenticates and processes one webhook delivery. Events
// that fail authentication are discarded without side effects.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (*payments.Event, error) {
	if strings.TrimSpace(signatureHeader) == "" {
		return nil, apperr.Validation("No signature provided")
	}
	if !s.cfg.WebhookConfigured() {
		s.logger.Error("Webhook refused: STRIPE_WEBHOOK_SECRET missing or placeholder")
		return nil, stripeConfigError()
	}

	ev, err := s.provider.ParseWebhook(payload, signatureHeader, s.cfg.StripeWebhookSecret)
	if errors.Is(err, payments.ErrInvalidSignature) {
		s.logger.Warn("Webhook signature verification failed", "error", err)
		return nil, apperr.Integrity("Invalid signature", err)
	}
	if err != nil {
		s.logger.Warn("Webhook payload could not be decoded", "error", err)
		return nil, apperr.Validation("Invalid webhook payload")
	}

	switch ev.Type {
	case payments.EventCheckoutCompleted:
		s.checkoutCompleted(ctx, ev)
	case payments.EventPaymentSucceeded:
		if pi := ev.PaymentIntent; pi != nil {
			s.logger.Info("Payment succeeded", "paymentIntentId", pi.ID, "amount", pi.Amount, "currency", pi.Currency)
		}
	case payments.EventPaymentFailed:
		if pi := ev.PaymentIntent; pi != nil {
			s.logger.Warn("Payment failed", "paymentIntentId", pi.ID, "amount", pi.Amount, "reason", pi.Failure)
		}
	default:
		s.logger.Debug("Unhandled webhook event type", "eventId", ev.ID, "type", ev.Type)
	}
	return ev, nil
}

func (s *PaymentService) checkoutCompleted(ctx context.Context, ev *payments.Event) {
	cs := ev.Session
	if cs == nil {
		s.logger.Warn("Checkout completed event without a session", "eventId", ev.ID)
		return
	}
	md := cs.Metadata
	s.logger.Info("Payment completed",
		"eventId", ev.ID,
		"sessionId", cs.ID,
		"scanId", md["scanId"],
		"businessName", md["businessName"],
		"ownerName", md["ownerName"],
		"email", logging.MaskEmail(md["email"]),
		"amount", cs.AmountTotal,
		"currency", cs.Currency,
		"paymentStatus", cs.PaymentStatus,
	)

	if s.mailer == nil {
		return
	}
	to := md["email"]
	if to == "" {
		to = cs.CustomerEmail
	}
	if to == "" || md["scanId"] == "" {
		s.logger.Warn("Report email skipped: missing recipient or scan id", "sessionId", cs.ID)
		return
	}
	err := s.mailer.SendReportReady(ctx, email.ReportReady{
		To:           to,
		OwnerName:    md["ownerName"],
		BusinessName: md["businessName"],
		ScanID:       md["scanId"],
		ReportURL:    s.ReportURL(md["scanId"]),
		AmountPaid:   FormatAmount(cs.AmountTotal, cs.Currency),
	})
	if err != nil {
		// the payment is recorded at the provider, so the delivery still succeeds
		s.logger.Error("Report email failed", "sessionId", cs.ID, "scanId", md["scanId"], "error", err)
		return
	}
	s.logger.Info("Report email sent", "sessionId", cs.ID, "to", logging.MaskEmail(to))
}

// FormatAmount renders minor units for display.
func FormatAmount(minor int64, currency string) string {
	major := fmt.Sprintf("%d.%02d", minor/100, abs(minor%100))
	if minor < 0 && minor > -100 {
		major = "-" + major
	}
	if strings.EqualFold(currency, "usd") {
		return "$" + major
	}
	return major + " " + strings.ToUpper(currency)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
