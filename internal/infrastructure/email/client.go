// Package email provides the email client for sending transactional emails.
package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/email/templates"
	"github.com/AtRiskMedia/compliance-funnel/pkg/config"
	"github.com/resendlabs/resend-go"
)

// ErrNotConfigured is returned by NewService when no API key is set.
var ErrNotConfigured = errors.New("email is not configured")

// ReportReady is the data for the email sent after a completed checkout.
type ReportReady struct {
	To           string
	OwnerName    string
	BusinessName string
	ScanID       string
	ReportURL    string
	AmountPaid   string
}

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendReportReady(ctx context.Context, msg ReportReady) error
}

type sender interface {
	Send(params *resend.SendEmailRequest) (resend.SendEmailResponse, error)
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	emails       sender
	fromEmail    string
	fromName     string
	supportEmail string
}

// NewService creates a new email service client, returning the Service interface.
func NewService(cfg *config.Config) (Service, error) {
	if !cfg.EmailConfigured() {
		return nil, ErrNotConfigured
	}
	client := resend.NewClient(cfg.ResendAPIKey)
	return &ResendClient{
		emails:       client.Emails,
		fromEmail:    cfg.EmailFrom,
		fromName:     cfg.EmailFromName,
		supportEmail: cfg.EmailFrom,
	}, nil
}

// SendReportReady composes and sends the "report ready" email.
func (c *ResendClient) SendReportReady(ctx context.Context, msg ReportReady) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := templates.GetReportReadyEmailContent(templates.ReportReadyEmailProps{
		OwnerName:    msg.OwnerName,
		BusinessName: msg.BusinessName,
		ScanID:       msg.ScanID,
		ReportURL:    msg.ReportURL,
		AmountPaid:   msg.AmountPaid,
	})
	if err != nil {
		return err
	}
	html, err := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader:    "Your compliance report is ready",
		Content:      content,
		SupportEmail: c.supportEmail,
	})
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{msg.To},
		Subject: "Your compliance report is ready",
		Html:    html,
	}
	if _, err := c.emails.Send(params); err != nil {
		return fmt.Errorf("failed to send report email via Resend: %w", err)
	}
	return nil
}
