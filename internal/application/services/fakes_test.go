package services

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/AtRiskMedia/compliance-funnel/internal/domain/content"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/email"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/payments"
	"github.com/AtRiskMedia/compliance-funnel/pkg/config"
)

// fakeRenderer "prints" by prefixing the HTML with a PDF header.
type fakeRenderer struct {
	calls atomic.Int32
	gate  chan struct{} // when set, RenderPDF blocks until it is closed
	err   error
}

func (r *fakeRenderer) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	r.calls.Add(1)
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return append([]byte("%PDF-1.4\n"), html...), nil
}

type fakeProvider struct {
	mu        sync.Mutex
	created   []payments.CheckoutParams
	createErr error
	session   *payments.Session
	getErr    error
}

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, params payments.CheckoutParams) (*payments.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, params)
	if p.createErr != nil {
		return nil, p.createErr
	}
	return &payments.Session{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

func (p *fakeProvider) GetCheckoutSession(_ context.Context, id string) (*payments.Session, error) {
	if p.getErr != nil {
		return nil, p.getErr
	}
	s := *p.session
	s.ID = id
	return &s, nil
}

func (p *fakeProvider) ParseWebhook(payload []byte, header, secret string) (*payments.Event, error) {
	return payments.NewStripeProvider("sk_test_123").ParseWebhook(payload, header, secret)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.ReportReady
	err  error
}

func (m *fakeMailer) SendReportReady(_ context.Context, msg email.ReportReady) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func testConfig(t *testing.T, vars map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(vars)
	if err != nil {
		t.Fatalf("config.LoadFrom() error = %v", err)
	}
	return cfg
}

func testCatalog(t *testing.T) *content.Store {
	t.Helper()
	store, err := content.Load("")
	if err != nil {
		t.Fatalf("content.Load() error = %v", err)
	}
	return store
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&safeWriter{w: &buf}, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

type safeWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (s *safeWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
