package funnel

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/AtRiskMedia/compliance-funnel/internal/domain/apperr"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/content"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/user"
)

var t0 = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	store, err := content.Load("")
	if err != nil {
		t.Fatalf("content.Load() error = %v", err)
	}
	n := 0
	return NewMachine(store,
		WithClock(func() time.Time { return t0 }),
		WithRand(rand.New(rand.NewPCG(7, 11))),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("CCFP-TEST-%d", n)
		}),
		WithScanDuration(90*time.Second),
	)
}

func mustApply(t *testing.T, m *Machine, f Funnel, ev Event) Funnel {
	t.Helper()
	next, err := m.Apply(f, ev)
	if err != nil {
		t.Fatalf("Apply(%s) in %s: %v", ev.eventName(), f.State, err)
	}
	return next
}

var validLead = user.Lead{Email: "jo@acme.com", BusinessName: "Acme", OwnerName: "Jo"}

func TestHappyPath(t *testing.T) {
	m := newTestMachine(t)
	f := Funnel{State: Idle}

	f = mustApply(t, m, f, SubmitURL{Raw: "acme.com"})
	if f.State != Scanning {
		t.Fatalf("state = %s, want scanning", f.State)
	}
	if f.URL != "https://acme.com" {
		t.Fatalf("URL = %q, want implicit https prefix", f.URL)
	}
	if f.ScanID != "CCFP-TEST-1" || !f.StartedAt.Equal(t0) {
		t.Fatalf("scan id/start = %q/%v", f.ScanID, f.StartedAt)
	}

	f = mustApply(t, m, f, Tick{Now: t0.Add(90 * time.Second)})
	if f.State != ResultsPreview {
		t.Fatalf("state = %s, want results_preview", f.State)
	}
	if len(f.Violations) != DefaultPreviewSize {
		t.Fatalf("violations = %d, want %d", len(f.Violations), DefaultPreviewSize)
	}
	if f.RiskLevel != content.RiskLevel(f.Violations) {
		t.Fatalf("risk level = %s, want max severity", f.RiskLevel)
	}

	f = mustApply(t, m, f, Unlock{})
	if f.State != LeadCapture {
		t.Fatalf("state = %s, want lead_capture", f.State)
	}

	f = mustApply(t, m, f, SubmitLead{Lead: validLead})
	if f.State != Offer || f.Lead.Email != "jo@acme.com" {
		t.Fatalf("state/lead = %s/%+v", f.State, f.Lead)
	}

	f = mustApply(t, m, f, Accept{})
	if f.State != Checkout {
		t.Fatalf("state = %s, want checkout", f.State)
	}

	f = mustApply(t, m, f, PaymentCompleted{SessionID: "cs_test_1"})
	if f.State != Confirmation || f.SessionID != "cs_test_1" {
		t.Fatalf("state/session = %s/%s", f.State, f.SessionID)
	}
}

func TestInvalidURLKeepsState(t *testing.T) {
	m := newTestMachine(t)
	for _, raw := range []string{"", "   ", "ftp://example.com", "http://", "exa mple.com"} {
		f, err := m.Apply(Funnel{State: Idle}, SubmitURL{Raw: raw})
		if err == nil {
			t.Fatalf("SubmitURL(%q) expected error", raw)
		}
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("SubmitURL(%q) error kind = %s", raw, apperr.KindOf(err))
		}
		if f.State != Idle || f.Error == "" {
			t.Fatalf("SubmitURL(%q) state/error = %s/%q", raw, f.State, f.Error)
		}
	}
}

func TestScanProgressFromSingleTick(t *testing.T) {
	m := newTestMachine(t)
	f := mustApply(t, m, Funnel{State: Idle}, SubmitURL{Raw: "https://acme.com/pricing"})

	statuses := len(m.Statuses())
	perStatus := m.ScanDuration() / time.Duration(statuses)

	f = mustApply(t, m, f, Tick{Now: t0.Add(m.ScanDuration() / 2)})
	if f.State != Scanning {
		t.Fatalf("state = %s, want scanning", f.State)
	}
	if f.Progress < 49.9 || f.Progress > 50.1 {
		t.Fatalf("progress = %f, want 50", f.Progress)
	}
	if want := int((m.ScanDuration() / 2) / perStatus); f.StatusIndex != want {
		t.Fatalf("status index = %d, want %d", f.StatusIndex, want)
	}
	if m.Status(f) != m.Statuses()[f.StatusIndex] {
		t.Fatalf("status text mismatch")
	}

	// a clock that reads earlier than the start does not move progress backwards past zero
	back := mustApply(t, m, f, Tick{Now: t0.Add(-time.Second)})
	if back.Progress != 0 || back.StatusIndex != 0 {
		t.Fatalf("negative elapsed progress = %f/%d", back.Progress, back.StatusIndex)
	}

	done := mustApply(t, m, f, Tick{Now: t0.Add(m.ScanDuration() + time.Second)})
	if done.State != ResultsPreview || done.Progress != 100 || done.StatusIndex != statuses-1 {
		t.Fatalf("completed scan = %s/%f/%d", done.State, done.Progress, done.StatusIndex)
	}
}

func TestSkipCompletesScanImmediately(t *testing.T) {
	m := newTestMachine(t)
	f := mustApply(t, m, Funnel{State: Idle}, SubmitURL{Raw: "acme.com"})
	f = mustApply(t, m, f, Skip{})
	if f.State != ResultsPreview || f.Progress != 100 {
		t.Fatalf("skip result = %s/%f", f.State, f.Progress)
	}

	// late ticks from the abandoned timer are ignored
	after := mustApply(t, m, f, Tick{Now: t0.Add(time.Hour)})
	if after.State != ResultsPreview || len(after.Violations) != len(f.Violations) {
		t.Fatalf("late tick changed funnel: %+v", after)
	}
}

func TestInvalidLeadKeepsState(t *testing.T) {
	m := newTestMachine(t)
	f := Funnel{State: LeadCapture, ScanID: "CCFP-1"}

	next, err := m.Apply(f, SubmitLead{Lead: user.Lead{Email: "jo@acme.com"}})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("error = %v, want validation", err)
	}
	if next.State != LeadCapture || next.Error == "" {
		t.Fatalf("state/error = %s/%q", next.State, next.Error)
	}

	next = mustApply(t, m, next, SubmitLead{Lead: validLead})
	if next.Error != "" {
		t.Fatalf("error not cleared after valid submit: %q", next.Error)
	}
}

func TestCloseResetsFromEveryGatedScreen(t *testing.T) {
	m := newTestMachine(t)
	for _, s := range []State{Scanning, ResultsPreview, LeadCapture, Offer, Checkout, Confirmation} {
		f := Funnel{State: s, ScanID: "CCFP-1", URL: "https://acme.com", Lead: validLead}
		next := mustApply(t, m, f, Close{})
		if next.State != Idle || next.ScanID != "" || next.Lead != (user.Lead{}) {
			t.Fatalf("Close from %s = %+v, want reset", s, next)
		}
	}

	if _, err := m.Apply(Funnel{State: Idle}, Close{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Close from idle error = %v, want invalid transition", err)
	}
}

func TestNewRunGetsNewScanID(t *testing.T) {
	m := newTestMachine(t)
	first := mustApply(t, m, Funnel{State: Idle}, SubmitURL{Raw: "acme.com"})
	reset := mustApply(t, m, first, Close{})
	second := mustApply(t, m, reset, SubmitURL{Raw: "acme.com"})
	if first.ScanID == second.ScanID {
		t.Fatalf("scan id reused across runs: %s", first.ScanID)
	}
}

func TestInvalidTransitions(t *testing.T) {
	m := newTestMachine(t)
	tests := []struct {
		state State
		ev    Event
	}{
		{Idle, Unlock{}},
		{Idle, Skip{}},
		{Scanning, SubmitLead{Lead: validLead}},
		{ResultsPreview, Accept{}},
		{LeadCapture, Unlock{}},
		{Offer, PaymentCompleted{SessionID: "cs"}},
		{Checkout, Accept{}},
		{Confirmation, SubmitURL{Raw: "acme.com"}},
	}
	for _, tt := range tests {
		f := Funnel{State: tt.state}
		next, err := m.Apply(f, tt.ev)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s in %s: error = %v, want invalid transition", tt.ev.eventName(), tt.state, err)
		}
		if next.State != tt.state {
			t.Errorf("%s in %s: state changed to %s", tt.ev.eventName(), tt.state, next.State)
		}
	}
}

func TestPaymentCompletedRequiresSession(t *testing.T) {
	m := newTestMachine(t)
	f, err := m.Apply(Funnel{State: Checkout}, PaymentCompleted{})
	if !apperr.Is(err, apperr.KindValidation) || f.State != Checkout {
		t.Fatalf("state/error = %s/%v", f.State, err)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"example.com", "https://example.com", true},
		{"  example.com/path?q=1 ", "https://example.com/path?q=1", true},
		{"http://example.com", "http://example.com", true},
		{"HTTPS://Example.com", "https://Example.com", true},
		{"localhost:3000", "https://localhost:3000", true},
		{"", "", false},
		{"mailto://x", "", false},
		{"https://", "", false},
	}
	for _, tt := range tests {
		got, err := NormalizeURL(tt.raw)
		if (err == nil) != tt.ok {
			t.Errorf("NormalizeURL(%q) error = %v, want ok=%v", tt.raw, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
