// Package funnel sequences a visitor through the gated screens of the scan
// funnel: scan, results preview, lead capture, offer, checkout and
// confirmation. The funnel is a value object advanced by Machine.Apply; it
// is never stored server-side, so a reload abandons the run.
package funnel

import (
	"errors"
	"fmt"
	"time"

	"github.com/AtRiskMedia/compliance-funnel/internal/domain/content"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/user"
)

// State is the screen the visitor is on.
type State string

const (
	Idle           State = "idle"
	Scanning       State = "scanning"
	ResultsPreview State = "results_preview"
	LeadCapture    State = "lead_capture"
	Offer          State = "offer"
	Checkout       State = "checkout"
	Confirmation   State = "confirmation"
)

// Gated reports whether s is one of the screens a visitor can close.
func (s State) Gated() bool {
	return s != Idle
}

// ErrInvalidTransition is returned when an event does not apply to the
// current state. The funnel is returned unchanged.
var ErrInvalidTransition = errors.New("invalid funnel transition")

// Funnel is one visitor's run through the funnel.
type Funnel struct {
	State       State               `json:"state"`
	ScanID      string              `json:"scanId,omitempty"`
	URL         string              `json:"url,omitempty"`
	StartedAt   time.Time           `json:"startedAt"`
	Progress    float64             `json:"progress"`
	StatusIndex int                 `json:"statusIndex"`
	Violations  []content.Violation `json:"violations,omitempty"`
	RiskLevel   content.Severity    `json:"riskLevel,omitempty"`
	Lead        user.Lead           `json:"lead"`
	SessionID   string              `json:"sessionId,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// Event advances a funnel.
type Event interface {
	eventName() string
}

// SubmitURL starts a scan of the given site address.
type SubmitURL struct{ Raw string }

// Tick reports the current time to a running scan.
type Tick struct{ Now time.Time }

// Skip force-completes a running scan. It is the operator/debug escape hatch.
type Skip struct{}

// Unlock moves from the results preview to lead capture.
type Unlock struct{}

// SubmitLead submits the lead capture form.
type SubmitLead struct{ Lead user.Lead }

// Accept takes the offer and heads to the external checkout.
type Accept struct{}

// PaymentCompleted is the return from the provider's checkout redirect.
type PaymentCompleted struct{ SessionID string }

// Close abandons the run from any gated screen.
type Close struct{}

func (SubmitURL) eventName() string        { return "submit_url" }
func (Tick) eventName() string             { return "tick" }
func (Skip) eventName() string             { return "skip" }
func (Unlock) eventName() string           { return "unlock" }
func (SubmitLead) eventName() string       { return "submit_lead" }
func (Accept) eventName() string           { return "accept" }
func (PaymentCompleted) eventName() string { return "payment_completed" }
func (Close) eventName() string            { return "close" }

func invalid(f Funnel, ev Event) (Funnel, error) {
	return f, fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, ev.eventName(), f.State)
}
