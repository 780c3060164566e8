// Package user defines the lead captured by the funnel. Leads are never
// persisted; the only durable trace is the payment provider's metadata bag.
package user

import (
	"net/mail"
	"strings"

	"github.com/AtRiskMedia/compliance-funnel/internal/domain/apperr"
)

// Placeholder values substituted at render time for blank lead fields.
const (
	DefaultBusinessName = "Your Business Name"
	DefaultOwnerName    = "Business Owner"
	DefaultEmail        = "business@example.com"
)

// Lead is the contact data captured once per funnel run.
type Lead struct {
	Email        string `json:"email"`
	BusinessName string `json:"businessName"`
	OwnerName    string `json:"ownerName"`
	Phone        string `json:"phone,omitempty"`
}

// Normalize returns a copy with surrounding whitespace removed.
func (l Lead) Normalize() Lead {
	return Lead{
		Email:        strings.TrimSpace(l.Email),
		BusinessName: strings.TrimSpace(l.BusinessName),
		OwnerName:    strings.TrimSpace(l.OwnerName),
		Phone:        strings.TrimSpace(l.Phone),
	}
}

// Validate enforces the lead capture gate: email, business name and owner
// name are required, phone is optional.
func (l Lead) Validate() error {
	l = l.Normalize()
	switch {
	case l.Email == "":
		return apperr.Validation("Email is required")
	case l.BusinessName == "":
		return apperr.Validation("Business name is required")
	case l.OwnerName == "":
		return apperr.Validation("Owner name is required")
	}
	if _, err := mail.ParseAddress(l.Email); err != nil {
		return apperr.Validation("Email address is invalid")
	}
	return nil
}

// WithDefaults fills blank fields with placeholder values for rendering.
// A nil lead yields all placeholders.
func (l *Lead) WithDefaults() Lead {
	var out Lead
	if l != nil {
		out = l.Normalize()
	}
	if out.BusinessName == "" {
		out.BusinessName = DefaultBusinessName
	}
	if out.OwnerName == "" {
		out.OwnerName = DefaultOwnerName
	}
	if out.Email == "" {
		out.Email = DefaultEmail
	}
	return out
}
