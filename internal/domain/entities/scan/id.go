// Package scan defines the scan identifier that correlates a funnel run with
// its report artifact and payment session.
package scan

import (
	"regexp"

	"github.com/AtRiskMedia/compliance-funnel/internal/domain/apperr"
	"github.com/oklog/ulid/v2"
)

// IDPrefix marks identifiers minted by this service.
const IDPrefix = "CCFP-"

// MaxIDLength bounds externally supplied identifiers.
const MaxIDLength = 128

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NewID mints a scan identifier: the prefix followed by a ULID, which is a
// millisecond timestamp plus a random suffix in Crockford base32.
func NewID() string {
	return IDPrefix + ulid.Make().String()
}

// ValidateID checks that id can be used verbatim as a URL segment and a
// filename stem. Surrounding whitespace is rejected rather than trimmed.
func ValidateID(id string) error {
	if id == "" {
		return apperr.Validation("Scan ID is required")
	}
	if len(id) > MaxIDLength || !idPattern.MatchString(id) {
		return apperr.Validation("Scan ID is invalid")
	}
	return nil
}
