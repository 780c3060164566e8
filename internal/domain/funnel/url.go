package funnel

import (
	"net/url"
	"strings"

	"github.com/AtRiskMedia/compliance-funnel/internal/domain/apperr"
)

const (
	msgURLRequired = "Please enter a website URL"
	msgURLInvalid  = "Please enter a valid URL (e.g., example.com or https://example.com)"
)

// NormalizeURL validates a visitor-supplied site address. Bare host names are
// accepted and get an implicit https:// prefix.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperr.Validation(msgURLRequired)
	}

	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if strings.Contains(raw, "://") {
			return "", apperr.Validation(msgURLInvalid)
		}
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", apperr.Validation(msgURLInvalid)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", apperr.Validation(msgURLInvalid)
	}
	if u.Hostname() == "" || strings.ContainsAny(u.Host, " \t") {
		return "", apperr.Validation(msgURLInvalid)
	}
	return u.String(), nil
}
