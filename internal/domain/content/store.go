// Package content holds the read-only marketing tables the funnel draws from:
// the violation catalog, risk level styling, scan status lines, testimonials
// and contact details. The tables are loaded once at startup.
package content

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed content.json
var defaultContent []byte

// Severity ranks a violation. Higher values are more severe.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// Rank orders severities: high > moderate > low. Unknown severities rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityModerate:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Violation is one entry of the static violation catalog.
type Violation struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Rule        string   `json:"rule"`
}

// ReportLine is the text used for this violation in the PDF report.
func (v Violation) ReportLine() string {
	return fmt.Sprintf("%s: %s (%s)", v.Title, v.Description, v.Rule)
}

// RiskStyle is the display styling for a risk level.
type RiskStyle struct {
	Color       string `json:"color"`
	BgColor     string `json:"bgColor"`
	BorderColor string `json:"borderColor"`
	Label       string `json:"label"`
}

type Scarcity struct {
	WeeklyLimit  int    `json:"weeklyLimit"`
	CurrentCount int    `json:"currentCount"`
	ResetDay     string `json:"resetDay"`
}

type Contact struct {
	AdvisorEmail string `json:"advisorEmail"`
	CalendlyLink string `json:"calendlyLink"`
	Phone        string `json:"phone"`
}

type Testimonial struct {
	Quote    string `json:"quote"`
	Author   string `json:"author"`
	Role     string `json:"role"`
	Location string `json:"location"`
}

// Tables is the serialized form of the content store.
type Tables struct {
	Violations   []Violation            `json:"violations"`
	RiskLevels   map[Severity]RiskStyle `json:"riskLevels"`
	ScanStatuses []string               `json:"scanStatuses"`
	Scarcity     Scarcity               `json:"scarcity"`
	Contact      Contact                `json:"contact"`
	Testimonials []Testimonial          `json:"testimonials"`
}

// MinCatalogSize is the smallest violation catalog the funnel accepts.
const MinCatalogSize = 3

// Store is the read-only content store. It is safe for concurrent use
// because nothing mutates it after Load.
type Store struct {
	tables Tables
}

// Load reads the content tables from path, or the embedded defaults when
// path is empty.
func Load(path string) (*Store, error) {
	data := defaultContent
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read content file %s: %w", path, err)
		}
	}
	return Parse(data)
}

// Parse decodes and validates serialized content tables.
func Parse(data []byte) (*Store, error) {
	var tables Tables
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}
	if err := tables.validate(); err != nil {
		return nil, err
	}
	return &Store{tables: tables}, nil
}

func (t *Tables) validate() error {
	if len(t.Violations) < MinCatalogSize {
		return fmt.Errorf("violation catalog needs at least %d entries, got %d", MinCatalogSize, len(t.Violations))
	}
	ids := make(map[string]bool, len(t.Violations))
	for _, v := range t.Violations {
		if v.ID == "" {
			return fmt.Errorf("violation %q has no id", v.Title)
		}
		if ids[v.ID] {
			return fmt.Errorf("duplicate violation id %q", v.ID)
		}
		ids[v.ID] = true
		if v.Severity.Rank() == 0 {
			return fmt.Errorf("violation %q has unknown severity %q", v.ID, v.Severity)
		}
	}
	if len(t.ScanStatuses) == 0 {
		return fmt.Errorf("scan status lines are required")
	}
	return nil
}

// Violations returns a copy of the violation catalog.
func (s *Store) Violations() []Violation {
	out := make([]Violation, len(s.tables.Violations))
	copy(out, s.tables.Violations)
	return out
}

// ScanStatuses returns the status lines shown while a scan runs.
func (s *Store) ScanStatuses() []string {
	out := make([]string, len(s.tables.ScanStatuses))
	copy(out, s.tables.ScanStatuses)
	return out
}

// RiskStyle returns the styling for level, falling back to moderate.
func (s *Store) RiskStyle(level Severity) RiskStyle {
	if style, ok := s.tables.RiskLevels[level]; ok {
		return style
	}
	return s.tables.RiskLevels[SeverityModerate]
}

// Public returns the tables served to the landing page. The violation
// catalog is left out; visitors only ever see sampled entries.
func (s *Store) Public() Tables {
	return Tables{
		RiskLevels:   s.tables.RiskLevels,
		ScanStatuses: s.ScanStatuses(),
		Scarcity:     s.tables.Scarcity,
		Contact:      s.tables.Contact,
		Testimonials: append([]Testimonial(nil), s.tables.Testimonials...),
	}
}
