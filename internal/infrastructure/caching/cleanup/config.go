package cleanup

import (
	"time"

	"github.com/AtRiskMedia/compliance-funnel/pkg/config"
)

// DefaultRetention is how long a report is kept after it was written.
const DefaultRetention = 7 * 24 * time.Hour

// Config holds retention sweeper configuration, sourced from the central config package.
type Config struct {
	Dir        string
	Retention  time.Duration
	Interval   time.Duration // zero disables the periodic loop
	RunOnStart bool
}

// NewConfig derives the sweeper configuration. Outside production a sweep
// runs once at startup.
func NewConfig(cfg *config.Config) *Config {
	retention := cfg.ReportRetention
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Config{
		Dir:        cfg.ReportsDir,
		Retention:  retention,
		Interval:   cfg.ReportSweepInterval,
		RunOnStart: !cfg.IsProduction(),
	}
}
