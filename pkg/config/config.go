// Package config loads the service configuration from the environment.
// A .env file in the working directory is applied first; variables already
// set in the process environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Config holds every tunable of the service.
type Config struct {
	// Server
	Port               string        `env:"PORT" envDefault:"8080"`
	AppEnv             string        `env:"APP_ENV" envDefault:"development"`
	GinMode            string        `env:"GIN_MODE" envDefault:"release"`
	PublicBaseURL      string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:3000"`
	CORSAllowOrigins   []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ServerReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"90s"`
	ServerIdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`

	// Reports
	ReportsDir          string        `env:"REPORTS_DIR" envDefault:"reports"`
	ReportRetention     time.Duration `env:"REPORT_RETENTION" envDefault:"168h"`
	ReportSweepInterval time.Duration `env:"REPORT_SWEEP_INTERVAL" envDefault:"0s"`
	ReportRenderTimeout time.Duration `env:"REPORT_RENDER_TIMEOUT" envDefault:"60s"`
	ChromePath          string        `env:"CHROME_PATH"`

	// Payments
	StripeSecretKey            string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret        string `env:"STRIPE_WEBHOOK_SECRET"`
	CheckoutUnitAmount         int64  `env:"CHECKOUT_UNIT_AMOUNT" envDefault:"19700"`
	CheckoutCurrency           string `env:"CHECKOUT_CURRENCY" envDefault:"usd"`
	CheckoutProductName        string `env:"CHECKOUT_PRODUCT_NAME" envDefault:"Cleanup & Verification Package"`
	CheckoutProductDescription string `env:"CHECKOUT_PRODUCT_DESCRIPTION" envDefault:"Complete compliance cleanup package with ongoing protection"`

	// Email
	ResendAPIKey  string `env:"RESEND_API_KEY"`
	EmailFrom     string `env:"EMAIL_FROM" envDefault:"reports@example.com"`
	EmailFromName string `env:"EMAIL_FROM_NAME" envDefault:"Compliance Reports"`

	// Funnel
	ScanDuration time.Duration `env:"SCAN_DURATION" envDefault:"60s"`
	ContentFile  string        `env:"CONTENT_FILE"`

	// Logging
	LogDir   string `env:"LOG_DIR"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"true"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load applies .env (if present) and parses the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom parses configuration from the given variables only.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	cfg.CheckoutCurrency = strings.ToLower(strings.TrimSpace(cfg.CheckoutCurrency))
	return &cfg, nil
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, EnvProduction)
}

// IsPlaceholderKey reports whether a provider key is missing or still the
// sample value shipped with the .env template.
func IsPlaceholderKey(key string) bool {
	key = strings.TrimSpace(key)
	return key == "" || strings.Contains(strings.ToLower(key), "placeholder")
}

// PaymentsConfigured reports whether checkout sessions can be created.
func (c *Config) PaymentsConfigured() bool {
	return !IsPlaceholderKey(c.StripeSecretKey)
}

// WebhookConfigured reports whether webhook signatures can be verified.
func (c *Config) WebhookConfigured() bool {
	return !IsPlaceholderKey(c.StripeWebhookSecret)
}

// EmailConfigured reports whether transactional email is enabled.
func (c *Config) EmailConfigured() bool {
	return !IsPlaceholderKey(c.ResendAPIKey) && c.EmailFrom != ""
}

// Validate checks the configuration. Production refuses to start without
// payment secrets; elsewhere missing secrets only disable the operations
// that need them.
func (c *Config) Validate() error {
	var errs []error

	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT %q is not a valid port", c.Port))
	}
	if u, err := url.Parse(c.PublicBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("PUBLIC_BASE_URL %q must be an absolute http(s) URL", c.PublicBaseURL))
	}
	if strings.TrimSpace(c.ReportsDir) == "" {
		errs = append(errs, errors.New("REPORTS_DIR is required"))
	}
	if c.ReportRetention <= 0 {
		errs = append(errs, errors.New("REPORT_RETENTION must be positive"))
	}
	if c.ReportSweepInterval < 0 {
		errs = append(errs, errors.New("REPORT_SWEEP_INTERVAL must not be negative"))
	}
	if c.ReportRenderTimeout <= 0 {
		errs = append(errs, errors.New("REPORT_RENDER_TIMEOUT must be positive"))
	}
	if c.CheckoutUnitAmount <= 0 {
		errs = append(errs, errors.New("CHECKOUT_UNIT_AMOUNT must be positive"))
	}
	if len(c.CheckoutCurrency) != 3 {
		errs = append(errs, fmt.Errorf("CHECKOUT_CURRENCY %q must be a three-letter code", c.CheckoutCurrency))
	}
	if c.ScanDuration <= 0 {
		errs = append(errs, errors.New("SCAN_DURATION must be positive"))
	}
	// The scan stream holds one response open for the whole scan.
	if c.ServerWriteTimeout > 0 && c.ScanDuration >= c.ServerWriteTimeout {
		errs = append(errs, fmt.Errorf("SCAN_DURATION %s must be shorter than SERVER_WRITE_TIMEOUT %s", c.ScanDuration, c.ServerWriteTimeout))
	}

	if c.IsProduction() {
		if !c.PaymentsConfigured() {
			errs = append(errs, errors.New("STRIPE_SECRET_KEY is required in production"))
		}
		if !c.WebhookConfigured() {
			errs = append(errs, errors.New("STRIPE_WEBHOOK_SECRET is required in production"))
		}
	}

	return errors.Join(errs...)
}
