package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Port != "8080" || cfg.ReportsDir != "reports" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.ReportRetention != 7*24*time.Hour {
		t.Fatalf("retention = %v, want 7 days", cfg.ReportRetention)
	}
	if cfg.CheckoutUnitAmount != 19700 || cfg.CheckoutCurrency != "usd" {
		t.Fatalf("checkout = %d %s", cfg.CheckoutUnitAmount, cfg.CheckoutCurrency)
	}
	if cfg.ScanDuration != time.Minute {
		t.Fatalf("scan duration = %v", cfg.ScanDuration)
	}
	if cfg.PaymentsConfigured() || cfg.EmailConfigured() {
		t.Fatal("secrets should be unconfigured by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("development defaults should validate: %v", err)
	}
}

func TestOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PUBLIC_BASE_URL":       "https://scan.example.com/",
		"CORS_ALLOW_ORIGINS":    "https://a.example.com,https://b.example.com",
		"REPORT_SWEEP_INTERVAL": "1h",
		"CHECKOUT_CURRENCY":     " EUR ",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PublicBaseURL != "https://scan.example.com" {
		t.Fatalf("base url = %q, want trailing slash trimmed", cfg.PublicBaseURL)
	}
	if len(cfg.CORSAllowOrigins) != 2 {
		t.Fatalf("cors origins = %v", cfg.CORSAllowOrigins)
	}
	if cfg.ReportSweepInterval != time.Hour || cfg.CheckoutCurrency != "eur" {
		t.Fatalf("interval/currency = %v/%q", cfg.ReportSweepInterval, cfg.CheckoutCurrency)
	}
}

func TestParseError(t *testing.T) {
	if _, err := LoadFrom(map[string]string{"REPORT_RETENTION": "a week"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestProductionRequiresPaymentSecrets(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"APP_ENV":           "production",
		"STRIPE_SECRET_KEY": "sk_test_placeholder",
	})
	if err != nil {
		t.Fatal(err)
	}
	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected production validation error")
	}
	for _, want := range []string{"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}

	cfg.StripeSecretKey = "sk_live_123"
	cfg.StripeWebhookSecret = "whsec_123"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("configured production should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := map[string]map[string]string{
		"port":      {"PORT": "http"},
		"base url":  {"PUBLIC_BASE_URL": "scan.example.com"},
		"retention": {"REPORT_RETENTION": "0s"},
		"amount":    {"CHECKOUT_UNIT_AMOUNT": "0"},
		"currency":  {"CHECKOUT_CURRENCY": "dollars"},
		"scan":      {"SCAN_DURATION": "-1s"},
		"stream":    {"SCAN_DURATION": "120s"},
		"equal":     {"SCAN_DURATION": "30s", "SERVER_WRITE_TIMEOUT": "30s"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadFrom(vars)
			if err != nil {
				t.Fatal(err)
			}
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestScanDurationWithoutWriteTimeout(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"SCAN_DURATION": "120s", "SERVER_WRITE_TIMEOUT": "0s"})
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unbounded write timeout should allow long scans: %v", err)
	}
}

func TestIsPlaceholderKey(t *testing.T) {
	for key, want := range map[string]bool{
		"":                    true,
		"  ":                  true,
		"sk_test_PLACEHOLDER": true,
		"sk_test_51Habc":      false,
	} {
		if got := IsPlaceholderKey(key); got != want {
			t.Errorf("IsPlaceholderKey(%q) = %v, want %v", key, got, want)
		}
	}
}
