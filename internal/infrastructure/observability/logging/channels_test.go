package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestChannelsTagRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, slog.LevelInfo)

	logger.Payment().Info("payment completed", "scanId", "CCFP-1")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if rec["channel"] != "payment" || rec["scanId"] != "CCFP-1" {
		t.Fatalf("record = %v", rec)
	}
}

func TestSetChannelLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, slog.LevelInfo)

	logger.Report().Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record written at info level: %s", buf.String())
	}

	if err := logger.SetChannelLevel(ChannelReport, slog.LevelDebug); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	logger.Report().Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug record missing after level change: %s", buf.String())
	}
	if got := logger.GetChannelLevels()["report"]; got != "DEBUG" {
		t.Fatalf("report level = %s", got)
	}

	if err := logger.SetChannelLevel("nope", slog.LevelDebug); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

func TestSetChannelLevelReachesHeldLoggers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, slog.LevelError)
	held := logger.Report()
	scoped := logger.WithOperation(ChannelReport, "report.get")

	if err := logger.SetChannelLevel(ChannelReport, slog.LevelDebug); err != nil {
		t.Fatal(err)
	}
	held.Debug("held logger record")
	scoped.Debug("scoped logger record")
	if !strings.Contains(buf.String(), "held logger record") || !strings.Contains(buf.String(), "scoped logger record") {
		t.Fatalf("records missing after level change: %s", buf.String())
	}

	buf.Reset()
	logger.Payment().Info("other channel")
	if buf.Len() != 0 {
		t.Fatalf("payment channel level changed too: %s", buf.String())
	}
}

func TestLogErrorAddsOperationContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, slog.LevelInfo)

	logger.LogError(ChannelPayment, "checkout.create", errors.New("stripe down"), map[string]any{"scanId": "CCFP-1"})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if rec["channel"] != "payment" || rec["operation"] != "checkout.create" ||
		rec["error"] != "stripe down" || rec["scanId"] != "CCFP-1" || rec["level"] != "ERROR" {
		t.Fatalf("record = %v", rec)
	}
}

func TestMaskEmail(t *testing.T) {
	tests := map[string]string{
		"jo@acme.com":    "**@acme.com",
		"alice@acme.com": "al****@acme.com",
		"not-an-email":   "****",
		"@acme.com":      "****",
	}
	for in, want := range tests {
		if got := MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != slog.LevelDebug || ParseLevel("WARN") != slog.LevelWarn ||
		ParseLevel("error") != slog.LevelError || ParseLevel("") != slog.LevelInfo {
		t.Fatal("ParseLevel mapping wrong")
	}
}
