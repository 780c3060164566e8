package rendering

import (
	"testing"
	"time"

	"github.com/AtRiskMedia/compliance-funnel/pkg/config"
)

func TestPDFParamsAreA4WithMargins(t *testing.T) {
	p := pdfParams()
	if !p.PrintBackground {
		t.Fatal("backgrounds must print")
	}
	if p.PaperWidth != 8.27 || p.PaperHeight != 11.69 {
		t.Fatalf("paper = %vx%v, want A4", p.PaperWidth, p.PaperHeight)
	}
	for _, m := range []float64{p.MarginTop, p.MarginBottom, p.MarginLeft, p.MarginRight} {
		if m != 0.79 {
			t.Fatalf("margin = %v, want 0.79in", m)
		}
	}
}

func TestAllocatorOptions(t *testing.T) {
	cfg := &config.Config{ReportRenderTimeout: time.Second}
	base := len(NewChromeRenderer(cfg, nil).allocatorOptions())

	cfg.ChromePath = "/usr/bin/chromium"
	withPath := NewChromeRenderer(cfg, nil).allocatorOptions()
	if len(withPath) != base+1 {
		t.Fatalf("ExecPath option not added: %d vs %d", len(withPath), base)
	}
}
