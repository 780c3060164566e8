package templates

import (
	"strings"
	"testing"
)

func TestRenderReport(t *testing.T) {
	html, err := RenderReport(ReportData{
		ScanID:       "CCFP-1",
		Date:         "January 2, 2026 at 03:04 PM",
		BusinessName: "Acme & Sons",
		OwnerName:    "Jo",
		Email:        "jo@acme.com",
		Violations:   []string{"Missing cookie banner: no consent <script> (GDPR Art. 7)", "Second"},
	})
	if err != nil {
		t.Fatal(err)
	}
	out := string(html)
	for _, want := range []string{
		"CCFP-1",
		"January 2, 2026 at 03:04 PM",
		"Acme &amp; Sons",
		"2 compliance issues",
		"&lt;script&gt;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Count(out, "<li>") != 2 {
		t.Fatalf("want 2 list items, got %d", strings.Count(out, "<li>"))
	}
}

func TestRenderReportSingular(t *testing.T) {
	html, err := RenderReport(ReportData{ScanID: "CCFP-2", Violations: []string{"only"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), "1 compliance issue</strong>") {
		t.Fatal("singular wording missing")
	}
}
