// Package templates renders the HTML documents the service prints to PDF.
package templates

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
)

//go:embed report.html
var reportHTML string

var reportTemplate = template.Must(template.New("report").Parse(reportHTML))

// ReportData is everything the compliance report shows. Values are escaped
// by the template.
type ReportData struct {
	ScanID       string
	Date         string
	BusinessName string
	OwnerName    string
	Email        string
	Violations   []string
}

// RenderReport executes the report template.
func RenderReport(data ReportData) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute report template: %w", err)
	}
	return buf.Bytes(), nil
}
