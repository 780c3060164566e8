package templates

import (
	"fmt"
	"strings"
)

// ReportReadyEmailProps carries what the "report ready" email shows.
type ReportReadyEmailProps struct {
	OwnerName    string
	BusinessName string
	ScanID       string
	ReportURL    string
	AmountPaid   string // formatted, e.g. "$197.00"
}

// GetReportReadyEmailContent renders the body of the email sent once a
// checkout completes.
func GetReportReadyEmailContent(props ReportReadyEmailProps) (string, error) {
	name := props.OwnerName
	if name == "" {
		name = "there"
	}

	paragraphs := []string{
		fmt.Sprintf("Hi %s,", name),
		fmt.Sprintf("Thank you for your purchase for %s. Your compliance report is ready to download.", props.BusinessName),
	}
	if props.AmountPaid != "" {
		paragraphs = append(paragraphs, fmt.Sprintf("Amount paid: %s", props.AmountPaid))
	}

	var b strings.Builder
	for _, text := range paragraphs {
		p, err := GetParagraph(text)
		if err != nil {
			return "", err
		}
		b.WriteString(p)
	}

	button, err := GetButton(ButtonProps{Text: "Download your report", URL: props.ReportURL})
	if err != nil {
		return "", err
	}
	b.WriteString(button)

	ref, err := GetParagraph("Reference: " + props.ScanID)
	if err != nil {
		return "", err
	}
	b.WriteString(ref)
	return b.String(), nil
}
