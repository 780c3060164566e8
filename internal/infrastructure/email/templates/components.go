// Package templates provides email template components
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"regexp"
	"strings"
)

type ButtonProps struct {
	Text            string
	URL             string
	BackgroundColor string
	TextColor       string
}

var (
	buttonTemplate = template.Must(template.New("emailButton").Parse(`
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" class="btn btn-primary" style="border-collapse: separate; box-sizing: border-box; width: 100%;" width="100%">
      <tbody>
        <tr>
          <td align="left" style="vertical-align: top; padding-bottom: 16px;" valign="top">
            <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="border-collapse: separate; width: auto;">
              <tbody>
                <tr>
                  <td style="vertical-align: top; border-radius: 4px; text-align: center; background-color: {{.BackgroundColor}};" valign="top" align="center" bgcolor="{{.BackgroundColor}}">
                    <a href="{{.URL}}" target="_blank" style="border: solid 2px {{.BackgroundColor}}; border-radius: 4px; display: inline-block; font-size: 16px; font-weight: bold; margin: 0; padding: 12px 24px; text-decoration: none; background-color: {{.BackgroundColor}}; color: {{.TextColor}};">{{.Text}}</a>
                  </td>
                </tr>
              </tbody>
            </table>
          </td>
        </tr>
      </tbody>
    </table>`))

	paragraphTemplate = template.Must(template.New("emailParagraph").Parse(`<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">{{.}}</p>`))

	hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{3}([0-9a-fA-F]{3})?$`)
)

// GetButton renders a call-to-action button. Unsafe URLs become "#".
func GetButton(props ButtonProps) (string, error) {
	data := ButtonProps{
		Text:            props.Text,
		URL:             sanitizeEmailURL(props.URL),
		BackgroundColor: sanitizeColor(props.BackgroundColor, "#0867ec"),
		TextColor:       sanitizeColor(props.TextColor, "#ffffff"),
	}
	if data.URL == "" {
		data.URL = "#"
	}

	var buf bytes.Buffer
	if err := buttonTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute email button: %w", err)
	}
	return buf.String(), nil
}

// GetParagraph renders escaped paragraph text.
func GetParagraph(text string) (string, error) {
	var buf bytes.Buffer
	if err := paragraphTemplate.Execute(&buf, text); err != nil {
		return "", fmt.Errorf("execute email paragraph: %w", err)
	}
	return buf.String(), nil
}

// sanitizeEmailURL allows only absolute http(s) and mailto URLs.
func sanitizeEmailURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return ""
		}
		return u.String()
	case "mailto":
		return u.String()
	default:
		return ""
	}
}

func sanitizeColor(color, fallback string) string {
	if hexColor.MatchString(color) {
		return color
	}
	return fallback
}
