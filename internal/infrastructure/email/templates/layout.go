// Package templates provides email template layout
package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

type EmailLayoutProps struct {
	Preheader    string
	Title        string
	Content      string
	FooterText   string
	SupportEmail string
}

// Internal template data structure with safe HTML typing
type emailTemplateData struct {
	Preheader    string
	Title        string
	Content      template.HTML // pre-rendered by the component helpers
	FooterText   string
	SupportEmail string
}

var emailLayoutTemplate = template.Must(template.New("emailLayout").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
    <title>{{.Title}}</title>
    <style media="all" type="text/css">
      @media only screen and (max-width: 640px) {
        .main p, .main td, .main span { font-size: 16px !important; }
        .wrapper { padding: 8px !important; }
        .container { padding: 0 !important; padding-top: 8px !important; width: 100% !important; }
      }
    </style>
  </head>
  <body style="font-family: Helvetica, sans-serif; font-size: 16px; line-height: 1.3; background-color: #f4f5f6; margin: 0; padding: 0;">
    <span class="preheader" style="color: transparent; display: none; height: 0; max-height: 0; overflow: hidden; opacity: 0; visibility: hidden; width: 0;">{{.Preheader}}</span>
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" class="body" style="border-collapse: separate; background-color: #f4f5f6; width: 100%;" width="100%" bgcolor="#f4f5f6">
      <tr>
        <td>&nbsp;</td>
        <td class="container" style="vertical-align: top; max-width: 600px; padding-top: 24px; width: 600px; margin: 0 auto;" width="600" valign="top">
          <table role="presentation" border="0" cellpadding="0" cellspacing="0" class="main" style="background: #ffffff; border: 1px solid #eaebed; border-radius: 16px; width: 100%;" width="100%">
            <tr>
              <td class="wrapper" style="vertical-align: top; box-sizing: border-box; padding: 24px;" valign="top">
                {{.Content}}
              </td>
            </tr>
          </table>
          <div class="footer" style="clear: both; padding-top: 24px; text-align: center; width: 100%; color: #9a9ea6; font-size: 14px;">
            {{.FooterText}}
            {{if .SupportEmail}}<br>Questions? <a href="mailto:{{.SupportEmail}}" style="color: #9a9ea6;">{{.SupportEmail}}</a>{{end}}
          </div>
        </td>
        <td>&nbsp;</td>
      </tr>
    </table>
  </body>
</html>`))

// GetEmailLayout wraps pre-rendered content in the shared email chrome.
func GetEmailLayout(props EmailLayoutProps) (string, error) {
	title := props.Title
	if title == "" {
		title = "Your compliance report"
	}
	footerText := props.FooterText
	if footerText == "" {
		footerText = "You are receiving this email because you requested a compliance report."
	}

	var buf bytes.Buffer
	err := emailLayoutTemplate.Execute(&buf, emailTemplateData{
		Preheader:    props.Preheader,
		Title:        title,
		Content:      template.HTML(props.Content),
		FooterText:   footerText,
		SupportEmail: props.SupportEmail,
	})
	if err != nil {
		return "", fmt.Errorf("execute email layout: %w", err)
	}
	return buf.String(), nil
}
