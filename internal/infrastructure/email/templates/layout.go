// Package templates renders the HTML bodies of outgoing emails.
package templates

import (
	"bytes"
	"html/template"
)

type LayoutProps struct {
	Title     string
	Preheader string
	Content   template.HTML
	Footer    string
}

var layoutTemplate = template.Must(template.New("layout").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
    <title>{{.Title}}</title>
  </head>
  <body style="font-family: Helvetica, sans-serif; font-size: 16px; line-height: 1.3; background-color: #f4f5f6; margin: 0; padding: 24px;">
    <span style="display: none; max-height: 0; overflow: hidden;">{{.Preheader}}</span>
    <div style="max-width: 600px; margin: 0 auto; background: #ffffff; border: 1px solid #eaebed; border-radius: 16px; padding: 24px;">
      {{.Content}}
    </div>
    <p style="color: #9a9ea6; font-size: 14px; text-align: center;">{{.Footer}}</p>
  </body>
</html>`))

// RenderLayout wraps already-escaped content in the shared layout.
func RenderLayout(props LayoutProps) (string, error) {
	if props.Footer == "" {
		props.Footer = "Sent by the Octopus content server."
	}
	var buf bytes.Buffer
	if err := layoutTemplate.Execute(&buf, props); err != nil {
		return "", err
	}
	return buf.String(), nil
}
