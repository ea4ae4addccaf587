package templates

import (
	"bytes"
	"html/template"
	"time"
)

// maxListedPaths caps how many missing files are listed in one alert.
const maxListedPaths = 50

type IntegrityAlertProps struct {
	MissingPaths []string
	OrphanCount  int
	LinkedCount  int
	GeneratedAt  time.Time
}

type integrityAlertData struct {
	IntegrityAlertProps
	Listed    []string
	Remaining int
}

var integrityAlertTemplate = template.Must(template.New("integrityAlert").Parse(`
<h2 style="margin-top: 0;">Storage audit found {{len .MissingPaths}} missing file(s)</h2>
<p>Content rows reference these objects but the bucket does not contain them:</p>
<ul>{{range .Listed}}<li><code>{{.}}</code></li>{{end}}</ul>
{{if .Remaining}}<p>and {{.Remaining}} more.</p>{{end}}
<p>Linked: {{.LinkedCount}} &middot; Orphan: {{.OrphanCount}}</p>
<p style="color: #9a9ea6;">Report generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</p>`))

// RenderIntegrityAlert renders the full HTML body of a missing-files alert.
func RenderIntegrityAlert(props IntegrityAlertProps) (string, error) {
	data := integrityAlertData{IntegrityAlertProps: props, Listed: props.MissingPaths}
	if len(data.Listed) > maxListedPaths {
		data.Listed = props.MissingPaths[:maxListedPaths]
		data.Remaining = len(props.MissingPaths) - maxListedPaths
	}

	var buf bytes.Buffer
	if err := integrityAlertTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return RenderLayout(LayoutProps{
		Title:     "Storage integrity alert",
		Preheader: "Media referenced by content is missing from storage",
		Content:   template.HTML(buf.String()),
	})
}
