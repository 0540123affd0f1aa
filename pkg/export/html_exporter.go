package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: 'Malgun Gothic', sans-serif; margin: 20px; color: #222; }
h1 { font-size: 20px; border-bottom: 2px solid #333; padding-bottom: 8px; }
.meta { color: #666; font-size: 12px; margin-bottom: 16px; }
table { border-collapse: collapse; width: 100%; font-size: 12px; }
th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; }
th { background: #f3f4f6; }
tr:nth-child(even) td { background: #fafafa; }
@media print { body { margin: 0; } .meta { display: none; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">Generated {{.GeneratedAt}}</div>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// HTMLExporter renders datasets into a printable HTML document.
type HTMLExporter struct {
	now func() time.Time
}

// NewHTMLExporter constructs an HTML exporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{now: time.Now}
}

// ContentType reports the MIME type of rendered output.
func (e *HTMLExporter) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces an escaped HTML table titled title.
func (e *HTMLExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("html requires at least one header")
	}
	rows := make([][]string, 0, len(data.Rows))
	for _, row := range data.Rows {
		cells := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			cells[i] = row[header]
		}
		rows = append(rows, cells)
	}
	view := struct {
		Title       string
		GeneratedAt string
		Headers     []string
		Rows        [][]string
	}{
		Title:       title,
		GeneratedAt: e.now().Format("2006-01-02 15:04"),
		Headers:     data.Headers,
		Rows:        rows,
	}
	buf := &bytes.Buffer{}
	if err := htmlReport.Execute(buf, view); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
