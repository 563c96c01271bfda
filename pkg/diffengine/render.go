package diffengine

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Colour classes follow the table layout operators know from difflib
// reports: added green, changed yellow, removed red.
var reportTemplate = template.Must(template.New("diff").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  table.diff {font-family: monospace; border: medium; border-collapse: collapse}
  table.diff tbody {font-size: 12px}
  td {padding: 1px 6px; white-space: pre; vertical-align: top}
  .diff_header {background-color: #e0e0e0; font-weight: bold}
  .diff_add {background-color: #aaffaa}
  .diff_chg {background-color: #ffff77}
  .diff_sub {background-color: #ffaaaa}
</style>
</head>
<body>
<table class="diff">
<thead>
<tr><th class="diff_header">{{.OlderName}}</th><th class="diff_header">{{.NewerName}}</th></tr>
</thead>
<tbody>
{{- range .Rows}}
<tr><td{{if .OldClass}} class="{{.OldClass}}"{{end}}>{{.Old}}</td><td{{if .NewClass}} class="{{.NewClass}}"{{end}}>{{.New}}</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

type reportRow struct {
	Old      string
	New      string
	OldClass string
	NewClass string
}

type reportData struct {
	Title     string
	OlderName string
	NewerName string
	Rows      []reportRow
}

// RenderHTML produces the self-contained side-by-side report for a result.
func RenderHTML(res *Result) (string, error) {
	data := reportData{
		Title:     fmt.Sprintf("%s vs %s", res.OlderName, res.NewerName),
		OlderName: res.OlderName,
		NewerName: res.NewerName,
	}

	for _, line := range res.Lines {
		switch line.Class {
		case Unchanged:
			data.Rows = append(data.Rows, reportRow{Old: line.Text, New: line.Text})
		case Added:
			data.Rows = append(data.Rows, reportRow{New: line.Text, NewClass: "diff_add"})
		case Removed:
			data.Rows = append(data.Rows, reportRow{Old: line.Text, OldClass: "diff_sub"})
		case Changed:
			data.Rows = append(data.Rows, reportRow{
				Old: line.Old, OldClass: "diff_chg",
				New: line.Text, NewClass: "diff_chg",
			})
		}
	}

	var sb strings.Builder
	if err := reportTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render diff report: %w", err)
	}
	return sb.String(), nil
}

// WriteReport renders the result and writes it into dir, returning the
// report path. Naming mirrors snapshot files so reports sit next to the
// snapshots they explain.
func WriteReport(res *Result, dir string) (string, error) {
	html, err := RenderHTML(res)
	if err != nil {
		return "", err
	}

	prefix := res.Host
	if prefix == "" {
		prefix = strings.TrimSuffix(filepath.Base(res.OlderName), filepath.Ext(res.OlderName))
	}
	category := res.Category
	if category == "" {
		category = "compare"
	}

	name := fmt.Sprintf("%s_diff_%s_%s.html", prefix, category, time.Now().Format("20060102-1504"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("write diff report: %w", err)
	}
	return path, nil
}
