package planner

import (
	"bytes"
	"os"
	"text/template"
)

const dateLayout = "2006-01-02"

const defaultBriefTemplate = `{{.WBS}} {{.Name}} (task {{.TaskID}})
{{- if .IsMilestone}}
Milestone on {{.Start}}
{{- else}}
Runs {{.Start}} to {{.Finish}} ({{.Duration}})
{{- end}}
Must finish by {{.LateFinish}}, float {{printf "%g" .TotalFloat}}d
{{- if .Predecessors}}
Waits on: {{range $i, $id := .Predecessors}}{{if $i}}, {{end}}{{$id}}{{end}}
{{- end}}
{{- if .Successors}}
Feeds: {{range $i, $id := .Successors}}{{if $i}}, {{end}}{{$id}}{{end}}
{{- end}}
Wave {{.WaveIndex}} ({{.WaveSize}} tasks start together)
{{- if .IsCritical}}
On the CRITICAL PATH: any slip moves the {{.Project}} finish date
{{- end}}
`

// BriefData holds the data used to render a task brief.
type BriefData struct {
	Project      string
	TaskID       int
	WBS          string
	Name         string
	Duration     string
	Start        string
	Finish       string
	LateFinish   string
	TotalFloat   float64
	Predecessors []int
	Successors   []int
	WaveIndex    int
	WaveSize     int
	IsCritical   bool
	IsMilestone  bool
}

// RenderBrief renders a task brief using either a custom template file or the default.
func RenderBrief(data BriefData, templatePath string) (string, error) {
	tmplStr := defaultBriefTemplate
	if templatePath != "" {
		content, err := os.ReadFile(templatePath)
		if err != nil {
			return "", err
		}
		tmplStr = string(content)
	}

	tmpl, err := template.New("brief").Parse(tmplStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
