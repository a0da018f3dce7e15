package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/ppiankov/medfactors/internal/model"
)

type markdownRenderer struct{}

var funcs = template.FuncMap{
	"join":  strings.Join,
	"inc":   func(i int) int { return i + 1 },
	"years": formatYears,
}

var mdTemplate = template.Must(template.New("report").Funcs(funcs).Parse(`# Medical Examination Referral Report

**Roster:** {{ .Roster }}
**Catalog:** {{ .Catalog.Source }} ({{ .Catalog.Rules }} rules{{ if .Catalog.FromCache }}, cached{{ end }})
**Generated:** {{ .GeneratedAt.Format "2006-01-02 15:04 MST" }}

**Employees:** {{ .Totals.Employees }} | **Resolved:** {{ .Totals.Resolved }} | **Unresolved:** {{ .Totals.Unresolved }} | **Errors:** {{ .Totals.Errors }} | **Preliminary exams:** {{ .Totals.Preliminary }}
{{ if .Totals.ByMethod }}
| Method | Employees |
|---|---|
{{ range $method, $n := .Totals.ByMethod }}| {{ $method }} | {{ $n }} |
{{ end }}{{ end }}
## Specialists required ({{ len .Totals.UniqueSpecialties }})
{{ range .Totals.UniqueSpecialties }}
- {{ . }}{{ else }}
None.{{ end }}

---

## Employees
{{ range .Entries }}
### {{ inc .Index }}. {{ if .Employee.Name }}{{ .Employee.Name }}{{ else }}(unnamed){{ end }}

**Hazard:** {{ .Employee.HarmfulFactor }}
{{ if .Error }}
**Error:** {{ .Error }}
{{ else }}{{ with .Result }}
**Exam:** {{ .Profile.ExamType }} | **Experience:** {{ years .Profile.ExperienceYears }} | **Method:** {{ .Method }}
{{ if .Factors }}
**Factors:**
{{ range .Factors }}
- п. {{ .ID }} {{ .Title }} ({{ .Category }}){{ end }}

**Specialists:** {{ join .Specialties ", " }}
{{ if .Research }}
**Research:**
{{ range .Research }}
- {{ . }}{{ end }}
{{ end }}{{ else }}
No regulatory factor matched.
{{ end }}{{ end }}{{ end }}{{ end }}`))

func (r *markdownRenderer) Render(report *model.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, report); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// formatYears prints tenure with at most one decimal
func formatYears(y float64) string {
	s := strconv.FormatFloat(y, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + " y"
}
