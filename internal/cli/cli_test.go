package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/medfactors/internal/catalog"
	"github.com/ppiankov/medfactors/internal/fetch"
	"github.com/ppiankov/medfactors/internal/model"
)

const testCatalog = `
- id: 1
  title: Бензол
  keywords: [бензол]
  specialties: [Терапевт, Гематолог]
  research: "Общий анализ крови; при стаже более 10 лет, спирометрия"
- id: 4
  title: Работы на высоте
  keywords: [высот]
  specialties: [Невролог, Офтальмолог]
  research: "Острота зрения"
`

// resetFlags restores every flag to its default so tests do not leak
// values into each other through the package-level command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "factors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--log-level", "error", "--no-cache"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "medfactors "+Version+"\n", out)
}

func TestResolveCommand(t *testing.T) {
	cat := writeCatalog(t)

	out, err := runCLI(t, "--catalog", cat, "resolve", "п.", "4", "на", "высоте")
	require.NoError(t, err)
	assert.Contains(t, out, "п. 4 Работы на высоте [profession]")
	assert.Contains(t, out, "Невролог")

	out, err = runCLI(t, "--catalog", cat, "resolve", "контакт с бензолом", "--json")
	require.NoError(t, err)
	var rules []catalog.Rule
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, 1, rules[0].ID)

	out, err = runCLI(t, "--catalog", cat, "resolve", "офис", "--explain")
	require.NoError(t, err)
	assert.Contains(t, out, "method: none")

	out, err = runCLI(t, "--catalog", cat, "resolve", "офис")
	require.NoError(t, err)
	assert.Equal(t, "No matching rules.\n", out)
}

func TestPersonalizeCommand(t *testing.T) {
	cat := writeCatalog(t)
	research := "Флюорография; при стаже более 10 лет, спирометрия"

	out, err := runCLI(t, "--catalog", cat, "personalize", research, "--experience", "5 лет")
	require.NoError(t, err)
	assert.Equal(t, "Флюорография\n", out)

	out, err = runCLI(t, "--catalog", cat, "personalize", research, "--experience", "15 лет")
	require.NoError(t, err)
	assert.Equal(t, "Флюорография; спирометрия\n", out)

	out, err = runCLI(t, "--catalog", cat, "personalize", research, "--experience", "5 лет", "--diff")
	require.NoError(t, err)
	assert.Contains(t, out, "[-")

	out, err = runCLI(t, "--catalog", cat, "personalize", "--rule", "1", "--experience", "2 года")
	require.NoError(t, err)
	assert.Equal(t, "Общий анализ крови\n", out)

	out, err = runCLI(t, "--catalog", cat, "personalize", research, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"action": "drop_clause"`)

	_, err = runCLI(t, "--catalog", cat, "personalize")
	assert.Error(t, err)

	_, err = runCLI(t, "--catalog", cat, "personalize", "--rule", "77")
	assert.Error(t, err)
}

func TestClassifyCommand(t *testing.T) {
	out, err := runCLI(t, "classify", "--experience", "3 года 6 мес.", "--json")
	require.NoError(t, err)

	var p model.HazardProfile
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.InDelta(t, 3.5, p.TotalYears, 1e-9)
	assert.Equal(t, model.ExamPreliminary, p.ExamType)

	out, err = runCLI(t, "classify", "--experience", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "total experience:    10.00 years")
	assert.Contains(t, out, "exam type:           preliminary")
}

func TestEvaluateCommand(t *testing.T) {
	cat := writeCatalog(t)

	out, err := runCLI(t, "--catalog", cat, "evaluate", "--name", "Иванов", "--factor", "п. 1", "--experience", "15 лет")
	require.NoError(t, err)
	assert.Contains(t, out, "Иванов")
	assert.Contains(t, out, "specialists: Терапевт, Гематолог")
	assert.Contains(t, out, "- Общий анализ крови; спирометрия")

	out, err = runCLI(t, "--catalog", cat, "evaluate", "--factor", "офис")
	require.NoError(t, err)
	assert.Contains(t, out, "No regulatory factor matched.")

	_, err = runCLI(t, "--catalog", cat, "evaluate")
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	cat := writeCatalog(t)
	dir := t.TempDir()
	roster := filepath.Join(dir, "staff list.json")
	require.NoError(t, os.WriteFile(roster, []byte(`[
		{"name":"Петров","harmful_factor":"п. 4"},
		{"name":"Иванов","harmful_factor":"п. 1","total_experience":"12 лет"},
		{"name":"Сидоров","harmful_factor":"офис"}
	]`), 0o644))
	outDir := filepath.Join(dir, "out")

	out, err := runCLI(t, "--catalog", cat, "batch", roster, "--output-dir", outDir, "--sort", "name")
	require.NoError(t, err)

	jsonPath := filepath.Join(outDir, "staff-list.json")
	mdPath := filepath.Join(outDir, "staff-list.md")
	assert.Equal(t, jsonPath+"\n"+mdPath+"\n", out)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var report model.Report
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Entries, 3)
	assert.Equal(t, "Иванов", report.Entries[0].Employee.Name)
	assert.Equal(t, 2, report.Totals.Resolved)
	assert.Equal(t, 1, report.Totals.Unresolved)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Medical Examination Referral Report")

	_, err = runCLI(t, "--catalog", cat, "batch", roster, "--output-dir", outDir, "--sort", "age")
	assert.Error(t, err)
}

func TestCatalogCommands(t *testing.T) {
	out, err := runCLI(t, "catalog", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "source:    builtin (json)")
	assert.Contains(t, out, "retained:  21")
	assert.Contains(t, out, "dropped:   4")

	out, err = runCLI(t, "catalog", "show", "4", "--json")
	require.NoError(t, err)
	var rules []catalog.Rule
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	assert.Len(t, rules, 2)

	cat := writeCatalog(t)
	out, err = runCLI(t, "--catalog", cat, "catalog", "list", "--category", "profession")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Работы на высоте")

	_, err = runCLI(t, "catalog", "show", "abc")
	assert.Error(t, err)
	_, err = runCLI(t, "catalog", "show", "999")
	assert.Error(t, err)
}

func TestCatalogFromURL(t *testing.T) {
	var robotsHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			robotsHits.Add(1)
			http.NotFound(w, r)
		case "/factors":
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write([]byte(testCatalog))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out, err := runCLI(t, "--catalog", srv.URL+"/factors", "catalog", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "source:    "+srv.URL+"/factors (yaml)")
	assert.Contains(t, out, "retained:  2")
	assert.Equal(t, int32(1), robotsHits.Load())

	_, err = runCLI(t, "--catalog", srv.URL+"/missing.json", "catalog", "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch catalog")
}

func TestRemoteFormat(t *testing.T) {
	tests := []struct {
		name string
		res  fetch.Result
		want catalog.Format
	}{
		{"extension wins", fetch.Result{FinalURL: "https://example.org/a/f.json", ContentType: "text/html"}, catalog.FormatJSON},
		{"html content type", fetch.Result{FinalURL: "https://example.org/list", ContentType: "text/html; charset=utf-8"}, catalog.FormatHTML},
		{"yaml content type", fetch.Result{FinalURL: "https://example.org/list", ContentType: "application/yaml"}, catalog.FormatYAML},
		{"sniffed json", fetch.Result{FinalURL: "https://example.org/list", Body: []byte(" [{}]")}, catalog.FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.res
			assert.Equal(t, tt.want, remoteFormat(&res))
		})
	}
}

func TestConfigShow(t *testing.T) {
	out, err := runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "context_window: 50")
	assert.Contains(t, out, "workers: 4")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "staff-list", sanitizeFilename("staff list"))
	assert.Equal(t, "a_b_c", sanitizeFilename("a/b:c"))
	assert.Equal(t, "roster", sanitizeFilename(" "))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("я", 150))), 100)
}
