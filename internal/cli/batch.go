package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medfactors/internal/render"
	"github.com/ppiankov/medfactors/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchSort    string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <roster>",
	Short: "Evaluate a whole employee roster in parallel",
	Long: `Batch evaluates every employee of a roster concurrently:
- Read employees from a JSON or YAML file (a list, or {"employees": [...]})
- Evaluate employees in parallel with a configurable worker count
- Write one JSON and one Markdown report with per-employee specialists
  and research, plus roster totals

Example:
  medfactors batch staff.yaml
  medfactors batch staff.json --concurrency 8 --output-dir ./referrals
  medfactors batch staff.json --sort name`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./medfactors-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 5*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchSort, "sort", "input", "entry order in reports (input, name)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	if batchSort != "input" && batchSort != "name" {
		return fmt.Errorf("invalid --sort %q: use input or name", batchSort)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	workers := concurrency
	if workers <= 0 {
		workers = a.cfg.Concurrency.Workers
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "  medfactors Roster Evaluation\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "  Roster:       %s\n", file)
	fmt.Fprintf(errOut, "  Catalog:      %s (%d rules)\n", a.loaded.Source, a.loaded.Catalog.Len())
	fmt.Fprintf(errOut, "  Workers:      %d\n", workers)
	fmt.Fprintf(errOut, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(errOut, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(a.engine, workers, a.logger.Named("batch"))
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process roster: %w", err)
	}
	if batchSort == "name" {
		worker.SortByName(results)
	}

	for _, r := range results {
		name := r.Employee.Name
		if name == "" {
			name = fmt.Sprintf("#%d", r.Index+1)
		}
		switch {
		case r.Error != nil:
			fmt.Fprintf(errOut, "✗ %s: %v\n", name, r.Error)
		case !r.Result.Resolved():
			fmt.Fprintf(errOut, "? %s: no factor matched\n", name)
		default:
			fmt.Fprintf(errOut, "✓ %s: %s\n", name, orDash(r.Result.Specialties))
		}
	}

	report := worker.NewReport(file, a.catalogInfo(), results, time.Now())
	slug := sanitizeFilename(strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)))

	var written []string
	for _, format := range []string{"json", "md"} {
		renderer, err := render.NewRenderer(format)
		if err != nil {
			return err
		}
		data, err := renderer.Render(report)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		path := filepath.Join(outputDir, slug+render.Extension(format))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	t := report.Totals
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "  Batch Complete\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "  Employees:    %d\n", t.Employees)
	fmt.Fprintf(errOut, "  Resolved:     %d\n", t.Resolved)
	fmt.Fprintf(errOut, "  Unresolved:   %d\n", t.Unresolved)
	fmt.Fprintf(errOut, "  Errors:       %d\n", t.Errors)
	fmt.Fprintf(errOut, "  Specialists:  %d\n", len(t.UniqueSpecialties))
	fmt.Fprintf(errOut, "\n")

	for _, p := range written {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		s = "roster"
	}

	// Limit length
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	return s
}
