package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/medfactors/internal/catalog"
	"github.com/ppiankov/medfactors/internal/logging"
	"github.com/ppiankov/medfactors/internal/model"
)

// ErrNotEvaluated marks roster entries skipped because the batch was cancelled
var ErrNotEvaluated = errors.New("not evaluated")

// Evaluator defines what the batch needs from the engine
type Evaluator interface {
	Evaluate(emp model.Employee) model.ResolutionResult
}

// EvaluateJob evaluates one roster entry
type EvaluateJob struct {
	Index     int
	Employee  model.Employee
	Evaluator Evaluator
}

// Execute executes the evaluation
func (j *EvaluateJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &EvaluateResult{Index: j.Index, Employee: j.Employee, Error: err}
	}
	res := j.Evaluator.Evaluate(j.Employee)
	return &EvaluateResult{Index: j.Index, Employee: j.Employee, Result: &res}
}

// EvaluateResult is the outcome of one roster entry
type EvaluateResult struct {
	Index    int
	Employee model.Employee
	Result   *model.ResolutionResult
	Error    error
}

// GetError returns the error from the evaluation
func (r *EvaluateResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates a roster concurrently
type BatchProcessor struct {
	evaluator   Evaluator
	concurrency int
	logger      logging.Logger
}

// NewBatchProcessor creates a new batch processor. A nil logger discards output.
func NewBatchProcessor(evaluator Evaluator, concurrency int, logger logging.Logger) *BatchProcessor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &BatchProcessor{
		evaluator:   evaluator,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ProcessRoster evaluates employees and returns one result per employee
// in input order. Entries left over after ctx is cancelled carry
// ErrNotEvaluated.
func (b *BatchProcessor) ProcessRoster(ctx context.Context, employees []model.Employee) []*EvaluateResult {
	if len(employees) == 0 {
		return []*EvaluateResult{}
	}

	start := time.Now()
	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, emp := range employees {
		if !pool.Submit(&EvaluateJob{Index: i, Employee: emp, Evaluator: b.evaluator}) {
			break
		}
	}

	ordered := make([]*EvaluateResult, len(employees))
	for _, r := range pool.Wait() {
		er := r.(*EvaluateResult)
		ordered[er.Index] = er
	}
	failed := 0
	for i := range ordered {
		if ordered[i] == nil {
			ordered[i] = &EvaluateResult{Index: i, Employee: employees[i], Error: ErrNotEvaluated}
		}
		if ordered[i].Error != nil {
			failed++
		}
	}

	b.logger.Info("roster evaluated",
		logging.Int("employees", len(employees)),
		logging.Int("failed", failed),
		logging.Duration("took", time.Since(start)),
	)
	return ordered
}

// ProcessFile reads a roster file and evaluates it
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]*EvaluateResult, error) {
	employees, err := ReadRoster(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return b.ProcessRoster(ctx, employees), nil
}

// NewReport assembles a roster report from ordered results
func NewReport(roster string, info model.CatalogInfo, results []*EvaluateResult, now time.Time) *model.Report {
	report := &model.Report{
		GeneratedAt: now.UTC(),
		Roster:      roster,
		Catalog:     info,
		Entries:     make([]model.Entry, 0, len(results)),
	}
	for _, r := range results {
		entry := model.Entry{Index: r.Index, Employee: r.Employee, Result: r.Result}
		if r.Error != nil {
			entry.Result = nil
			entry.Error = r.Error.Error()
		}
		report.Entries = append(report.Entries, entry)
	}
	report.Totals = Summarize(report.Entries)
	return report
}

// Summarize computes roster totals. Unique specialists come out in
// canonical display order.
func Summarize(entries []model.Entry) model.Totals {
	totals := model.Totals{
		Employees:         len(entries),
		ByMethod:          make(map[string]int),
		UniqueSpecialties: []string{},
	}
	seen := make(map[string]bool)

	for _, e := range entries {
		if e.Result == nil {
			totals.Errors++
			continue
		}
		totals.ByMethod[e.Result.Method]++
		if e.Result.Profile.Preliminary() {
			totals.Preliminary++
		}
		if !e.Result.Resolved() {
			totals.Unresolved++
			continue
		}
		totals.Resolved++
		for _, s := range e.Result.Specialties {
			if !seen[s] {
				seen[s] = true
				totals.UniqueSpecialties = append(totals.UniqueSpecialties, s)
			}
		}
	}

	catalog.SortSpecialties(totals.UniqueSpecialties)
	return totals
}

type rosterFile struct {
	Employees []model.Employee `json:"employees" yaml:"employees"`
}

// ReadRoster reads employees from a JSON or YAML file. Both a bare list
// and an object with an "employees" list are accepted. Entries with
// neither a name nor a hazard description are skipped.
func ReadRoster(path string) ([]model.Employee, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	return ParseRoster(data, filepath.Ext(path))
}

// ParseRoster decodes roster bytes; ext selects the decoder (".json",
// ".yaml", ".yml") and anything else is sniffed.
func ParseRoster(data []byte, ext string) ([]model.Employee, error) {
	trimmed := bytes.TrimSpace(data)
	isJSON := false
	switch strings.ToLower(ext) {
	case ".json":
		isJSON = true
	case ".yaml", ".yml":
	default:
		isJSON = bytes.HasPrefix(trimmed, []byte("[")) || bytes.HasPrefix(trimmed, []byte("{"))
	}

	var employees []model.Employee
	if isJSON {
		if bytes.HasPrefix(trimmed, []byte("{")) {
			var f rosterFile
			if err := json.Unmarshal(trimmed, &f); err != nil {
				return nil, fmt.Errorf("decode json roster: %w", err)
			}
			employees = f.Employees
		} else if err := json.Unmarshal(trimmed, &employees); err != nil {
			return nil, fmt.Errorf("decode json roster: %w", err)
		}
	} else {
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return nil, fmt.Errorf("decode yaml roster: %w", err)
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.MappingNode {
			var f rosterFile
			if err := node.Decode(&f); err != nil {
				return nil, fmt.Errorf("decode yaml roster: %w", err)
			}
			employees = f.Employees
		} else if len(node.Content) > 0 {
			if err := node.Decode(&employees); err != nil {
				return nil, fmt.Errorf("decode yaml roster: %w", err)
			}
		}
	}

	out := make([]model.Employee, 0, len(employees))
	for _, e := range employees {
		if strings.TrimSpace(e.Name) == "" && strings.TrimSpace(e.HarmfulFactor) == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// SortByName orders results by employee name, keeping input order for
// equal names. Renderers use it for alphabetical listings.
func SortByName(results []*EvaluateResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Employee.Name < results[j].Employee.Name
	})
}
